// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining

import (
	"sort"

	"github.com/wimleers/fpstream/lib/containers"
)

// FPTree is a prefix tree of transactions, each node's Payload (a
// SupportCount) counting how many times that prefix occurred. Every
// ItemID carries an "item path": the list of every node, anywhere in
// the tree, holding that ID, kept as a node-link list so
// PrefixPaths/SupportOfItem never need to walk the whole tree.
type FPTree struct {
	root      *Node[SupportCount]
	itemPaths map[ItemID]*Node[SupportCount]
	itemTails map[ItemID]*Node[SupportCount]

	scratch *containers.SlicePool[Item]
}

// NewFPTree returns an empty tree. scratch is only recorded on the
// tree; Insert and PrefixPaths allocate normally and never draw from
// it. The pool is used by NewConditionalFPTree for its filtered-path
// buffers (conditional trees built during mining share a pool per
// FP-Growth call, see NewFPGrowth).
func NewFPTree(scratch *containers.SlicePool[Item]) *FPTree {
	return &FPTree{
		root:      NewNode[SupportCount](RootItemID, 0),
		itemPaths: make(map[ItemID]*Node[SupportCount]),
		itemTails: make(map[ItemID]*Node[SupportCount]),
		scratch:   scratch,
	}
}

// Root returns the tree's root node.
func (t *FPTree) Root() *Node[SupportCount] {
	return t.root
}

// HasItemPath reports whether any node in the tree carries itemID.
func (t *FPTree) HasItemPath(itemID ItemID) bool {
	_, ok := t.itemPaths[itemID]
	return ok
}

// IDs returns every ItemID that occurs somewhere in the tree.
func (t *FPTree) IDs() []ItemID {
	ids := make([]ItemID, 0, len(t.itemPaths))
	for id := range t.itemPaths {
		ids = append(ids, id)
	}
	return ids
}

// SupportOfItem returns the sum of Payload over every node carrying
// itemID.
func (t *FPTree) SupportOfItem(itemID ItemID) SupportCount {
	var total SupportCount
	for node := t.itemPaths[itemID]; node != nil; node = node.Next {
		total += node.Payload
	}
	return total
}

// Insert walks transaction from the root, reusing a child when its
// Item matches or creating one otherwise, accumulating support along
// the path.
func (t *FPTree) Insert(transaction Transaction) {
	current := t.root
	for _, item := range transaction {
		child := current.Child(item.ID)
		if child != nil {
			child.Payload += item.Support
		} else {
			child = NewNode[SupportCount](item.ID, item.Support)
			current.AddChild(child)
			t.linkItemPath(child)
		}
		current = child
	}
}

func (t *FPTree) linkItemPath(node *Node[SupportCount]) {
	if head, ok := t.itemPaths[node.Item]; !ok || head == nil {
		t.itemPaths[node.Item] = node
		t.itemTails[node.Item] = node
		return
	}
	t.itemTails[node.Item].Next = node
	t.itemTails[node.Item] = node
}

// PrefixPaths returns, for every node carrying itemID, the ancestor
// chain from (but excluding) that node up to (but excluding) the
// root, in root-to-leaf order, with every Item's Support replaced by
// the originating leaf node's own Payload -- these paths describe
// "this ancestor sequence occurred however many times the leaf
// occurred", which is exactly what a conditional tree needs.
func (t *FPTree) PrefixPaths(itemID ItemID) []Transaction {
	var paths []Transaction
	for leaf := t.itemPaths[itemID]; leaf != nil; leaf = leaf.Next {
		support := leaf.Payload
		var reversed Transaction
		for n := leaf.Parent; n != nil && !n.IsRoot(); n = n.Parent {
			reversed = append(reversed, Item{ID: n.Item, Support: support})
		}
		if len(reversed) == 0 {
			continue
		}
		path := make(Transaction, len(reversed))
		for i, item := range reversed {
			path[len(reversed)-1-i] = item
		}
		paths = append(paths, path)
	}
	return paths
}

// SupportCountsForPrefixPaths sums, per ItemID, the Support carried
// across every occurrence in paths.
func SupportCountsForPrefixPaths(paths []Transaction) map[ItemID]SupportCount {
	totals := make(map[ItemID]SupportCount)
	for _, path := range paths {
		for _, item := range path {
			totals[item.ID] += item.Support
		}
	}
	return totals
}

// NewConditionalFPTree builds a tree from prefix paths, after
// dropping items whose prefix-path-local cumulative support falls
// below minSupport and re-sorting each path into f-list order -- the
// per-conditional-tree filter the original performs in addition to
// the top-level scan (see DESIGN.md).
func NewConditionalFPTree(paths []Transaction, minSupport SupportCount, fListRank func(ItemID) int, scratch *containers.SlicePool[Item]) *FPTree {
	totals := SupportCountsForPrefixPaths(paths)
	tree := NewFPTree(scratch)
	for _, path := range paths {
		var filtered Transaction
		if scratch != nil {
			filtered = Transaction(scratch.Get(len(path))[:0])
		}
		for _, item := range path {
			if totals[item.ID] >= minSupport {
				filtered = append(filtered, item)
			}
		}
		sortByFList(filtered, fListRank)
		if len(filtered) > 0 {
			tree.Insert(filtered)
		}
		if scratch != nil {
			scratch.Put([]Item(filtered[:0]))
		}
	}
	return tree
}

// sortByFList orders items by ascending f-list rank (most frequent
// first), ties never occur since f-list ranks are unique.
func sortByFList(items Transaction, rank func(ItemID) int) {
	sort.Slice(items, func(i, j int) bool {
		return rank(items[i].ID) < rank(items[j].ID)
	})
}
