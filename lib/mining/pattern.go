// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining

import "github.com/wimleers/fpstream/lib/containers"

// PatternTree is a prefix-shared forest of itemsets: the path from
// root to any node, read in order, spells out an itemset in f-list
// order. Every non-root node owns a TiltedTimeWindow tracking that
// itemset's support history.
type PatternTree struct {
	root           *Node[*TiltedTimeWindow]
	currentQuarter int
	nodeCount      int
}

// NewPatternTree returns an empty tree.
func NewPatternTree() *PatternTree {
	return &PatternTree{
		root: NewNode[*TiltedTimeWindow](RootItemID, nil),
	}
}

// Root returns the tree's root node.
func (t *PatternTree) Root() *Node[*TiltedTimeWindow] {
	return t.root
}

// NodeCount returns the number of non-root nodes reachable from the
// root.
func (t *PatternTree) NodeCount() int {
	return t.nodeCount
}

// CurrentQuarter returns the tree's shared quarter counter, used to
// keep newly inserted nodes' TTWs synchronized with already-present
// ones.
func (t *PatternTree) CurrentQuarter() int {
	return t.currentQuarter
}

// NextQuarter advances the shared quarter counter modulo 4.
func (t *PatternTree) NextQuarter() {
	t.currentQuarter = (t.currentQuarter + 1) % 4
}

// AddPattern walks root to leaf along pattern.Itemset, creating nodes
// as needed, then catches the leaf's TTW up to the tree's current
// quarter with zero-supports before appending pattern.Support.
func (t *PatternTree) AddPattern(pattern FrequentItemset, updateID uint32) *Node[*TiltedTimeWindow] {
	current := t.root
	for _, itemID := range pattern.Itemset {
		child := current.Child(itemID)
		if child == nil {
			child = NewNode[*TiltedTimeWindow](itemID, NewTiltedTimeWindow())
			current.AddChild(child)
			t.nodeCount++
		}
		current = child
	}

	ttw := current.Payload
	for used := ttw.CapacityUsed(GranularityQuarter); used < t.currentQuarter; used = ttw.CapacityUsed(GranularityQuarter) {
		ttw.AppendQuarter(0, updateID)
	}
	ttw.AppendQuarter(pattern.Support, updateID)
	return current
}

// RemovePattern detaches node from its parent; the tree's node count
// decreases by 1 plus the number of node's descendants.
func (t *PatternTree) RemovePattern(node *Node[*TiltedTimeWindow]) {
	if node.Parent == nil {
		return
	}
	t.nodeCount -= node.Count() // node.Count() = 1 (itself) + descendants
	delete(node.Parent.Children, node.Item)
	node.Parent = nil
}

// GetPatternSupport follows pattern from the root, returning the TTW
// at the end of the path, absent if any step is missing.
func (t *PatternTree) GetPatternSupport(pattern ItemIDList) containers.Optional[*TiltedTimeWindow] {
	node := t.GetPatternNode(pattern)
	if node == nil {
		return containers.Optional[*TiltedTimeWindow]{}
	}
	return containers.Optional[*TiltedTimeWindow]{OK: true, Val: node.Payload}
}

// GetPatternNode is like GetPatternSupport but returns the node
// itself, for callers (the coordinator) that need to mutate or remove
// it.
func (t *PatternTree) GetPatternNode(pattern ItemIDList) *Node[*TiltedTimeWindow] {
	current := t.root
	for _, itemID := range pattern {
		current = current.Child(itemID)
		if current == nil {
			return nil
		}
	}
	if current == t.root {
		return nil
	}
	return current
}

// PatternForNode reconstructs the itemset spelled out by the path
// from root to node.
func PatternForNode(node *Node[*TiltedTimeWindow]) ItemIDList {
	var reversed ItemIDList
	for n := node; n != nil && !n.IsRoot(); n = n.Parent {
		reversed = append(reversed, n.Item)
	}
	out := make(ItemIDList, len(reversed))
	for i, id := range reversed {
		out[len(reversed)-1-i] = id
	}
	return out
}

// GetFrequentItemsetsForRange performs a depth-first traversal of the
// tree, emitting every node whose range support strictly exceeds
// minSupport and whose itemset matches constraints. The root itself
// is never emitted (it has no TTW and no itemset).
func (t *PatternTree) GetFrequentItemsetsForRange(minSupport SupportCount, constraints *Constraints, from, to int) []FrequentItemset {
	var out []FrequentItemset
	var walk func(node *Node[*TiltedTimeWindow], prefix ItemIDList)
	walk = func(node *Node[*TiltedTimeWindow], prefix ItemIDList) {
		itemset := prefix
		if !node.IsRoot() {
			itemset = append(prefix.Clone(), node.Item)
			support := node.Payload.SupportForRange(from, to)
			if support > minSupport && (constraints == nil || constraints.MatchItemset(itemset)) {
				out = append(out, FrequentItemset{Itemset: itemset, Support: support})
			}
		}
		for _, child := range node.Children {
			walk(child, itemset)
		}
	}
	walk(t.root, nil)
	return out
}
