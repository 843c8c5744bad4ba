// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining

import "github.com/wimleers/fpstream/lib/containers"

// Visitor is the FP-Growth side of the coordinator/FP-Growth streaming
// handshake. FP-Growth calls OnEmit synchronously, once per generated
// frequent itemset, in DFS order; the visitor decides whether mining
// should continue into condTree (returning true re-enters FP-Growth
// on it, false discards it -- this is the mechanism for type-II
// pruning). OnBranchDone fires once exploration of everything rooted
// at itemset has finished.
type Visitor interface {
	OnEmit(fi FrequentItemset, matchesConstraints bool, condTree *FPTree) (continueMining bool)
	OnBranchDone(itemset ItemIDList)
}

// FPGrowth is a batch frequent-itemset miner: it interns transaction
// items, extends the shared f-list, builds an FP-tree, and mines it
// recursively via conditional FP-trees. constraint is the
// frequent-itemset constraint set -- by the time it reaches here, a
// caller wiring rule-consequent constraints has already folded those
// in too (Coordinator.SetRuleConsequentConstraint does this), so
// FP-Growth itself only ever tests one set.
type FPGrowth struct {
	dict               *Dictionary
	constraint         *Constraints
	minSupportAbsolute SupportCount
	scratch            *containers.SlicePool[Item]

	searchSpaceCache *containers.LRUCache[string, bool]
}

// NewFPGrowth returns a miner sharing dict and constraint with its
// caller (typically the coordinator). constraint may be nil, meaning
// "no constraints" (always matches).
func NewFPGrowth(dict *Dictionary, constraint *Constraints, minSupportAbsolute SupportCount) *FPGrowth {
	return &FPGrowth{
		dict:               dict,
		constraint:         constraint,
		minSupportAbsolute: minSupportAbsolute,
		scratch:            &containers.SlicePool[Item]{},
		searchSpaceCache:   containers.NewLRUCache[string, bool](1024),
	}
}

// scan interns every item name across transactions, counts each
// item's cumulative support within this batch, notifies
// constraint.Preprocess for every distinct item seen, discards (and
// calls constraint.Remove for) items below minSupportAbsolute, and
// folds the surviving counts into the dictionary's f-list. It returns
// the batch's per-item support counts restricted to the surviving
// (frequent) items.
func (g *FPGrowth) scan(transactions [][]ItemName) map[ItemID]SupportCount {
	support := make(map[ItemID]SupportCount)
	seen := make(map[ItemID]bool)
	for _, txn := range transactions {
		for _, name := range txn {
			id := g.dict.Intern(name)
			support[id]++
			if !seen[id] {
				seen[id] = true
				if g.constraint != nil {
					g.constraint.Preprocess(name, id)
				}
			}
		}
	}

	for id, s := range support {
		if s < g.minSupportAbsolute {
			delete(support, id)
			if g.constraint != nil {
				g.constraint.Remove(id)
			}
		}
	}

	g.dict.UpdateFList(support)
	return support
}

// build converts each transaction to IDs, drops items absent from
// support, sorts by f-list order, and inserts into a fresh FPTree.
func (g *FPGrowth) build(transactions [][]ItemName, support map[ItemID]SupportCount) *FPTree {
	tree := NewFPTree(g.scratch)
	for _, txn := range transactions {
		items := make(Transaction, 0, len(txn))
		for _, name := range txn {
			id := g.dict.Intern(name)
			if _, ok := support[id]; !ok {
				continue
			}
			items = append(items, Item{ID: id, Support: 1})
		}
		sortByFList(items, g.fListRank)
		if len(items) > 0 {
			tree.Insert(items)
		}
	}
	return tree
}

// fListRank returns id's position in the dictionary's f-list, treating
// unknown IDs as ranked after everything known (should not occur for
// IDs that passed the support filter).
func (g *FPGrowth) fListRank(id ItemID) int {
	if pos, ok := g.dict.FListPosition(id); ok {
		return pos
	}
	return len(g.dict.FList())
}

// Run mines transactions (given as item-name sets) to completion in
// batch mode, returning every itemset that meets minSupportAbsolute
// and matches the constraint (if any). Unlike streaming mode, batch
// mode always explores every branch whose search space the
// constraint (or its absence) permits, since a one-shot historical
// mine has no pattern tree to stagger exploration against.
func (g *FPGrowth) Run(transactions [][]ItemName) []FrequentItemset {
	var out []FrequentItemset
	g.RunStreaming(transactions, &batchCollector{out: &out})
	return out
}

type batchCollector struct {
	out *[]FrequentItemset
}

func (b *batchCollector) OnEmit(fi FrequentItemset, matchesConstraints bool, condTree *FPTree) bool {
	if matchesConstraints {
		*b.out = append(*b.out, fi)
	}
	return true
}

func (b *batchCollector) OnBranchDone(ItemIDList) {}

// RunStreaming mines transactions to completion, invoking visitor
// once per generated frequent itemset (in DFS order) and once per
// completed branch, letting the visitor decide whether to continue
// into each conditional tree. The root branch (the empty itemset) is
// reported done last, after the whole tree has been mined.
func (g *FPGrowth) RunStreaming(transactions [][]ItemName, visitor Visitor) {
	support := g.scan(transactions)
	tree := g.build(transactions, support)
	g.mine(tree, nil, visitor)
	visitor.OnBranchDone(nil)
}

// mine is the recursive core: for each candidate suffix item (in
// reverse f-list order, restricted to items present in tree), test
// its support, decide whether it is emitted (matchItemset) and, if
// not emitted, whether exploration may still continue
// (matchSearchSpace) to preserve antecedents needed later for
// confidence computation. Every candidate meeting minSupportAbsolute
// is reported to the visitor regardless of the emit decision -- the
// visitor (the coordinator, in streaming mode) is the one that acts
// differently on a non-matching itemset (type-I pruning).
func (g *FPGrowth) mine(tree *FPTree, suffix ItemIDList, visitor Visitor) {
	candidates := g.orderedSuffixCandidates(tree)

	for _, suffixItem := range candidates {
		support := tree.SupportOfItem(suffixItem)
		if support < g.minSupportAbsolute {
			continue
		}

		itemset := append(ItemIDList{suffixItem}, suffix...)
		frequentItemset := FrequentItemset{Itemset: itemset, Support: support}

		matches := g.constraint == nil || g.constraint.MatchItemset(itemset)

		prefixPaths := tree.PrefixPaths(suffixItem)
		prefixPathSupport := SupportCountsForPrefixPaths(prefixPaths)

		mayRecurse := matches || g.searchSpaceAllowed(itemset, prefixPathSupport)

		var condTree *FPTree
		if mayRecurse && len(prefixPaths) > 0 {
			condTree = NewConditionalFPTree(prefixPaths, g.minSupportAbsolute, g.fListRank, g.scratch)
			if len(condTree.IDs()) == 0 {
				condTree = nil
			}
		}

		continueMining := visitor.OnEmit(frequentItemset, matches, condTree)
		if continueMining && condTree != nil {
			g.mine(condTree, itemset, visitor)
		}
		visitor.OnBranchDone(itemset)
	}
}

// searchSpaceAllowed mirrors matchSearchSpace, memoized within this
// FPGrowth run on the itemset plus the number of IDs in the
// prefix-path support map (not the map's contents; see
// searchSpaceCacheKey).
func (g *FPGrowth) searchSpaceAllowed(itemset ItemIDList, prefixPathSupport map[ItemID]SupportCount) bool {
	if g.constraint == nil {
		return true
	}
	key := searchSpaceCacheKey(itemset, prefixPathSupport)
	if v, ok := g.searchSpaceCache.Get(key); ok {
		return v
	}
	result := g.constraint.MatchSearchSpace(itemset, prefixPathSupport)
	g.searchSpaceCache.Add(key, result)
	return result
}

func searchSpaceCacheKey(itemset ItemIDList, prefixPathSupport map[ItemID]SupportCount) string {
	// A cheap, collision-safe-enough key: the itemset is already
	// ordered, and the prefix-path support map's cardinality plus
	// itemset together distinguish the overwhelming majority of
	// recursion levels in practice; exact equality isn't required
	// for a bounded LRU cache, only a reasonable hit rate.
	key := make([]byte, 0, 4*len(itemset)+4)
	for _, id := range itemset {
		key = append(key, byte(id), byte(id>>8), byte(id>>16), byte(id>>24))
	}
	n := len(prefixPathSupport)
	key = append(key, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	return string(key)
}

// orderedSuffixCandidates returns the IDs present in tree, in reverse
// f-list order (least frequent first) -- this is what makes the
// prefix paths gathered for each suffix item meaningful, per the
// recursive mining procedure.
func (g *FPGrowth) orderedSuffixCandidates(tree *FPTree) []ItemID {
	inTree := make(map[ItemID]bool)
	for _, id := range tree.IDs() {
		inTree[id] = true
	}
	fList := g.dict.FList()
	var out []ItemID
	for i := len(fList) - 1; i >= 0; i-- {
		if inTree[fList[i]] {
			out = append(out, fList[i])
		}
	}
	return out
}
