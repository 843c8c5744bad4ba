// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining

import (
	"math"
	"sync"

	"github.com/wimleers/fpstream/lib/containers"
)

// Coordinator is the FP-Stream engine: it drives FP-Growth over
// successive batches, maintains the pattern tree's incremental
// summary of every itemset that was ever potentially frequent, and
// answers rule-mining queries over any bucket range of that summary.
//
// A Coordinator is not safe for concurrent ProcessBatch calls; it
// refuses a second call while the first is still mining (there is no
// queue -- see ConcurrentBatchError).
type Coordinator struct {
	minSupport      float64
	maxSupportError float64

	dict                      *Dictionary
	frequentItemsetConstraint *Constraints
	ruleConsequentConstraint  *Constraints

	patternTree      *PatternTree
	batchSizes       *TiltedTimeWindow
	currentBatchID   uint32
	initialBatchDone bool

	supersetsBeingCalculated containers.Set[string]

	mu sync.Mutex
}

// NewCoordinator returns an empty coordinator requiring
// 0 < maxSupportError <= minSupport <= 1.
func NewCoordinator(minSupport, maxSupportError float64) (*Coordinator, error) {
	if !(minSupport > 0 && minSupport <= 1) {
		return nil, &InvalidParameterError{Param: "minSupport", Reason: "must be in (0,1]"}
	}
	if !(maxSupportError > 0 && maxSupportError <= minSupport) {
		return nil, &InvalidParameterError{Param: "maxSupportError", Reason: "must be in (0,minSupport]"}
	}
	return &Coordinator{
		minSupport:                minSupport,
		maxSupportError:           maxSupportError,
		dict:                      NewDictionary(),
		frequentItemsetConstraint: NewConstraints(),
		ruleConsequentConstraint:  NewConstraints(),
		patternTree:               NewPatternTree(),
		batchSizes:                NewTiltedTimeWindow(),
		supersetsBeingCalculated:  containers.NewSet[string](),
	}, nil
}

// SetFrequentItemsetConstraint adds a constraint entry restricting
// which itemsets FP-Growth emits as candidates.
func (c *Coordinator) SetFrequentItemsetConstraint(name ItemName, typ ConstraintType) {
	c.frequentItemsetConstraint.Add(name, typ)
}

// SetRuleConsequentConstraint adds a constraint entry restricting
// which itemsets may appear as a rule's consequent. Since a
// consequent must itself have been mined as a frequent itemset, this
// also registers the same entry as a frequent-itemset constraint.
func (c *Coordinator) SetRuleConsequentConstraint(name ItemName, typ ConstraintType) {
	c.ruleConsequentConstraint.Add(name, typ)
	c.frequentItemsetConstraint.Add(name, typ)
}

// ProcessBatch mines transactions and folds the results into the
// pattern tree. eventsPerTransaction adjusts the batch's effective
// size (a batch whose transactions each bundle several underlying
// events is sized accordingly) before it is used to derive this
// batch's absolute support threshold.
func (c *Coordinator) ProcessBatch(transactions [][]ItemName, eventsPerTransaction float64) error {
	if !c.mu.TryLock() {
		return &ConcurrentBatchError{}
	}
	defer c.mu.Unlock()

	c.currentBatchID++
	adjustedSize := float64(len(transactions)) / eventsPerTransaction
	c.batchSizes.AppendQuarter(SupportCount(adjustedSize), c.currentBatchID)

	absSupport := SupportCount(math.Ceil(c.maxSupportError * adjustedSize))
	fpg := NewFPGrowth(c.dict, c.frequentItemsetConstraint, absSupport)

	if !c.initialBatchDone {
		var collected []FrequentItemset
		fpg.RunStreaming(transactions, &initialBatchCollector{out: &collected})
		for _, fi := range collected {
			c.patternTree.AddPattern(fi, c.currentBatchID)
		}
		c.initialBatchDone = true
		return nil
	}

	c.patternTree.NextQuarter()
	c.supersetsBeingCalculated.Insert(itemsetKey(nil))
	fpg.RunStreaming(transactions, c)
	return nil
}

// initialBatchCollector records every itemset FP-Growth emits,
// unfiltered by constraints, and always continues exploring --
// the first batch has no pattern tree yet to stagger against, so
// everything frequent enough to be emitted is seeded directly.
type initialBatchCollector struct {
	out *[]FrequentItemset
}

func (b *initialBatchCollector) OnEmit(fi FrequentItemset, matchesConstraints bool, condTree *FPTree) bool {
	*b.out = append(*b.out, fi)
	return true
}

func (b *initialBatchCollector) OnBranchDone(ItemIDList) {}

// OnEmit implements Visitor; it is processFrequentItemset from the
// FP-Stream algorithm.
func (c *Coordinator) OnEmit(fi FrequentItemset, matchesConstraints bool, condTree *FPTree) bool {
	if node := c.patternTree.GetPatternNode(fi.Itemset); node != nil {
		node = c.patternTree.AddPattern(fi, c.currentBatchID)

		if g := c.calculateDroppableTail(node.Payload); g.OK {
			node.Payload.DropTail(g.Val)
		}

		// Type-II pruning: an empty TTW or a nil conditional tree
		// (the search space was already ruled out) means no superset
		// of this itemset can be worth exploring.
		if node.Payload.IsEmpty() || condTree == nil {
			return false
		}
		c.supersetsBeingCalculated.Insert(itemsetKey(fi.Itemset))
		return true
	}

	// Pattern absent: keep it only if it might still be needed, either
	// because it matches the constraints outright or because its
	// superset (condTree != nil) may need this antecedent's count for
	// confidence computation later.
	if matchesConstraints || condTree != nil {
		c.patternTree.AddPattern(fi, c.currentBatchID)
	}

	// Type-I pruning: we never request continued exploration for a
	// pattern that wasn't already in the tree.
	return false
}

// OnBranchDone implements Visitor; it is branchCompleted from the
// FP-Stream algorithm.
func (c *Coordinator) OnBranchDone(itemset ItemIDList) {
	c.supersetsBeingCalculated.Delete(itemsetKey(itemset))
	if len(c.supersetsBeingCalculated) == 0 {
		c.updateUnaffectedNodes(c.patternTree.Root())
	}
}

// updateUnaffectedNodes walks the pattern tree post-order, catching
// every node FP-Growth did not touch this batch up with a zero
// quarter, tail-pruning it, and removing it outright if it is now a
// leaf with an empty window.
func (c *Coordinator) updateUnaffectedNodes(node *Node[*TiltedTimeWindow]) {
	for _, child := range node.Children {
		c.updateUnaffectedNodes(child)
	}
	if node.IsRoot() {
		return
	}
	if node.Payload.LastUpdate() == c.currentBatchID {
		return
	}

	node.Payload.AppendQuarter(0, c.currentBatchID)
	if g := c.calculateDroppableTail(node.Payload); g.OK {
		node.Payload.DropTail(g.Val)
	}
	if len(node.Children) == 0 && node.Payload.IsEmpty() {
		c.patternTree.RemovePattern(node)
	}
}

// calculateDroppableTail implements the FP-Stream tail-pruning test:
// the oldest granularity boundary whose whole tail has fallen, and is
// certain to remain, below the support thresholds that would keep it
// worth retaining. The result is absent when no tail may be dropped.
func (c *Coordinator) calculateDroppableTail(window *TiltedTimeWindow) containers.Optional[Granularity] {
	oldest := window.OldestBucketFilled()
	if oldest < 0 {
		return containers.Optional[Granularity]{}
	}

	l := -1
	for i := oldest; i >= 0; i-- {
		support := window.Bucket(i)
		if support == BucketUnused {
			continue
		}
		batchSize := c.batchSizes.Bucket(i)
		if batchSize == BucketUnused {
			batchSize = 0
		}
		threshold := SupportCount(math.Ceil(c.minSupport * float64(batchSize)))
		if support >= threshold {
			break
		}
		l = i
	}
	if l == -1 {
		return containers.Optional[Granularity]{}
	}

	m := -1
	var cumulativeSupport, cumulativeBatchSize SupportCount
	for i := oldest; i >= l; i-- {
		support := window.Bucket(i)
		if support == BucketUnused {
			support = 0
		}
		batchSize := c.batchSizes.Bucket(i)
		if batchSize == BucketUnused {
			batchSize = 0
		}
		cumulativeSupport += support
		cumulativeBatchSize += batchSize

		threshold := SupportCount(math.Ceil(c.maxSupportError * float64(cumulativeBatchSize)))
		if cumulativeSupport < threshold {
			m = i
		}
	}
	if m == -1 {
		return containers.Optional[Granularity]{}
	}

	return containers.Optional[Granularity]{OK: true, Val: granularityForBucket(m)}
}

// MineRules extracts association rules from every itemset in the
// pattern tree whose support over [from,to] exceeds this
// coordinator's minSupport (scaled to the range's absolute batch
// size) and meets minConfidence, honoring the rule-consequent
// constraint on the consequent side.
func (c *Coordinator) MineRules(from, to int, minConfidence float64) ([]AssociationRule, error) {
	if !(from >= 0 && from <= to && to < numBuckets) {
		return nil, &InvalidParameterError{Param: "from/to", Reason: "require 0 <= from <= to < 72"}
	}
	if !(minConfidence > 0 && minConfidence <= 1) {
		return nil, &InvalidParameterError{Param: "minConfidence", Reason: "must be in (0,1]"}
	}

	for id, name := range c.dict.Items() {
		c.ruleConsequentConstraint.Preprocess(name, id)
	}

	rangeBatchSize := c.batchSizes.SupportForRange(from, to)
	minSupportAbsolute := SupportCount(math.Ceil(c.minSupport * float64(rangeBatchSize)))

	frequentItemsets := c.patternTree.GetFrequentItemsetsForRange(minSupportAbsolute, c.frequentItemsetConstraint, from, to)

	singletonSupport := make(map[ItemID]SupportCount, len(c.dict.Items()))
	for id := range c.dict.Items() {
		if opt := c.patternTree.GetPatternSupport(ItemIDList{id}); opt.OK {
			singletonSupport[id] = opt.Val.SupportForRange(from, to)
		}
	}

	lookupSupport := func(itemset ItemIDList) (SupportCount, bool) {
		opt := c.patternTree.GetPatternSupport(itemset)
		if !opt.OK {
			return 0, false
		}
		return opt.Val.SupportForRange(from, to), true
	}

	miner := NewRuleMiner(minConfidence, c.ruleConsequentConstraint, lookupSupport, singletonSupport)
	idRules := miner.MineAssociationRules(frequentItemsets)

	rules := make([]AssociationRule, len(idRules))
	for i, r := range idRules {
		rules[i] = AssociationRule{
			Antecedent: r.Antecedent,
			Consequent: r.Consequent,
			Support:    r.Support,
			Confidence: r.Confidence,
		}
	}
	return rules, nil
}

// ItemName resolves id to its interned name, for callers (the CLI)
// rendering AssociationRule's ID-based antecedent/consequent.
func (c *Coordinator) ItemName(id ItemID) ItemName {
	return c.dict.MustLookup(id)
}
