// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining

import (
	"sort"

	"github.com/wimleers/fpstream/lib/containers"
)

// ItemsetSupportLookup resolves the support count of an itemset not
// present among the frequent itemsets passed to MineAssociationRules
// -- typically a pattern-tree lookup reaching below the minimum
// support threshold used for that run's frequent-itemset list.
type ItemsetSupportLookup func(ItemIDList) (SupportCount, bool)

// RuleMiner expands frequent itemsets into association rules via
// apriori-gen consequent expansion: start from every 1-item
// consequent, keep only those clearing minimumConfidence, and join
// survivors into longer consequents for another pass.
type RuleMiner struct {
	minimumConfidence    float64
	lookupSupport        ItemsetSupportLookup
	singletonSupport     map[ItemID]SupportCount
	consequentConstraint *Constraints
}

// NewRuleMiner returns a miner that requires confidence at least
// minimumConfidence and, if consequentConstraint is non-nil, a
// consequent matching it. lookupSupport, if non-nil, is consulted for
// an antecedent's support when it isn't among the mined frequent
// itemsets themselves (it occurred, but below the threshold that
// produced that list) -- typically backed by a pattern tree holding
// lower-support history. singletonSupport is the final fallback: the
// minimum per-item global support among the antecedent's items,
// used only when neither the frequent-itemset list nor lookupSupport
// has an exact answer.
func NewRuleMiner(minimumConfidence float64, consequentConstraint *Constraints, lookupSupport ItemsetSupportLookup, singletonSupport map[ItemID]SupportCount) *RuleMiner {
	return &RuleMiner{
		minimumConfidence:    minimumConfidence,
		lookupSupport:        lookupSupport,
		singletonSupport:     singletonSupport,
		consequentConstraint: consequentConstraint,
	}
}

// MineAssociationRules generates every rule antecedent=>consequent
// derivable from frequentItemsets whose confidence clears
// minimumConfidence. Itemsets of size 1 cannot yield a rule and are
// skipped.
func (m *RuleMiner) MineAssociationRules(frequentItemsets []FrequentItemset) []AssociationRule {
	known := make(map[string]SupportCount, len(frequentItemsets))
	for _, fi := range frequentItemsets {
		known[itemsetKey(fi.Itemset)] = fi.Support
	}

	var rules []AssociationRule
	for _, fi := range frequentItemsets {
		if len(fi.Itemset) < 2 {
			continue
		}
		consequents := make([]ItemIDList, len(fi.Itemset))
		for i, id := range fi.Itemset {
			consequents[i] = ItemIDList{id}
		}
		rules = append(rules, m.generateRulesForItemset(fi, consequents, known)...)
	}
	return rules
}

// generateRulesForItemset tests every candidate consequent against
// fi, keeps the ones meeting minimumConfidence, and -- provided any
// survived and the itemset is large enough to support a longer
// consequent -- joins survivors via apriori-gen and recurses.
func (m *RuleMiner) generateRulesForItemset(fi FrequentItemset, consequents []ItemIDList, known map[string]SupportCount) []AssociationRule {
	var rules []AssociationRule
	k := len(fi.Itemset)
	consequentLen := len(consequents[0])

	var surviving []ItemIDList
	for _, consequent := range consequents {
		antecedent := getAntecedent(fi.Itemset, consequent)

		antecedentSupport, ok := known[itemsetKey(antecedent)]
		if !ok && m.lookupSupport != nil {
			antecedentSupport, ok = m.lookupSupport(antecedent)
		}
		if !ok {
			antecedentSupport, ok = m.minSingletonSupport(antecedent)
		}
		if !ok || antecedentSupport == 0 {
			continue
		}

		confidence := float64(fi.Support) / float64(antecedentSupport)
		matchesConsequent := m.consequentConstraint == nil || m.consequentConstraint.MatchItemset(consequent)
		if confidence >= m.minimumConfidence && matchesConsequent {
			rules = append(rules, AssociationRule{
				Antecedent: antecedent,
				Consequent: consequent,
				Support:    fi.Support,
				Confidence: confidence,
			})
			surviving = append(surviving, consequent)
		}
		// A consequent that fails confidence is dropped: any longer
		// consequent built from it would only produce a smaller
		// antecedent, which cannot raise confidence further.
	}

	if len(surviving) > 0 && k > consequentLen+1 {
		candidates := dedupeItemsets(generateCandidateConsequents(surviving))
		if len(candidates) > 0 {
			rules = append(rules, m.generateRulesForItemset(fi, candidates, known)...)
		}
	}
	return rules
}

// minSingletonSupport returns the minimum global support among
// items' own singleton supports, or ok=false if none are known.
func (m *RuleMiner) minSingletonSupport(items ItemIDList) (SupportCount, bool) {
	min := MaxSupport
	found := false
	for _, id := range items {
		if s, ok := m.singletonSupport[id]; ok {
			found = true
			if s < min {
				min = s
			}
		}
	}
	return min, found
}

// getAntecedent returns itemset's items not present in consequent,
// preserving itemset's relative (f-list) order.
func getAntecedent(itemset, consequent ItemIDList) ItemIDList {
	exclude := containers.NewSet[ItemID](consequent...)
	antecedent := make(ItemIDList, 0, len(itemset)-len(consequent))
	for _, id := range itemset {
		if !exclude.Has(id) {
			antecedent = append(antecedent, id)
		}
	}
	return antecedent
}

// generateCandidateConsequents is apriori-gen restricted to
// consequents already known frequent (they're subsequences of an
// already-mined itemset, so no support pruning is needed here): join
// any two same-length itemsets sharing their first len-1 elements
// into one itemset of length+1. Each subset is canonicalized by
// ascending ItemID first, and a pair is only joined in the direction
// a<b, so each unordered pair of subsets produces exactly one
// (already-sorted) candidate instead of both orderings.
func generateCandidateConsequents(subsets []ItemIDList) []ItemIDList {
	if len(subsets) == 0 {
		return nil
	}
	sorted := make([]ItemIDList, len(subsets))
	for i, s := range subsets {
		c := append(ItemIDList(nil), s...)
		sort.Slice(c, func(i, j int) bool { return c[i] < c[j] })
		sorted[i] = c
	}
	allButOne := len(sorted[0]) - 1

	var candidates []ItemIDList
	for _, a := range sorted {
		for _, b := range sorted {
			if !lessItemset(a, b) {
				continue
			}
			if allButOne > 0 {
				mismatch := false
				for i := 0; i < allButOne; i++ {
					if a[i] != b[i] {
						mismatch = true
						break
					}
				}
				if mismatch {
					continue
				}
			}
			candidate := make(ItemIDList, 0, len(a)+1)
			candidate = append(candidate, a...)
			candidate = append(candidate, b[allButOne])
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

// lessItemset reports whether a sorts before b lexicographically by
// ItemID; used to join each unordered pair of subsets exactly once.
func lessItemset(a, b ItemIDList) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// dedupeItemsets removes duplicate itemsets. generateCandidateConsequents
// joins each pair only once, so duplicates appear only when its input
// already repeats a subset.
func dedupeItemsets(itemsets []ItemIDList) []ItemIDList {
	seen := make(map[string]bool, len(itemsets))
	out := make([]ItemIDList, 0, len(itemsets))
	for _, itemset := range itemsets {
		key := itemsetKey(itemset)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, itemset)
	}
	return out
}

// itemsetKey returns a map key uniquely identifying an ordered
// itemset.
func itemsetKey(ids ItemIDList) string {
	b := make([]byte, 0, 4*len(ids))
	for _, id := range ids {
		b = append(b, byte(id), byte(id>>8), byte(id>>16), byte(id>>24))
	}
	return string(b)
}
