// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining

import (
	"strings"

	"github.com/wimleers/fpstream/lib/containers"
)

// ConstraintType names one of the four ways a constraint entry can
// bind an itemset.
type ConstraintType int

const (
	PositiveMatchAll ConstraintType = iota
	PositiveMatchAny
	NegativeMatchAll
	NegativeMatchAny
)

// nonWildcardCategory is the shared bucket every exact-match (no '*')
// constraint entry of a given type is folded into. Wildcard entries
// each keep their own category, since two different wildcards can
// match disjoint ID sets that must each independently satisfy a
// *Any/*All rule.
const nonWildcardCategory = "non-wildcards"

// Constraints holds raw (name, type) constraint entries plus, after
// preprocessing, the concrete ItemIDs each entry resolved to.
type Constraints struct {
	raw map[ConstraintType][]ItemName

	// preprocessed[type][category] is the set of ItemIDs currently
	// known to satisfy that category's entry.
	preprocessed map[ConstraintType]map[ItemName]containers.Set[ItemID]
}

// NewConstraints returns an empty constraint set.
func NewConstraints() *Constraints {
	return &Constraints{
		raw:          make(map[ConstraintType][]ItemName),
		preprocessed: make(map[ConstraintType]map[ItemName]containers.Set[ItemID]),
	}
}

// Empty reports whether any raw constraint entries have been added.
func (c *Constraints) Empty() bool {
	for _, entries := range c.raw {
		if len(entries) > 0 {
			return false
		}
	}
	return true
}

// Add records a raw constraint entry. name may contain '*' wildcards.
func (c *Constraints) Add(name ItemName, typ ConstraintType) {
	c.raw[typ] = append(c.raw[typ], name)
}

// Preprocess is called once per interned item: it tests name against
// every constraint entry of every type and, on a match, records id
// under that entry's category.
func (c *Constraints) Preprocess(name ItemName, id ItemID) {
	for typ := PositiveMatchAll; typ <= NegativeMatchAny; typ++ {
		for _, entry := range c.raw[typ] {
			switch {
			case string(entry) == string(name):
				c.addPreprocessed(typ, nonWildcardCategory, id)
			case strings.Contains(string(entry), "*"):
				if wildcardMatch(string(entry), string(name)) {
					c.addPreprocessed(typ, entry, id)
				}
			}
		}
	}
}

func (c *Constraints) addPreprocessed(typ ConstraintType, category ItemName, id ItemID) {
	byCategory, ok := c.preprocessed[typ]
	if !ok {
		byCategory = make(map[ItemName]containers.Set[ItemID])
		c.preprocessed[typ] = byCategory
	}
	set, ok := byCategory[category]
	if !ok {
		set = containers.NewSet[ItemID]()
		byCategory[category] = set
	}
	set.Insert(id)
}

// Remove erases id from every category of every constraint type, used
// when an item is found to be globally infrequent.
func (c *Constraints) Remove(id ItemID) {
	for _, byCategory := range c.preprocessed {
		for _, set := range byCategory {
			set.Delete(id)
		}
	}
}

// MatchItemset reports whether itemset satisfies every (type,
// category) constraint group.
func (c *Constraints) MatchItemset(itemset ItemIDList) bool {
	present := containers.NewSet[ItemID](itemset...)
	for typ := PositiveMatchAll; typ <= NegativeMatchAny; typ++ {
		for _, ids := range c.preprocessed[typ] {
			if !matchItemsetGroup(present, typ, ids) {
				return false
			}
		}
	}
	return true
}

func matchItemsetGroup(present containers.Set[ItemID], typ ConstraintType, ids containers.Set[ItemID]) bool {
	for id := range ids {
		switch typ {
		case PositiveMatchAll:
			if !present.Has(id) {
				return false
			}
		case PositiveMatchAny:
			if present.Has(id) {
				return true
			}
		case NegativeMatchAll:
			if present.Has(id) {
				return false
			}
		case NegativeMatchAny:
			if !present.Has(id) {
				return true
			}
		}
	}
	switch typ {
	case PositiveMatchAll, NegativeMatchAll:
		return true
	default: // PositiveMatchAny, NegativeMatchAny
		return false
	}
}

// MatchSearchSpace reports whether the search space rooted at
// frequentItemset could still, once extended with some subset of the
// prefix paths described by prefixPathSupport, satisfy every
// constraint group. An ID counts as "present" if it is already in the
// prefix or has positive support among the prefix paths.
func (c *Constraints) MatchSearchSpace(frequentItemset ItemIDList, prefixPathSupport map[ItemID]SupportCount) bool {
	present := containers.NewSet[ItemID](frequentItemset...)
	for typ := PositiveMatchAll; typ <= NegativeMatchAny; typ++ {
		for _, ids := range c.preprocessed[typ] {
			if !matchSearchSpaceGroup(present, prefixPathSupport, typ, ids) {
				return false
			}
		}
	}
	return true
}

func matchSearchSpaceGroup(present containers.Set[ItemID], prefixPathSupport map[ItemID]SupportCount, typ ConstraintType, ids containers.Set[ItemID]) bool {
	reachable := func(id ItemID) bool {
		return present.Has(id) || prefixPathSupport[id] > 0
	}
	for id := range ids {
		switch typ {
		case PositiveMatchAll:
			if !reachable(id) {
				return false
			}
		case PositiveMatchAny:
			if reachable(id) {
				return true
			}
		case NegativeMatchAll:
			if reachable(id) {
				return false
			}
		case NegativeMatchAny:
			if !reachable(id) {
				return true
			}
		}
	}
	switch typ {
	case PositiveMatchAll, NegativeMatchAll:
		return true
	default:
		return false
	}
}

// wildcardMatch implements shell-style '*' matching: split pattern on
// '*', require the fragments to appear as in-order, non-overlapping
// substrings of s, anchored at the start and end when the pattern
// doesn't begin/end with '*'. Case-sensitive. No regexp import.
func wildcardMatch(pattern, s string) bool {
	fragments := strings.Split(pattern, "*")

	if len(fragments) == 1 {
		return pattern == s
	}

	pos := 0
	for i, frag := range fragments {
		switch {
		case i == 0:
			if !strings.HasPrefix(s, frag) {
				return false
			}
			pos = len(frag)
		case i == len(fragments)-1:
			if !strings.HasSuffix(s[pos:], frag) {
				return false
			}
		case frag == "":
			// consecutive '*'s; nothing to anchor.
		default:
			idx := strings.Index(s[pos:], frag)
			if idx == -1 {
				return false
			}
			pos += idx + len(frag)
		}
	}
	return true
}
