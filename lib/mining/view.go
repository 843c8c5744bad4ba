// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining

import (
	"io"

	"git.lukeshu.com/go/lowmemjson"
)

// RuleView is the external, name-based rendering of an
// AssociationRule: the external interface describes rules as
// sequences of ItemName, while the internal AssociationRule (and
// everything upstream of it) works in ItemID for speed.
type RuleView struct {
	Antecedent []ItemName
	Consequent []ItemName
	Support    SupportCount
	Confidence float64
}

// RenderRule translates an ID-based AssociationRule into its
// name-based wire form.
func (c *Coordinator) RenderRule(r AssociationRule) RuleView {
	return RuleView{
		Antecedent: c.names(r.Antecedent),
		Consequent: c.names(r.Consequent),
		Support:    r.Support,
		Confidence: r.Confidence,
	}
}

// RenderRules translates a whole slice of rules.
func (c *Coordinator) RenderRules(rules []AssociationRule) []RuleView {
	out := make([]RuleView, len(rules))
	for i, r := range rules {
		out[i] = c.RenderRule(r)
	}
	return out
}

func (c *Coordinator) names(ids ItemIDList) []ItemName {
	out := make([]ItemName, len(ids))
	for i, id := range ids {
		out[i] = c.dict.MustLookup(id)
	}
	return out
}

// ItemsetSnapshot is one pattern-tree node's itemset, named, together
// with its tilted-time window's raw buckets.
type ItemsetSnapshot struct {
	Itemset []ItemName
	Buckets [numBuckets]SupportCount
}

// PatternTreeSnapshot is a flat, name-based export of every itemset
// currently held in a pattern tree, for diagnostics. It has no
// corresponding decode path back into a live PatternTree --
// nodeCount and f-list-position bookkeeping can't be reconstructed
// from a flat list, and persistence across process restarts is out
// of scope for this engine; this exists to inspect a running
// coordinator's state, not to save and restore it.
type PatternTreeSnapshot struct {
	Patterns []ItemsetSnapshot
}

var _ lowmemjson.Encodable = PatternTreeSnapshot{}

// Snapshot exports every non-root node of the pattern tree.
func (c *Coordinator) Snapshot() PatternTreeSnapshot {
	var out PatternTreeSnapshot
	var walk func(node *Node[*TiltedTimeWindow])
	walk = func(node *Node[*TiltedTimeWindow]) {
		if !node.IsRoot() {
			var buckets [numBuckets]SupportCount
			for i := 0; i < numBuckets; i++ {
				buckets[i] = node.Payload.Bucket(i)
			}
			out.Patterns = append(out.Patterns, ItemsetSnapshot{
				Itemset: c.names(PatternForNode(node)),
				Buckets: buckets,
			})
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(c.patternTree.Root())
	return out
}

func (s PatternTreeSnapshot) EncodeJSON(w io.Writer) error {
	if _, err := w.Write([]byte(`{"Patterns":[`)); err != nil {
		return err
	}
	for i, p := range s.Patterns {
		if i > 0 {
			if _, err := w.Write([]byte{','}); err != nil {
				return err
			}
		}
		if err := lowmemjson.NewEncoder(w).Encode(p); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("]}"))
	return err
}
