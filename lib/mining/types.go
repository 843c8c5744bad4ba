// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package mining implements a streaming association-rule mining
// engine: FP-tree construction, FP-growth batch mining, a
// tilted-time window summary, and the FP-Stream incremental pattern
// tree that ties them together.
package mining

import "math"

// ItemID is a dense, process-lifetime identifier for an interned
// item name.
type ItemID uint32

// RootItemID is the sentinel ItemID used for tree roots; it is never
// assigned to a real item.
const RootItemID ItemID = math.MaxUint32

// ItemName is the external, human-readable name of an item. It may
// contain '*' wildcards when used in a Constraints entry.
type ItemName string

// SupportCount is the number of transactions (or, in a TiltedTimeWindow
// bucket, the aggregated count) in which an itemset occurred.
//
// MaxSupport is the largest representable SupportCount; it is used as
// a "no useful bound yet" sentinel by callers that fold over supports.
type SupportCount uint32

const MaxSupport SupportCount = math.MaxUint32

// Item is a single (ItemID, SupportCount) pair. The SupportCount on an
// Item traveling through FP-tree construction is the number of
// transactions that carried it down that particular path, which lets
// conditional FP-trees be built directly from prefix paths without
// re-walking the original transactions.
type Item struct {
	ID      ItemID
	Support SupportCount
}

// Transaction is a set of items observed together. Once optimized (see
// FPTree), it is an ordered sequence: descending f-list rank, ties
// broken by ascending ItemID.
type Transaction []Item

// ItemIDList is an itemset spelled out as a sequence of ItemIDs, in
// f-list order.
type ItemIDList []ItemID

// Equal reports whether two itemsets name the same items in the same
// order.
func (a ItemIDList) Equal(b ItemIDList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the itemset.
func (a ItemIDList) Clone() ItemIDList {
	out := make(ItemIDList, len(a))
	copy(out, a)
	return out
}

// FrequentItemset is an itemset together with the support count with
// which FP-growth found it in a particular tree scan.
type FrequentItemset struct {
	Itemset ItemIDList
	Support SupportCount
}

// AssociationRule is antecedent => consequent, annotated with the
// support of their union and the rule's confidence.
type AssociationRule struct {
	Antecedent ItemIDList
	Consequent ItemIDList
	Support    SupportCount
	Confidence float64
}
