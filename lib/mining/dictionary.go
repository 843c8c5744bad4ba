// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining

import (
	"sort"

	"github.com/wimleers/fpstream/lib/maps"
)

// Dictionary interns item names to dense IDs and maintains the f-list:
// the global ordering of all known items by descending cumulative
// support. The f-list is fixed by InitializeFList after the first
// batch and only ever grows afterward via ExtendFList -- reordering it
// would invalidate every path already recorded in a pattern tree built
// against the old order.
type Dictionary struct {
	nameToID map[ItemName]ItemID
	idToName map[ItemID]ItemName
	nextID   ItemID

	fList      []ItemID
	fListBuilt bool
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		nameToID: make(map[ItemName]ItemID),
		idToName: make(map[ItemID]ItemName),
	}
}

// Intern returns the ID for name, assigning a fresh one on first use.
func (d *Dictionary) Intern(name ItemName) ItemID {
	if id, ok := d.nameToID[name]; ok {
		return id
	}
	id := d.nextID
	d.nextID++
	d.nameToID[name] = id
	d.idToName[id] = name
	return id
}

// Lookup returns the name for id, and whether it is known.
func (d *Dictionary) Lookup(id ItemID) (ItemName, bool) {
	name, ok := d.idToName[id]
	return name, ok
}

// MustLookup returns the name for id, or "" if unknown. Convenience for
// call sites (rule rendering) that only deal in already-interned IDs.
func (d *Dictionary) MustLookup(id ItemID) ItemName {
	return d.idToName[id]
}

// Items returns every (ID, name) pair interned so far. Callers must
// not mutate the result; it aliases the dictionary's internal map.
func (d *Dictionary) Items() map[ItemID]ItemName {
	return d.idToName
}

// FListInitialized reports whether InitializeFList has been called.
func (d *Dictionary) FListInitialized() bool {
	return d.fListBuilt
}

// FList returns the current f-list: every ID observed so far, ordered
// by descending cumulative support (ties by ascending ID), frozen from
// the first call to InitializeFList and only appended to thereafter.
func (d *Dictionary) FList() []ItemID {
	return d.fList
}

// FListPosition returns the index of id within the f-list, and whether
// id is present. Lower index = higher rank (more support).
func (d *Dictionary) FListPosition(id ItemID) (int, bool) {
	for i, fid := range d.fList {
		if fid == id {
			return i, true
		}
	}
	return -1, false
}

// InitializeFList builds the f-list for the first time from a
// per-batch cumulative support map, ordering by descending support
// with ties broken by ascending ItemID. It is a no-op if the f-list
// has already been built. Within this package it is reached only
// through UpdateFList, which FPGrowth.scan calls once per batch.
func (d *Dictionary) InitializeFList(support map[ItemID]SupportCount) {
	if d.fListBuilt {
		return
	}
	d.fList = sortByDescendingSupport(support)
	d.fListBuilt = true
}

// UpdateFList is the single entry point a batch miner uses to fold a
// batch's per-item support counts into the f-list: it initializes the
// f-list on the first call and only ever extends it (never reorders
// it) on every call after that. Centralizing both cases behind one
// method is what makes the freeze-then-append-only discipline a
// structural guarantee instead of a convention callers must remember.
func (d *Dictionary) UpdateFList(support map[ItemID]SupportCount) {
	if !d.fListBuilt {
		d.InitializeFList(support)
		return
	}
	d.ExtendFList(support)
}

// ExtendFList appends IDs present in support but not yet in the
// f-list, in descending-support order (ties by ascending ID), to the
// tail of the existing f-list. It never reorders existing entries:
// that is what keeps pattern-tree paths from earlier batches valid.
func (d *Dictionary) ExtendFList(support map[ItemID]SupportCount) {
	if !d.fListBuilt {
		d.InitializeFList(support)
		return
	}
	known := make(map[ItemID]bool, len(d.fList))
	for _, id := range d.fList {
		known[id] = true
	}
	fresh := make(map[ItemID]SupportCount)
	for id, s := range support {
		if !known[id] {
			fresh[id] = s
		}
	}
	if len(fresh) == 0 {
		return
	}
	d.fList = append(d.fList, sortByDescendingSupport(fresh)...)
}

// sortByDescendingSupport orders ids by descending support[id], ties
// broken by ascending ItemID -- not implied by the textbook FP-Growth
// presentation, but preserved for determinism.
func sortByDescendingSupport(support map[ItemID]SupportCount) []ItemID {
	ids := maps.Keys(support)
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if support[a] != support[b] {
			return support[a] > support[b]
		}
		return a < b
	})
	return ids
}
