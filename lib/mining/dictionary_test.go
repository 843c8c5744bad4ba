// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wimleers/fpstream/lib/mining"
)

func TestDictionaryInternLookupRoundTrip(t *testing.T) {
	t.Parallel()
	dict := mining.NewDictionary()

	id := dict.Intern("A")
	name, ok := dict.Lookup(id)
	assert.True(t, ok)
	assert.Equal(t, mining.ItemName("A"), name)

	// Interning the same name again returns the same ID.
	again := dict.Intern("A")
	assert.Equal(t, id, again)

	_, ok = dict.Lookup(id + 100)
	assert.False(t, ok)
}

func TestDictionaryItemsAliasesInternal(t *testing.T) {
	t.Parallel()
	dict := mining.NewDictionary()
	idA := dict.Intern("A")
	idB := dict.Intern("B")

	items := dict.Items()
	assert.Equal(t, mining.ItemName("A"), items[idA])
	assert.Equal(t, mining.ItemName("B"), items[idB])
	assert.Len(t, items, 2)
}

func TestDictionaryFListFreezeThenAppendOnly(t *testing.T) {
	t.Parallel()
	dict := mining.NewDictionary()
	a := dict.Intern("A")
	b := dict.Intern("B")
	c := dict.Intern("C")

	assert.False(t, dict.FListInitialized())

	// First call builds the f-list: descending support, ties by
	// ascending ItemID.
	dict.UpdateFList(map[mining.ItemID]mining.SupportCount{a: 5, b: 5, c: 10})
	assert.True(t, dict.FListInitialized())
	assert.Equal(t, []mining.ItemID{c, a, b}, dict.FList())

	// A later call with a reordering-implying support map must not
	// reorder already-frozen entries: only genuinely new IDs may be
	// appended, at the tail, still sorted among themselves.
	d := dict.Intern("D")
	dict.UpdateFList(map[mining.ItemID]mining.SupportCount{a: 1, b: 1, c: 1, d: 1000})
	assert.Equal(t, []mining.ItemID{c, a, b, d}, dict.FList())

	posA, ok := dict.FListPosition(a)
	assert.True(t, ok)
	assert.Equal(t, 1, posA)

	_, ok = dict.FListPosition(9999)
	assert.False(t, ok)
}

func TestDictionaryExtendFListNoDuplicates(t *testing.T) {
	t.Parallel()
	dict := mining.NewDictionary()
	a := dict.Intern("A")
	dict.InitializeFList(map[mining.ItemID]mining.SupportCount{a: 3})
	dict.ExtendFList(map[mining.ItemID]mining.SupportCount{a: 999})
	assert.Equal(t, []mining.ItemID{a}, dict.FList(), "re-observing a known ID must not duplicate or reorder it")
}
