// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wimleers/fpstream/lib/mining"
)

// scenarioOneTransactions is the ten-transaction batch used throughout
// the fixtures below: A appears in 6, B in 5, C in 8, D in 4, E in 1.
func scenarioOneTransactions() [][]mining.ItemName {
	return [][]mining.ItemName{
		{"A", "B", "C", "D"},
		{"A", "B"},
		{"A", "C"},
		{"A", "B", "C"},
		{"A", "D"},
		{"A", "C", "D"},
		{"C", "B"},
		{"B", "C"},
		{"C", "D"},
		{"C", "E"},
	}
}

func itemsetOf(t *testing.T, dict *mining.Dictionary, names ...mining.ItemName) mining.ItemIDList {
	t.Helper()
	out := make(mining.ItemIDList, len(names))
	for i, n := range names {
		out[i] = dict.Intern(n)
	}
	return out
}

func TestFPGrowthRunFindsExpectedFrequentItemsets(t *testing.T) {
	t.Parallel()
	dict := mining.NewDictionary()
	g := mining.NewFPGrowth(dict, nil, 4)

	got := g.Run(scenarioOneTransactions())

	want := map[string]mining.SupportCount{
		"D":   4,
		"B":   5,
		"C,B": 4,
		"A":   6,
		"C,A": 4,
		"C":   8,
	}
	assert.Len(t, got, len(want))

	byKey := make(map[string]mining.SupportCount, len(got))
	for _, fi := range got {
		names := make([]byte, 0)
		for i, id := range fi.Itemset {
			if i > 0 {
				names = append(names, ',')
			}
			name, _ := dict.Lookup(id)
			names = append(names, []byte(name)...)
		}
		byKey[string(names)] = fi.Support
	}
	assert.Equal(t, want, byKey)
}

func TestFPGrowthRunRespectsFrequentItemsetConstraint(t *testing.T) {
	t.Parallel()
	dict := mining.NewDictionary()
	c := mining.NewConstraints()
	c.Add("E", mining.NegativeMatchAll)
	g := mining.NewFPGrowth(dict, c, 1)

	got := g.Run([][]mining.ItemName{{"A", "E"}, {"A"}, {"A", "E"}})
	for _, fi := range got {
		for _, id := range fi.Itemset {
			name, _ := dict.Lookup(id)
			assert.NotEqual(t, mining.ItemName("E"), name, "constraint excludes E from every emitted itemset")
		}
	}
}

func TestFPGrowthScanDropsBelowMinSupportAndUpdatesFList(t *testing.T) {
	t.Parallel()
	dict := mining.NewDictionary()
	g := mining.NewFPGrowth(dict, nil, 2)

	g.Run([][]mining.ItemName{{"A"}, {"A"}, {"B"}})

	fList := dict.FList()
	a := dict.Intern("A")
	assert.Contains(t, fList, a)
	b := dict.Intern("B")
	assert.NotContains(t, fList, b, "B's single occurrence is below minSupport and must not enter the f-list")
}
