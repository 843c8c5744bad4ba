// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wimleers/fpstream/lib/mining"
)

func TestFPTreeInsertAndSupportOfItem(t *testing.T) {
	t.Parallel()
	tree := mining.NewFPTree(nil)

	tree.Insert(mining.Transaction{{ID: 1, Support: 1}, {ID: 2, Support: 1}})
	tree.Insert(mining.Transaction{{ID: 1, Support: 1}})

	assert.Equal(t, mining.SupportCount(2), tree.SupportOfItem(1))
	assert.Equal(t, mining.SupportCount(1), tree.SupportOfItem(2))
	assert.True(t, tree.HasItemPath(1))
	assert.False(t, tree.HasItemPath(99))
}

func TestFPTreeSharedPrefixMerges(t *testing.T) {
	t.Parallel()
	tree := mining.NewFPTree(nil)
	tree.Insert(mining.Transaction{{ID: 1, Support: 1}, {ID: 2, Support: 1}})
	tree.Insert(mining.Transaction{{ID: 1, Support: 1}, {ID: 2, Support: 1}})

	root := tree.Root()
	assert.Equal(t, 1, len(root.Children), "two identical paths must share one child, not fork")
	child := root.Child(1)
	assert.Equal(t, mining.SupportCount(2), child.Payload)
}

func TestFPTreePrefixPaths(t *testing.T) {
	t.Parallel()
	tree := mining.NewFPTree(nil)
	// root -> 1(2) -> 2(2) -> 3(1)
	//                 \-> (nothing else)
	tree.Insert(mining.Transaction{{ID: 1, Support: 1}, {ID: 2, Support: 1}, {ID: 3, Support: 1}})
	tree.Insert(mining.Transaction{{ID: 1, Support: 1}, {ID: 2, Support: 1}})

	paths := tree.PrefixPaths(3)
	if assert.Len(t, paths, 1) {
		assert.Equal(t, mining.Transaction{{ID: 1, Support: 1}, {ID: 2, Support: 1}}, paths[0])
	}

	// Item 1 is a root-level node; its prefix path is empty and
	// therefore excluded entirely.
	assert.Empty(t, tree.PrefixPaths(1))
}

func TestNewConditionalFPTreeFiltersBelowMinSupport(t *testing.T) {
	t.Parallel()
	paths := []mining.Transaction{
		{{ID: 1, Support: 3}, {ID: 2, Support: 3}},
		{{ID: 1, Support: 1}},
	}
	rank := func(id mining.ItemID) int { return int(id) }
	cond := mining.NewConditionalFPTree(paths, 4, rank, nil)

	// item 1 totals 3+1=4 (survives, >=4); item 2 totals 3 (dropped).
	assert.True(t, cond.HasItemPath(1))
	assert.False(t, cond.HasItemPath(2))
	assert.Equal(t, mining.SupportCount(4), cond.SupportOfItem(1))
}

func TestSupportCountsForPrefixPaths(t *testing.T) {
	t.Parallel()
	paths := []mining.Transaction{
		{{ID: 1, Support: 2}, {ID: 2, Support: 2}},
		{{ID: 1, Support: 3}},
	}
	totals := mining.SupportCountsForPrefixPaths(paths)
	assert.Equal(t, mining.SupportCount(5), totals[1])
	assert.Equal(t, mining.SupportCount(2), totals[2])
}
