// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wimleers/fpstream/lib/mining"
)

func TestNodeAddChildAndLookup(t *testing.T) {
	t.Parallel()
	root := mining.NewNode[int](mining.RootItemID, 0)
	assert.True(t, root.IsRoot())
	assert.Nil(t, root.Child(1))

	child := mining.NewNode[int](1, 10)
	root.AddChild(child)
	assert.Same(t, child, root.Child(1))
	assert.Same(t, root, child.Parent)
	assert.False(t, child.IsRoot())
}

func TestNodePathToRootAndDepth(t *testing.T) {
	t.Parallel()
	root := mining.NewNode[int](mining.RootItemID, 0)
	a := mining.NewNode[int](1, 0)
	b := mining.NewNode[int](2, 0)
	root.AddChild(a)
	a.AddChild(b)

	assert.Equal(t, 0, root.Depth())
	assert.Equal(t, 1, a.Depth())
	assert.Equal(t, 2, b.Depth())

	assert.Equal(t, mining.ItemIDList{2, 1}, b.PathToRoot())
}

func TestNodeCount(t *testing.T) {
	t.Parallel()
	root := mining.NewNode[int](mining.RootItemID, 0)
	a := mining.NewNode[int](1, 0)
	b := mining.NewNode[int](2, 0)
	c := mining.NewNode[int](3, 0)
	root.AddChild(a)
	root.AddChild(b)
	a.AddChild(c)

	assert.Equal(t, 4, root.Count())
	assert.Equal(t, 2, a.Count())
	assert.Equal(t, 1, b.Count())
}

func TestNodeWalkPrune(t *testing.T) {
	t.Parallel()
	root := mining.NewNode[int](mining.RootItemID, 0)
	a := mining.NewNode[int](1, 0)
	b := mining.NewNode[int](2, 0)
	root.AddChild(a)
	a.AddChild(b)

	var visited []mining.ItemID
	root.Walk(func(n *mining.Node[int]) bool {
		visited = append(visited, n.Item)
		return n.Item != 1 // prune below 'a'
	})
	assert.Equal(t, []mining.ItemID{mining.RootItemID, 1}, visited)
}
