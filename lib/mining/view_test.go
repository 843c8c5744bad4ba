// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wimleers/fpstream/lib/mining"
)

func TestCoordinatorRenderRules(t *testing.T) {
	t.Parallel()
	c, err := mining.NewCoordinator(0.4, 0.05)
	require.NoError(t, err)
	require.NoError(t, c.ProcessBatch(scenarioOneTransactions(), 1))

	rules, err := c.MineRules(0, 0, 0.8)
	require.NoError(t, err)

	views := c.RenderRules(rules)
	if assert.Len(t, views, 1) {
		v := views[0]
		assert.Equal(t, []mining.ItemName{"B"}, v.Antecedent)
		assert.Equal(t, []mining.ItemName{"C"}, v.Consequent)
		assert.InDelta(t, 0.8, v.Confidence, 1e-9)
	}

	assert.Equal(t, views[0], c.RenderRule(rules[0]))
}

func TestCoordinatorSnapshotEncodesJSON(t *testing.T) {
	t.Parallel()
	c, err := mining.NewCoordinator(0.4, 0.05)
	require.NoError(t, err)
	require.NoError(t, c.ProcessBatch(scenarioOneTransactions(), 1))

	snap := c.Snapshot()
	assert.NotEmpty(t, snap.Patterns)

	var buf bytes.Buffer
	require.NoError(t, snap.EncodeJSON(&buf))
	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(`{"Patterns":[`)))
	assert.Contains(t, out, `"Itemset"`)
	assert.Contains(t, out, `"Buckets"`)
}

func TestCoordinatorSnapshotEmptyTreeEncodesEmptyArray(t *testing.T) {
	t.Parallel()
	c, err := mining.NewCoordinator(0.4, 0.05)
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Empty(t, snap.Patterns)

	var buf bytes.Buffer
	require.NoError(t, snap.EncodeJSON(&buf))
	assert.Equal(t, `{"Patterns":[]}`, buf.String())
}
