// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package mining_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wimleers/fpstream/lib/mining"
)

func TestNewCoordinatorValidatesParameters(t *testing.T) {
	t.Parallel()
	_, err := mining.NewCoordinator(0, 0.05)
	assert.Error(t, err, "minSupport must be > 0")

	_, err = mining.NewCoordinator(1.5, 0.05)
	assert.Error(t, err, "minSupport must be <= 1")

	_, err = mining.NewCoordinator(0.4, 0)
	assert.Error(t, err, "maxSupportError must be > 0")

	_, err = mining.NewCoordinator(0.4, 0.5)
	assert.Error(t, err, "maxSupportError must be <= minSupport")

	c, err := mining.NewCoordinator(0.4, 0.05)
	assert.NoError(t, err)
	assert.NotNil(t, c)
}

func TestCoordinatorProcessBatchRejectsConcurrentCalls(t *testing.T) {
	t.Parallel()
	c, err := mining.NewCoordinator(0.4, 0.05)
	require.NoError(t, err)
	require.NoError(t, c.ProcessBatch(scenarioOneTransactions(), 1))

	const n = 16
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = c.ProcessBatch([][]mining.ItemName{{"A"}}, 1)
		}(i)
	}
	close(start)
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			var concurrent *mining.ConcurrentBatchError
			assert.ErrorAs(t, err, &concurrent)
			rejected++
		}
	}
	assert.GreaterOrEqual(t, succeeded, 1, "at least one concurrent call must win the lock")
	assert.Equal(t, n, succeeded+rejected)
}

func TestCoordinatorScenarioOneAndTwoEndToEnd(t *testing.T) {
	t.Parallel()
	c, err := mining.NewCoordinator(0.4, 0.05)
	require.NoError(t, err)

	require.NoError(t, c.ProcessBatch(scenarioOneTransactions(), 1))

	rules, err := c.MineRules(0, 0, 0.8)
	require.NoError(t, err)

	if assert.Len(t, rules, 1) {
		r := rules[0]
		assert.Equal(t, mining.ItemName("B"), c.ItemName(r.Antecedent[0]))
		assert.Equal(t, mining.ItemName("C"), c.ItemName(r.Consequent[0]))
		assert.InDelta(t, 0.8, r.Confidence, 1e-9)
		assert.Equal(t, mining.SupportCount(4), r.Support)
	}
}

func TestCoordinatorMineRulesValidatesBounds(t *testing.T) {
	t.Parallel()
	c, err := mining.NewCoordinator(0.4, 0.05)
	require.NoError(t, err)
	require.NoError(t, c.ProcessBatch(scenarioOneTransactions(), 1))

	_, err = c.MineRules(-1, 0, 0.8)
	assert.Error(t, err, "from must be >= 0")

	_, err = c.MineRules(5, 2, 0.8)
	assert.Error(t, err, "from must be <= to")

	_, err = c.MineRules(0, 100, 0.8)
	assert.Error(t, err, "to must stay within the 72-bucket window")

	_, err = c.MineRules(0, 0, 0)
	assert.Error(t, err, "minConfidence must be > 0")

	_, err = c.MineRules(0, 0, 1.1)
	assert.Error(t, err, "minConfidence must be <= 1")
}

// TestCoordinatorSurvivesFourBatchSequence reproduces the four-batch
// sequence from the pattern-tree-stability scenario end to end,
// checking only what is observable through the exported API: every
// batch is accepted, and a query against the resulting tree still
// succeeds. The exact node count (asserted at 17 in the source
// scenario) depends on internal pruning state not reachable from
// outside the package; see TestCoordinatorFListFrozenAcrossBatches in
// the whitebox test file for the f-list-freeze invariant the scenario
// relies on.
func TestCoordinatorSurvivesFourBatchSequence(t *testing.T) {
	t.Parallel()
	c, err := mining.NewCoordinator(0.4, 0.05)
	require.NoError(t, err)

	require.NoError(t, c.ProcessBatch(scenarioOneTransactions(), 1))

	batchTwo := make([][]mining.ItemName, 0, 23)
	for i := 0; i < 2; i++ {
		batchTwo = append(batchTwo, []mining.ItemName{"A"})
	}
	batchTwo = append(batchTwo, []mining.ItemName{"C"})
	for i := 0; i < 20; i++ {
		batchTwo = append(batchTwo, []mining.ItemName{"C", "A", "D"})
	}
	require.NoError(t, c.ProcessBatch(batchTwo, 1))

	batchThree := make([][]mining.ItemName, 0, 20)
	for i := 0; i < 20; i++ {
		batchThree = append(batchThree, []mining.ItemName{"A", "B"})
	}
	require.NoError(t, c.ProcessBatch(batchThree, 1))

	batchFour := make([][]mining.ItemName, 0, 20)
	for i := 0; i < 20; i++ {
		batchFour = append(batchFour, []mining.ItemName{"A", "D"})
	}
	require.NoError(t, c.ProcessBatch(batchFour, 1))

	_, err = c.MineRules(0, 3, 0.5)
	assert.NoError(t, err)
}
