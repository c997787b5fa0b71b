package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgqwhucs/marian/internal/optim"
	"github.com/jgqwhucs/marian/internal/tensor"
)

// savedAdagradGt round-trips the accumulator through a store to
// observe it without reaching into the optimizer.
func savedAdagradGt(t *testing.T, opt *optim.Adagrad, shards int) []float32 {
	t.Helper()
	store := newMemStore()
	opt.SetStore(store)
	require.NoError(t, opt.Save("probe", nil, optim.ConcatGather(shards), true))
	return store.files["probe"]["adagrad_gt"]
}

func TestAdagrad_Scenario(t *testing.T) {
	// eta=0.1, eps=1e-8, single parameter at 1.0, gradient 2.0 for
	// three consecutive steps.
	opt := optim.NewAdagrad(0.1, nil)
	opt.SetParams([]float32{1e-8})
	params := tensor.FromSlice([]float32{1}, cpu0)
	grads := tensor.FromSlice([]float32{2}, cpu0)

	var values []float32
	var decreases []float64
	prev := float64(params.Data()[0])
	for step := 0; step < 3; step++ {
		opt.Update(params, grads)
		cur := float64(params.Data()[0])
		values = append(values, params.Data()[0])
		decreases = append(decreases, prev-cur)
		prev = cur

		if step == 0 {
			assert.InDelta(t, 4.0, savedAdagradGt(t, opt, 1)[0], 1e-6, "gt after step 1")
		}
	}
	assert.InDelta(t, 12.0, savedAdagradGt(t, opt, 1)[0], 1e-5, "gt after step 3")

	// Parameter strictly decreases, and each step's decrease strictly
	// shrinks as the accumulator grows.
	for i := 0; i < len(decreases); i++ {
		assert.Greater(t, decreases[i], 0.0, "step %d must decrease the parameter", i+1)
		if i > 0 {
			assert.Less(t, decreases[i], decreases[i-1], "step %d decrease must shrink", i+1)
		}
	}
	assert.InDelta(t, 1-0.1*2/(2+1e-8), float64(values[0]), 1e-6)
}

func TestAdagrad_AccumulatorMonotonic(t *testing.T) {
	opt := optim.NewAdagrad(0.01, nil)
	params := tensor.NewBuffer(5, cpu0)
	grads := tensor.FromSlice([]float32{1, -2, 0.5, -0.25, 3}, cpu0)

	var prevGt []float32
	for step := 0; step < 4; step++ {
		opt.Update(params, grads)
		gt := savedAdagradGt(t, opt, 1)
		if prevGt != nil {
			for i := range gt {
				assert.GreaterOrEqual(t, gt[i], prevGt[i], "gt[%d] at step %d", i, step+1)
			}
		}
		prevGt = gt
	}
}

func TestAdagrad_ResetMatchesFreshOptimizer(t *testing.T) {
	start := []float32{0.5, -1, 2}
	grads := tensor.FromSlice([]float32{0.3, -0.7, 1.1}, cpu0)

	warm := optim.NewAdagrad(0.1, nil)
	warmParams := tensor.FromSlice(start, cpu0)
	for step := 0; step < 5; step++ {
		warm.Update(warmParams, grads)
	}
	warm.ActAfterEpoch(&optim.TrainingState{Eta: 0.1, Reset: true})

	fresh := optim.NewAdagrad(0.1, nil)
	warmParams.SetFrom(start)
	freshParams := tensor.FromSlice(start, cpu0)

	warm.Update(warmParams, grads)
	fresh.Update(freshParams, grads)

	assert.Equal(t, freshParams.Data(), warmParams.Data(),
		"post-reset step must match a fresh optimizer's first step")
}

func TestAdagrad_SaveBeforeAnyUpdateFails(t *testing.T) {
	opt := optim.NewAdagrad(0.1, nil)
	opt.SetStore(newMemStore())

	err := opt.Save("empty", nil, optim.ConcatGather(1), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, optim.ErrNoState)
}

func TestAdagrad_SaveSkipsWriteOffMainProcess(t *testing.T) {
	store := newMemStore()
	opt := optim.NewAdagrad(0.1, nil)
	opt.SetStore(store)
	params := tensor.NewBuffer(4, cpu0)
	grads := tensor.FromSlice([]float32{1, 1, 1, 1}, cpu0)
	opt.Update(params, grads)

	require.NoError(t, opt.Save("secondary", nil, optim.ConcatGather(1), false))
	assert.Empty(t, store.files, "non-main process must gather but not write")
}

func TestAdagrad_SaveLoadRoundTrip_AnyPartition(t *testing.T) {
	const dim = 12
	grads := tensor.NewBuffer(dim, cpu0)
	for i := range grads.Data() {
		grads.Data()[i] = float32(math.Sin(float64(i) * 1.3))
	}

	store := newMemStore()
	donor := optim.NewAdagrad(0.05, nil)
	donor.SetStore(store)
	params := tensor.NewBuffer(dim, cpu0)
	for step := 0; step < 3; step++ {
		donor.Update(params, grads)
	}
	require.NoError(t, donor.Save("gt", nil, optim.ConcatGather(1), true))
	saved := store.files["gt"]["adagrad_gt"]
	require.Len(t, saved, dim)

	for _, lengths := range [][]int{{12}, {6, 6}, {3, 5, 4}, {1, 11}} {
		shards := len(lengths)
		peers := make([]optim.Optimizer, shards)
		for i := range peers {
			peers[i] = optim.NewAdagrad(0.05, nil)
			peers[i].SetStore(store)
		}
		loader := peers[0].(*optim.Adagrad)
		require.NoError(t, loader.Load("gt", peers, cpuDevices(shards), optim.ShardScatter(lengths)))

		// Re-gather from the restored shards: must be bit-identical.
		restore := newMemStore()
		loader.SetStore(restore)
		require.NoError(t, loader.Save("check", peers, optim.ConcatGather(shards), true))
		assert.Equal(t, saved, restore.files["check"]["adagrad_gt"], "partition %v", lengths)
	}
}

func TestAdagrad_LoadTotalLengthMismatchFailsHard(t *testing.T) {
	store := newMemStore()
	store.files["bad"] = map[string][]float32{"adagrad_gt": make([]float32, 7)}

	opt := optim.NewAdagrad(0.1, nil)
	opt.SetStore(store)
	err := opt.Load("bad", nil, cpuDevices(1), optim.ShardScatter([]int{8}))
	require.Error(t, err)
	assert.ErrorIs(t, err, optim.ErrStateSize)
}

func TestAdagrad_LoadShardLengthMismatchFailsHard(t *testing.T) {
	store := newMemStore()
	store.files["bad"] = map[string][]float32{"adagrad_gt": make([]float32, 3)}

	// Optimizer already tracking a 4-element shard.
	opt := optim.NewAdagrad(0.1, nil)
	opt.SetStore(store)
	params := tensor.NewBuffer(4, cpu0)
	grads := tensor.NewBuffer(4, cpu0)
	opt.Update(params, grads)

	err := opt.Load("bad", nil, cpuDevices(1), optim.ShardScatter([]int{3}))
	require.Error(t, err)
	assert.ErrorIs(t, err, optim.ErrStateSize)
}

func TestAdagrad_LoadMissingSegment(t *testing.T) {
	store := newMemStore()
	store.files["odd"] = map[string][]float32{"something_else": {1}}

	opt := optim.NewAdagrad(0.1, nil)
	opt.SetStore(store)
	err := opt.Load("odd", nil, cpuDevices(1), optim.ShardScatter([]int{1}))
	require.Error(t, err)
	assert.ErrorIs(t, err, optim.ErrMissingSegment)
}

func TestAdagrad_SetParamsPositional(t *testing.T) {
	opt := optim.NewAdagrad(1, nil)
	opt.SetParams([]float32{0.5, 99, 42}) // extras ignored

	// With eps=0.5 and gradient 1 from zero state: step = 1/(1+0.5).
	params := tensor.FromSlice([]float32{0}, cpu0)
	grads := tensor.FromSlice([]float32{1}, cpu0)
	opt.Update(params, grads)
	assert.InDelta(t, -1.0/1.5, params.Data()[0], 1e-6)

	// Empty list keeps the current value.
	opt.SetParams(nil)
	params.SetFrom([]float32{0})
	opt.ActAfterEpoch(&optim.TrainingState{Eta: 1, Reset: true})
	opt.Update(params, grads)
	assert.InDelta(t, -1.0/1.5, params.Data()[0], 1e-6)
}
