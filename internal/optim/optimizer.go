// Package optim implements the gradient-based parameter-update engine:
// plain gradient descent, Adagrad, and Adam, each with its own
// auxiliary numeric state, a uniform gradient-clipping hook, the
// training life-cycle observer protocol, and a distributed save/load
// protocol for auxiliary state sharded across devices and processes.
package optim

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/jgqwhucs/marian/internal/serialization"
	"github.com/jgqwhucs/marian/internal/tensor"
)

// Graph is the slice of the computation-graph surface the optimizer
// consumes: access to the current parameter and gradient buffers.
// Errors (e.g. buffers not yet materialized) propagate unchanged.
type Graph interface {
	Params() (*tensor.Buffer, error)
	Grads() (*tensor.Buffer, error)
}

// StateStore persists named flat float32 sequences durably. The
// format and location are the store's concern; serialization.FileStore
// is the default implementation.
type StateStore interface {
	Save(name string, segments map[string][]float32) error
	Load(name string) (map[string][]float32, error)
}

// Optimizer is implemented by all update algorithms.
type Optimizer interface {
	TrainingObserver

	// Update applies one optimization step to params given grads.
	// When a clipper is configured, grads is clipped in place first.
	// Both buffers are mutated in place, never resized.
	Update(params, grads *tensor.Buffer)

	// UpdateGraph resolves the current parameter and gradient buffers
	// from g and applies one optimization step.
	UpdateGraph(g Graph) error

	// SetParams re-parses algorithm hyperparameters from a positional
	// list. The mapping is algorithm-specific; extra values are
	// ignored and missing trailing values keep their defaults.
	SetParams(values []float32)

	// Eta returns the current learning rate.
	Eta() float32

	// SetStore replaces the durable store used by Save and Load.
	SetStore(store StateStore)

	// Save persists the auxiliary state of this optimizer and its
	// peers (one per device shard, in shard order) under the logical
	// name. Every process participates in the gather; only the one
	// with mainProcess set performs the durable write. A no-op for
	// algorithms without auxiliary state.
	Save(name string, peers []Optimizer, gatherFn GatherFunc, mainProcess bool) error

	// Load restores the auxiliary state persisted under the logical
	// name, re-partitioning it onto the shards described by devices.
	// A no-op for algorithms without auxiliary state.
	Load(name string, peers []Optimizer, devices []tensor.DeviceID, scatterFn ScatterFunc) error
}

// base carries the state and behavior shared by all algorithms:
// learning rate, the clipping hook, the observer protocol, and no-op
// persistence defaults for stateless algorithms.
type base struct {
	eta     float32
	clipper Clipper
	store   StateStore

	// set by the concrete algorithm at construction
	step  func(params, grads *tensor.Buffer)
	stats interface{ resetStats() }
}

// Update clips grads (when a clipper is configured) and applies the
// algorithm's update rule. Clipping always precedes the update.
func (b *base) Update(params, grads *tensor.Buffer) {
	if params.Len() != grads.Len() {
		panic(fmt.Sprintf("optim: parameter/gradient length mismatch: %d vs %d",
			params.Len(), grads.Len()))
	}
	if b.clipper != nil {
		b.clipper.Clip(grads)
	}
	b.step(params, grads)
}

// UpdateGraph resolves buffers from g and delegates to Update.
func (b *base) UpdateGraph(g Graph) error {
	params, err := g.Params()
	if err != nil {
		return errors.Wrap(err, "resolving parameter buffer")
	}
	grads, err := g.Grads()
	if err != nil {
		return errors.Wrap(err, "resolving gradient buffer")
	}
	b.Update(params, grads)
	return nil
}

// Eta returns the current learning rate.
func (b *base) Eta() float32 { return b.eta }

// SetStore replaces the durable store used by Save and Load.
func (b *base) SetStore(store StateStore) { b.store = store }

func (b *base) storeOrDefault() StateStore {
	if b.store != nil {
		return b.store
	}
	return defaultStore
}

// defaultStore resolves logical names as filesystem paths.
var defaultStore StateStore = serialization.NewFileStore()

// Init adopts the scheduled learning rate before training begins.
func (b *base) Init(state *TrainingState) { b.eta = state.Eta }

// ActAfterLoaded adopts the scheduled learning rate after a
// checkpoint reload.
func (b *base) ActAfterLoaded(state *TrainingState) { b.eta = state.Eta }

// ActAfterEpoch adopts the learning rate and honors a reset request.
func (b *base) ActAfterEpoch(state *TrainingState) { b.observe(state) }

// ActAfterBatches adopts the learning rate and honors a reset request.
func (b *base) ActAfterBatches(state *TrainingState) { b.observe(state) }

// ActAfterStalled adopts the learning rate and honors a reset request.
func (b *base) ActAfterStalled(state *TrainingState) { b.observe(state) }

func (b *base) observe(state *TrainingState) {
	b.eta = state.Eta
	if state.Reset && b.stats != nil {
		b.stats.resetStats()
	}
}

// SetParams is a no-op for algorithms without hyperparameters.
func (b *base) SetParams([]float32) {}

// Save is a no-op for algorithms without auxiliary state.
func (b *base) Save(string, []Optimizer, GatherFunc, bool) error { return nil }

// Load is a no-op for algorithms without auxiliary state.
func (b *base) Load(string, []Optimizer, []tensor.DeviceID, ScatterFunc) error { return nil }

// peerAt returns the optimizer holding the given shard. peers lists
// every cooperating per-device optimizer in shard order; an empty
// list means self holds the only shard.
func peerAt(self Optimizer, peers []Optimizer, shard int) Optimizer {
	if len(peers) == 0 {
		if shard == 0 {
			return self
		}
		return nil
	}
	if shard < 0 || shard >= len(peers) {
		return nil
	}
	return peers[shard]
}

// deviceAt returns the device handle for the given shard, defaulting
// to CPU:0 when no enumeration was supplied.
func deviceAt(devices []tensor.DeviceID, shard int) (tensor.DeviceID, error) {
	if len(devices) == 0 {
		if shard == 0 {
			return tensor.DeviceID{Kind: tensor.CPU, Index: 0}, nil
		}
		return tensor.DeviceID{}, errors.Wrapf(ErrShardMismatch, "no device for shard %d", shard)
	}
	if shard < 0 || shard >= len(devices) {
		return tensor.DeviceID{}, errors.Wrapf(ErrShardMismatch, "no device for shard %d", shard)
	}
	return devices[shard], nil
}
