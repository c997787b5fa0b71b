// Copyright 2025 The Marian Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/jgqwhucs/marian/internal/optim"
	"github.com/jgqwhucs/marian/internal/tensor"
)

// Optimizer is the interface implemented by all update algorithms.
type Optimizer = optim.Optimizer

// Clipper bounds gradient magnitudes in place before an update step.
type Clipper = optim.Clipper

// Graph resolves the current parameter and gradient buffers.
type Graph = optim.Graph

// StateStore persists named flat float32 sequences durably.
type StateStore = optim.StateStore

// TrainingState carries the training-loop state an optimizer observes.
type TrainingState = optim.TrainingState

// TrainingObserver reacts to training life-cycle events.
type TrainingObserver = optim.TrainingObserver

// Config is the optimizer slice of a training configuration file.
type Config = optim.Config

// Distributed state codec function types.
type (
	ShardGetFunc = optim.ShardGetFunc
	ShardSetFunc = optim.ShardSetFunc
	GatherFunc   = optim.GatherFunc
	ScatterFunc  = optim.ScatterFunc
)

// Update algorithms.
type (
	SGD     = optim.SGD
	Adagrad = optim.Adagrad
	Adam    = optim.Adam
)

// Algorithm names accepted by New.
const (
	AlgorithmSGD     = optim.AlgorithmSGD
	AlgorithmAdagrad = optim.AlgorithmAdagrad
	AlgorithmAdam    = optim.AlgorithmAdam
)

// Common errors.
var (
	ErrUnknownAlgorithm = optim.ErrUnknownAlgorithm
	ErrNoState          = optim.ErrNoState
	ErrStateSize        = optim.ErrStateSize
	ErrMissingSegment   = optim.ErrMissingSegment
	ErrShardMismatch    = optim.ErrShardMismatch
)

// New constructs an update algorithm by name.
//
// Example:
//
//	optimizer, err := optim.New(optim.AlgorithmAdam, 0.001, nil,
//	    []float32{0.9, 0.999, 1e-8, 0.01}) // beta1, beta2, eps, weightDecay
func New(algorithm string, eta float32, clipper Clipper, params []float32) (Optimizer, error) {
	return optim.New(algorithm, eta, clipper, params)
}

// NewSGD creates a plain gradient-descent optimizer.
func NewSGD(eta float32, clipper Clipper) *SGD {
	return optim.NewSGD(eta, clipper)
}

// NewAdagrad creates an Adagrad optimizer with eps 1e-8.
func NewAdagrad(eta float32, clipper Clipper) *Adagrad {
	return optim.NewAdagrad(eta, clipper)
}

// NewAdam creates an Adam optimizer with beta1 0.9, beta2 0.999,
// eps 1e-8, and weight decay disabled.
func NewAdam(eta float32, clipper Clipper) *Adam {
	return optim.NewAdam(eta, clipper)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config { return optim.DefaultConfig() }

// LoadConfig reads a YAML optimizer configuration from path.
func LoadConfig(path string) (Config, error) { return optim.LoadConfig(path) }

// FromConfig builds an optimizer from cfg.
func FromConfig(cfg Config, clipper Clipper) (Optimizer, error) {
	return optim.FromConfig(cfg, clipper)
}

// ConcatGather returns a GatherFunc for a process holding all shards
// locally.
func ConcatGather(shards int) GatherFunc { return optim.ConcatGather(shards) }

// ShardScatter returns a ScatterFunc splitting a sequence into the
// given per-shard lengths.
func ShardScatter(lengths []int) ScatterFunc { return optim.ShardScatter(lengths) }

// EvenScatter returns a ScatterFunc splitting a sequence into
// near-equal shards: ceil(n/shards) values each, remainder on the
// last.
func EvenScatter(shards int) ScatterFunc { return optim.EvenScatter(shards) }

// CPUDevices returns a device enumeration of n CPU shards, the layout
// used when all shards live in host memory.
func CPUDevices(n int) []tensor.DeviceID {
	devices := make([]tensor.DeviceID, n)
	for i := range devices {
		devices[i] = tensor.DeviceID{Kind: tensor.CPU, Index: i}
	}
	return devices
}
