// Copyright 2025 The Marian Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the public API for the gradient-based
// parameter-update engine.
//
// This package provides:
//   - Optimizer interface: clip-then-update stepping, positional
//     hyperparameters, and distributed auxiliary-state save/load
//   - SGD: plain gradient descent
//   - Adagrad: per-coordinate adaptive scaling
//   - Adam: momentum with adaptive scaling, bias correction, and
//     optional decoupled weight decay
//   - TrainingObserver: the life-cycle protocol connecting optimizers
//     to the training loop (learning-rate changes, resets)
//   - Gather/Scatter codec: persistence of auxiliary state partitioned
//     across device shards and cooperating processes
//
// Example usage:
//
//	// Create an optimizer from an algorithm name.
//	optimizer, err := optim.New("adam", 0.001, nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Training loop: gradients arrive from the training system.
//	for step := 0; step < steps; step++ {
//	    computeGradients(params, grads)
//	    optimizer.Update(params, grads)
//	}
//
//	// Persist auxiliary state (single process, single shard).
//	err = optimizer.Save("model.optimizer", nil, optim.ConcatGather(1), true)
//
// To resume, construct a fresh optimizer and call Load with the
// device layout and a matching scatter function.
package optim
