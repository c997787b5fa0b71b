// Copyright 2025 The Marian Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the flat device-buffer
// model shared between the training system and the optimizers.
//
// A Buffer is one contiguous float32 sequence resident on a single
// device shard, addressed by a DeviceID. Parameter and gradient
// buffers are owned by the training system; optimizers mutate their
// values in place but never resize them.
//
// Example:
//
//	params := tensor.NewBuffer(1024, tensor.DeviceID{Kind: tensor.CPU})
//	params.Fill(0.1)
package tensor

import (
	"github.com/jgqwhucs/marian/internal/tensor"
)

// Type aliases for public API

// Buffer is a flat float32 buffer on one device shard.
type Buffer = tensor.Buffer

// Device represents the compute device kind a buffer resides on.
type Device = tensor.Device

// DeviceID addresses one device shard.
type DeviceID = tensor.DeviceID

// Supported compute devices.
const (
	CPU    = tensor.CPU
	CUDA   = tensor.CUDA
	Vulkan = tensor.Vulkan
	Metal  = tensor.Metal
	WebGPU = tensor.WebGPU
)

// NewBuffer allocates a zero-initialized buffer of n elements on the
// given device.
func NewBuffer(n int, device DeviceID) *Buffer {
	return tensor.NewBuffer(n, device)
}

// FromSlice allocates a buffer on the given device holding a copy of
// values.
func FromSlice(values []float32, device DeviceID) *Buffer {
	return tensor.FromSlice(values, device)
}
