// Package tensor provides the flat device-buffer model shared between
// the training system and the optimizers.
//
// A Buffer is one contiguous float32 sequence resident on a single
// device shard. Parameter and gradient buffers are owned by the
// surrounding training system; the optimizers read and mutate their
// values in place but never resize or reallocate them. Optimizers
// allocate Buffers only for their own auxiliary state.
package tensor

import "fmt"

// Buffer is a flat float32 buffer on one device shard.
type Buffer struct {
	data   []float32
	device DeviceID
}

// NewBuffer allocates a zero-initialized buffer of n elements on the
// given device.
func NewBuffer(n int, device DeviceID) *Buffer {
	if n < 0 {
		panic(fmt.Sprintf("tensor.NewBuffer: negative length %d", n))
	}
	return &Buffer{
		data:   make([]float32, n),
		device: device,
	}
}

// FromSlice allocates a buffer on the given device holding a copy of
// values.
func FromSlice(values []float32, device DeviceID) *Buffer {
	b := NewBuffer(len(values), device)
	copy(b.data, values)
	return b
}

// Len returns the number of elements.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Device returns the device shard this buffer resides on.
func (b *Buffer) Device() DeviceID {
	return b.device
}

// Data returns the backing slice. Mutations are visible to every
// holder of the buffer.
func (b *Buffer) Data() []float32 {
	return b.data
}

// ToSlice returns a copy of the buffer's values.
func (b *Buffer) ToSlice() []float32 {
	out := make([]float32, len(b.data))
	copy(out, b.data)
	return out
}

// SetFrom overwrites the buffer with values. The lengths must match.
func (b *Buffer) SetFrom(values []float32) {
	if len(values) != len(b.data) {
		panic(fmt.Sprintf("tensor.Buffer.SetFrom: length mismatch: buffer %d, values %d",
			len(b.data), len(values)))
	}
	copy(b.data, values)
}

// Zero resets every element to 0.
func (b *Buffer) Zero() {
	for i := range b.data {
		b.data[i] = 0
	}
}

// Fill sets every element to v.
func (b *Buffer) Fill(v float32) {
	for i := range b.data {
		b.data[i] = v
	}
}

// Clone returns a deep copy on the same device.
func (b *Buffer) Clone() *Buffer {
	return FromSlice(b.data, b.device)
}

// Slice returns a view of length elements starting at offset. The
// view shares the backing storage with b.
func (b *Buffer) Slice(offset, length int) *Buffer {
	if offset < 0 || length < 0 || offset+length > len(b.data) {
		panic(fmt.Sprintf("tensor.Buffer.Slice: range [%d:%d] out of bounds for length %d",
			offset, offset+length, len(b.data)))
	}
	return &Buffer{
		data:   b.data[offset : offset+length],
		device: b.device,
	}
}

// String returns a short description for debugging.
func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer(%d floats on %s)", len(b.data), b.device)
}
