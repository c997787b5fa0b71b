package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgqwhucs/marian/internal/tensor"
)

var cpu0 = tensor.DeviceID{Kind: tensor.CPU, Index: 0}

func TestBuffer_NewIsZeroed(t *testing.T) {
	b := tensor.NewBuffer(4, cpu0)
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, []float32{0, 0, 0, 0}, b.Data())
	assert.Equal(t, cpu0, b.Device())
}

func TestBuffer_FromSliceCopies(t *testing.T) {
	src := []float32{1, 2, 3}
	b := tensor.FromSlice(src, cpu0)
	src[0] = 99
	assert.Equal(t, []float32{1, 2, 3}, b.Data())
}

func TestBuffer_SetFromAndToSlice(t *testing.T) {
	b := tensor.NewBuffer(3, cpu0)
	b.SetFrom([]float32{4, 5, 6})
	out := b.ToSlice()
	out[0] = 0
	assert.Equal(t, []float32{4, 5, 6}, b.Data(), "ToSlice must copy")

	assert.Panics(t, func() { b.SetFrom([]float32{1}) })
}

func TestBuffer_ZeroAndFill(t *testing.T) {
	b := tensor.FromSlice([]float32{1, 2}, cpu0)
	b.Zero()
	assert.Equal(t, []float32{0, 0}, b.Data())
	b.Fill(7)
	assert.Equal(t, []float32{7, 7}, b.Data())
}

func TestBuffer_CloneIsDeep(t *testing.T) {
	b := tensor.FromSlice([]float32{1, 2}, cpu0)
	c := b.Clone()
	c.Data()[0] = 99
	assert.Equal(t, []float32{1, 2}, b.Data())
	assert.Equal(t, cpu0, c.Device())
}

func TestBuffer_SliceIsView(t *testing.T) {
	b := tensor.FromSlice([]float32{1, 2, 3, 4, 5}, cpu0)
	view := b.Slice(1, 3)
	require.Equal(t, 3, view.Len())
	assert.Equal(t, []float32{2, 3, 4}, view.Data())

	view.Data()[0] = 20
	assert.Equal(t, float32(20), b.Data()[1], "view shares backing storage")

	assert.Panics(t, func() { b.Slice(3, 3) })
	assert.Panics(t, func() { b.Slice(-1, 2) })
}

func TestBuffer_NegativeLengthPanics(t *testing.T) {
	assert.Panics(t, func() { tensor.NewBuffer(-1, cpu0) })
}

func TestDeviceID_String(t *testing.T) {
	assert.Equal(t, "CPU:0", cpu0.String())
	assert.Equal(t, "WebGPU:2", tensor.DeviceID{Kind: tensor.WebGPU, Index: 2}.String())
}
