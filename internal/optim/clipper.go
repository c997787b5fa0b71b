package optim

import "github.com/jgqwhucs/marian/internal/tensor"

// Clipper bounds gradient magnitudes before an update step. The
// clipping policy (norm type, threshold) is the implementation's
// concern; this package only guarantees that Clip is invoked at most
// once per Update call and always before the numeric update.
//
// Clip mutates grads in place and must not resize or reorder it.
type Clipper interface {
	Clip(grads *tensor.Buffer)
}
