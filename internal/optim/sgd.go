package optim

import "github.com/jgqwhucs/marian/internal/tensor"

// SGD implements plain stochastic gradient descent.
//
// Update rule, per element:
//
//	param -= eta * grad
//
// SGD keeps no auxiliary state: hyperparameter parsing, statistics
// reset, and state save/load are all no-ops.
type SGD struct {
	base
}

// NewSGD creates a plain gradient-descent optimizer. clipper may be
// nil.
func NewSGD(eta float32, clipper Clipper) *SGD {
	s := &SGD{base: base{eta: eta, clipper: clipper}}
	s.step = s.updateImpl
	return s
}

func (s *SGD) updateImpl(params, grads *tensor.Buffer) {
	p := params.Data()
	g := grads.Data()
	for i := range p {
		p[i] -= s.eta * g[i]
	}
}
