package optim

import "github.com/pkg/errors"

// Algorithm names accepted by New.
const (
	AlgorithmSGD     = "sgd"
	AlgorithmAdagrad = "adagrad"
	AlgorithmAdam    = "adam"
)

// New constructs an update algorithm by name and applies the
// positional hyperparameter list. clipper may be nil and params may
// be empty. An unrecognized algorithm name is a construction-time
// error.
func New(algorithm string, eta float32, clipper Clipper, params []float32) (Optimizer, error) {
	var opt Optimizer
	switch algorithm {
	case AlgorithmSGD:
		opt = NewSGD(eta, clipper)
	case AlgorithmAdagrad:
		opt = NewAdagrad(eta, clipper)
	case AlgorithmAdam:
		opt = NewAdam(eta, clipper)
	default:
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "%q", algorithm)
	}
	opt.SetParams(params)
	return opt, nil
}
