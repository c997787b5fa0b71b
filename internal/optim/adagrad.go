package optim

import (
	"math"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/jgqwhucs/marian/internal/tensor"
)

// segment key in persisted state files
const adagradGtKey = "adagrad_gt"

// Adagrad scales each coordinate's step by the inverse square root of
// its accumulated squared gradients.
//
// Update rule, per element:
//
//	gt += grad^2
//	param -= eta * grad / (sqrt(gt) + eps)
//
// Reference: Duchi et al., "Adaptive Subgradient Methods for Online
// Learning and Stochastic Optimization" (JMLR 2011).
type Adagrad struct {
	base

	eps float32

	// gt shadows the parameter shard this instance updates. Allocated
	// on the first Update call (or by Load).
	gt *tensor.Buffer
}

// NewAdagrad creates an Adagrad optimizer with eps 1e-8. clipper may
// be nil.
func NewAdagrad(eta float32, clipper Clipper) *Adagrad {
	a := &Adagrad{eps: 1e-8}
	a.base = base{eta: eta, clipper: clipper}
	a.step = a.updateImpl
	a.stats = a
	return a
}

// SetParams re-parses hyperparameters from a positional list: [eps].
func (a *Adagrad) SetParams(values []float32) {
	if len(values) > 0 {
		a.eps = values[0]
	}
}

func (a *Adagrad) updateImpl(params, grads *tensor.Buffer) {
	if a.gt == nil {
		a.gt = tensor.NewBuffer(params.Len(), params.Device())
	}
	p := params.Data()
	g := grads.Data()
	gt := a.gt.Data()
	for i := range p {
		gt[i] += g[i] * g[i]
		p[i] -= a.eta * g[i] / (float32(math.Sqrt(float64(gt[i]))) + a.eps)
	}
}

func (a *Adagrad) resetStats() {
	if a.gt != nil {
		a.gt.Zero()
	}
}

// Save gathers every shard's accumulator, in shard order, into one
// flat sequence and persists it under name. All processes gather;
// only the main process writes.
func (a *Adagrad) Save(name string, peers []Optimizer, gatherFn GatherFunc, mainProcess bool) error {
	getShard := func(shard int) []float32 {
		peer, ok := peerAt(a, peers, shard).(*Adagrad)
		if !ok || peer == nil || peer.gt == nil {
			return nil
		}
		return peer.gt.Data()
	}
	gt, err := gatherFn(getShard)
	if err != nil {
		return errors.Wrapf(err, "gathering adagrad state for %q", name)
	}
	if !mainProcess {
		return nil
	}
	klog.V(1).Infof("saving adagrad state %q: %d values", name, len(gt))
	return a.storeOrDefault().Save(name, map[string][]float32{adagradGtKey: gt})
}

// Load reads the accumulator persisted under name and re-partitions
// it onto the shards described by devices. A shard is either fully
// repopulated or left untouched.
func (a *Adagrad) Load(name string, peers []Optimizer, devices []tensor.DeviceID, scatterFn ScatterFunc) error {
	segments, err := a.storeOrDefault().Load(name)
	if err != nil {
		return errors.Wrapf(err, "loading adagrad state %q", name)
	}
	gt, ok := segments[adagradGtKey]
	if !ok {
		return errors.Wrapf(ErrMissingSegment, "%q in %q", adagradGtKey, name)
	}
	klog.V(1).Infof("loading adagrad state %q: %d values across %d shard(s)", name, len(gt), max(len(devices), 1))

	setShard := func(shard int, values []float32) error {
		peer, ok := peerAt(a, peers, shard).(*Adagrad)
		if !ok || peer == nil {
			return errors.Wrapf(ErrShardMismatch, "shard %d is not an adagrad optimizer", shard)
		}
		device, err := deviceAt(devices, shard)
		if err != nil {
			return err
		}
		return peer.setGt(values, device)
	}
	return scatterFn(gt, setShard)
}

func (a *Adagrad) setGt(values []float32, device tensor.DeviceID) error {
	if a.gt == nil {
		a.gt = tensor.NewBuffer(len(values), device)
	} else if a.gt.Len() != len(values) {
		return errors.Wrapf(ErrStateSize, "shard holds %d values, persisted sub-range has %d",
			a.gt.Len(), len(values))
	}
	a.gt.SetFrom(values)
	return nil
}
