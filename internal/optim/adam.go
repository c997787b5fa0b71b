package optim

import (
	"math"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/jgqwhucs/marian/internal/tensor"
)

// segment keys in persisted state files
const (
	adamMtKey = "adam_mt"
	adamVtKey = "adam_vt"
	adamTKey  = "adam_t"
)

// Adam implements adaptive moment estimation with bias correction and
// optional decoupled weight decay (AdamW when weightDecay > 0).
//
// Update rule, per call: t += 1; then per element:
//
//	mt = beta1*mt + (1-beta1)*grad
//	vt = beta2*vt + (1-beta2)*grad^2
//	mHat = mt / (1 - beta1^t)
//	vHat = vt / (1 - beta2^t)
//	param -= eta * mHat / (sqrt(vHat) + eps) + eta * weightDecay * param
//
// The weight-decay term is additive and decoupled from the
// gradient-based step; it is disabled by default.
//
// References: Kingma & Ba, "Adam: A Method for Stochastic
// Optimization" (2014); Loshchilov & Hutter, "Decoupled Weight Decay
// Regularization" (2017).
type Adam struct {
	base

	beta1       float32
	beta2       float32
	eps         float32
	weightDecay float32

	// t counts Update calls, not shards: every per-device instance
	// advances it in lockstep, so the bias-correction factors agree
	// across shards.
	t int

	// mt and vt shadow the parameter shard this instance updates.
	// Allocated together on the first Update call (or by Load).
	mt *tensor.Buffer
	vt *tensor.Buffer
}

// NewAdam creates an Adam optimizer with beta1 0.9, beta2 0.999,
// eps 1e-8, and weight decay disabled. clipper may be nil.
func NewAdam(eta float32, clipper Clipper) *Adam {
	a := &Adam{beta1: 0.9, beta2: 0.999, eps: 1e-8}
	a.base = base{eta: eta, clipper: clipper}
	a.step = a.updateImpl
	a.stats = a
	return a
}

// SetParams re-parses hyperparameters from a positional list:
// [beta1, beta2, eps, weightDecay], each independently optional.
func (a *Adam) SetParams(values []float32) {
	if len(values) > 0 {
		a.beta1 = values[0]
	}
	if len(values) > 1 {
		a.beta2 = values[1]
	}
	if len(values) > 2 {
		a.eps = values[2]
	}
	if len(values) > 3 {
		a.weightDecay = values[3]
	}
}

// StepCount returns the number of Update calls applied so far.
func (a *Adam) StepCount() int { return a.t }

func (a *Adam) updateImpl(params, grads *tensor.Buffer) {
	if a.mt == nil {
		a.mt = tensor.NewBuffer(params.Len(), params.Device())
		a.vt = tensor.NewBuffer(params.Len(), params.Device())
	}
	a.t++

	// bias-correction denominators, once per step
	biasCorrection1 := float32(1 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1 - math.Pow(float64(a.beta2), float64(a.t)))

	p := params.Data()
	g := grads.Data()
	mt := a.mt.Data()
	vt := a.vt.Data()
	for i := range p {
		gi := g[i]
		mt[i] = a.beta1*mt[i] + (1-a.beta1)*gi
		vt[i] = a.beta2*vt[i] + (1-a.beta2)*gi*gi
		mHat := mt[i] / biasCorrection1
		vHat := vt[i] / biasCorrection2
		p[i] -= a.eta*mHat/(float32(math.Sqrt(float64(vHat)))+a.eps) + a.eta*a.weightDecay*p[i]
	}
}

func (a *Adam) resetStats() {
	if a.mt != nil {
		a.mt.Zero()
	}
	if a.vt != nil {
		a.vt.Zero()
	}
	a.t = 0
}

// Save gathers every shard's moment estimates into flat sequences and
// persists them under name together with the step counter. The step
// counter is replicated identically on every shard and persisted
// once. All processes gather; only the main process writes.
func (a *Adam) Save(name string, peers []Optimizer, gatherFn GatherFunc, mainProcess bool) error {
	shardOf := func(shard int) *Adam {
		peer, ok := peerAt(a, peers, shard).(*Adam)
		if !ok || peer == nil {
			return nil
		}
		return peer
	}
	mt, err := gatherFn(func(shard int) []float32 {
		peer := shardOf(shard)
		if peer == nil || peer.mt == nil {
			return nil
		}
		return peer.mt.Data()
	})
	if err != nil {
		return errors.Wrapf(err, "gathering adam first moments for %q", name)
	}
	vt, err := gatherFn(func(shard int) []float32 {
		peer := shardOf(shard)
		if peer == nil || peer.vt == nil {
			return nil
		}
		return peer.vt.Data()
	})
	if err != nil {
		return errors.Wrapf(err, "gathering adam second moments for %q", name)
	}
	if !mainProcess {
		return nil
	}
	klog.V(1).Infof("saving adam state %q: %d values per moment, t=%d", name, len(mt), a.t)
	return a.storeOrDefault().Save(name, map[string][]float32{
		adamMtKey: mt,
		adamVtKey: vt,
		adamTKey:  {float32(a.t)},
	})
}

// Load reads the moment estimates persisted under name and
// re-partitions them onto the shards described by devices. The step
// counter is restored identically on every shard. The persisted
// sequences are validated before any shard is touched.
func (a *Adam) Load(name string, peers []Optimizer, devices []tensor.DeviceID, scatterFn ScatterFunc) error {
	segments, err := a.storeOrDefault().Load(name)
	if err != nil {
		return errors.Wrapf(err, "loading adam state %q", name)
	}
	mt, ok := segments[adamMtKey]
	if !ok {
		return errors.Wrapf(ErrMissingSegment, "%q in %q", adamMtKey, name)
	}
	vt, ok := segments[adamVtKey]
	if !ok {
		return errors.Wrapf(ErrMissingSegment, "%q in %q", adamVtKey, name)
	}
	tSeg, ok := segments[adamTKey]
	if !ok || len(tSeg) != 1 {
		return errors.Wrapf(ErrMissingSegment, "%q in %q", adamTKey, name)
	}
	if len(mt) != len(vt) {
		return errors.Wrapf(ErrStateSize, "%q: first moments hold %d values, second moments %d",
			name, len(mt), len(vt))
	}
	klog.V(1).Infof("loading adam state %q: %d values per moment across %d shard(s), t=%d",
		name, len(mt), max(len(devices), 1), int(tSeg[0]))

	setShard := func(moment func(peer *Adam) **tensor.Buffer) ShardSetFunc {
		return func(shard int, values []float32) error {
			peer, ok := peerAt(a, peers, shard).(*Adam)
			if !ok || peer == nil {
				return errors.Wrapf(ErrShardMismatch, "shard %d is not an adam optimizer", shard)
			}
			device, err := deviceAt(devices, shard)
			if err != nil {
				return err
			}
			return peer.setMoment(moment(peer), values, device)
		}
	}
	if err := scatterFn(mt, setShard(func(peer *Adam) **tensor.Buffer { return &peer.mt })); err != nil {
		return errors.Wrapf(err, "scattering adam first moments for %q", name)
	}
	if err := scatterFn(vt, setShard(func(peer *Adam) **tensor.Buffer { return &peer.vt })); err != nil {
		return errors.Wrapf(err, "scattering adam second moments for %q", name)
	}

	// replicate the step counter to every shard
	t := int(tSeg[0])
	a.t = t
	for _, peer := range peers {
		if adam, ok := peer.(*Adam); ok {
			adam.t = t
		}
	}
	return nil
}

func (a *Adam) setMoment(moment **tensor.Buffer, values []float32, device tensor.DeviceID) error {
	if *moment == nil {
		*moment = tensor.NewBuffer(len(values), device)
	} else if (*moment).Len() != len(values) {
		return errors.Wrapf(ErrStateSize, "shard holds %d values, persisted sub-range has %d",
			(*moment).Len(), len(values))
	}
	(*moment).SetFrom(values)
	return nil
}
