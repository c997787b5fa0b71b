package optim

import "github.com/pkg/errors"

// Distributed state codec: auxiliary optimizer state is partitioned
// across device shards the same way parameters are. For durable
// storage it is gathered, in shard order, into one flat sequence; on
// reload that sequence is scattered back into matching shards. The
// gather and scatter functions are supplied by the communication
// layer (single-process helpers below); the sequences they produce
// must not outlive the call.

// ShardGetFunc returns the auxiliary-state values currently held by
// the given device shard, or nil if that shard has no state.
type ShardGetFunc func(shard int) []float32

// ShardSetFunc writes one shard's sub-range of a flat persisted
// sequence back into that shard's auxiliary state.
type ShardSetFunc func(shard int, values []float32) error

// GatherFunc collects every shard's auxiliary state, in shard order,
// into one flat sequence.
type GatherFunc func(getFn ShardGetFunc) ([]float32, error)

// ScatterFunc splits a flat persisted sequence into per-shard
// sub-ranges and hands each to setFn.
type ScatterFunc func(values []float32, setFn ShardSetFunc) error

// ConcatGather returns a GatherFunc for a process holding all shards
// locally: it concatenates shards 0..shards-1.
func ConcatGather(shards int) GatherFunc {
	return func(getFn ShardGetFunc) ([]float32, error) {
		var total []float32
		for shard := 0; shard < shards; shard++ {
			values := getFn(shard)
			if values == nil {
				return nil, errors.Wrapf(ErrNoState, "shard %d", shard)
			}
			total = append(total, values...)
		}
		return total, nil
	}
}

// ShardScatter returns a ScatterFunc that splits a sequence into the
// given per-shard lengths. A sequence whose total length does not
// equal the sum of lengths is rejected before any shard is touched.
func ShardScatter(lengths []int) ScatterFunc {
	return func(values []float32, setFn ShardSetFunc) error {
		var total int
		for _, n := range lengths {
			total += n
		}
		if total != len(values) {
			return errors.Wrapf(ErrStateSize, "have %d values for a shard layout totalling %d",
				len(values), total)
		}
		offset := 0
		for shard, n := range lengths {
			if err := setFn(shard, values[offset:offset+n]); err != nil {
				return errors.Wrapf(err, "scattering to shard %d", shard)
			}
			offset += n
		}
		return nil
	}
}

// EvenScatter returns a ScatterFunc that splits a sequence into
// shards near-equal pieces: every shard gets ceil(n/shards) values
// except the last, which takes the remainder. This is the default
// layout when parameters are partitioned evenly across devices.
func EvenScatter(shards int) ScatterFunc {
	return func(values []float32, setFn ShardSetFunc) error {
		if shards <= 0 {
			return errors.Wrapf(ErrStateSize, "invalid shard count %d", shards)
		}
		shardSize := (len(values) + shards - 1) / shards
		lengths := make([]int, 0, shards)
		remaining := len(values)
		for shard := 0; shard < shards; shard++ {
			n := min(shardSize, remaining)
			lengths = append(lengths, n)
			remaining -= n
		}
		return ShardScatter(lengths)(values, setFn)
	}
}
