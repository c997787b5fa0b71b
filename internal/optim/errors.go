package optim

import "github.com/pkg/errors"

// Common errors.
var (
	ErrUnknownAlgorithm = errors.New("unknown optimization algorithm")
	ErrNoState          = errors.New("no auxiliary state accumulated")
	ErrStateSize        = errors.New("persisted state size mismatch")
	ErrMissingSegment   = errors.New("state segment missing")
	ErrShardMismatch    = errors.New("shard has no matching peer optimizer")
)
