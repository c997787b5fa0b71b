package optim

// TrainingState is the slice of the training loop's state an
// optimizer is allowed to observe: the scheduled learning rate,
// whether accumulated optimizer statistics should be discarded, and a
// few progress counters for context.
type TrainingState struct {
	// Eta is the learning rate the training schedule wants in effect.
	Eta float32

	// Reset requests that auxiliary optimizer state (accumulators,
	// moment estimates) be cleared.
	Reset bool

	Epochs  int // completed epochs
	Batches int // completed batches within the current epoch
	Stalled int // consecutive validations without improvement
}

// TrainingObserver is implemented by components that react to
// training life-cycle events. Optimizers implement it to pick up
// learning-rate changes and reset requests without depending on the
// training loop's internals.
//
// All methods are idempotent and must not touch parameter or gradient
// buffers.
type TrainingObserver interface {
	// Init is called once before training begins.
	Init(state *TrainingState)

	// ActAfterLoaded is called after training state has been restored
	// from a checkpoint.
	ActAfterLoaded(state *TrainingState)

	// ActAfterEpoch is called at every epoch boundary.
	ActAfterEpoch(state *TrainingState)

	// ActAfterBatches is called at configured batch-count boundaries.
	ActAfterBatches(state *TrainingState)

	// ActAfterStalled is called when the stall detector fires.
	ActAfterStalled(state *TrainingState)
}
