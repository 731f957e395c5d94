package persistence

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/revenue-collection-core/internal/domain/shared"
)

// TxRunner executes a unit of work atomically. Services depend on this
// interface rather than on *MongoDB so tests can substitute a pass-through.
type TxRunner interface {
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ TxRunner = (*MongoDB)(nil)

// IsTransientConflict reports whether err is a store conflict worth retrying,
// such as a write conflict between two transactions touching the same wallet
// document.
func IsTransientConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, shared.E(shared.KindTransientConflict, "")) {
		return true
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.HasErrorLabel("TransientTransactionError") {
		return true
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) && writeErr.HasErrorLabel("TransientTransactionError") {
		return true
	}
	return false
}

// RunWithRetry re-runs the whole unit of work up to maxAttempts times while
// retryable reports the failure as transient. The entire batch is retried,
// never a single sub-step; partial retries would risk double-crediting.
// When attempts are exhausted the last error is surfaced unchanged.
func RunWithRetry(ctx context.Context, maxAttempts int, retryable func(error) bool, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if retryable == nil {
		retryable = IsTransientConflict
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
