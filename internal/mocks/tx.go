// Package mocks provides hand-written in-memory fakes for the store
// and platform interfaces, used by service and API tests.
package mocks

import (
	"context"

	"github.com/taskhub/taskhub-api/internal/store"
)

// PassthroughTxRunner returns a TxRunner that invokes the function
// with a nil transaction and no database. The in-memory stores ignore
// their transaction binding, so service code exercises the same path
// it takes in production.
func PassthroughTxRunner() store.TxRunner {
	return func(ctx context.Context, fn store.TxFn) error {
		return fn(ctx, nil)
	}
}

// FailingTxRunner returns a TxRunner whose scope always fails with the
// given error after running the function, simulating a commit failure.
func FailingTxRunner(err error) store.TxRunner {
	return func(ctx context.Context, fn store.TxFn) error {
		if fnErr := fn(ctx, nil); fnErr != nil {
			return fnErr
		}
		return err
	}
}
