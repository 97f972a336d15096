package vectorstore

import (
	"context"
	"errors"
)

// WithVector opens a Vector for dataset, runs fn with it and closes it on
// every exit path, including a panic in fn. A close error is joined to the
// error from fn.
func WithVector(ctx context.Context, factory Factory, dataset *Dataset, attributes []string, embedder Embedder, fn func(context.Context, Vector) error) (err error) {
	v, err := factory.InitVector(ctx, dataset, attributes, embedder)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := v.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return fn(ctx, v)
}
