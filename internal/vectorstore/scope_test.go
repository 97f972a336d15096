package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeFactory hands out ChromemVectors over counting engines.
type fakeFactory struct {
	engine  *countingEngine
	initErr error
}

func (f *fakeFactory) InitVector(context.Context, *Dataset, []string, Embedder) (Vector, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}
	return newChromemVector("scoped", f.engine, zap.NewNop()), nil
}

func TestWithVector_ClosesOnSuccess(t *testing.T) {
	f := &fakeFactory{engine: newCountingEngine()}

	err := WithVector(context.Background(), f, &Dataset{ID: "d"}, nil, nil, func(ctx context.Context, v Vector) error {
		return v.Create(ctx, []Document{{PageContent: "a"}}, [][]float32{{1}})
	})
	require.NoError(t, err)
	assert.Equal(t, "Close", f.engine.calls[len(f.engine.calls)-1])
}

func TestWithVector_ClosesOnError(t *testing.T) {
	f := &fakeFactory{engine: newCountingEngine()}
	boom := errors.New("boom")

	err := WithVector(context.Background(), f, &Dataset{ID: "d"}, nil, nil, func(context.Context, Vector) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"Close"}, f.engine.calls)
}

func TestWithVector_ClosesOnPanic(t *testing.T) {
	f := &fakeFactory{engine: newCountingEngine()}

	assert.Panics(t, func() {
		_ = WithVector(context.Background(), f, &Dataset{ID: "d"}, nil, nil, func(context.Context, Vector) error {
			panic("fn failed")
		})
	})
	assert.Equal(t, []string{"Close"}, f.engine.calls)
}

func TestWithVector_JoinsCloseError(t *testing.T) {
	f := &fakeFactory{engine: newCountingEngine()}
	closeErr := errors.New("close failed")
	fnErr := errors.New("fn failed")
	f.engine.closeErr = closeErr

	err := WithVector(context.Background(), f, &Dataset{ID: "d"}, nil, nil, func(context.Context, Vector) error {
		return fnErr
	})
	assert.ErrorIs(t, err, fnErr)
	assert.ErrorIs(t, err, closeErr)
}

func TestWithVector_InitError(t *testing.T) {
	initErr := errors.New("cannot open")
	f := &fakeFactory{engine: newCountingEngine(), initErr: initErr}

	called := false
	err := WithVector(context.Background(), f, &Dataset{ID: "d"}, nil, nil, func(context.Context, Vector) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, initErr)
	assert.False(t, called)
	assert.Empty(t, f.engine.calls)
}
