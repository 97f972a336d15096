package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vecbridge/internal/config"
)

// Factory builds a Vector for a dataset.
type Factory interface {
	// InitVector resolves the dataset's collection and opens a Vector on it.
	// It may record the resolved collection in dataset.IndexStruct.
	InitVector(ctx context.Context, dataset *Dataset, attributes []string, embedder Embedder) (Vector, error)
}

// ChromemFactory builds ChromemVectors from vector store settings.
type ChromemFactory struct {
	settings config.VectorStoreConfig
	logger   *zap.Logger
}

// NewChromemFactory creates a factory bound to settings.
func NewChromemFactory(settings config.VectorStoreConfig, logger *zap.Logger) *ChromemFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.IndexNamePrefix == "" {
		settings.IndexNamePrefix = config.DefaultIndexNamePrefix
	}
	return &ChromemFactory{settings: settings, logger: logger}
}

// InitVector opens a ChromemVector for dataset.
//
// A dataset that already records vector_store.class_prefix keeps that
// collection, lower-cased. Otherwise the collection name is derived from the
// dataset id, and dataset.IndexStruct is set so later calls take the first
// path. attributes and embedder are not used.
func (f *ChromemFactory) InitVector(ctx context.Context, dataset *Dataset, _ []string, _ Embedder) (Vector, error) {
	collectionName, err := f.collectionName(dataset)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("initializing vector store",
		zap.String("dataset_id", dataset.ID),
		zap.String("collection", collectionName),
	)

	return NewChromemVector(collectionName, ChromemConfig{URL: f.settings.URL}, f.logger)
}

func (f *ChromemFactory) collectionName(dataset *Dataset) (string, error) {
	existing, err := dataset.IndexStructDict()
	if err != nil {
		return "", err
	}
	if existing != nil && existing.VectorStore.ClassPrefix != "" {
		return strings.ToLower(existing.VectorStore.ClassPrefix), nil
	}

	name := strings.ToLower(GenCollectionNameByID(dataset.ID, f.settings.IndexNamePrefix))

	data, err := json.Marshal(GenIndexStructDict(VectorTypeChromem, name))
	if err != nil {
		return "", fmt.Errorf("encoding index struct: %w", err)
	}
	dataset.IndexStruct = string(data)
	return name, nil
}

// Ensure ChromemFactory implements Factory.
var _ Factory = (*ChromemFactory)(nil)

// Registry maps vector types to their factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[VectorType]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[VectorType]Factory)}
}

// NewDefaultRegistry creates a registry holding every built-in backend.
func NewDefaultRegistry(settings config.VectorStoreConfig, logger *zap.Logger) *Registry {
	r := NewRegistry()
	r.Register(VectorTypeChromem, NewChromemFactory(settings, logger))
	return r
}

// Register adds or replaces the factory for t.
func (r *Registry) Register(t VectorType, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[t] = f
}

// Get returns the factory for t.
func (r *Registry) Get(t VectorType) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVectorType, t)
	}
	return f, nil
}

// Types returns the registered vector types, sorted.
func (r *Registry) Types() []VectorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]VectorType, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// InitVector opens a Vector of type t for dataset.
func (r *Registry) InitVector(ctx context.Context, t VectorType, dataset *Dataset, attributes []string, embedder Embedder) (Vector, error) {
	f, err := r.Get(t)
	if err != nil {
		return nil, err
	}
	return f.InitVector(ctx, dataset, attributes, embedder)
}
