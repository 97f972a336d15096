package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrUnknownVectorType is returned when no factory is registered for a vector type.
	ErrUnknownVectorType = errors.New("unknown vector type")

	// ErrInvalidIndexStruct indicates a dataset index struct that is not valid JSON.
	ErrInvalidIndexStruct = errors.New("invalid index struct")
)

// VectorType names a vector store backend.
type VectorType string

const (
	// VectorTypeChromem is the embedded chromem-go backend.
	VectorTypeChromem VectorType = "chromem"
)

// Embedder generates vector embeddings from text.
//
// Factories receive the dataset's embedder so every backend shares one
// construction signature. Backends that are handed precomputed vectors never
// call it.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Vector is one vector store backend bound to a single collection.
//
// Embeddings are computed by the caller and passed in parallel to the
// documents: embeddings[i] belongs to docs[i]. Implementations do not check
// that the lengths agree.
//
// Errors raised by the backend engine are returned unchanged.
type Vector interface {
	// GetType returns the backend type.
	GetType() VectorType

	// Create creates the collection and adds docs. It does nothing when docs is empty.
	Create(ctx context.Context, docs []Document, embeddings [][]float32) error

	// CreateCollection gets or creates the named collection and binds it.
	CreateCollection(ctx context.Context, name string) error

	// AddTexts stores docs under freshly generated ids and returns the ids.
	// Adding the same docs twice stores them twice.
	AddTexts(ctx context.Context, docs []Document, embeddings [][]float32) ([]string, error)

	// TextExists reports whether an item with id is stored.
	TextExists(ctx context.Context, id string) (bool, error)

	// DeleteByIDs removes the items with the given ids. Unknown ids are ignored.
	DeleteByIDs(ctx context.Context, ids []string) error

	// DeleteByMetadataField removes every item whose metadata maps key to
	// exactly value. This scans the whole collection.
	DeleteByMetadataField(ctx context.Context, key, value string) error

	// SearchByVector returns the nearest documents to query in engine order.
	SearchByVector(ctx context.Context, query []float32, opts ...SearchOption) ([]Document, error)

	// SearchByFullText returns documents matching query text. Backends without
	// full-text support return an empty slice and no error.
	SearchByFullText(ctx context.Context, query string, opts ...SearchOption) ([]Document, error)

	// Delete drops the collection and everything in it.
	Delete(ctx context.Context) error

	// Close releases the engine client. It is safe to call more than once.
	Close() error
}
