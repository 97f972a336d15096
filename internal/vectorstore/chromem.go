package vectorstore

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vecbridge/internal/chromemdb"
)

var tracer = otel.Tracer("vecbridge.vectorstore")

// collectionHandle is the part of chromemdb.Collection the adapter uses.
type collectionHandle interface {
	Name() string
	Upsert(ctx context.Context, items []chromemdb.Item) error
	GetByIDs(ctx context.Context, ids []string) ([]chromemdb.Item, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	DeleteWhere(ctx context.Context, key string, value any) (int, error)
	BatchQuery(ctx context.Context, vectors [][]float32, limit, efSearch, numThreads int) ([][]chromemdb.Hit, error)
}

// engine is the part of chromemdb.Client the adapter uses.
type engine interface {
	GetOrCreateCollection(ctx context.Context, name string) (collectionHandle, error)
	GetCollection(ctx context.Context, name string) (collectionHandle, error)
	DeleteCollection(ctx context.Context, name string) error
	Close() error
}

// chromemEngine narrows *chromemdb.Client to engine.
type chromemEngine struct {
	*chromemdb.Client
}

func (e chromemEngine) GetOrCreateCollection(ctx context.Context, name string) (collectionHandle, error) {
	coll, err := e.Client.GetOrCreateCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	return coll, nil
}

func (e chromemEngine) GetCollection(ctx context.Context, name string) (collectionHandle, error) {
	coll, err := e.Client.GetCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	return coll, nil
}

// ChromemVector is the chromem-go backed Vector.
//
// It owns one engine client and at most one collection handle. Like the
// engine it wraps, it performs no retries and returns engine errors as-is.
// A ChromemVector is not safe for concurrent use; open one per goroutine.
type ChromemVector struct {
	collectionName string
	engine         engine
	collection     collectionHandle
	logger         *zap.Logger
	closed         bool
}

// NewChromemVector opens an engine client for config and binds it to collectionName.
// The collection itself is created lazily by Create or CreateCollection.
func NewChromemVector(collectionName string, config ChromemConfig, logger *zap.Logger) (*ChromemVector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := chromemdb.NewClient(config.ToClientParams(), logger)
	if err != nil {
		return nil, err
	}

	return newChromemVector(collectionName, chromemEngine{client}, logger), nil
}

func newChromemVector(collectionName string, eng engine, logger *zap.Logger) *ChromemVector {
	return &ChromemVector{
		collectionName: collectionName,
		engine:         eng,
		logger:         logger,
	}
}

// CollectionName returns the bound collection name.
func (v *ChromemVector) CollectionName() string {
	return v.collectionName
}

// GetType returns VectorTypeChromem.
func (v *ChromemVector) GetType() VectorType {
	return VectorTypeChromem
}

func (v *ChromemVector) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("collection", v.collectionName))
	return ctx, span
}

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// Create gets or creates the bound collection and adds docs.
func (v *ChromemVector) Create(ctx context.Context, docs []Document, embeddings [][]float32) (err error) {
	if len(docs) == 0 {
		return nil
	}

	ctx, span := v.startSpan(ctx, "ChromemVector.Create")
	defer span.End()
	defer func() { recordError(span, err) }()

	if err := v.CreateCollection(ctx, v.collectionName); err != nil {
		return err
	}
	_, err = v.AddTexts(ctx, docs, embeddings)
	return err
}

// CreateCollection gets or creates the named collection and binds its handle.
func (v *ChromemVector) CreateCollection(ctx context.Context, name string) (err error) {
	ctx, span := v.startSpan(ctx, "ChromemVector.CreateCollection")
	defer span.End()
	defer func() { recordError(span, err) }()

	coll, err := v.engine.GetOrCreateCollection(ctx, name)
	if err != nil {
		return err
	}
	v.collection = coll
	return nil
}

// AddTexts upserts one item per document under a new UUID and returns the ids.
// embeddings[i] is stored as the vector of docs[i].
func (v *ChromemVector) AddTexts(ctx context.Context, docs []Document, embeddings [][]float32) (_ []string, err error) {
	if len(docs) == 0 {
		return []string{}, nil
	}

	ctx, span := v.startSpan(ctx, "ChromemVector.AddTexts")
	defer span.End()
	defer func() { recordError(span, err) }()
	span.SetAttributes(attribute.Int("document_count", len(docs)))

	ids := make([]string, len(docs))
	items := make([]chromemdb.Item, len(docs))
	for i, doc := range docs {
		ids[i] = uuid.New().String()
		items[i] = chromemdb.Item{
			ID:       ids[i],
			Text:     doc.PageContent,
			Metadata: doc.Metadata,
		}
		if i < len(embeddings) {
			items[i].Vector = embeddings[i]
		}
	}

	coll, err := v.engine.GetOrCreateCollection(ctx, v.collectionName)
	if err != nil {
		return nil, err
	}
	v.collection = coll

	if err := coll.Upsert(ctx, items); err != nil {
		return nil, err
	}

	v.logger.Debug("added texts",
		zap.String("collection", v.collectionName),
		zap.Int("count", len(items)),
	)
	return ids, nil
}

// handle returns the bound collection, looking it up if no call has bound it yet.
func (v *ChromemVector) handle(ctx context.Context) (collectionHandle, error) {
	if v.collection != nil {
		return v.collection, nil
	}
	coll, err := v.engine.GetCollection(ctx, v.collectionName)
	if err != nil {
		return nil, err
	}
	v.collection = coll
	return coll, nil
}

// TextExists reports whether an item with id is stored.
func (v *ChromemVector) TextExists(ctx context.Context, id string) (_ bool, err error) {
	ctx, span := v.startSpan(ctx, "ChromemVector.TextExists")
	defer span.End()
	defer func() { recordError(span, err) }()

	coll, err := v.handle(ctx)
	if err != nil {
		return false, err
	}
	items, err := coll.GetByIDs(ctx, []string{id})
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

// DeleteByIDs removes the items with the given ids.
func (v *ChromemVector) DeleteByIDs(ctx context.Context, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}

	ctx, span := v.startSpan(ctx, "ChromemVector.DeleteByIDs")
	defer span.End()
	defer func() { recordError(span, err) }()
	span.SetAttributes(attribute.Int("id_count", len(ids)))

	coll, err := v.handle(ctx)
	if err != nil {
		return err
	}
	return coll.DeleteByIDs(ctx, ids)
}

// DeleteByMetadataField removes every item whose metadata maps key to the
// string value. Items holding a non-string value under key never match.
func (v *ChromemVector) DeleteByMetadataField(ctx context.Context, key, value string) (err error) {
	ctx, span := v.startSpan(ctx, "ChromemVector.DeleteByMetadataField")
	defer span.End()
	defer func() { recordError(span, err) }()
	span.SetAttributes(attribute.String("key", key))

	coll, err := v.handle(ctx)
	if err != nil {
		return err
	}

	removed, err := coll.DeleteWhere(ctx, key, value)
	if err != nil {
		return err
	}

	v.logger.Debug("deleted by metadata field",
		zap.String("collection", v.collectionName),
		zap.String("key", key),
		zap.Int("removed", removed),
	)
	return nil
}

// SearchByVector runs a nearest-neighbour query for query. TopK, EfSearch and
// NumThreads are handed to the engine unchanged.
func (v *ChromemVector) SearchByVector(ctx context.Context, query []float32, opts ...SearchOption) (_ []Document, err error) {
	o := NewSearchOptions(opts...)

	ctx, span := v.startSpan(ctx, "ChromemVector.SearchByVector")
	defer span.End()
	defer func() { recordError(span, err) }()
	span.SetAttributes(attribute.Int("top_k", o.TopK))

	coll, err := v.handle(ctx)
	if err != nil {
		return nil, err
	}

	results, err := coll.BatchQuery(ctx, [][]float32{query}, o.TopK, o.EfSearch, o.NumThreads)
	if err != nil {
		return nil, err
	}

	docs := []Document{}
	for _, hits := range results {
		for _, hit := range hits {
			metadata := hit.Metadata
			if metadata == nil {
				metadata = map[string]any{}
			}
			docs = append(docs, Document{
				PageContent: hit.Text,
				Metadata:    metadata,
			})
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(docs)))
	return docs, nil
}

// SearchByFullText always returns an empty slice: the engine has no text index.
func (v *ChromemVector) SearchByFullText(_ context.Context, _ string, _ ...SearchOption) ([]Document, error) {
	return []Document{}, nil
}

// Delete drops the bound collection. Dropping a collection that was never
// created succeeds.
func (v *ChromemVector) Delete(ctx context.Context) (err error) {
	ctx, span := v.startSpan(ctx, "ChromemVector.Delete")
	defer span.End()
	defer func() { recordError(span, err) }()

	if err := v.engine.DeleteCollection(ctx, v.collectionName); err != nil {
		return err
	}
	v.collection = nil

	v.logger.Info("collection deleted", zap.String("collection", v.collectionName))
	return nil
}

// Close releases the engine client.
func (v *ChromemVector) Close() error {
	if v.closed {
		return nil
	}
	v.closed = true
	v.collection = nil
	return v.engine.Close()
}

// Ensure ChromemVector implements Vector.
var _ Vector = (*ChromemVector)(nil)
