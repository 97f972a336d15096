package chromemdb

import (
	"context"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Item is one stored record.
type Item struct {
	ID       string
	Text     string
	Vector   []float32
	Metadata map[string]any
}

// Hit is one nearest-neighbour match.
type Hit struct {
	ID       string
	Text     string
	Metadata map[string]any

	// Score is the cosine similarity to the query, in [-1, 1].
	Score float32
}

// Collection is a handle on one named collection.
type Collection struct {
	client *Client
	coll   *chromem.Collection
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.coll.Name
}

// Count returns the number of items in the collection.
func (c *Collection) Count() int {
	return c.coll.Count()
}

func (c *Collection) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("collection", c.coll.Name))
	return ctx, span
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Upsert inserts items, replacing any stored item with the same id.
// Vectors are normalised by chromem-go on insert.
func (c *Collection) Upsert(ctx context.Context, items []Item) (err error) {
	ctx, span := c.startSpan(ctx, "Collection.Upsert")
	defer span.End()
	defer func(start time.Time) { observe("upsert", start, err) }(time.Now())
	span.SetAttributes(attribute.Int("item_count", len(items)))

	if err := c.client.check(); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(items))
	for i, item := range items {
		metadata, err := encodeMetadata(item.Metadata)
		if err != nil {
			failSpan(span, err)
			return err
		}
		docs[i] = chromem.Document{
			ID:        item.ID,
			Content:   item.Text,
			Metadata:  metadata,
			Embedding: item.Vector,
		}
	}

	// Embeddings are present, so one worker is enough.
	if err := c.coll.AddDocuments(ctx, docs, 1); err != nil {
		failSpan(span, err)
		return err
	}

	ItemsUpserted.Add(float64(len(items)))
	c.client.logger.Debug("upserted items",
		zap.String("collection", c.coll.Name),
		zap.Int("count", len(items)),
	)
	return nil
}

// GetByIDs returns the stored items among ids. Unknown ids are skipped.
func (c *Collection) GetByIDs(ctx context.Context, ids []string) (_ []Item, err error) {
	ctx, span := c.startSpan(ctx, "Collection.GetByIDs")
	defer span.End()
	defer func(start time.Time) { observe("get_by_ids", start, err) }(time.Now())
	span.SetAttributes(attribute.Int("id_count", len(ids)))

	if err := c.client.check(); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		// GetByID only fails for empty or unknown ids.
		doc, err := c.coll.GetByID(ctx, id)
		if err != nil {
			continue
		}
		items = append(items, Item{
			ID:       doc.ID,
			Text:     doc.Content,
			Vector:   doc.Embedding,
			Metadata: decodeMetadata(doc.Metadata),
		})
	}

	span.SetAttributes(attribute.Int("found", len(items)))
	return items, nil
}

// DeleteByIDs removes the items with the given ids. Unknown ids are ignored.
func (c *Collection) DeleteByIDs(ctx context.Context, ids []string) (err error) {
	ctx, span := c.startSpan(ctx, "Collection.DeleteByIDs")
	defer span.End()
	defer func(start time.Time) { observe("delete_by_ids", start, err) }(time.Now())
	span.SetAttributes(attribute.Int("id_count", len(ids)))

	if err := c.client.check(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if err := c.coll.Delete(ctx, nil, nil, ids...); err != nil {
		failSpan(span, err)
		return err
	}
	return nil
}

// DeleteWhere scans every item and removes those whose metadata maps key to
// exactly value, returning how many were removed. Values of different types
// never match. The scan is linear in the collection size.
func (c *Collection) DeleteWhere(ctx context.Context, key string, value any) (_ int, err error) {
	ctx, span := c.startSpan(ctx, "Collection.DeleteWhere")
	defer span.End()
	defer func(start time.Time) { observe("delete_where", start, err) }(time.Now())
	span.SetAttributes(attribute.String("key", key))

	if err := c.client.check(); err != nil {
		return 0, err
	}

	encoded, err := encodeValue(value)
	if err != nil {
		failSpan(span, err)
		return 0, err
	}

	before := c.coll.Count()
	if err := c.coll.Delete(ctx, map[string]string{key: encoded}, nil); err != nil {
		failSpan(span, err)
		return 0, err
	}
	removed := max(before-c.coll.Count(), 0)

	span.SetAttributes(attribute.Int("removed", removed))
	return removed, nil
}

// BatchQuery runs one nearest-neighbour query per vector and returns the hit
// lists in query order.
//
// limit is capped at the collection size; a limit below one yields empty
// hit lists. chromem-go searches exhaustively,
// so efSearch does not change results; it is recorded on the span. numThreads
// bounds how many queries of the batch run at once.
func (c *Collection) BatchQuery(ctx context.Context, vectors [][]float32, limit, efSearch, numThreads int) (_ [][]Hit, err error) {
	ctx, span := c.startSpan(ctx, "Collection.BatchQuery")
	defer span.End()
	defer func(start time.Time) { observe("batch_query", start, err) }(time.Now())
	span.SetAttributes(
		attribute.Int("query_count", len(vectors)),
		attribute.Int("limit", limit),
		attribute.Int("ef_search", efSearch),
		attribute.Int("num_threads", numThreads),
	)

	if err := c.client.check(); err != nil {
		return nil, err
	}

	results := make([][]Hit, len(vectors))

	count := c.coll.Count()
	if count == 0 || limit < 1 {
		for i := range results {
			results[i] = []Hit{}
		}
		return results, nil
	}
	if limit > count {
		limit = count
	}

	g, gctx := errgroup.WithContext(ctx)
	if numThreads < 1 {
		numThreads = 1
	}
	g.SetLimit(numThreads)

	for i, vector := range vectors {
		g.Go(func() error {
			res, err := c.coll.QueryEmbedding(gctx, vector, limit, nil, nil)
			if err != nil {
				return err
			}
			hits := make([]Hit, len(res))
			for j, r := range res {
				hits[j] = Hit{
					ID:       r.ID,
					Text:     r.Content,
					Metadata: decodeMetadata(r.Metadata),
					Score:    r.Similarity,
				}
			}
			results[i] = hits
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		failSpan(span, err)
		return nil, err
	}
	return results, nil
}

// Delete drops this collection and all its items.
func (c *Collection) Delete(ctx context.Context) error {
	return c.client.DeleteCollection(ctx, c.coll.Name)
}
