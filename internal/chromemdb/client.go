// Package chromemdb is the client for the embedded chromem-go vector engine.
//
// It exposes the small capability set the vector-store adapter needs:
// collection get-or-create, bulk upsert, lookup by id, delete by id or by
// exact metadata match, batch nearest-neighbour query and collection drop.
// Embeddings are always supplied by the caller; the client never computes
// them.
package chromemdb

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("vecbridge.chromemdb")

// errEmbeddingRequired is returned if chromem-go ever asks the client to embed text.
var errEmbeddingRequired = errors.New("chromemdb: embeddings must be supplied by the caller")

// embedFunc is handed to chromem-go for every collection. Passing nil would
// make chromem-go fall back to its OpenAI embedder for collections loaded from disk.
func embedFunc(context.Context, string) ([]float32, error) {
	return nil, errEmbeddingRequired
}

// Client is a handle on one chromem-go database.
type Client struct {
	db     *chromem.DB
	loc    location
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewClient opens the database selected by params.URL.
func NewClient(params ClientParams, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := parseLocation(params.URL)
	if err != nil {
		return nil, err
	}

	var db *chromem.DB
	if loc.InMemory() {
		db = chromem.NewDB()
	} else {
		db, err = openPersistentDB(loc, logger)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("chromemdb client opened",
		zap.String("location", loc.String()),
		zap.Bool("compress", loc.Compress),
	)

	return &Client{db: db, loc: loc, logger: logger}, nil
}

// Persistent reports whether the client writes to disk.
func (c *Client) Persistent() bool {
	return !c.loc.InMemory()
}

// check returns ErrClientClosed once Close has been called.
func (c *Client) check() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// GetOrCreateCollection returns the named collection, creating it if needed.
func (c *Client) GetOrCreateCollection(ctx context.Context, name string) (_ *Collection, err error) {
	_, span := tracer.Start(ctx, "Client.GetOrCreateCollection")
	defer span.End()
	defer func(start time.Time) { observe("get_or_create_collection", start, err) }(time.Now())
	span.SetAttributes(attribute.String("collection", name))

	if err := c.check(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrEmptyCollectionName
	}

	coll, err := c.db.GetOrCreateCollection(name, nil, embedFunc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &Collection{client: c, coll: coll}, nil
}

// GetCollection returns the named collection or ErrCollectionNotFound.
func (c *Client) GetCollection(ctx context.Context, name string) (*Collection, error) {
	_, span := tracer.Start(ctx, "Client.GetCollection")
	defer span.End()
	span.SetAttributes(attribute.String("collection", name))

	if err := c.check(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrEmptyCollectionName
	}

	coll := c.db.GetCollection(name, embedFunc)
	if coll == nil {
		span.SetStatus(codes.Error, "collection not found")
		return nil, ErrCollectionNotFound
	}
	return &Collection{client: c, coll: coll}, nil
}

// DeleteCollection drops the named collection and all its items.
// Dropping a collection that does not exist is a no-op.
func (c *Client) DeleteCollection(ctx context.Context, name string) (err error) {
	_, span := tracer.Start(ctx, "Client.DeleteCollection")
	defer span.End()
	defer func(start time.Time) { observe("delete_collection", start, err) }(time.Now())
	span.SetAttributes(attribute.String("collection", name))

	if err := c.check(); err != nil {
		return err
	}
	if name == "" {
		return ErrEmptyCollectionName
	}

	if err := c.db.DeleteCollection(name); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	c.logger.Info("collection deleted", zap.String("collection", name))
	return nil
}

// ListCollections returns the sorted collection names.
func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	collections := c.db.ListCollections()
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close releases the client. chromem-go persists synchronously on every
// write, so there is nothing to flush; Close only fences further use.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.logger.Debug("chromemdb client closed", zap.String("location", c.loc.String()))
	return nil
}
