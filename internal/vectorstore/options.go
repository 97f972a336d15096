package vectorstore

// Search defaults.
const (
	DefaultTopK       = 4
	DefaultEfSearch   = 100
	DefaultNumThreads = 1
)

// SearchOptions tune a similarity search.
type SearchOptions struct {
	// TopK is the maximum number of results.
	TopK int

	// EfSearch is the engine's search breadth.
	EfSearch int

	// NumThreads is the engine's query parallelism.
	NumThreads int
}

// SearchOption configures SearchOptions.
type SearchOption func(*SearchOptions)

// WithTopK sets the result limit.
func WithTopK(k int) SearchOption {
	return func(o *SearchOptions) { o.TopK = k }
}

// WithEfSearch sets the search breadth.
func WithEfSearch(ef int) SearchOption {
	return func(o *SearchOptions) { o.EfSearch = ef }
}

// WithNumThreads sets the query parallelism.
func WithNumThreads(n int) SearchOption {
	return func(o *SearchOptions) { o.NumThreads = n }
}

// NewSearchOptions applies opts over the defaults.
func NewSearchOptions(opts ...SearchOption) SearchOptions {
	o := SearchOptions{
		TopK:       DefaultTopK,
		EfSearch:   DefaultEfSearch,
		NumThreads: DefaultNumThreads,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
