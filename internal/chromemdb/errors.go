package chromemdb

import "errors"

// Sentinel errors for client operations.
var (
	// ErrUnsupportedScheme is returned when the client URL scheme is not memory or file.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")

	// ErrInvalidURL is returned when the client URL cannot be resolved to a location.
	ErrInvalidURL = errors.New("invalid url")

	// ErrClientClosed is returned by operations on a closed client.
	ErrClientClosed = errors.New("client is closed")

	// ErrEmptyCollectionName is returned when a collection name is empty.
	ErrEmptyCollectionName = errors.New("collection name is empty")

	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidCollectionDir is returned for directory names that are not
	// 8 lowercase hex characters.
	ErrInvalidCollectionDir = errors.New("invalid collection directory name")

	// ErrNotPersistent is returned by maintenance operations on in-memory URLs.
	ErrNotPersistent = errors.New("store is not persistent")
)
