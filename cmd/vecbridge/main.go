// Vecbridge drives a dataset's vector store from the command line.
//
// Every command opens the vector store for one dataset, runs a single
// operation and closes it again. serve exposes health, status and metrics
// over HTTP.
//
// Usage:
//
//	# Index documents with precomputed embeddings
//	vecbridge add --dataset 5a8e0c3e-1f2b-4c5d-9e6f-7a8b9c0d1e2f --file docs.json
//
//	# Search by vector
//	vecbridge search --dataset 5a8e0c3e-1f2b-4c5d-9e6f-7a8b9c0d1e2f --vector '[0.1,0.2,0.3]'
//
//	# Persist to disk
//	VECTORSTORE_URL=file://~/.local/share/vecbridge vecbridge add ...
package main

import (
	"fmt"
	"os"
)

// Version information (set via ldflags during build).
var (
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
