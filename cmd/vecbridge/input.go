package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fyrsmithlabs/vecbridge/internal/vectorstore"
)

// record is one input document with its precomputed embedding.
type record struct {
	vectorstore.Document
	Vector []float32 `json:"vector"`
}

// readRecords decodes a JSON array of records from path, or from stdin when
// path is empty or "-". It returns parallel document and embedding slices.
func readRecords(path string, stdin io.Reader) ([]vectorstore.Document, [][]float32, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("decoding records: %w", err)
	}

	docs := make([]vectorstore.Document, len(records))
	embeddings := make([][]float32, len(records))
	for i, rec := range records {
		if len(rec.Vector) == 0 {
			return nil, nil, fmt.Errorf("record %d has no vector", i)
		}
		docs[i] = rec.Document
		embeddings[i] = rec.Vector
	}
	return docs, embeddings, nil
}

// parseVector decodes a JSON array of floats.
func parseVector(raw string) ([]float32, error) {
	var v []float32
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("parsing vector: %w", err)
	}
	if len(v) == 0 {
		return nil, errors.New("vector is empty")
	}
	return v, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
