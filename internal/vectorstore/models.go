package vectorstore

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is a unit of text with its metadata.
type Document struct {
	// PageContent is the document text.
	PageContent string `json:"page_content"`

	// Metadata holds arbitrary key/value pairs (doc_id, document_id, dataset_id, ...).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Dataset is the slice of a platform dataset a vector store needs.
type Dataset struct {
	// ID is the dataset UUID.
	ID string `json:"id"`

	// IndexStruct is the persisted JSON index structure. Empty for datasets
	// that have never been indexed.
	IndexStruct string `json:"index_struct,omitempty"`
}

// IndexStruct records which backend and collection a dataset is indexed in.
type IndexStruct struct {
	Type        VectorType       `json:"type"`
	VectorStore VectorStoreIndex `json:"vector_store"`
}

// VectorStoreIndex is the vector_store section of an IndexStruct.
type VectorStoreIndex struct {
	// ClassPrefix is the collection name the dataset was indexed under.
	ClassPrefix string `json:"class_prefix"`
}

// IndexStructDict parses IndexStruct. It returns nil when the dataset has no
// index structure.
func (d *Dataset) IndexStructDict() (*IndexStruct, error) {
	if strings.TrimSpace(d.IndexStruct) == "" {
		return nil, nil
	}

	var is IndexStruct
	if err := json.Unmarshal([]byte(d.IndexStruct), &is); err != nil {
		return nil, fmt.Errorf("%w: dataset %s: %v", ErrInvalidIndexStruct, d.ID, err)
	}
	return &is, nil
}

// GenCollectionNameByID derives the collection name for a dataset id:
// prefix_<id with dashes replaced>_Node.
func GenCollectionNameByID(datasetID, prefix string) string {
	normalized := strings.ReplaceAll(datasetID, "-", "_")
	return prefix + "_" + normalized + "_Node"
}

// GenIndexStructDict builds the index structure recording collection as the
// dataset's collection on a vectorType backend.
func GenIndexStructDict(vectorType VectorType, collection string) IndexStruct {
	return IndexStruct{
		Type:        vectorType,
		VectorStore: VectorStoreIndex{ClassPrefix: collection},
	}
}
