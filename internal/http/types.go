package http

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// StatusResponse is the response body for GET /api/v1/status.
type StatusResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version,omitempty"`
	VectorStore VectorStoreStatus `json:"vector_store"`
}

// VectorStoreStatus describes the backing vector store. Collections is -1
// when the store cannot be listed.
type VectorStoreStatus struct {
	Type        string `json:"type"`
	Collections int    `json:"collections"`
	Error       string `json:"error,omitempty"`
}
