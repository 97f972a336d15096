// Package vectorstore is the platform's vector store contract and its
// chromem-go backend.
//
// A Vector is bound to one collection. Callers embed text themselves and
// pass the vectors alongside the documents; the store only persists and
// searches them.
//
// # Collections
//
// Factories decide the collection for a dataset. A dataset whose index
// structure already names a collection (vector_store.class_prefix) keeps it,
// lower-cased, so data indexed under older naming schemes stays reachable.
// Otherwise the name is derived from the dataset id:
//
//	Vector_index_<id with "-" replaced by "_">_Node   (then lower-cased)
//
// and written back to the dataset's index structure.
//
// # Usage
//
//	registry := vectorstore.NewDefaultRegistry(cfg.VectorStore, logger)
//	factory, err := registry.Get(vectorstore.VectorType(cfg.VectorStore.Type))
//	if err != nil {
//	    return err
//	}
//
//	err = vectorstore.WithVector(ctx, factory, dataset, nil, embedder,
//	    func(ctx context.Context, v vectorstore.Vector) error {
//	        return v.Create(ctx, docs, embeddings)
//	    })
//
// # Errors
//
// The chromem backend returns engine errors unchanged and never retries.
// Empty document or id lists are successful no-ops that never reach the
// engine. Full-text search is not supported and always yields no documents.
//
// AddTexts generates new ids on every call, so adding the same documents
// twice stores them twice.
package vectorstore
