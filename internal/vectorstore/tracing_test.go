package vectorstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/fyrsmithlabs/vecbridge/internal/telemetry"
)

func TestChromemVector_Spans(t *testing.T) {
	tel := telemetry.NewTestTelemetry()
	otel.SetTracerProvider(tel.TracerProvider())

	ctx := context.Background()
	v := newTestChromemVector(t, "")
	docs, embeddings := testDocs()

	_, err := v.TextExists(ctx, "missing")
	require.Error(t, err)

	_, err = v.AddTexts(ctx, docs, embeddings)
	require.NoError(t, err)

	_, err = v.SearchByVector(ctx, []float32{0, 1, 0})
	require.NoError(t, err)

	tel.AssertSpanError(t, "ChromemVector.TextExists")
	tel.AssertSpanAttribute(t, "ChromemVector.AddTexts", "document_count", int64(3))
	tel.AssertSpanAttribute(t, "ChromemVector.AddTexts", "collection", "vector_index_test_node")
	tel.AssertSpanAttribute(t, "ChromemVector.SearchByVector", "top_k", int64(4))
	tel.AssertSpanAttribute(t, "ChromemVector.SearchByVector", "result_count", int64(3))
	tel.AssertSpanExists(t, "Collection.BatchQuery")
}
