package types

import (
	"context"

	"docquery/internal/models"
)

// VectorStore persists embedded nodes and supports similarity search.
type VectorStore interface {
	Upsert(ctx context.Context, nodes []models.IndexNode) error
	Search(ctx context.Context, embedding []float32, topK int) ([]models.ScoredNode, error)
	Persist() error
	Close() error
}

// Embedder converts text into embedding vectors via the remote model API.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Processor splits documents into chunks suitable for embedding.
type Processor interface {
	Process(docs []models.Document) ([]models.ProcessedDocument, error)
}

// QueryEngine answers one query against the loaded index. The returned
// result holds the ranked nodes and a live answer stream.
type QueryEngine interface {
	Query(ctx context.Context, text string) (*models.QueryResult, error)
}
