// Package engine ties the pipeline together: the builder ingests a
// document corpus into the vector store, the query engine retrieves
// against it and streams an answer from the model.
package engine

import (
	"context"
	"fmt"

	"docquery/internal/models"
	"docquery/internal/types"
)

type BuilderConfig struct {
	Processor types.Processor
	Embedder  types.Embedder
	Store     types.VectorStore

	// OnDocument is called after each document is embedded and stored.
	OnDocument func(id string)
}

type Builder struct {
	config BuilderConfig
}

func NewBuilder(config BuilderConfig) *Builder {
	return &Builder{config: config}
}

// Build chunks, embeds and stores the documents, then persists the
// index. Any embedding or storage failure is fatal for the run: the
// index on disk is only replaced after a full successful build.
func (b *Builder) Build(ctx context.Context, docs []models.Document) (int, error) {
	processed, err := b.config.Processor.Process(docs)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, doc := range processed {
		vectors, err := b.config.Embedder.EmbedDocuments(ctx, doc.Chunks)
		if err != nil {
			return 0, fmt.Errorf("embedding %s: %w", doc.Source, err)
		}
		if len(vectors) != len(doc.Chunks) {
			return 0, fmt.Errorf("embedding %s: got %d vectors for %d chunks", doc.Source, len(vectors), len(doc.Chunks))
		}

		nodes := make([]models.IndexNode, len(doc.Chunks))
		for i, chunk := range doc.Chunks {
			nodes[i] = models.IndexNode{
				ID:         fmt.Sprintf("%s_%d", doc.ID, i),
				Source:     doc.Source,
				ChunkIndex: i,
				Text:       chunk,
				Embedding:  vectors[i],
			}
		}

		if err := b.config.Store.Upsert(ctx, nodes); err != nil {
			return 0, fmt.Errorf("storing %s: %w", doc.Source, err)
		}
		total += len(nodes)

		if b.config.OnDocument != nil {
			b.config.OnDocument(doc.ID)
		}
	}

	if err := b.config.Store.Persist(); err != nil {
		return 0, fmt.Errorf("persisting index: %w", err)
	}
	return total, nil
}
