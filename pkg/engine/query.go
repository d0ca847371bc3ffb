package engine

import (
	"context"

	"docquery/internal/models"
	"docquery/internal/types"
)

// Chatter produces a streamed answer grounded on retrieved nodes.
// *llm.ChatEngine satisfies it.
type Chatter interface {
	ChatStream(ctx context.Context, query string, nodes []models.ScoredNode) (<-chan string, <-chan error)
}

type EngineConfig struct {
	Store    types.VectorStore
	Embedder types.Embedder
	Chat     Chatter
	TopK     int
}

type Engine struct {
	config EngineConfig
}

func NewEngine(config EngineConfig) *Engine {
	if config.TopK == 0 {
		config.TopK = 3
	}
	return &Engine{config: config}
}

// Query embeds the query text, retrieves the top matching nodes and
// starts the answer stream. Errors here (embedding or retrieval) are
// recoverable: the caller reports them and returns to the prompt.
func (e *Engine) Query(ctx context.Context, text string) (*models.QueryResult, error) {
	vector, err := e.config.Embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	nodes, err := e.config.Store.Search(ctx, vector, e.config.TopK)
	if err != nil {
		return nil, err
	}

	fragments, done := e.config.Chat.ChatStream(ctx, text, nodes)

	return &models.QueryResult{
		Query:     text,
		Nodes:     nodes,
		Fragments: fragments,
		Done:      done,
	}, nil
}
