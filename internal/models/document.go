package models

// Document is one ingestible unit of text with its source metadata.
// It exists only between loading and indexing.
type Document struct {
	ID       string
	Source   string // originating file path or URL
	Title    string
	Content  string
	Metadata map[string]interface{}
}

// ProcessedDocument is a Document split into index-ready chunks.
type ProcessedDocument struct {
	Document
	Chunks []string
}

// IndexNode is one embedded chunk as persisted in the vector index.
type IndexNode struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
}

// ScoredNode is a matched index node with its retrieval score.
// Score is the cosine similarity between the node and the query embedding.
type ScoredNode struct {
	ID         string
	Source     string
	ChunkIndex int
	Text       string
	Score      float64
}

// QueryResult carries everything needed to print one query's output:
// the ranked source nodes and the in-flight answer stream. Fragments is
// closed when the stream ends; Done then yields the stream error, if any.
type QueryResult struct {
	Query     string
	Nodes     []ScoredNode
	Fragments <-chan string
	Done      <-chan error
}
