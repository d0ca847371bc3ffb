package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"docquery/internal/errs"
	"docquery/internal/models"
)

// FileIndex is a vector index persisted wholesale as a single JSON
// file. Search is brute-force cosine similarity, which is plenty for a
// personal corpus.
type FileIndex struct {
	path  string
	nodes []models.IndexNode
}

// NewFileIndex returns an empty index that Persist will write to path.
// Used by indexing runs; any previous index file is overwritten.
func NewFileIndex(path string) *FileIndex {
	return &FileIndex{path: path}
}

// OpenFileIndex loads a previously persisted index read-only. A missing
// or malformed file is a configuration error: the user has to run an
// indexing mode first.
func OpenFileIndex(path string) (*FileIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading index %s (run with -u files or -u rss first): %v: %w", path, err, errs.ErrConfiguration)
	}

	var doc fileIndexDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding index %s: %v: %w", path, err, errs.ErrConfiguration)
	}

	return &FileIndex{path: path, nodes: doc.Nodes}, nil
}

type fileIndexDoc struct {
	Nodes []models.IndexNode `json:"nodes"`
}

func (f *FileIndex) Upsert(_ context.Context, nodes []models.IndexNode) error {
	byID := make(map[string]int, len(f.nodes))
	for i, n := range f.nodes {
		byID[n.ID] = i
	}

	for _, node := range nodes {
		if len(node.Embedding) == 0 {
			return fmt.Errorf("node %s has no embedding", node.ID)
		}
		if i, ok := byID[node.ID]; ok {
			f.nodes[i] = node
		} else {
			byID[node.ID] = len(f.nodes)
			f.nodes = append(f.nodes, node)
		}
	}
	return nil
}

func (f *FileIndex) Search(_ context.Context, embedding []float32, topK int) ([]models.ScoredNode, error) {
	if topK <= 0 {
		topK = 3
	}

	scored := make([]models.ScoredNode, 0, len(f.nodes))
	for _, node := range f.nodes {
		scored = append(scored, models.ScoredNode{
			ID:         node.ID,
			Source:     node.Source,
			ChunkIndex: node.ChunkIndex,
			Text:       node.Text,
			Score:      cosine(embedding, node.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Persist writes the whole index through a temp file and rename, so a
// reader never sees a half-written file.
func (f *FileIndex) Persist() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %v", filepath.Dir(f.path), err)
	}

	data, err := json.Marshal(fileIndexDoc{Nodes: f.nodes})
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %v", tmp, err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileIndex) Close() error { return nil }

// Len reports how many nodes the index holds.
func (f *FileIndex) Len() int { return len(f.nodes) }

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
