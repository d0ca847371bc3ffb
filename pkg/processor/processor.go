package processor

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"docquery/internal/models"
)

type ProcessorConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

type Processor struct {
	config   ProcessorConfig
	splitter textsplitter.RecursiveCharacter
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1024
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 20
	}

	return Processor{
		config: config,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(config.ChunkSize),
			textsplitter.WithChunkOverlap(config.ChunkOverlap),
		),
	}
}

// Process splits each document's cleaned content into overlapping
// chunks. Documents that yield no chunks are dropped.
func (p *Processor) Process(docs []models.Document) ([]models.ProcessedDocument, error) {
	var processed []models.ProcessedDocument

	for _, doc := range docs {
		chunks, err := p.splitter.SplitText(p.cleanText(doc.Content))
		if err != nil {
			return nil, fmt.Errorf("splitting %s: %v", doc.Source, err)
		}

		var kept []string
		for _, chunk := range chunks {
			if strings.TrimSpace(chunk) != "" {
				kept = append(kept, chunk)
			}
		}
		if len(kept) == 0 {
			continue
		}

		processed = append(processed, models.ProcessedDocument{
			Document: doc,
			Chunks:   kept,
		})
	}

	return processed, nil
}

func (p *Processor) cleanText(text string) string {
	// Collapse runs of whitespace but keep paragraph breaks so the
	// splitter can prefer them as boundaries.
	paragraphs := strings.Split(text, "\n\n")
	for i, para := range paragraphs {
		paragraphs[i] = strings.Join(strings.Fields(para), " ")
	}

	var kept []string
	for _, para := range paragraphs {
		if para != "" {
			kept = append(kept, para)
		}
	}
	return strings.Join(kept, "\n\n")
}
