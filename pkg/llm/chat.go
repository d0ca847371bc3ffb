package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"docquery/internal/errs"
	"docquery/internal/models"
)

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	SystemTemplate string
	APIKey         string
	BaseURL        string // override for the OpenAI-compatible endpoint
}

// ChatEngine answers queries with the hosted model, grounding it on the
// retrieved source nodes.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
}

// NewWithConfig creates a new ChatEngine with the given configuration.
func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	if config.Model == "" {
		config.Model = "gpt-3.5-turbo"
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 512
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = "You are a helpful assistant. Answer the question using only the provided context passages. If the context does not contain the answer, say so."
	}

	opts := []openai.Option{openai.WithModel(config.Model)}
	if config.APIKey != "" {
		opts = append(opts, openai.WithToken(config.APIKey))
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &ChatEngine{
		config: config,
		llm:    llm,
	}, nil
}

// ChatStream answers the query grounded on the given nodes, delivering
// the answer as fragments on the returned channel in arrival order. The
// fragment channel is closed when the stream ends; the error channel
// then yields the terminal error, or nil.
func (ce *ChatEngine) ChatStream(ctx context.Context, query string, nodes []models.ScoredNode) (<-chan string, <-chan error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, ce.config.SystemTemplate),
		llms.TextParts(llms.ChatMessageTypeHuman, ce.buildContext(nodes)),
		llms.TextParts(llms.ChatMessageTypeHuman, query),
	}

	fragments := make(chan string)
	done := make(chan error, 1)

	go func() {
		defer close(fragments)
		defer close(done)

		_, err := ce.llm.GenerateContent(ctx, content,
			llms.WithMaxTokens(ce.config.MaxTokens),
			llms.WithTemperature(ce.config.Temperature),
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				select {
				case fragments <- string(chunk):
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}),
		)
		if err != nil {
			done <- fmt.Errorf("chat completion: %v: %w", err, errs.ErrNetwork)
		}
	}()

	return fragments, done
}

// Chat is the non-streaming variant of ChatStream.
func (ce *ChatEngine) Chat(ctx context.Context, query string, nodes []models.ScoredNode) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, ce.config.SystemTemplate),
		llms.TextParts(llms.ChatMessageTypeHuman, ce.buildContext(nodes)),
		llms.TextParts(llms.ChatMessageTypeHuman, query),
	}

	resp, err := ce.llm.GenerateContent(ctx, content,
		llms.WithMaxTokens(ce.config.MaxTokens),
		llms.WithTemperature(ce.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("chat completion: %v: %w", err, errs.ErrNetwork)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", errs.ErrNetwork)
	}
	return resp.Choices[0].Content, nil
}

func (ce *ChatEngine) buildContext(nodes []models.ScoredNode) string {
	var b strings.Builder
	b.WriteString("Context passages:\n\n")
	for _, node := range nodes {
		fmt.Fprintf(&b, "Source: %s\n%s\n\n", node.Source, node.Text)
	}
	return b.String()
}
