package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	OpenAI struct {
		APIKey         string  `yaml:"-"` // environment only, never from file
		BaseURL        string  `yaml:"base_url"`
		Model          string  `yaml:"model"`
		EmbeddingModel string  `yaml:"embedding_model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float64 `yaml:"temperature"`
	} `yaml:"openai"`

	Paths struct {
		DocumentsDir string `yaml:"documents_dir"`
		IndexFile    string `yaml:"index_file"`
		RSSURLs      string `yaml:"rss_urls"`
		ArticleURLs  string `yaml:"article_urls"`
	} `yaml:"paths"`

	Store struct {
		Backend   string `yaml:"backend"` // "file" or "pgvector"
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
		VectorDim int    `yaml:"vector_dim"`
	} `yaml:"store"`

	Scraper struct {
		RateLimit   float64 `yaml:"rate_limit"`
		TimeoutSecs int     `yaml:"timeout_secs"`
	} `yaml:"scraper"`

	Processor struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
	} `yaml:"processor"`

	Query struct {
		TopK      int  `yaml:"top_k"`
		BatchSize int  `yaml:"batch_size"`
		Spinner   bool `yaml:"spinner"`
	} `yaml:"query"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/docquery/config.yaml"),
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.OpenAI.Model == "" {
		config.OpenAI.Model = "gpt-3.5-turbo"
	}
	if config.OpenAI.EmbeddingModel == "" {
		config.OpenAI.EmbeddingModel = "text-embedding-ada-002"
	}
	if config.OpenAI.MaxTokens == 0 {
		config.OpenAI.MaxTokens = 512
	}
	if config.OpenAI.Temperature == 0 {
		config.OpenAI.Temperature = 1.0
	}

	if config.Paths.DocumentsDir == "" {
		config.Paths.DocumentsDir = filepath.Join("data", "documents")
	}
	if config.Paths.IndexFile == "" {
		config.Paths.IndexFile = filepath.Join("data", "indexes", "index.json")
	}
	if config.Paths.RSSURLs == "" {
		config.Paths.RSSURLs = filepath.Join("data", "rss_urls.json")
	}
	if config.Paths.ArticleURLs == "" {
		config.Paths.ArticleURLs = filepath.Join("data", "article_urls.json")
	}

	if config.Store.Backend == "" {
		config.Store.Backend = "file"
	}
	if config.Store.TableName == "" {
		config.Store.TableName = "documents"
	}
	if config.Store.VectorDim == 0 {
		config.Store.VectorDim = 1536
	}

	if config.Scraper.RateLimit == 0 {
		config.Scraper.RateLimit = 2.0
	}
	if config.Scraper.TimeoutSecs == 0 {
		config.Scraper.TimeoutSecs = 30
	}

	if config.Processor.ChunkSize == 0 {
		config.Processor.ChunkSize = 1024
	}
	if config.Processor.ChunkOverlap == 0 {
		config.Processor.ChunkOverlap = 20
	}

	if config.Query.TopK == 0 {
		config.Query.TopK = 3
	}
	if config.Query.BatchSize == 0 {
		config.Query.BatchSize = 32
	}
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.OpenAI.APIKey = key
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.OpenAI.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Store.URL = dbURL
	}
}
