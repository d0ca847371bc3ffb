package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"docquery/internal/models"
)

// PGVectorConfig configures the optional Postgres-backed index.
type PGVectorConfig struct {
	ConnString string
	TableName  string
	VectorDim  int

	// Reset truncates the table on startup so an indexing run
	// overwrites the index wholesale, matching the file backend.
	Reset bool
}

// PGVector stores index nodes in a Postgres table with a pgvector
// column. Selected via store.backend: pgvector in the config.
type PGVector struct {
	config PGVectorConfig
	pool   *pgxpool.Pool
}

func NewPGVectorWithConfig(ctx context.Context, config PGVectorConfig) (*PGVector, error) {
	if config.TableName == "" {
		config.TableName = "documents"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 1536 // OpenAI ada-002
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	pg := &PGVector{
		config: config,
		pool:   pool,
	}

	if err := pg.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pg, nil
}

func (pg *PGVector) initialize(ctx context.Context) error {
	_, err := pg.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			chunk_index INTEGER,
			content TEXT,
			embedding vector(%d)
		)`, pg.config.TableName, pg.config.VectorDim)

	_, err = pg.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		pg.config.TableName, pg.config.TableName)

	_, err = pg.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	if pg.config.Reset {
		if _, err := pg.pool.Exec(ctx, "TRUNCATE "+pg.config.TableName); err != nil {
			return fmt.Errorf("failed to reset table: %v", err)
		}
	}

	return nil
}

func (pg *PGVector) Upsert(ctx context.Context, nodes []models.IndexNode) error {
	tx, err := pg.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, source, chunk_index, content, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			source = EXCLUDED.source,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`,
		pg.config.TableName)

	for _, node := range nodes {
		_, err = tx.Exec(ctx, stmt,
			node.ID,
			node.Source,
			node.ChunkIndex,
			sanitizeUTF8(node.Text),
			pgvector.NewVector(node.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert node %s: %v", node.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (pg *PGVector) Search(ctx context.Context, embedding []float32, topK int) ([]models.ScoredNode, error) {
	if topK <= 0 {
		topK = 3
	}

	query := fmt.Sprintf(`
		SELECT id, source, chunk_index, content, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pg.config.TableName)

	rows, err := pg.pool.Query(ctx, query, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %v", err)
	}
	defer rows.Close()

	var nodes []models.ScoredNode
	for rows.Next() {
		var node models.ScoredNode
		err := rows.Scan(
			&node.ID,
			&node.Source,
			&node.ChunkIndex,
			&node.Text,
			&node.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		nodes = append(nodes, node)
	}

	return nodes, rows.Err()
}

// Persist is a no-op: rows are durable once Upsert commits.
func (pg *PGVector) Persist() error { return nil }

func (pg *PGVector) Close() error {
	if pg.pool != nil {
		pg.pool.Close()
	}
	return nil
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
