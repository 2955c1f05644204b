// Package pgvector provides a Postgres-backed vector driver using the
// pgvector extension.
package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/pkg/vector"
)

// DefaultTableName is the default table name for storing corpus embeddings.
const DefaultTableName = "verbatim_chunks"

// PGVectorDriver implements vector.Driver using Postgres with pgvector.
type PGVectorDriver struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// Config holds configuration for the pgvector driver.
type Config struct {
	// DSN is the Postgres connection string.
	DSN string

	// TableName is the table to store chunks in.
	// Defaults to DefaultTableName if empty.
	TableName string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewPGVectorDriver creates a new pgvector driver, creating the extension
// and tables if they do not exist yet.
func NewPGVectorDriver(c Config, logger *zap.Logger) (*PGVectorDriver, error) {
	if c.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("pgvector embedding dimensions cannot be 0, must be configured")
	}

	table := c.TableName
	if table == "" {
		table = DefaultTableName
	}

	db, err := sql.Open("pgx", c.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: pinging postgres: %v", vector.ErrConnection, err)
	}

	if _, err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			chunk_id UUID PRIMARY KEY,
			source TEXT NOT NULL DEFAULT '',
			page INTEGER NOT NULL DEFAULT 0,
			seq INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL DEFAULT '',
			embedding vector(%d) NOT NULL
		)
	`, table, c.Dimensions)
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chunks table: %w", err)
	}

	createMeta := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			embedding_model TEXT NOT NULL,
			dimensions INTEGER NOT NULL
		)
	`, table)
	if _, err := db.Exec(createMeta); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating meta table: %w", err)
	}

	logger.Info("pgvector driver initialized",
		zap.String("table", table),
		zap.Uint("dimensions", c.Dimensions),
	)

	return &PGVectorDriver{
		db:     db,
		table:  table,
		logger: logger,
	}, nil
}

// formatVector renders an embedding as a pgvector literal, e.g. "[0.1,0.2]".
func formatVector(v []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Add stores records with their embeddings.
// If a record with the same ID already exists, it is updated.
func (d *PGVectorDriver) Add(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := fmt.Sprintf(`
		INSERT INTO %s (chunk_id, source, page, seq, content, embedding)
		VALUES ($1, $2, $3, $4, $5, $6::vector)
		ON CONFLICT (chunk_id) DO UPDATE SET
			source = EXCLUDED.source,
			page = EXCLUDED.page,
			seq = EXCLUDED.seq,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding
	`, d.table)

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, upsert,
			rec.ID, rec.Source, rec.Page, rec.Seq, rec.Text, formatVector(rec.Embedding),
		); err != nil {
			return fmt.Errorf("upserting chunk %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("added records to pgvector",
		zap.Int("count", len(records)),
	)

	return nil
}

// Query finds the topK most similar records to the given embedding using
// cosine distance.
func (d *PGVectorDriver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	query := fmt.Sprintf(`
		SELECT chunk_id, source, page, seq, content, embedding <=> $1::vector AS distance
		FROM %s
		ORDER BY distance, chunk_id
		LIMIT $2
	`, d.table)

	rows, err := d.db.QueryContext(ctx, query, formatVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.QueryResult
	for rows.Next() {
		var rec vector.Record
		var distance float64
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.Page, &rec.Seq, &rec.Text, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		results = append(results, vector.QueryResult{
			Record: rec,
			// Cosine distance is in [0, 2]; 1 - distance gives cosine similarity.
			Score: float32(1.0 - distance),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried pgvector",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Count reports how many records the table holds.
func (d *PGVectorDriver) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, d.table)
	if err := d.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// WriteMeta persists index metadata.
func (d *PGVectorDriver) WriteMeta(ctx context.Context, meta vector.IndexMeta) error {
	query := fmt.Sprintf(`
		INSERT INTO %s_meta (id, embedding_model, dimensions) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET embedding_model = EXCLUDED.embedding_model, dimensions = EXCLUDED.dimensions
	`, d.table)
	if _, err := d.db.ExecContext(ctx, query, meta.EmbeddingModel, meta.Dimensions); err != nil {
		return fmt.Errorf("writing index metadata: %w", err)
	}
	return nil
}

// ReadMeta loads index metadata.
func (d *PGVectorDriver) ReadMeta(ctx context.Context) (vector.IndexMeta, error) {
	var meta vector.IndexMeta
	query := fmt.Sprintf(`SELECT embedding_model, dimensions FROM %s_meta WHERE id = 1`, d.table)
	err := d.db.QueryRowContext(ctx, query).Scan(&meta.EmbeddingModel, &meta.Dimensions)
	if err == sql.ErrNoRows {
		return vector.IndexMeta{}, vector.ErrNoMeta
	}
	if err != nil {
		return vector.IndexMeta{}, fmt.Errorf("reading index metadata: %w", err)
	}
	return meta, nil
}

// Close releases resources held by the driver.
func (d *PGVectorDriver) Close() error {
	return d.db.Close()
}

var (
	_ vector.Driver    = (*PGVectorDriver)(nil)
	_ vector.MetaStore = (*PGVectorDriver)(nil)
)
