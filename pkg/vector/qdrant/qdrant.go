// Package qdrant provides a Qdrant-backed vector driver over gRPC.
//
// Qdrant has no collection-level metadata, so the driver does not implement
// vector.MetaStore and the embedding model match is an unchecked
// precondition of reusing an existing collection.
package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/pkg/vector"
)

// DefaultCollectionName is the default collection name for storing
// corpus embeddings.
const DefaultCollectionName = "verbatim"

// QdrantDriver implements vector.Driver using the Qdrant gRPC client.
type QdrantDriver struct {
	client         *qdrant.Client
	collectionName string
	logger         *zap.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host is the Qdrant gRPC host (e.g., "localhost").
	Host string

	// Port is the Qdrant gRPC port (usually 6334).
	Port int

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the number of dimensions for the embedding vectors.
	// Used when the collection has to be created.
	Dimensions uint64
}

// NewQdrantDriver creates a new Qdrant vector driver, creating the collection
// if it does not exist yet.
func NewQdrantDriver(c Config, logger *zap.Logger) (*QdrantDriver, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: c.Host,
		Port: c.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant: %v", vector.ErrConnection, err)
	}

	ctx := context.Background()
	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: checking collection %q: %v", vector.ErrConnection, collectionName, err)
	}

	if !exists {
		err := client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     c.Dimensions,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("creating collection %q: %w", collectionName, err)
		}
	}

	logger.Info("connected to Qdrant",
		zap.String("host", c.Host),
		zap.Int("port", c.Port),
		zap.String("collection", collectionName),
	)

	return &QdrantDriver{
		client:         client,
		collectionName: collectionName,
		logger:         logger,
	}, nil
}

// Add stores records with their embeddings. Upsert semantics: an existing
// point with the same ID is replaced.
func (d *QdrantDriver) Add(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(rec.ID),
			Vectors: qdrant.NewVectors(rec.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"source":  rec.Source,
				"page":    int64(rec.Page),
				"seq":     int64(rec.Seq),
				"content": rec.Text,
			}),
		}
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("added records to qdrant",
		zap.Int("count", len(records)),
	)

	return nil
}

// Query finds the topK most similar records to the given embedding.
func (d *QdrantDriver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	limit := uint64(topK)
	hits, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(hits))
	for _, hit := range hits {
		rec := vector.Record{}
		if id := hit.GetId(); id != nil {
			rec.ID = id.GetUuid()
		}

		payload := hit.GetPayload()
		if val, ok := payload["source"]; ok {
			rec.Source = val.GetStringValue()
		}
		if val, ok := payload["page"]; ok {
			rec.Page = int(val.GetIntegerValue())
		}
		if val, ok := payload["seq"]; ok {
			rec.Seq = int(val.GetIntegerValue())
		}
		if val, ok := payload["content"]; ok {
			rec.Text = val.GetStringValue()
		}

		results = append(results, vector.QueryResult{
			Record: rec,
			Score:  hit.GetScore(),
		})
	}

	d.logger.Debug("queried qdrant",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Count reports how many points the collection holds.
func (d *QdrantDriver) Count(ctx context.Context) (int, error) {
	exact := true
	count, err := d.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: d.collectionName,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("counting points: %w", err)
	}
	return int(count), nil
}

// Close releases resources held by the driver.
func (d *QdrantDriver) Close() error {
	return d.client.Close()
}

var _ vector.Driver = (*QdrantDriver)(nil)
