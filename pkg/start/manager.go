// Package start wires configuration into a ready-to-serve oracle engine:
// it resolves the active profile, builds the vector store, embedder,
// generator, and event publisher, and hands back the assembled engine.
package start

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/pkg/embeddings"
	embedollama "github.com/papercomputeco/verbatim/pkg/embeddings/ollama"
	"github.com/papercomputeco/verbatim/pkg/eventstream"
	eskafka "github.com/papercomputeco/verbatim/pkg/eventstream/kafka"
	"github.com/papercomputeco/verbatim/pkg/eventstream/nop"
	"github.com/papercomputeco/verbatim/pkg/llm"
	llmollama "github.com/papercomputeco/verbatim/pkg/llm/ollama"
	llmopenai "github.com/papercomputeco/verbatim/pkg/llm/openai"
	"github.com/papercomputeco/verbatim/pkg/oracle"
	"github.com/papercomputeco/verbatim/pkg/vector"
	"github.com/papercomputeco/verbatim/pkg/vector/chroma"
	"github.com/papercomputeco/verbatim/pkg/vector/pgvector"
	"github.com/papercomputeco/verbatim/pkg/vector/qdrant"
	"github.com/papercomputeco/verbatim/pkg/vector/sqlitevec"
)

// Manager builds engine collaborators from resolved configuration.
type Manager struct {
	v      *viper.Viper
	logger *zap.Logger
}

// NewManager creates a startup manager over a resolved viper instance.
func NewManager(v *viper.Viper, logger *zap.Logger) *Manager {
	return &Manager{v: v, logger: logger}
}

// Profile resolves the active profile and applies any chunking or retrieval
// overrides from configuration.
func (m *Manager) Profile() oracle.Profile {
	profile := oracle.ProfileByName(m.v.GetString("oracle.profile"))

	if size := m.v.GetInt("corpus.chunk_size"); size > 0 {
		profile.Chunking.ChunkSize = size
	}
	if overlap := m.v.GetInt("corpus.overlap"); overlap > 0 {
		profile.Chunking.Overlap = overlap
	}
	if k := m.v.GetInt("oracle.top_k"); k > 0 {
		profile.TopK = k
	}

	return profile
}

// NewVectorDriver builds the configured vector store backend.
func (m *Manager) NewVectorDriver() (vector.Driver, error) {
	provider := strings.ToLower(m.v.GetString("vector_store.provider"))
	target := m.v.GetString("vector_store.target")
	collection := m.v.GetString("vector_store.collection")
	dimensions := m.v.GetUint("embedding.dimensions")

	switch provider {
	case "sqlite", "sqlitevec":
		if target == "" {
			target = ":memory:"
		}
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     target,
			Dimensions: dimensions,
		}, m.logger)

	case "chroma":
		return chroma.NewChromaDriver(chroma.Config{
			URL:            target,
			CollectionName: collection,
		}, m.logger)

	case "qdrant":
		host, port, err := splitHostPort(target)
		if err != nil {
			return nil, fmt.Errorf("parsing qdrant target: %w", err)
		}
		return qdrant.NewQdrantDriver(qdrant.Config{
			Host:           host,
			Port:           port,
			CollectionName: collection,
			Dimensions:     uint64(dimensions),
		}, m.logger)

	case "pgvector", "postgres":
		return pgvector.NewPGVectorDriver(pgvector.Config{
			DSN:        target,
			TableName:  collection,
			Dimensions: dimensions,
		}, m.logger)

	default:
		return nil, fmt.Errorf("unsupported vector store provider: %q", provider)
	}
}

// NewEmbedder builds the configured embedding backend.
func (m *Manager) NewEmbedder() (embeddings.Embedder, error) {
	provider := strings.ToLower(m.v.GetString("embedding.provider"))

	switch provider {
	case "ollama", "":
		return embedollama.NewEmbedder(embedollama.EmbedderConfig{
			BaseURL: m.v.GetString("embedding.target"),
			Model:   m.v.GetString("embedding.model"),
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", provider)
	}
}

// NewGenerator builds the configured language model backend.
func (m *Manager) NewGenerator() (llm.Generator, error) {
	provider := strings.ToLower(m.v.GetString("llm.provider"))

	switch provider {
	case "ollama", "":
		return llmollama.NewGenerator(llmollama.GeneratorConfig{
			BaseURL: m.v.GetString("llm.target"),
			Model:   m.v.GetString("llm.model"),
		})

	case "openai":
		return llmopenai.NewGenerator(llmopenai.GeneratorConfig{
			APIKey:  m.v.GetString("llm.api_key"),
			BaseURL: m.v.GetString("llm.target"),
			Model:   m.v.GetString("llm.model"),
		})

	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", provider)
	}
}

// NewPublisher builds the configured answer event publisher.
func (m *Manager) NewPublisher() (eventstream.Publisher, error) {
	provider := strings.ToLower(m.v.GetString("event_stream.provider"))

	switch provider {
	case "nop", "":
		return nop.NewPublisher(), nil

	case "kafka":
		return eskafka.NewPublisher(eskafka.Config{
			Brokers: m.v.GetStringSlice("event_stream.brokers"),
			Topic:   m.v.GetString("event_stream.topic"),
		}, m.logger)

	default:
		return nil, fmt.Errorf("unsupported event stream provider: %q", provider)
	}
}

// NewEngine assembles the full pipeline. Callers own Close on the returned
// engine, which closes every collaborator built here.
func (m *Manager) NewEngine() (*oracle.Engine, error) {
	driver, err := m.NewVectorDriver()
	if err != nil {
		return nil, fmt.Errorf("creating vector driver: %w", err)
	}

	embedder, err := m.NewEmbedder()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	generator, err := m.NewGenerator()
	if err != nil {
		embedder.Close()
		driver.Close()
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	publisher, err := m.NewPublisher()
	if err != nil {
		generator.Close()
		embedder.Close()
		driver.Close()
		return nil, fmt.Errorf("creating publisher: %w", err)
	}

	engine, err := oracle.NewEngine(oracle.Config{
		Profile:   m.Profile(),
		CorpusDir: m.v.GetString("corpus.dir"),
		MaxTurns:  m.v.GetInt("oracle.max_turns"),
		Embedder:  embedder,
		Driver:    driver,
		Generator: generator,
		Publisher: publisher,
		Logger:    m.logger,
	})
	if err != nil {
		publisher.Close()
		generator.Close()
		embedder.Close()
		driver.Close()
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	return engine, nil
}

// splitHostPort parses "host:port" with a default gRPC port of 6334.
func splitHostPort(target string) (string, int, error) {
	if target == "" {
		return "localhost", 6334, nil
	}

	host, portStr, found := strings.Cut(target, ":")
	if !found {
		return host, 6334, nil
	}

	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}

	return host, port, nil
}
