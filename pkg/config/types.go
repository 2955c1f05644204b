package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent verbatim configuration stored as
// config.toml in the .verbatim/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Server      ServerConfig      `toml:"server"`
	Client      ClientConfig      `toml:"client"`
	Corpus      CorpusConfig      `toml:"corpus"`
	Oracle      OracleConfig      `toml:"oracle"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	LLM         LLMConfig         `toml:"llm"`
	EventStream EventStreamConfig `toml:"event_stream"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Listen    string `toml:"listen,omitempty"`
	StaticDir string `toml:"static_dir,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// server (e.g. verbatim ask, verbatim chat). Values are full URLs.
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// CorpusConfig holds source document settings. ChunkSize and Overlap of zero
// defer to the active profile's chunking policy.
type CorpusConfig struct {
	Dir       string `toml:"dir,omitempty"`
	ChunkSize int    `toml:"chunk_size,omitempty"`
	Overlap   int    `toml:"overlap,omitempty"`
}

// OracleConfig holds answer pipeline settings. TopK of zero defers to the
// active profile's retrieval depth.
type OracleConfig struct {
	Profile  string `toml:"profile,omitempty"`
	TopK     int    `toml:"top_k,omitempty"`
	MaxTurns int    `toml:"max_turns,omitempty"`
}

// VectorStoreConfig holds vector store settings. Target is a URL for chroma
// and qdrant, a file path for sqlite, and a DSN for pgvector.
type VectorStoreConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Collection string `toml:"collection,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// LLMConfig holds language model provider settings.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
}

// EventStreamConfig holds answer event publishing settings.
type EventStreamConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"server.static_dir": {
		get: func(c *Config) string { return c.Server.StaticDir },
		set: func(c *Config, v string) error { c.Server.StaticDir = v; return nil },
	},
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"corpus.dir": {
		get: func(c *Config) string { return c.Corpus.Dir },
		set: func(c *Config, v string) error { c.Corpus.Dir = v; return nil },
	},
	"corpus.chunk_size": {
		get: func(c *Config) string { return formatInt(c.Corpus.ChunkSize) },
		set: func(c *Config, v string) error { return parseInt(v, "corpus.chunk_size", &c.Corpus.ChunkSize) },
	},
	"corpus.overlap": {
		get: func(c *Config) string { return formatInt(c.Corpus.Overlap) },
		set: func(c *Config, v string) error { return parseInt(v, "corpus.overlap", &c.Corpus.Overlap) },
	},
	"oracle.profile": {
		get: func(c *Config) string { return c.Oracle.Profile },
		set: func(c *Config, v string) error { c.Oracle.Profile = v; return nil },
	},
	"oracle.top_k": {
		get: func(c *Config) string { return formatInt(c.Oracle.TopK) },
		set: func(c *Config, v string) error { return parseInt(v, "oracle.top_k", &c.Oracle.TopK) },
	},
	"oracle.max_turns": {
		get: func(c *Config) string { return formatInt(c.Oracle.MaxTurns) },
		set: func(c *Config, v string) error { return parseInt(v, "oracle.max_turns", &c.Oracle.MaxTurns) },
	},
	"vector_store.provider": {
		get: func(c *Config) string { return c.VectorStore.Provider },
		set: func(c *Config, v string) error { c.VectorStore.Provider = v; return nil },
	},
	"vector_store.target": {
		get: func(c *Config) string { return c.VectorStore.Target },
		set: func(c *Config, v string) error { c.VectorStore.Target = v; return nil },
	},
	"vector_store.collection": {
		get: func(c *Config) string { return c.VectorStore.Collection },
		set: func(c *Config, v string) error { c.VectorStore.Collection = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"llm.provider": {
		get: func(c *Config) string { return c.LLM.Provider },
		set: func(c *Config, v string) error { c.LLM.Provider = v; return nil },
	},
	"llm.target": {
		get: func(c *Config) string { return c.LLM.Target },
		set: func(c *Config, v string) error { c.LLM.Target = v; return nil },
	},
	"llm.model": {
		get: func(c *Config) string { return c.LLM.Model },
		set: func(c *Config, v string) error { c.LLM.Model = v; return nil },
	},
	"llm.api_key": {
		get: func(c *Config) string { return c.LLM.APIKey },
		set: func(c *Config, v string) error { c.LLM.APIKey = v; return nil },
	},
	"event_stream.provider": {
		get: func(c *Config) string { return c.EventStream.Provider },
		set: func(c *Config, v string) error { c.EventStream.Provider = v; return nil },
	},
	"event_stream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error {
			if v == "" {
				c.EventStream.Brokers = nil
				return nil
			}
			c.EventStream.Brokers = strings.Split(v, ",")
			return nil
		},
	},
	"event_stream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
}

func formatInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func parseInt(v, key string, target *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*target = n
	return nil
}
