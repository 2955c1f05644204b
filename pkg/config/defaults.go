package config

const (
	defaultServerListen = ":8081"

	defaultClientAPITarget = "http://localhost:8081"

	defaultCorpusDir = "corpus"

	defaultOracleProfile = "expert"

	defaultVectorProvider = "sqlite"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultLLMProvider = "ollama"
	defaultLLMTarget   = "http://localhost:11434"
	defaultLLMModel    = "llama3.2"

	defaultEventStreamProvider = "nop"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultServerListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Corpus: CorpusConfig{
			Dir: defaultCorpusDir,
		},
		Oracle: OracleConfig{
			Profile: defaultOracleProfile,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
			Target:   defaultLLMTarget,
			Model:    defaultLLMModel,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
		},
	}
}
