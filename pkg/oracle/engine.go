// Package oracle implements the retrieval-augmented answer pipeline: top-K
// retrieval over a chunk index, grounding prompt compilation, answer
// synthesis, evidence extraction, and per-session history.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/pkg/corpus"
	"github.com/papercomputeco/verbatim/pkg/embeddings"
	"github.com/papercomputeco/verbatim/pkg/eventstream"
	"github.com/papercomputeco/verbatim/pkg/eventstream/nop"
	"github.com/papercomputeco/verbatim/pkg/llm"
	"github.com/papercomputeco/verbatim/pkg/vector"
)

// embedBatchSize bounds one embedding call at index build time.
const embedBatchSize = 64

// Answer is the result of one query.
type Answer struct {
	// Text is the synthesized answer, or the grounding refusal.
	Text string `json:"text"`

	// Evidence cites the retrieved chunk supporting the answer. Empty when
	// retrieval returned nothing.
	Evidence []Evidence `json:"evidence"`
}

// Config holds the collaborators and parameters for an Engine.
type Config struct {
	// Profile selects chunking, retrieval depth, and persona.
	Profile Profile

	// CorpusDir is the directory of source documents used when the index
	// has to be built.
	CorpusDir string

	// MaxTurns caps per-session history. Zero uses DefaultMaxTurns.
	MaxTurns int

	Embedder  embeddings.Embedder
	Driver    vector.Driver
	Generator llm.Generator

	// Publisher receives an event per recorded answer. Optional; a nop
	// publisher is used when nil.
	Publisher eventstream.Publisher

	Logger *zap.Logger
}

// Engine composes the pipeline into the single query operation and owns lazy
// index initialization. One engine is constructed at process start and shared
// by all request handlers.
type Engine struct {
	profile   Profile
	corpusDir string

	ingestor  *corpus.Ingestor
	retriever *Retriever
	embedder  embeddings.Embedder
	driver    vector.Driver
	generator llm.Generator
	publisher eventstream.Publisher
	sessions  *SessionStore
	logger    *zap.Logger

	// initOnce guards index build/load. Concurrent first queries block on
	// the same in-flight initialization; the outcome is sticky.
	initOnce sync.Once
	initErr  error
}

// NewEngine creates an engine. The index is not touched until the first
// query or an explicit Init.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if cfg.Driver == nil {
		return nil, fmt.Errorf("vector driver is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = nop.NewPublisher()
	}

	ingestor, err := corpus.NewIngestor(cfg.Profile.Chunking, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating ingestor: %w", err)
	}

	return &Engine{
		profile:   cfg.Profile,
		corpusDir: cfg.CorpusDir,
		ingestor:  ingestor,
		retriever: NewRetriever(cfg.Embedder, cfg.Driver, cfg.Profile.TopK),
		embedder:  cfg.Embedder,
		driver:    cfg.Driver,
		generator: cfg.Generator,
		publisher: publisher,
		sessions:  NewSessionStore(cfg.MaxTurns),
		logger:    cfg.Logger,
	}, nil
}

// Init builds or loads the index. Called implicitly on first query; callers
// that want startup-time failures call it explicitly. Safe for concurrent
// use; the first outcome is sticky for the process lifetime.
func (e *Engine) Init(ctx context.Context) error {
	e.initOnce.Do(func() {
		e.initErr = e.initIndex(ctx)
		if e.initErr != nil {
			e.logger.Error("index initialization failed", zap.Error(e.initErr))
		}
	})
	return e.initErr
}

// Reindex rebuilds the index from the corpus directory unconditionally,
// upserting over any records already present. It also satisfies the
// one-time initialization so subsequent queries reuse the fresh index.
func (e *Engine) Reindex(ctx context.Context) error {
	err := e.buildIndex(ctx)
	e.initOnce.Do(func() { e.initErr = err })
	return err
}

func (e *Engine) initIndex(ctx context.Context) error {
	count, err := e.driver.Count(ctx)
	if err != nil {
		return fmt.Errorf("checking index population: %w", err)
	}

	if count > 0 {
		return e.validateIndex(ctx, count)
	}

	return e.buildIndex(ctx)
}

// validateIndex checks an already-populated index against the configured
// embedding model where the backend stores metadata. Backends without a
// metadata store treat the model match as an unchecked precondition.
func (e *Engine) validateIndex(ctx context.Context, count int) error {
	ms, ok := e.driver.(vector.MetaStore)
	if !ok {
		e.logger.Info("loaded existing index",
			zap.Int("records", count),
		)
		return nil
	}

	meta, err := ms.ReadMeta(ctx)
	if errors.Is(err, vector.ErrNoMeta) {
		e.logger.Warn("existing index has no embedding model metadata, assuming match",
			zap.String("model", e.embedder.Model()),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index metadata: %w", err)
	}

	if meta.EmbeddingModel != e.embedder.Model() {
		return fmt.Errorf("%w: index built with %q, configured %q",
			ErrModelMismatch, meta.EmbeddingModel, e.embedder.Model())
	}

	e.logger.Info("loaded existing index",
		zap.Int("records", count),
		zap.String("embedding_model", meta.EmbeddingModel),
	)
	return nil
}

// buildIndex ingests the corpus, embeds every chunk, and persists the
// records plus index metadata.
func (e *Engine) buildIndex(ctx context.Context) error {
	if e.corpusDir == "" {
		return fmt.Errorf("index is empty and no corpus directory is configured")
	}

	start := time.Now()
	chunks, err := e.ingestor.IngestDir(e.corpusDir)
	if err != nil {
		return fmt.Errorf("ingesting corpus: %w", err)
	}

	dimensions := 0
	for batch := 0; batch < len(chunks); batch += embedBatchSize {
		end := min(batch+embedBatchSize, len(chunks))

		texts := make([]string, end-batch)
		for i, chunk := range chunks[batch:end] {
			texts[i] = chunk.Text
		}

		vectors, err := e.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding chunks: %w", err)
		}

		records := make([]vector.Record, len(vectors))
		for i, emb := range vectors {
			chunk := chunks[batch+i]
			records[i] = vector.Record{
				ID:        chunk.ID,
				Embedding: emb,
				Text:      chunk.Text,
				Source:    chunk.Source,
				Page:      chunk.Page,
				Seq:       chunk.Seq,
			}
			dimensions = len(emb)
		}

		if err := e.driver.Add(ctx, records); err != nil {
			return fmt.Errorf("storing records: %w", err)
		}
	}

	if ms, ok := e.driver.(vector.MetaStore); ok {
		meta := vector.IndexMeta{
			EmbeddingModel: e.embedder.Model(),
			Dimensions:     dimensions,
		}
		if err := ms.WriteMeta(ctx, meta); err != nil {
			return fmt.Errorf("writing index metadata: %w", err)
		}
	}

	e.logger.Info("built index",
		zap.Int("chunks", len(chunks)),
		zap.Int("dimensions", dimensions),
		zap.String("embedding_model", e.embedder.Model()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Query answers one question. The pipeline is sequential: retrieve, compile,
// synthesize, extract. Failed queries are not appended to session history.
func (e *Engine) Query(ctx context.Context, sessionID, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrValidation
	}

	if err := e.Init(ctx); err != nil {
		return Answer{}, fmt.Errorf("%w: %w", ErrIndexUnavailable, err)
	}

	session := e.sessions.Acquire(sessionID)
	session.mu.Lock()
	defer session.mu.Unlock()

	start := time.Now()

	results, err := e.retriever.Retrieve(ctx, question)
	if err != nil {
		return Answer{}, err
	}

	prompt := CompilePrompt(e.profile.Persona, question, results)

	text, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, err
	}

	answer := Answer{
		Text:     strings.TrimSpace(text),
		Evidence: ExtractEvidence(results),
	}

	session.append(Turn{Question: question, Answer: answer})

	e.publishAnswer(ctx, sessionID, question, answer, time.Since(start))

	e.logger.Debug("answered question",
		zap.String("session_id", sessionID),
		zap.Int("retrieved", len(results)),
		zap.Bool("refusal", IsRefusal(answer.Text)),
		zap.Duration("took", time.Since(start)),
	)

	return answer, nil
}

// publishAnswer emits the recorded-answer event. Best effort: a publish
// failure is logged, never surfaced to the caller.
func (e *Engine) publishAnswer(ctx context.Context, sessionID, question string, answer Answer, took time.Duration) {
	evidence := make([]eventstream.EvidenceRecord, len(answer.Evidence))
	for i, ev := range answer.Evidence {
		evidence[i] = eventstream.EvidenceRecord{
			Quote:    ev.Quote,
			Source:   ev.Source,
			Page:     ev.Page,
			Supports: ev.Supports,
		}
	}

	event := &eventstream.AnswerRecordedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeAnswerRecorded,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		SessionID:     sessionID,
		Profile:       e.profile.Name,
		Question:      question,
		Answer:        answer.Text,
		Evidence:      evidence,
		DurationMs:    took.Milliseconds(),
	}

	if err := e.publisher.PublishAnswer(ctx, event); err != nil {
		e.logger.Warn("publishing answer event failed", zap.Error(err))
	}
}

// History returns the recorded turns for a session, oldest first.
func (e *Engine) History(sessionID string) []Turn {
	return e.sessions.Acquire(sessionID).History()
}

// Profile returns the engine's active profile.
func (e *Engine) Profile() Profile {
	return e.profile
}

// Close releases the engine's collaborators.
func (e *Engine) Close() error {
	var errs []error
	if err := e.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := e.generator.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := e.embedder.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := e.driver.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
