package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// Ingestor turns source documents into chunks ready for indexing.
type Ingestor struct {
	splitter *Splitter
	logger   *zap.Logger
}

// NewIngestor creates an ingestor with the given chunking policy.
func NewIngestor(policy Policy, logger *zap.Logger) (*Ingestor, error) {
	splitter, err := NewSplitter(policy)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking policy: %w", err)
	}

	return &Ingestor{
		splitter: splitter,
		logger:   logger,
	}, nil
}

// Ingest loads the explicitly named documents and chunks them. It is
// all-or-nothing: a single missing path fails the whole call with
// SourceNotFoundError rather than silently skipping the file.
func (i *Ingestor) Ingest(paths []string) ([]Chunk, error) {
	var chunks []Chunk

	for _, path := range paths {
		doc, err := LoadDocument(path)
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, i.chunkDocument(doc)...)
	}

	i.logger.Info("ingested corpus",
		zap.Int("documents", len(paths)),
		zap.Int("chunks", len(chunks)),
	)

	return chunks, nil
}

// IngestDir loads every corpus file under dir. Per-file load failures are
// logged and skipped; the call fails with ErrNoDocuments only when nothing
// at all could be loaded.
func (i *Ingestor) IngestDir(dir string) ([]Chunk, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && Loadable(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus dir %s: %w", dir, err)
	}
	sort.Strings(paths)

	var chunks []Chunk
	loaded := 0

	for _, path := range paths {
		doc, err := LoadDocument(path)
		if err != nil {
			i.logger.Warn("skipping unloadable corpus file",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}

		chunks = append(chunks, i.chunkDocument(doc)...)
		loaded++
	}

	if loaded == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, dir)
	}

	i.logger.Info("ingested corpus directory",
		zap.String("dir", dir),
		zap.Int("documents", loaded),
		zap.Int("skipped", len(paths)-loaded),
		zap.Int("chunks", len(chunks)),
	)

	return chunks, nil
}

// chunkDocument splits every page of a document and stamps each chunk with
// the citation metadata the evidence extractor needs later.
func (i *Ingestor) chunkDocument(doc *Document) []Chunk {
	var chunks []Chunk
	seq := 0

	for _, page := range doc.Pages {
		for _, text := range i.splitter.Split(page.Text) {
			chunks = append(chunks, Chunk{
				ID:     ChunkID(doc.Source, page.Number, seq),
				Source: doc.Source,
				Page:   page.Number,
				Seq:    seq,
				Text:   text,
			})
			seq++
		}
	}

	return chunks
}
