package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// pageBreak separates pages inside a plain-text corpus file. Files without a
// form feed are treated as a single page.
const pageBreak = "\f"

// loadableExtensions lists the file extensions bulk ingestion picks up.
var loadableExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".text": true,
	".pdf":  true,
}

// LoadDocument reads one source file and splits it into pages. The path must
// resolve to an existing regular file.
func LoadDocument(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, SourceNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, SourceNotFoundError{Path: path}
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loadPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc := &Document{
		Path:   path,
		Source: filepath.Base(path),
	}

	number := 0
	for _, text := range strings.Split(string(data), pageBreak) {
		number++
		if strings.TrimSpace(text) == "" {
			continue
		}
		doc.Pages = append(doc.Pages, Page{Number: number, Text: text})
	}

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}

	return doc, nil
}

// Loadable reports whether bulk ingestion considers the file name part of the
// corpus.
func Loadable(name string) bool {
	return loadableExtensions[strings.ToLower(filepath.Ext(name))]
}
