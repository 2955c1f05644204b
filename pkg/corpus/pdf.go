package corpus

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// loadPDF extracts per-page text from a PDF file. Page numbers follow the
// PDF's own 1-based numbering; pages with no extractable text are skipped
// but keep their number, matching the plain-text loader.
func loadPDF(path string) (doc *Document, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("parsing pdf %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	doc = &Document{
		Path:   path,
		Source: filepath.Base(path),
	}

	for number := 1; number <= reader.NumPage(); number++ {
		page := reader.Page(number)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d of %s: %w", number, path, err)
		}
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
