package oracle

import "github.com/papercomputeco/verbatim/pkg/vector"

// SupportsRetrievedContext is the fixed relation label on extracted evidence.
const SupportsRetrievedContext = "Retrieved Context"

// Evidence is one supporting citation for an answer.
type Evidence struct {
	// Quote is the verbatim text of the supporting chunk.
	Quote string `json:"quote"`

	// Source is the base file name of the originating document.
	Source string `json:"source"`

	// Page is the 1-based page number within the source document.
	Page int `json:"page"`

	// Supports labels the relation between the quote and the answer.
	Supports string `json:"supports"`
}

// ExtractEvidence derives citations from a retrieval result. Only the
// top-ranked chunk is surfaced structurally, even though the prompt may have
// used several. An empty retrieval yields no evidence; a citation is never
// fabricated.
func ExtractEvidence(results []vector.QueryResult) []Evidence {
	if len(results) == 0 {
		return nil
	}

	top := results[0]
	return []Evidence{
		{
			Quote:    top.Text,
			Source:   top.Source,
			Page:     top.Page,
			Supports: SupportsRetrievedContext,
		},
	}
}
