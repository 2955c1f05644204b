package oracle

import "github.com/papercomputeco/verbatim/pkg/corpus"

// Profile parameterizes the answer pipeline for one deployment. The same
// pipeline serves both a broad research assistant and a narrow domain expert;
// only chunking, retrieval depth, and persona differ.
type Profile struct {
	// Name identifies the profile, e.g. "research" or "expert".
	Name string

	// Chunking is the chunk size and overlap policy used at index build time.
	Chunking corpus.Policy

	// TopK is the retrieval depth. Fixed per deployment, never user-supplied.
	TopK int

	// Persona is the opening line of the grounding prompt.
	Persona string
}

// ResearchProfile favors coverage: large chunks and a deep retrieval window
// for broad questions over a mixed corpus.
func ResearchProfile() Profile {
	return Profile{
		Name:     "research",
		Chunking: corpus.CoveragePolicy(),
		TopK:     20,
		Persona:  "You are a research assistant answering questions from a corpus of source documents.",
	}
}

// ExpertProfile favors precision: small chunks and a single retrieved chunk
// for short factual lookups in a specialized corpus.
func ExpertProfile() Profile {
	return Profile{
		Name:     "expert",
		Chunking: corpus.PrecisionPolicy(),
		TopK:     1,
		Persona:  "You are the Verbatim oracle, a domain expert.",
	}
}

// ProfileByName resolves a profile name to its parameter set. Unknown names
// fall back to the expert profile.
func ProfileByName(name string) Profile {
	switch name {
	case "research":
		return ResearchProfile()
	default:
		return ExpertProfile()
	}
}
