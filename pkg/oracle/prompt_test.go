package oracle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verbatim/pkg/oracle"
	"github.com/papercomputeco/verbatim/pkg/vector"
)

func queryResult(text, source string, page int) vector.QueryResult {
	return vector.QueryResult{
		Record: vector.Record{
			Text:   text,
			Source: source,
			Page:   page,
		},
		Score: 0.9,
	}
}

var _ = Describe("CompilePrompt", func() {
	It("is deterministic for identical inputs", func() {
		results := []vector.QueryResult{queryResult("chunk text", "doc.txt", 1)}

		a := oracle.CompilePrompt("You are an expert.", "what is this?", results)
		b := oracle.CompilePrompt("You are an expert.", "what is this?", results)
		Expect(a).To(Equal(b))
	})

	It("carries the persona, context, and question", func() {
		results := []vector.QueryResult{
			queryResult("first chunk", "doc.txt", 1),
			queryResult("second chunk", "doc.txt", 2),
		}

		prompt := oracle.CompilePrompt("You are a researcher.", "what happened?", results)

		Expect(prompt).To(HavePrefix("You are a researcher."))
		Expect(prompt).To(ContainSubstring("first chunk\n\nsecond chunk"))
		Expect(prompt).To(ContainSubstring("Question: what happened?"))
	})

	It("binds the model to the context with explicit rules", func() {
		prompt := oracle.CompilePrompt("Persona.", "q", nil)

		Expect(prompt).To(ContainSubstring("Use ONLY information explicitly stated in the Context"))
		Expect(prompt).To(ContainSubstring(oracle.RefusalPhrase))
		Expect(prompt).To(ContainSubstring("2-3 sentences maximum"))
		Expect(prompt).To(ContainSubstring("[Source: filename, Page X]"))
		Expect(prompt).To(ContainSubstring("Never hedge"))
	})
})

var _ = Describe("IsRefusal", func() {
	It("recognizes the exact refusal phrase", func() {
		Expect(oracle.IsRefusal(oracle.RefusalPhrase)).To(BeTrue())
	})

	It("recognizes a refusal embedded in a longer answer", func() {
		Expect(oracle.IsRefusal("I'm sorry, the provided context does not explicitly state this fact.")).To(BeTrue())
	})

	It("does not flag substantive answers", func() {
		Expect(oracle.IsRefusal("The system uses a ring buffer. [Source: doc.txt, Page 1]")).To(BeFalse())
	})
})

var _ = Describe("ExtractEvidence", func() {
	It("returns nil for an empty retrieval", func() {
		Expect(oracle.ExtractEvidence(nil)).To(BeNil())
	})

	It("surfaces only the top-ranked chunk", func() {
		results := []vector.QueryResult{
			queryResult("best match", "primary.txt", 3),
			queryResult("runner up", "other.txt", 1),
		}

		evidence := oracle.ExtractEvidence(results)
		Expect(evidence).To(HaveLen(1))
		Expect(evidence[0].Quote).To(Equal("best match"))
		Expect(evidence[0].Source).To(Equal("primary.txt"))
		Expect(evidence[0].Page).To(Equal(3))
		Expect(evidence[0].Supports).To(Equal(oracle.SupportsRetrievedContext))
	})
})
