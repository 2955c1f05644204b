package corpus_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verbatim/pkg/corpus"
)

var _ = Describe("Splitter", func() {
	Describe("NewSplitter", func() {
		It("rejects a non-positive chunk size", func() {
			_, err := corpus.NewSplitter(corpus.Policy{ChunkSize: 0, Overlap: 0})
			Expect(err).To(HaveOccurred())
		})

		It("rejects a negative overlap", func() {
			_, err := corpus.NewSplitter(corpus.Policy{ChunkSize: 100, Overlap: -1})
			Expect(err).To(HaveOccurred())
		})

		It("rejects an overlap as large as the chunk size", func() {
			_, err := corpus.NewSplitter(corpus.Policy{ChunkSize: 100, Overlap: 100})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Split", func() {
		It("returns nil for empty text", func() {
			s, err := corpus.NewSplitter(corpus.Policy{ChunkSize: 100, Overlap: 10})
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Split("")).To(BeNil())
		})

		It("returns the whole text as one chunk when it fits", func() {
			s, err := corpus.NewSplitter(corpus.Policy{ChunkSize: 100, Overlap: 10})
			Expect(err).NotTo(HaveOccurred())

			chunks := s.Split("short text")
			Expect(chunks).To(Equal([]string{"short text"}))
		})

		It("never exceeds the chunk size", func() {
			s, err := corpus.NewSplitter(corpus.Policy{ChunkSize: 50, Overlap: 10})
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("alpha beta gamma delta epsilon. ", 20)
			chunks := s.Split(text)
			Expect(len(chunks)).To(BeNumerically(">", 1))

			for _, chunk := range chunks {
				Expect(len([]rune(chunk))).To(BeNumerically("<=", 50))
			}
		})

		It("reconstructs the input when the overlap prefix is dropped", func() {
			s, err := corpus.NewSplitter(corpus.Policy{ChunkSize: 50, Overlap: 10})
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 10)
			chunks := s.Split(text)
			Expect(len(chunks)).To(BeNumerically(">", 1))

			var sb strings.Builder
			sb.WriteString(chunks[0])
			for _, chunk := range chunks[1:] {
				runes := []rune(chunk)
				sb.WriteString(string(runes[10:]))
			}
			Expect(sb.String()).To(Equal(text))
		})

		It("prefers a paragraph boundary over a sentence boundary", func() {
			s, err := corpus.NewSplitter(corpus.Policy{ChunkSize: 60, Overlap: 5})
			Expect(err).NotTo(HaveOccurred())

			text := "First sentence here. Second one.\n\nA new paragraph that keeps going well past the size budget of the chunker."
			chunks := s.Split(text)
			Expect(chunks[0]).To(HaveSuffix("\n\n"))
		})

		It("falls back to a raw cut when no separator fits", func() {
			s, err := corpus.NewSplitter(corpus.Policy{ChunkSize: 20, Overlap: 4})
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("x", 100)
			chunks := s.Split(text)
			Expect(len(chunks)).To(BeNumerically(">", 1))
			Expect(len([]rune(chunks[0]))).To(Equal(20))
		})

		It("handles multi-byte runes without splitting them", func() {
			s, err := corpus.NewSplitter(corpus.Policy{ChunkSize: 10, Overlap: 2})
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("héllo wörld ", 10)
			chunks := s.Split(text)
			for _, chunk := range chunks {
				Expect(strings.ToValidUTF8(chunk, "?")).To(Equal(chunk))
				Expect(len([]rune(chunk))).To(BeNumerically("<=", 10))
			}
		})
	})

	Describe("policies", func() {
		It("tunes precision for small chunks", func() {
			p := corpus.PrecisionPolicy()
			Expect(p.ChunkSize).To(Equal(500))
			Expect(p.Overlap).To(Equal(100))
		})

		It("tunes coverage for large chunks", func() {
			p := corpus.CoveragePolicy()
			Expect(p.ChunkSize).To(Equal(2000))
			Expect(p.Overlap).To(Equal(400))
		})
	})
})
