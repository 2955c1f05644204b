package corpus_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/pkg/corpus"
)

var _ = Describe("Ingestor", func() {
	var (
		tmpDir   string
		ingestor *corpus.Ingestor
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "ingest-test-*")
		Expect(err).NotTo(HaveOccurred())

		ingestor, err = corpus.NewIngestor(corpus.Policy{ChunkSize: 50, Overlap: 10}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	write := func(name, content string) string {
		path := filepath.Join(tmpDir, name)
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	Describe("NewIngestor", func() {
		It("rejects an invalid chunking policy", func() {
			_, err := corpus.NewIngestor(corpus.Policy{ChunkSize: 0}, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Ingest", func() {
		It("stamps chunks with source, page, and sequence", func() {
			path := write("doc.txt", "short page one\fshort page two")

			chunks, err := ingestor.Ingest([]string{path})
			Expect(err).NotTo(HaveOccurred())
			Expect(chunks).To(HaveLen(2))

			Expect(chunks[0].Source).To(Equal("doc.txt"))
			Expect(chunks[0].Page).To(Equal(1))
			Expect(chunks[0].Seq).To(Equal(0))
			Expect(chunks[0].ID).To(Equal(corpus.ChunkID("doc.txt", 1, 0)))

			Expect(chunks[1].Page).To(Equal(2))
			Expect(chunks[1].Seq).To(Equal(1))
		})

		It("fails the whole call on a missing path", func() {
			good := write("good.txt", "content")

			_, err := ingestor.Ingest([]string{good, filepath.Join(tmpDir, "missing.txt")})

			var notFound corpus.SourceNotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})
	})

	Describe("IngestDir", func() {
		It("loads every corpus file in a stable order", func() {
			write("b.txt", "content of b")
			write("a.md", "content of a")
			write("skip.pdf", "not a corpus file")

			chunks, err := ingestor.IngestDir(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(chunks).To(HaveLen(2))
			Expect(chunks[0].Source).To(Equal("a.md"))
			Expect(chunks[1].Source).To(Equal("b.txt"))
		})

		It("skips unloadable files and keeps going", func() {
			write("empty.txt", "   ")
			write("good.txt", "usable content")

			chunks, err := ingestor.IngestDir(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0].Source).To(Equal("good.txt"))
		})

		It("fails with ErrNoDocuments when nothing loads", func() {
			write("empty.txt", "   ")

			_, err := ingestor.IngestDir(tmpDir)
			Expect(errors.Is(err, corpus.ErrNoDocuments)).To(BeTrue())
		})

		It("chunks long pages into multiple records", func() {
			write("long.txt", strings.Repeat("a sentence about something. ", 20))

			chunks, err := ingestor.IngestDir(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(chunks)).To(BeNumerically(">", 1))

			for i, chunk := range chunks {
				Expect(chunk.Seq).To(Equal(i))
				Expect(chunk.Page).To(Equal(1))
			}
		})
	})
})
