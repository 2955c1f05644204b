package corpus_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verbatim/pkg/corpus"
)

var _ = Describe("LoadDocument", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "corpus-test-*")
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

	It("loads a single-page document", func() {
		path := write("notes.txt", "plain content with no page breaks")

		doc, err := corpus.LoadDocument(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Source).To(Equal("notes.txt"))
		Expect(doc.Pages).To(HaveLen(1))
		Expect(doc.Pages[0].Number).To(Equal(1))
		Expect(doc.Pages[0].Text).To(Equal("plain content with no page breaks"))
	})

	It("splits pages on form feed and keeps 1-based numbering", func() {
		path := write("book.txt", "page one\fpage two\fpage three")

		doc, err := corpus.LoadDocument(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Pages).To(HaveLen(3))
		Expect(doc.Pages[0].Number).To(Equal(1))
		Expect(doc.Pages[1].Number).To(Equal(2))
		Expect(doc.Pages[2].Number).To(Equal(3))
		Expect(doc.Pages[1].Text).To(Equal("page two"))
	})

	It("skips blank pages but preserves page numbers", func() {
		path := write("gaps.txt", "page one\f   \fpage three")

		doc, err := corpus.LoadDocument(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Pages).To(HaveLen(2))
		Expect(doc.Pages[0].Number).To(Equal(1))
		Expect(doc.Pages[1].Number).To(Equal(3))
	})

	It("returns SourceNotFoundError for a missing file", func() {
		_, err := corpus.LoadDocument(filepath.Join(tmpDir, "missing.txt"))

		var notFound corpus.SourceNotFoundError
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(notFound.Path).To(ContainSubstring("missing.txt"))
	})

	It("returns SourceNotFoundError for a directory", func() {
		_, err := corpus.LoadDocument(tmpDir)

		var notFound corpus.SourceNotFoundError
		Expect(errors.As(err, &notFound)).To(BeTrue())
	})

	It("rejects an entirely blank document", func() {
		path := write("blank.txt", "   \f  \n ")

		_, err := corpus.LoadDocument(path)
		Expect(errors.Is(err, corpus.ErrEmptyDocument)).To(BeTrue())
	})
})

var _ = Describe("Loadable", func() {
	It("accepts corpus text and pdf extensions", func() {
		Expect(corpus.Loadable("doc.txt")).To(BeTrue())
		Expect(corpus.Loadable("doc.md")).To(BeTrue())
		Expect(corpus.Loadable("DOC.TXT")).To(BeTrue())
		Expect(corpus.Loadable("paper.pdf")).To(BeTrue())
	})

	It("rejects everything else", func() {
		Expect(corpus.Loadable("doc.docx")).To(BeFalse())
		Expect(corpus.Loadable("doc")).To(BeFalse())
	})
})
