package corpus_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verbatim/pkg/corpus"
)

// minimalPDF assembles a valid single-font PDF with one page per entry of
// texts; an empty entry produces a page with no text. Offsets in the xref
// table are computed from the assembled body.
func minimalPDF(texts []string) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(texts))
	for i := range texts {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	obj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	obj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), len(texts)))
	obj("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	for i, text := range texts {
		pageObj := 4 + 2*i
		contentObj := pageObj + 1

		obj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>\nendobj\n",
			pageObj, contentObj))

		stream := ""
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		obj(fmt.Sprintf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			contentObj, len(stream), stream))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)

	return buf.Bytes()
}

var _ = Describe("LoadDocument (pdf)", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "corpus-pdf-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	writePDF := func(name string, texts []string) string {
		path := filepath.Join(tmpDir, name)
		Expect(os.WriteFile(path, minimalPDF(texts), 0o600)).To(Succeed())
		return path
	}

	It("extracts per-page text with the pdf's 1-based numbering", func() {
		path := writePDF("paper.pdf", []string{"alpha page one", "bravo page two"})

		doc, err := corpus.LoadDocument(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Source).To(Equal("paper.pdf"))
		Expect(doc.Pages).To(HaveLen(2))
		Expect(doc.Pages[0].Number).To(Equal(1))
		Expect(doc.Pages[0].Text).To(ContainSubstring("alpha page one"))
		Expect(doc.Pages[1].Number).To(Equal(2))
		Expect(doc.Pages[1].Text).To(ContainSubstring("bravo page two"))
	})

	It("skips pages without text but preserves page numbers", func() {
		path := writePDF("gaps.pdf", []string{"alpha page one", "", "charlie page three"})

		doc, err := corpus.LoadDocument(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Pages).To(HaveLen(2))
		Expect(doc.Pages[0].Number).To(Equal(1))
		Expect(doc.Pages[1].Number).To(Equal(3))
	})

	It("rejects a pdf with no extractable text", func() {
		path := writePDF("blank.pdf", []string{""})

		_, err := corpus.LoadDocument(path)
		Expect(errors.Is(err, corpus.ErrEmptyDocument)).To(BeTrue())
	})

	It("fails cleanly on a file that is not a pdf", func() {
		path := filepath.Join(tmpDir, "broken.pdf")
		Expect(os.WriteFile(path, []byte("not a pdf at all"), 0o600)).To(Succeed())

		_, err := corpus.LoadDocument(path)
		Expect(err).To(HaveOccurred())
	})
})
