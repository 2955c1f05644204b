package oracle_test

import (
	"context"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/verbatim/pkg/oracle"
)

var _ = Describe("Stream", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("yields every word in order, then the evidence, then EOF", func() {
		answer := oracle.Answer{
			Text: "three word answer",
			Evidence: []oracle.Evidence{
				{Quote: "quote", Source: "doc.txt", Page: 1, Supports: oracle.SupportsRetrievedContext},
			},
		}

		stream := oracle.NewStream(answer)

		var words []string
		for {
			frame, err := stream.Next(ctx)
			if err != nil {
				Expect(err).To(Equal(io.EOF))
				break
			}
			if frame.IsEvidence() {
				Expect(frame.Evidence).To(Equal(answer.Evidence))
				Expect(words).To(Equal([]string{"three", "word", "answer"}))
				continue
			}
			words = append(words, frame.Word)
		}

		Expect(words).To(Equal([]string{"three", "word", "answer"}))
	})

	It("delivers the evidence frame exactly once", func() {
		stream := oracle.NewStream(oracle.Answer{
			Text:     "hi",
			Evidence: []oracle.Evidence{{Quote: "q"}},
		})

		evidenceFrames := 0
		for {
			frame, err := stream.Next(ctx)
			if err != nil {
				break
			}
			if frame.IsEvidence() {
				evidenceFrames++
			}
		}

		Expect(evidenceFrames).To(Equal(1))
	})

	It("omits the evidence frame when there is no evidence", func() {
		stream := oracle.NewStream(oracle.Answer{Text: "just words"})

		frame, err := stream.Next(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Word).To(Equal("just"))

		frame, err = stream.Next(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Word).To(Equal("words"))

		_, err = stream.Next(ctx)
		Expect(err).To(Equal(io.EOF))
	})

	It("is finite even for an empty answer", func() {
		stream := oracle.NewStream(oracle.Answer{})

		_, err := stream.Next(ctx)
		Expect(err).To(Equal(io.EOF))
	})

	It("stops promptly on cancellation", func() {
		stream := oracle.NewStream(oracle.Answer{Text: "a b c d e"})

		cancelled, cancel := context.WithCancel(ctx)

		_, err := stream.Next(cancelled)
		Expect(err).NotTo(HaveOccurred())

		cancel()

		_, err = stream.Next(cancelled)
		Expect(err).To(Equal(context.Canceled))
	})

	It("keeps returning EOF after exhaustion", func() {
		stream := oracle.NewStream(oracle.Answer{Text: "one"})

		_, err := stream.Next(ctx)
		Expect(err).NotTo(HaveOccurred())

		for range 3 {
			_, err = stream.Next(ctx)
			Expect(err).To(Equal(io.EOF))
		}
	})
})
