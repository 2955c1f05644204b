package oracle_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/pkg/oracle"
	testutils "github.com/papercomputeco/verbatim/pkg/utils/test"
	"github.com/papercomputeco/verbatim/pkg/vector"
)

var _ = Describe("Engine", func() {
	var (
		ctx       context.Context
		driver    *testutils.MockVectorDriver
		embedder  *testutils.MockEmbedder
		generator *testutils.MockGenerator
		corpusDir string
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = testutils.NewMockVectorDriver()
		embedder = testutils.NewMockEmbedder()
		generator = testutils.NewMockGenerator("The answer is 42. [Source: doc.txt, Page 1]")

		var err error
		corpusDir, err = os.MkdirTemp("", "engine-test-*")
		Expect(err).NotTo(HaveOccurred())

		data := "The answer to everything is 42. It was computed by Deep Thought."
		Expect(os.WriteFile(filepath.Join(corpusDir, "doc.txt"), []byte(data), 0o600)).To(Succeed())
	})

	AfterEach(func() {
		os.RemoveAll(corpusDir)
	})

	newEngine := func() *oracle.Engine {
		engine, err := oracle.NewEngine(oracle.Config{
			Profile:   oracle.ExpertProfile(),
			CorpusDir: corpusDir,
			Embedder:  embedder,
			Driver:    driver,
			Generator: generator,
			Logger:    zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())
		return engine
	}

	Describe("NewEngine", func() {
		It("requires every collaborator", func() {
			_, err := oracle.NewEngine(oracle.Config{
				Driver:    driver,
				Generator: generator,
				Logger:    zap.NewNop(),
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Init", func() {
		It("builds the index from the corpus when the store is empty", func() {
			engine := newEngine()

			Expect(engine.Init(ctx)).To(Succeed())
			Expect(driver.Records).NotTo(BeEmpty())
			Expect(driver.HasMeta).To(BeTrue())
			Expect(driver.Meta.EmbeddingModel).To(Equal(embedder.Model()))
		})

		It("reuses a populated index whose metadata matches", func() {
			driver.Records = []vector.Record{{ID: "existing"}}
			driver.Meta = vector.IndexMeta{EmbeddingModel: embedder.Model(), Dimensions: 3}
			driver.HasMeta = true

			engine := newEngine()

			Expect(engine.Init(ctx)).To(Succeed())
			Expect(driver.Records).To(HaveLen(1))
		})

		It("yields identical query results after two consecutive loads", func() {
			driver.Results = []vector.QueryResult{
				{
					Record: vector.Record{
						Text:   "The answer to everything is 42.",
						Source: "doc.txt",
						Page:   1,
					},
					Score: 0.97,
				},
			}

			first := newEngine()
			Expect(first.Init(ctx)).To(Succeed())
			indexed := len(driver.Records)

			firstAnswer, err := first.Query(ctx, "s1", "what is the answer?")
			Expect(err).NotTo(HaveOccurred())

			// A fresh engine over the same store loads rather than rebuilds
			second := newEngine()
			Expect(second.Init(ctx)).To(Succeed())
			Expect(driver.Records).To(HaveLen(indexed))

			secondAnswer, err := second.Query(ctx, "s1", "what is the answer?")
			Expect(err).NotTo(HaveOccurred())
			Expect(secondAnswer.Text).To(Equal(firstAnswer.Text))
			Expect(secondAnswer.Evidence).To(Equal(firstAnswer.Evidence))
		})

		It("fails on an embedding model mismatch", func() {
			driver.Records = []vector.Record{{ID: "existing"}}
			driver.Meta = vector.IndexMeta{EmbeddingModel: "some-other-model", Dimensions: 3}
			driver.HasMeta = true

			engine := newEngine()

			err := engine.Init(ctx)
			Expect(errors.Is(err, oracle.ErrModelMismatch)).To(BeTrue())
		})

		It("proceeds with a warning when a populated index has no metadata", func() {
			driver.Records = []vector.Record{{ID: "existing"}}

			engine := newEngine()

			Expect(engine.Init(ctx)).To(Succeed())
		})

		It("is sticky: a failed init keeps failing without retrying", func() {
			driver.CountErr = errors.New("store offline")

			engine := newEngine()
			Expect(engine.Init(ctx)).NotTo(Succeed())

			// Clearing the fault does not help; the outcome was decided
			driver.CountErr = nil
			Expect(engine.Init(ctx)).NotTo(Succeed())
		})
	})

	Describe("Query", func() {
		BeforeEach(func() {
			driver.Results = []vector.QueryResult{
				{
					Record: vector.Record{
						Text:   "The answer to everything is 42.",
						Source: "doc.txt",
						Page:   1,
					},
					Score: 0.97,
				},
			}
		})

		It("rejects an empty question before touching the pipeline", func() {
			engine := newEngine()

			_, err := engine.Query(ctx, "s1", "   ")
			Expect(errors.Is(err, oracle.ErrValidation)).To(BeTrue())
			Expect(generator.Prompts).To(BeEmpty())
		})

		It("answers with text and rank-1 evidence", func() {
			engine := newEngine()

			answer, err := engine.Query(ctx, "s1", "what is the answer?")
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Text).To(Equal("The answer is 42. [Source: doc.txt, Page 1]"))
			Expect(answer.Evidence).To(HaveLen(1))
			Expect(answer.Evidence[0].Quote).To(Equal("The answer to everything is 42."))
			Expect(answer.Evidence[0].Source).To(Equal("doc.txt"))
			Expect(answer.Evidence[0].Page).To(Equal(1))
		})

		It("compiles the grounding prompt around the retrieved chunks", func() {
			engine := newEngine()

			_, err := engine.Query(ctx, "s1", "what is the answer?")
			Expect(err).NotTo(HaveOccurred())
			Expect(generator.Prompts).To(HaveLen(1))
			Expect(generator.Prompts[0]).To(ContainSubstring("The answer to everything is 42."))
			Expect(generator.Prompts[0]).To(ContainSubstring("Question: what is the answer?"))
		})

		It("records completed turns in session history", func() {
			engine := newEngine()

			_, err := engine.Query(ctx, "s1", "first?")
			Expect(err).NotTo(HaveOccurred())
			_, err = engine.Query(ctx, "s1", "second?")
			Expect(err).NotTo(HaveOccurred())

			turns := engine.History("s1")
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].Question).To(Equal("first?"))
			Expect(turns[1].Question).To(Equal("second?"))
		})

		It("keeps sessions separate", func() {
			engine := newEngine()

			_, err := engine.Query(ctx, "s1", "question?")
			Expect(err).NotTo(HaveOccurred())

			Expect(engine.History("s1")).To(HaveLen(1))
			Expect(engine.History("s2")).To(BeEmpty())
		})

		It("does not record failed queries", func() {
			engine := newEngine()
			generator.Err = errors.New("model offline")

			_, err := engine.Query(ctx, "s1", "doomed?")
			Expect(err).To(HaveOccurred())
			Expect(engine.History("s1")).To(BeEmpty())
		})

		It("maps a failed init to ErrIndexUnavailable", func() {
			driver.CountErr = errors.New("store offline")
			engine := newEngine()

			_, err := engine.Query(ctx, "s1", "question?")
			Expect(errors.Is(err, oracle.ErrIndexUnavailable)).To(BeTrue())
		})

		It("evicts the oldest turn when a session fills up", func() {
			engine, err := oracle.NewEngine(oracle.Config{
				Profile:   oracle.ExpertProfile(),
				CorpusDir: corpusDir,
				MaxTurns:  2,
				Embedder:  embedder,
				Driver:    driver,
				Generator: generator,
				Logger:    zap.NewNop(),
			})
			Expect(err).NotTo(HaveOccurred())

			for _, q := range []string{"one?", "two?", "three?"} {
				_, err := engine.Query(ctx, "s1", q)
				Expect(err).NotTo(HaveOccurred())
			}

			turns := engine.History("s1")
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].Question).To(Equal("two?"))
			Expect(turns[1].Question).To(Equal("three?"))
		})
	})

	Describe("Reindex", func() {
		It("rebuilds over a populated index", func() {
			driver.Records = []vector.Record{{ID: "stale"}}

			engine := newEngine()

			Expect(engine.Reindex(ctx)).To(Succeed())
			Expect(len(driver.Records)).To(BeNumerically(">", 1))
			Expect(driver.HasMeta).To(BeTrue())
		})
	})
})

var _ = Describe("Retriever", func() {
	It("embeds the question and queries at the configured depth", func() {
		driver := testutils.NewMockVectorDriver()
		driver.Results = []vector.QueryResult{
			{Record: vector.Record{Text: "a"}, Score: 0.9},
			{Record: vector.Record{Text: "b"}, Score: 0.8},
			{Record: vector.Record{Text: "c"}, Score: 0.7},
		}

		retriever := oracle.NewRetriever(testutils.NewMockEmbedder(), driver, 2)

		results, err := retriever.Retrieve(context.Background(), "question")
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Text).To(Equal("a"))
	})

	It("propagates embedding failures", func() {
		embedder := testutils.NewMockEmbedder()
		embedder.FailOn = "bad question"

		retriever := oracle.NewRetriever(embedder, testutils.NewMockVectorDriver(), 1)

		_, err := retriever.Retrieve(context.Background(), "bad question")
		Expect(err).To(HaveOccurred())
	})
})
