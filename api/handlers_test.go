package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/api"
	"github.com/papercomputeco/verbatim/pkg/llm"
	"github.com/papercomputeco/verbatim/pkg/oracle"
	testutils "github.com/papercomputeco/verbatim/pkg/utils/test"
	"github.com/papercomputeco/verbatim/pkg/vector"
)

var _ = Describe("API handlers", func() {
	var (
		server    *api.Server
		driver    *testutils.MockVectorDriver
		embedder  *testutils.MockEmbedder
		generator *testutils.MockGenerator
	)

	BeforeEach(func() {
		driver = testutils.NewMockVectorDriver()
		embedder = testutils.NewMockEmbedder()
		generator = testutils.NewMockGenerator("Grounded answer. [Source: doc.txt, Page 2]")

		// Pre-populated index so queries take the reuse path
		driver.Records = []vector.Record{{ID: "existing"}}
		driver.Meta = vector.IndexMeta{EmbeddingModel: embedder.Model(), Dimensions: 3}
		driver.HasMeta = true
		driver.Results = []vector.QueryResult{
			{
				Record: vector.Record{
					Text:   "the supporting chunk",
					Source: "doc.txt",
					Page:   2,
				},
				Score: 0.91,
			},
		}

		engine, err := oracle.NewEngine(oracle.Config{
			Profile:   oracle.ExpertProfile(),
			Embedder:  embedder,
			Driver:    driver,
			Generator: generator,
			Logger:    zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = api.NewServer(api.Config{ListenAddr: ":0"}, engine, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	postJSON := func(path string, body any) *http.Response {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.App().Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	Describe("GET /ping", func() {
		It("responds", func() {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("POST /api/search", func() {
		It("answers a question with evidence", func() {
			resp := postJSON("/api/search", api.SearchRequest{Query: "what is it?"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var answer oracle.Answer
			Expect(json.NewDecoder(resp.Body).Decode(&answer)).To(Succeed())
			Expect(answer.Text).To(Equal("Grounded answer. [Source: doc.txt, Page 2]"))
			Expect(answer.Evidence).To(HaveLen(1))
			Expect(answer.Evidence[0].Source).To(Equal("doc.txt"))
		})

		It("rejects an empty question with 400", func() {
			resp := postJSON("/api/search", api.SearchRequest{Query: "  "})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a malformed body with 400", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("{not json"))
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("maps generation failures to 502", func() {
			generator.Err = fmt.Errorf("%w: model offline", llm.ErrGeneration)

			resp := postJSON("/api/search", api.SearchRequest{Query: "doomed?"})
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))

			var errResp api.ErrorResponse
			Expect(json.NewDecoder(resp.Body).Decode(&errResp)).To(Succeed())
			Expect(errResp.Error).To(Equal("generation failed"))
		})

		It("maps an unavailable index to 503", func() {
			driver.CountErr = errors.New("store offline")
			driver.Records = nil

			resp := postJSON("/api/search", api.SearchRequest{Query: "anything?"})
			Expect(resp.StatusCode).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("POST /api/chat", func() {
		It("streams the answer word by word with a trailing evidence frame", func() {
			resp := postJSON("/api/chat", api.ChatRequest{Message: "what is it?"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("text/event-stream"))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())

			var words []string
			var evidenceFrames int
			for _, line := range strings.Split(string(body), "\n") {
				payload, ok := strings.CutPrefix(line, "data: ")
				if !ok {
					continue
				}

				var frame struct {
					Type string            `json:"type"`
					Data []oracle.Evidence `json:"data"`
				}
				if err := json.Unmarshal([]byte(payload), &frame); err == nil && frame.Type == "evidence" {
					evidenceFrames++
					Expect(frame.Data).To(HaveLen(1))
					Expect(frame.Data[0].Quote).To(Equal("the supporting chunk"))
					continue
				}

				words = append(words, payload)
			}

			Expect(words).To(Equal([]string{"Grounded", "answer.", "[Source:", "doc.txt,", "Page", "2]"}))
			Expect(evidenceFrames).To(Equal(1))
		})

		It("returns a proper error status instead of a truncated stream", func() {
			generator.Err = fmt.Errorf("%w: model offline", llm.ErrGeneration)

			resp := postJSON("/api/chat", api.ChatRequest{Message: "doomed?"})
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("GET /api/history/:session", func() {
		It("returns recorded turns for a session", func() {
			resp := postJSON("/api/search", api.SearchRequest{Query: "first?", SessionID: "thread"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			req := httptest.NewRequest(http.MethodGet, "/api/history/thread", nil)
			histResp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(histResp.StatusCode).To(Equal(http.StatusOK))

			var hist api.HistoryResponse
			Expect(json.NewDecoder(histResp.Body).Decode(&hist)).To(Succeed())
			Expect(hist.SessionID).To(Equal("thread"))
			Expect(hist.Turns).To(HaveLen(1))
			Expect(hist.Turns[0].Question).To(Equal("first?"))
		})

		It("returns an empty turn list for an unknown session", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/history/nobody", nil)
			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var hist api.HistoryResponse
			Expect(json.NewDecoder(resp.Body).Decode(&hist)).To(Succeed())
			Expect(hist.Turns).To(BeEmpty())
		})
	})
})
