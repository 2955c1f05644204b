package api

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/pkg/llm"
	"github.com/papercomputeco/verbatim/pkg/oracle"
	"github.com/papercomputeco/verbatim/pkg/sse"
)

// DefaultSession is the session id used when a request does not name one.
const DefaultSession = "default"

// ErrorResponse is the structured failure payload for query errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SearchRequest is the single-shot query request body.
type SearchRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatRequest is the streaming chat request body.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// evidenceFrame is the JSON payload of the trailing SSE evidence frame.
type evidenceFrame struct {
	Type string            `json:"type"`
	Data []oracle.Evidence `json:"data"`
}

// HistoryResponse lists a session's recorded turns, oldest first.
type HistoryResponse struct {
	SessionID string        `json:"session_id"`
	Turns     []HistoryTurn `json:"turns"`
}

// HistoryTurn is one recorded question/answer pair.
type HistoryTurn struct {
	Question string        `json:"question"`
	Answer   oracle.Answer `json:"answer"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleSearch handles POST /api/search: one question in, one answer with
// evidence out.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	answer, err := s.engine.Query(c.Context(), sessionOrDefault(req.SessionID), req.Query)
	if err != nil {
		return s.queryError(c, err)
	}

	return c.JSON(answer)
}

// handleChat handles POST /api/chat: the answer is synthesized in full, then
// delivered word-by-word as SSE frames with the evidence list in a single
// trailing frame.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	// Synthesis runs before streaming starts so failures map to a proper
	// status instead of a truncated stream.
	answer, err := s.engine.Query(c.Context(), sessionOrDefault(req.SessionID), req.Message)
	if err != nil {
		return s.queryError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	ctx := c.Context()
	ctx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		writer := sse.NewWriter(w)
		stream := oracle.NewStream(answer)

		for {
			frame, err := stream.Next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				return
			}

			if err := s.writeFrame(writer, frame); err != nil {
				s.logger.Debug("client disconnected mid-stream", zap.Error(err))
				return
			}
		}
	}))

	return nil
}

// writeFrame serializes one stream frame onto the wire.
func (s *Server) writeFrame(writer *sse.Writer, frame oracle.Frame) error {
	if !frame.IsEvidence() {
		return writer.SendData(frame.Word)
	}

	payload, err := json.Marshal(evidenceFrame{
		Type: "evidence",
		Data: frame.Evidence,
	})
	if err != nil {
		return err
	}

	return writer.SendData(string(payload))
}

// handleHistory returns a session's recorded turns.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	session := c.Params("session")
	if session == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "session parameter required"})
	}

	turns := s.engine.History(session)
	resp := HistoryResponse{
		SessionID: session,
		Turns:     make([]HistoryTurn, len(turns)),
	}
	for i, turn := range turns {
		resp.Turns[i] = HistoryTurn{
			Question: turn.Question,
			Answer:   turn.Answer,
		}
	}

	return c.JSON(resp)
}

// queryError maps pipeline errors onto HTTP statuses. The grounding refusal
// is a successful answer and never reaches here.
func (s *Server) queryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, oracle.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})

	case errors.Is(err, oracle.ErrIndexUnavailable):
		s.logger.Error("index unavailable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "index unavailable"})

	case errors.Is(err, llm.ErrGeneration):
		s.logger.Error("generation failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "generation failed"})

	default:
		s.logger.Error("query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "query failed"})
	}
}

func sessionOrDefault(id string) string {
	if id == "" {
		return DefaultSession
	}
	return id
}
