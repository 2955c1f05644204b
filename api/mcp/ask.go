package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/pkg/oracle"
)

var (
	askToolName    = "ask"
	askDescription = "Ask a question against the indexed document corpus. Answers are grounded strictly in the corpus and cite the supporting document and page; questions the corpus cannot answer are refused explicitly."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the corpus"`
	Session  string `json:"session,omitempty" jsonschema:"conversation session id (default: mcp)"`
}

// AskOutput represents the output of the ask tool.
type AskOutput struct {
	Question string            `json:"question"`
	Text     string            `json:"text"`
	Refusal  bool              `json:"refusal"`
	Evidence []oracle.Evidence `json:"evidence,omitempty"`
}

// handleAsk processes an ask request.
func (s *Server) handleAsk(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger

	session := input.Session
	if session == "" {
		session = "mcp"
	}

	logger.Debug("MCP ask request",
		zap.String("question", input.Question),
		zap.String("session", session),
	)

	answer, err := s.config.Engine.Query(ctx, session, input.Question)
	if err != nil {
		logger.Error("failed to answer question", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to answer question: %v", err)},
			},
		}, AskOutput{}, nil
	}

	output := AskOutput{
		Question: input.Question,
		Text:     answer.Text,
		Refusal:  oracle.IsRefusal(answer.Text),
		Evidence: answer.Evidence,
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal ask output", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize answer: %v", err)},
			},
		}, AskOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
