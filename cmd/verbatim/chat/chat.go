// Package chatcmder provides the chat command for interactive question
// sessions against a running verbatim API server.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/api"
	"github.com/papercomputeco/verbatim/pkg/cliui"
	"github.com/papercomputeco/verbatim/pkg/config"
	"github.com/papercomputeco/verbatim/pkg/logger"
	"github.com/papercomputeco/verbatim/pkg/oracle"
)

var (
	userPrompt   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	oraclePrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("verbatim> ")
)

type chatCommander struct {
	apiTarget string
	session   string
	debug     bool

	logger *zap.Logger
}

const chatLongDesc string = `Start an interactive question session against a running verbatim API server.

Each question is sent to the server's streaming chat endpoint and the answer
is printed word by word as it arrives, followed by its supporting citation.
All questions in one chat run share a session, so the server records them as
a single conversation thread.

Examples:
  verbatim chat
  verbatim chat --session review
  verbatim chat --api-target http://localhost:8081`

const chatShortDesc string = "Interactive question session"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "Verbatim API server URL")
	cmd.Flags().StringVarP(&cmder.session, "session", "s", "", "Session id (default: a fresh random session)")

	return cmd
}

func (c *chatCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	if c.session == "" {
		c.session = uuid.NewString()
	}

	fmt.Println()
	fmt.Printf("  %s %s\n\n",
		cliui.StepStyle.Render("Session:"),
		c.session,
	)
	fmt.Printf("  %s\n\n", cliui.StepStyle.Render("Type your question and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		if err := c.sendAndStream(input); err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			continue
		}

		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// streamFrame is the JSON shape of the trailing evidence frame. Word frames
// are bare words and will not parse as JSON objects.
type streamFrame struct {
	Type string            `json:"type"`
	Data []oracle.Evidence `json:"data"`
}

// sendAndStream sends one question to the chat endpoint and prints the
// answer word by word as SSE frames arrive.
func (c *chatCommander) sendAndStream(question string) error {
	reqBody := api.ChatRequest{
		Message:   question,
		SessionID: c.session,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending chat request",
		zap.String("api_target", c.apiTarget),
		zap.String("session", c.session),
	)

	url := c.apiTarget + "/api/chat"
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		// LLM responses can be slow
		Timeout: 5 * time.Minute,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request to API server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)

		var errResp api.ErrorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && errResp.Error != "" {
			return fmt.Errorf("API server returned status %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("API server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	fmt.Print(oraclePrompt)

	first := true
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(payload), &frame); err == nil && frame.Type == "evidence" {
			fmt.Println()
			if evidence := cliui.RenderEvidence(frame.Data); evidence != "" {
				fmt.Print(evidence)
			}
			continue
		}

		// Plain word frame
		if !first {
			fmt.Print(" ")
		}
		fmt.Print(payload)
		first = false
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}

	return nil
}
