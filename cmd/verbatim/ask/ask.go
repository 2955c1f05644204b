// Package askcmder provides the ask command for one-shot questions against
// a running verbatim API server.
package askcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/api"
	"github.com/papercomputeco/verbatim/pkg/cliui"
	"github.com/papercomputeco/verbatim/pkg/config"
	"github.com/papercomputeco/verbatim/pkg/logger"
	"github.com/papercomputeco/verbatim/pkg/oracle"
)

type askCommander struct {
	apiTarget string
	session   string
	debug     bool

	logger *zap.Logger
}

const askLongDesc string = `Ask a single question against a running verbatim API server.

Sends the question to the server's search endpoint and prints the grounded
answer with its supporting citation. Pass --session to continue an existing
conversation thread.

Examples:
  verbatim ask "What does chapter 3 say about error budgets?"
  verbatim ask --session review "And what about alerting?"`

const askShortDesc string = "Ask a single question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
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
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(strings.Join(args, " "))
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "Verbatim API server URL")
	cmd.Flags().StringVarP(&cmder.session, "session", "s", api.DefaultSession, "Session id for conversation history")

	return cmd
}

func (c *askCommander) run(question string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	answer, err := c.search(question)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  %s\n\n", cliui.RenderAnswer(answer.Text))
	if evidence := cliui.RenderEvidence(answer.Evidence); evidence != "" {
		fmt.Print(evidence)
		fmt.Println()
	}

	return nil
}

func (c *askCommander) search(question string) (oracle.Answer, error) {
	reqBody := api.SearchRequest{
		Query:     question,
		SessionID: c.session,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return oracle.Answer{}, fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending search request",
		zap.String("api_target", c.apiTarget),
		zap.String("session", c.session),
	)

	url := c.apiTarget + "/api/search"
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return oracle.Answer{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		// Synthesis over a large context can be slow
		Timeout: 5 * time.Minute,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return oracle.Answer{}, fmt.Errorf("sending request to API server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)

		var errResp api.ErrorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && errResp.Error != "" {
			return oracle.Answer{}, fmt.Errorf("API server returned status %d: %s", resp.StatusCode, errResp.Error)
		}
		return oracle.Answer{}, fmt.Errorf("API server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var answer oracle.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return oracle.Answer{}, fmt.Errorf("decoding answer: %w", err)
	}

	return answer, nil
}
