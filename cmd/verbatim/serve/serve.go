// Package servecmder provides the serve command for running the verbatim API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papercomputeco/verbatim/api"
	"github.com/papercomputeco/verbatim/pkg/cliui"
	"github.com/papercomputeco/verbatim/pkg/config"
	"github.com/papercomputeco/verbatim/pkg/logger"
	"github.com/papercomputeco/verbatim/pkg/start"
)

type serveCommander struct {
	listen             string
	staticDir          string
	corpusDir          string
	chunkSize          int
	overlap            int
	profile            string
	topK               int
	vectorProvider     string
	vectorTarget       string
	embeddingProvider  string
	embeddingTarget    string
	embeddingModel     string
	embeddingDims      uint
	llmProvider        string
	llmTarget          string
	llmModel           string
	debug              bool

	v      *viper.Viper
	logger *zap.Logger
}

// serveFlags are the registry keys bound on the serve command.
var serveFlags = []string{
	config.FlagListen,
	config.FlagStaticDir,
	config.FlagCorpusDir,
	config.FlagChunkSize,
	config.FlagOverlap,
	config.FlagProfile,
	config.FlagTopK,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagLLMProvider,
	config.FlagLLMTarget,
	config.FlagLLMModel,
}

const serveLongDesc string = `Run the verbatim API server.

On startup the server checks the vector store: an already-populated index is
reused, an empty one is built from the corpus directory. Questions are then
served over HTTP:

  POST /api/search           Ask a question, full answer as JSON
  POST /api/chat             Ask a question, answer streamed as SSE
  GET  /api/history/:session Conversation history for a session
  ALL  /mcp                  MCP endpoint exposing the "ask" tool

Examples:
  verbatim serve
  verbatim serve --corpus ./docs --profile research
  verbatim serve --vector-store-provider chroma --vector-store-target http://localhost:8000`

const serveShortDesc string = "Run the verbatim API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagStaticDir, &cmder.staticDir)
	config.AddStringFlag(cmd, config.Flags, config.FlagCorpusDir, &cmder.corpusDir)
	config.AddIntFlag(cmd, config.Flags, config.FlagChunkSize, &cmder.chunkSize)
	config.AddIntFlag(cmd, config.Flags, config.FlagOverlap, &cmder.overlap)
	config.AddStringFlag(cmd, config.Flags, config.FlagProfile, &cmder.profile)
	config.AddIntFlag(cmd, config.Flags, config.FlagTopK, &cmder.topK)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embeddingProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMProvider, &cmder.llmProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMTarget, &cmder.llmTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMModel, &cmder.llmModel)

	return cmd
}

func (c *serveCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	manager := start.NewManager(c.v, c.logger)

	engine, err := manager.NewEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	profile := engine.Profile()
	fmt.Println()
	err = cliui.Step(os.Stdout, fmt.Sprintf("Preparing index (%s profile)", profile.Name), func() error {
		return engine.Init(context.Background())
	})
	if err != nil {
		return fmt.Errorf("preparing index: %w", err)
	}

	apiConfig := api.Config{
		ListenAddr: c.v.GetString("server.listen"),
		StaticDir:  c.v.GetString("server.static_dir"),
	}

	server, err := api.NewServer(apiConfig, engine, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("starting API server",
		zap.String("listen", apiConfig.ListenAddr),
		zap.String("profile", profile.Name),
		zap.String("corpus", c.v.GetString("corpus.dir")),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
