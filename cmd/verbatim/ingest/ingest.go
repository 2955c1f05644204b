// Package ingestcmder provides the ingest command for building the corpus index.
package ingestcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/verbatim/pkg/cliui"
	"github.com/papercomputeco/verbatim/pkg/config"
	"github.com/papercomputeco/verbatim/pkg/logger"
	"github.com/papercomputeco/verbatim/pkg/start"
)

type ingestCommander struct {
	corpusDir      string
	chunkSize      int
	overlap        int
	profile        string
	vectorProvider string
	vectorTarget   string
	embeddingModel string
	embeddingDims  uint
	debug          bool

	v *viper.Viper
}

var ingestFlags = []string{
	config.FlagCorpusDir,
	config.FlagChunkSize,
	config.FlagOverlap,
	config.FlagProfile,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

const ingestLongDesc string = `Build (or rebuild) the corpus index.

Loads every document under the corpus directory, chunks it per the active
profile's chunking policy, embeds each chunk, and upserts the results into
the configured vector store. Re-running ingest over an existing index
overwrites records in place.

Ingestion is all-or-nothing: a corpus directory with no loadable documents
fails rather than producing an empty index.

Examples:
  verbatim ingest
  verbatim ingest --corpus ./docs
  verbatim ingest --profile research --chunk-size 2000 --overlap 400`

const ingestShortDesc string = "Build the corpus index"

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, ingestFlags)
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

	config.AddStringFlag(cmd, config.Flags, config.FlagCorpusDir, &cmder.corpusDir)
	config.AddIntFlag(cmd, config.Flags, config.FlagChunkSize, &cmder.chunkSize)
	config.AddIntFlag(cmd, config.Flags, config.FlagOverlap, &cmder.overlap)
	config.AddStringFlag(cmd, config.Flags, config.FlagProfile, &cmder.profile)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embeddingDims)

	return cmd
}

func (c *ingestCommander) run() error {
	log := logger.NewLogger(c.debug)
	defer func() { _ = log.Sync() }()

	manager := start.NewManager(c.v, log)

	engine, err := manager.NewEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	profile := engine.Profile()
	corpusDir := c.v.GetString("corpus.dir")

	fmt.Println()
	fmt.Printf("  %s %s\n",
		cliui.StepStyle.Render("Corpus:"),
		corpusDir,
	)
	fmt.Printf("  %s %s (chunk %d, overlap %d, top-k %d)\n\n",
		cliui.StepStyle.Render("Profile:"),
		profile.Name,
		profile.Chunking.ChunkSize,
		profile.Chunking.Overlap,
		profile.TopK,
	)

	err = cliui.Step(os.Stdout, "Ingesting corpus", func() error {
		return engine.Reindex(context.Background())
	})
	if err != nil {
		return fmt.Errorf("ingesting corpus: %w", err)
	}

	fmt.Println()
	return nil
}
