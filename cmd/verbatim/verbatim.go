// Package verbatimcmder
package verbatimcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/verbatim/cmd/verbatim/ask"
	chatcmder "github.com/papercomputeco/verbatim/cmd/verbatim/chat"
	configcmder "github.com/papercomputeco/verbatim/cmd/verbatim/config"
	ingestcmder "github.com/papercomputeco/verbatim/cmd/verbatim/ingest"
	servecmder "github.com/papercomputeco/verbatim/cmd/verbatim/serve"
	versioncmder "github.com/papercomputeco/verbatim/cmd/version"
)

const verbatimLongDesc string = `Verbatim answers questions strictly from your own documents.

It chunks a corpus directory, indexes it in a vector store, retrieves the
most relevant passages for each question, and synthesizes a grounded answer
with a citation. When the corpus does not cover a question, it says so
rather than guessing.

Getting started:
  verbatim ingest              Build the corpus index
  verbatim serve               Run the API server
  verbatim ask "question"      Ask a single question
  verbatim chat                Interactive question session`

const verbatimShortDesc string = "Verbatim - Corpus-grounded question answering"

func NewVerbatimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verbatim",
		Short: verbatimShortDesc,
		Long:  verbatimLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing the .verbatim config (default: auto-discover)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
