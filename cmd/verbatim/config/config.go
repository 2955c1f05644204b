// Package configcmder provides the config command for managing persistent
// verbatim configuration stored in the .verbatim/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent verbatim configuration.

Configuration is stored as config.toml in the .verbatim/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values, and VERBATIM_* environment variables sit between
the two.

Keys use dotted notation matching the TOML section structure:
  server.listen, server.static_dir,
  client.api_target,
  corpus.dir, corpus.chunk_size, corpus.overlap,
  oracle.profile, oracle.top_k, oracle.max_turns,
  vector_store.provider, vector_store.target, vector_store.collection,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  llm.provider, llm.target, llm.model, llm.api_key,
  event_stream.provider, event_stream.brokers, event_stream.topic

Use subcommands to get, set, or list configuration values:
  verbatim config set <key> <value>    Set a configuration value
  verbatim config get <key>            Get a configuration value
  verbatim config list                 List all configuration values
  verbatim config preset <name>        Write a full preset configuration

Examples:
  verbatim config set oracle.profile research
  verbatim config set vector_store.provider chroma
  verbatim config get llm.model
  verbatim config preset research
  verbatim config list`

const configShortDesc string = "Manage persistent verbatim configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newPresetCmd())

	return cmd
}
