package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verbatim/pkg/cliui"
	"github.com/papercomputeco/verbatim/pkg/config"
)

const presetLongDesc string = `Write a full preset configuration.

Overwrites the config.toml file with the named deployment preset:

  expert     Precision profile: small chunks, single best match, SQLite
             vector store. Suited to exact-answer lookups.
  research   Coverage profile: large chunks, deep retrieval, Chroma
             vector store. Suited to exploratory synthesis.

Examples:
  verbatim config preset expert
  verbatim config preset research`

const presetShortDesc string = "Write a full preset configuration"

func newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset <name>",
		Short: presetShortDesc,
		Long:  presetLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runPreset(args[0], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidPresetNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runPreset(name, configDir string) error {
	cfg, err := config.PresetConfig(name)
	if err != nil {
		return fmt.Errorf("%w\n\nValid presets: %s", err, strings.Join(config.ValidPresetNames(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\n  %s Wrote %s preset to %s\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(strings.ToLower(name)),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)
	return nil
}
