package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/caseview/internal/config"
	"github.com/zjrosen/caseview/internal/presentation"
	"github.com/zjrosen/caseview/internal/viewers"
)

var (
	viewersSet  []string
	viewersJSON bool
)

var viewersCmd = &cobra.Command{
	Use:   "viewers",
	Short: "List viewers or set the tab order",
	Long: `List the available viewers and their configured tab order.

Configured viewers are printed first with their tab position. Viewers not in
the configuration are marked with "-" and get no tab.

Use --set to replace the tab order in the config file. Other settings and
comments in the file are preserved. When several viewers prefer the same
item the rightmost one wins, so list specialised viewers after generic ones.

Examples:
  # Show the current order
  caseview viewers

  # Only text and metadata, metadata preferred on ties
  caseview viewers --set text,metadata

  # Parse with jq
  caseview viewers --json | jq '.[] | select(.enabled) | .name'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runViewers(cmd.OutOrStdout(), configFilePath(), cfg.GetViewers(), viewersSet, viewersJSON)
	},
}

func init() {
	viewersCmd.Flags().StringSliceVar(&viewersSet, "set", nil,
		"comma separated tab order to save")
	viewersCmd.Flags().BoolVar(&viewersJSON, "json", false,
		"print the list as JSON")
	rootCmd.AddCommand(viewersCmd)
}

func runViewers(out io.Writer, configPath string, configured, set []string, asJSON bool) error {
	available := viewers.NewDefaultRegistry(viewers.Deps{}).Names()

	if len(set) > 0 {
		for i := range set {
			set[i] = strings.TrimSpace(set[i])
		}
		if _, err := viewers.NewDefaultRegistry(viewers.Deps{}).Ordered(set); err != nil {
			return err
		}
		if err := config.SaveViewers(configPath, set); err != nil {
			return fmt.Errorf("saving viewers: %w", err)
		}
		configured = set
	}

	return presentation.NewFormatter(out, asJSON).FormatViewers(presentation.FromViewers(available, configured))
}
