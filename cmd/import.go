package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/caseview/internal/infrastructure/sqlite"
	"github.com/zjrosen/caseview/internal/presentation"
	"github.com/zjrosen/caseview/internal/tracing"
)

var (
	importName    string
	importMaxData int64
	importJSON    bool
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import a directory into the case as a data source",
	Long: `Import a directory tree into the case as a new data source.

The whole tree is imported in one transaction: either every file lands in
the case or none does. Symlinks and special files are skipped. Files larger
than --max-data keep their size and hash but only the leading bytes are
viewable.

Examples:
  # Import a mounted image using the directory name
  caseview import /mnt/laptop

  # Name the data source and use a different case
  caseview import ./usb-dump --name "USB stick" --case cases/2024-017.db

  # Machine readable summary
  caseview import /mnt/laptop --json | jq '.files'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := tracing.NewProvider(cfg.Tracing.TracingProviderConfig())
		if err != nil {
			return fmt.Errorf("starting tracing: %w", err)
		}
		defer func() { _ = provider.Shutdown(context.Background()) }()

		return runImport(cmd.Context(), casePath(), args[0], importName,
			presentation.NewFormatter(cmd.OutOrStdout(), importJSON),
			sqlite.WithMaxDataBytes(importMaxData),
			sqlite.WithImportTracer(provider.Tracer()),
		)
	},
}

func init() {
	importCmd.Flags().StringVarP(&importName, "name", "n", "",
		"data source name (default: directory name)")
	importCmd.Flags().Int64Var(&importMaxData, "max-data", sqlite.DefaultMaxDataBytes,
		"bytes stored per file")
	importCmd.Flags().BoolVar(&importJSON, "json", false,
		"print the summary as JSON")
	rootCmd.AddCommand(importCmd)
}

func runImport(ctx context.Context, dbPath, dir, name string, f *presentation.Formatter, opts ...sqlite.ImporterOption) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := sqlite.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening case: %w", err)
	}
	defer func() { _ = db.Close() }()

	ds, stats, err := sqlite.NewImporter(db, opts...).Import(ctx, dir, name)
	if err != nil {
		return fmt.Errorf("importing %s: %w", dir, err)
	}
	return f.FormatImport(presentation.FromImport(ds, stats, db.Case()))
}
