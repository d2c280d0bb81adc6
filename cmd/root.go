package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/caseview/internal/app"
	"github.com/zjrosen/caseview/internal/config"
	"github.com/zjrosen/caseview/internal/contentview"
	"github.com/zjrosen/caseview/internal/flags"
	"github.com/zjrosen/caseview/internal/infrastructure/sqlite"
	"github.com/zjrosen/caseview/internal/log"
	"github.com/zjrosen/caseview/internal/tracing"
	"github.com/zjrosen/caseview/internal/viewers"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in the UI.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const (
	localConfigPath = ".caseview/config.yaml"
	defaultCasePath = "case.db"
	debugLogPath    = "caseview-debug.log"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "caseview",
	Short: "A terminal viewer for imported evidence",
	Long: `A terminal user interface for browsing a case's content tree and
inspecting each item with hex, strings, text, markdown and metadata viewers.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/caseview/config.yaml)")
	rootCmd.PersistentFlags().StringP("case", "p", "",
		"path to the case database (default: ./case.db)")
	rootCmd.Flags().Bool("debug", false,
		"write a debug log and enable the log overlay (ctrl+x)")
	rootCmd.Flags().Bool("no-auto-refresh", false,
		"disable automatic reload when the case database changes")

	_ = viper.BindPFlag("case_path", rootCmd.PersistentFlags().Lookup("case"))
}

func initConfig() {
	setDefaults(viper.GetViper())

	path := findConfigFile(cfgFile)
	if path == "" {
		// No config file found anywhere - create default at .caseview/config.yaml.
		// If the write fails, just continue with defaults.
		if err := config.WriteDefaultConfig(localConfigPath); err == nil {
			path = localConfigPath
		}
	}
	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			log.ErrorErr(log.CatConfig, "Failed to read config", err, "path", path)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func setDefaults(v *viper.Viper) {
	defaults := config.Defaults()
	v.SetDefault("auto_refresh", defaults.AutoRefresh)
	v.SetDefault("viewers", defaults.Viewers)
	v.SetDefault("strings.min_length", defaults.Strings.MinLength)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	v.SetDefault("ui.show_disabled_tabs", defaults.UI.ShowDisabledTabs)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("flags", defaults.Flags)
}

// findConfigFile resolves the config path. Lookup order:
//  1. the --config flag
//  2. .caseview/config.yaml (current directory)
//  3. ~/.config/caseview/config.yaml (user config)
//
// Returns "" when none exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(localConfigPath); err == nil {
		return localConfigPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	userPath := filepath.Join(home, ".config", "caseview", "config.yaml")
	if _, err := os.Stat(userPath); err == nil {
		return userPath
	}
	return ""
}

// configFilePath is where config edits are written.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return localConfigPath
}

func casePath() string {
	if cfg.CasePath != "" {
		return cfg.CasePath
	}
	return defaultCasePath
}

func runApp(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		cleanup, err := log.InitWithTeaLog(debugLogPath, "caseview")
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer cleanup()
	}

	// Handle --no-auto-refresh flag (negated logic)
	if noAutoRefresh, _ := cmd.Flags().GetBool("no-auto-refresh"); noAutoRefresh {
		cfg.AutoRefresh = false
	}

	db, err := sqlite.NewDB(casePath())
	if err != nil {
		return fmt.Errorf("opening case: %w", err)
	}
	defer func() { _ = db.Close() }()

	provider, err := tracing.NewProvider(cfg.Tracing.TracingProviderConfig())
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	model, err := buildModel(db, provider, debug)
	if err != nil {
		return err
	}

	zone.NewGlobal()
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()

	// Release viewers and stop the watcher using the last model state
	if m, ok := final.(app.Model); ok {
		model = m
	}
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// buildModel wires the case store into the viewer registry and the UI.
func buildModel(db *sqlite.DB, provider *tracing.Provider, debug bool) (app.Model, error) {
	contents := db.ContentRepository()
	source := viewers.NewCachedSource(contents, cfg.Cache.TTL)

	factories, err := viewers.NewDefaultRegistry(viewers.Deps{
		Source:           source,
		Contents:         contents,
		DataSources:      db.DataSourceRepository(),
		StringsMinLength: cfg.Strings.MinLength,
		MarkdownStyle:    cfg.UI.MarkdownStyle,
	}).Ordered(cfg.GetViewers())
	if err != nil {
		return app.Model{}, fmt.Errorf("invalid viewer configuration: %w", err)
	}

	busy := app.NewBusy()
	registry := contentview.NewRegistry(factories, db,
		contentview.WithBusy(busy),
		contentview.WithTracer(provider.Tracer()),
	)

	return app.New(app.Options{
		Config:   cfg,
		Flags:    flags.New(cfg.Flags),
		Registry: registry,
		Loader:   contents,
		Source:   source,
		Busy:     busy,
		CaseName: db.Case().Name,
		DBPath:   db.Path(),
		Debug:    debug,
	}), nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
