package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pakarguru/modulajar/internal/config"
	"github.com/pakarguru/modulajar/internal/lessonplan"
	"github.com/pakarguru/modulajar/internal/llm"
	"github.com/pakarguru/modulajar/internal/logging"
	"github.com/pakarguru/modulajar/internal/store"
)

var (
	cfg      *config.Config
	logger   = zap.NewNop()
	flushLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "modulajar",
	Short: "Generator Modul Ajar Kurikulum Merdeka",
	Long: `modulajar generates Indonesian lesson plans (Modul Ajar) with an LLM,
normalizes the tables in the generated text and renders the result as a
printable HTML page or a Word document.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = config.DefaultPath()
		}
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		if p, _ := cmd.Flags().GetString("db"); p != "" {
			c.Store.Path = p
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			c.Logging.Level = lvl
		}

		l, flush, err := logging.Install(c.Logging)
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		cfg, logger, flushLog = c, l, flush
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushLog()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/modulajar/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MODULAJAR_DB)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	path, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// newService builds the generation service on the configured provider
// chain. Requests are recorded in events.
func newService(ctx context.Context, events store.EventRepo) (*lessonplan.Service, error) {
	llmCfg := cfg.LLMConfig()
	if err := llmCfg.Validate(); err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	provider, err := llm.NewProvider(ctx, llmCfg, events)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	return lessonplan.NewService(provider, lessonplan.DefaultConfig()), nil
}
