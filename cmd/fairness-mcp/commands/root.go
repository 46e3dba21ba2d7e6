package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fairness-mcp/internal/analyzer"
	"fairness-mcp/internal/config"
	"fairness-mcp/internal/logging"
	"fairness-mcp/internal/mcp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "fairness-mcp",
	Short: "Assignment equity analysis as an MCP server",
	Long: `An MCP server that measures how evenly service assignments are spread across a
personnel pool (Gini, Shannon entropy, HHI, Palma), flags favoured and
under-served members by z-score, reconciles the pool against observed
assignments and raises alerts with recommendations.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("fairness-mcp starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAnalyzer()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return mcp.NewServer(cfg, a).Serve(ctx, Version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newAnalyzer() (*analyzer.Analyzer, error) {
	return analyzer.New(analyzer.Config{
		HistoryDir: cfg.HistoryDir,
		Thresholds: cfg.Thresholds,
		CacheTTL:   cfg.ReportCacheTTL,
	})
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(reportCmd, serveCmd)
}
