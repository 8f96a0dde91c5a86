package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/energydata/aep/internal/logger"
	"github.com/energydata/aep/pkg/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch every catalog indicator and write the pivoted table",
	Long: `Run the pipeline once.

Each indicator of the catalog is requested from the portal in turn, with a
fixed pause after every request. Failed indicators are logged and skipped.
The collected observations are coerced to numbers, rows without a value are
dropped, and the rest are pivoted into one document per country and metric
with a value per year. The documents are written to the sink in a single
bulk insert.

Examples:
  # MongoDB (connection string from AEP_MONGO_URI or .env)
  aep run

  # CSV export of a single sub-sector
  aep run --sink file -o supply.csv --sub-sector Supply

  # Keep the data on disk if MongoDB is unreachable
  aep run --spill failed-run.jsonl`,
	PreRunE: bindPipelineFlags,
	RunE:    runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addPipelineFlags(runCmd)
	runCmd.Flags().Int("preview", 10, "rows to print on --dry-run")
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := loadSettings(viper.GetViper())
	if err != nil {
		return err
	}
	logger.Debug("settings loaded",
		"base_url", s.BaseURL,
		"sink", s.Sink,
		"delay", s.Delay,
		"timeout", s.Timeout,
		"dry_run", s.DryRun)

	summary, err := runOnce(ctx, s)
	if summary != nil {
		printSummary(os.Stderr, summary)
		if s.DryRun {
			preview, _ := cmd.Flags().GetInt("preview")
			printPreview(os.Stdout, summary.Documents, preview)
		}
	}
	return err
}

// runOnce builds a runner from the settings, executes it and releases its
// resources.
func runOnce(ctx context.Context, s settings) (*pipeline.Summary, error) {
	runner, cleanup, err := s.newRunner(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	summary, err := runner.Run(ctx)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrSink):
			logger.ErrorContext(ctx, "sink failed", "error", err)
		case errors.Is(err, pipeline.ErrCatalog):
			logger.ErrorContext(ctx, "catalog rejected", "error", err)
		default:
			logger.ErrorContext(ctx, "run failed", "error", err)
		}
	}
	return summary, err
}
