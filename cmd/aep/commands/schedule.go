package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/energydata/aep/internal/logger"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on a cron schedule",
	Long: `Run the pipeline repeatedly on a standard five-field cron schedule
until interrupted. Each run opens and closes its own sink connection. A run
that is still in progress when the next one is due causes that tick to be
skipped.

Examples:
  # Every day at 02:30
  aep schedule --cron "30 2 * * *"

  # Hourly, starting with an immediate run
  aep schedule --cron "@hourly" --now`,
	PreRunE: bindPipelineFlags,
	RunE:    runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	addPipelineFlags(scheduleCmd)

	flags := scheduleCmd.Flags()
	flags.String("cron", "", "cron expression (required)")
	flags.Bool("now", false, "run once immediately before waiting for the schedule")
	_ = scheduleCmd.MarkFlagRequired("cron")
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	spec, _ := cmd.Flags().GetString("cron")
	now, _ := cmd.Flags().GetBool("now")

	s, err := loadSettings(viper.GetViper())
	if err != nil {
		return err
	}

	sched, err := newScheduler(ctx, spec, func(ctx context.Context) {
		summary, err := runOnce(ctx, s)
		if summary != nil {
			printSummary(os.Stderr, summary)
		}
		if err != nil {
			logger.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	if now {
		sched.job(ctx)
	}

	sched.cron.Start()
	logger.Info("scheduler started", "cron", spec, "next", sched.cron.Entries()[0].Next)

	<-ctx.Done()
	logger.Info("stopping scheduler, waiting for running job")
	<-sched.cron.Stop().Done()
	return nil
}

type scheduler struct {
	cron *cron.Cron
	job  func(context.Context)
}

// newScheduler registers job on spec. Ticks that arrive while the job is
// still running are skipped.
func newScheduler(ctx context.Context, spec string, job func(context.Context)) (*scheduler, error) {
	log := cronLogger{}
	c := cron.New(
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)
	if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return &scheduler{cron: c, job: job}, nil
}

// cronLogger adapts cron's logger interface to the package logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
