// Package commands implements the CLI commands for aep.
package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/energydata/aep/internal/logger"
	"github.com/energydata/aep/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "aep",
	Short: "Africa Energy Portal indicator pipeline",
	Long: `aep downloads energy indicators for African countries from the
Africa Energy Portal, pivots them into one row per country and metric with
one column per year, and writes the result to MongoDB or an export file.

Examples:
  # Fetch every catalog indicator into MongoDB
  AEP_MONGO_URI=mongodb://localhost:27017 aep run

  # Export the Access sub-sector to a spreadsheet
  aep run --sink file -o access.xlsx --sub-sector Access

  # Preview the pivot without writing anything
  aep run --dry-run --sector Electricity

  # Refresh the collection every Monday at 03:00
  aep schedule --cron "0 3 * * 1" --replace`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version.String(),
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.aep.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().String("log-format", "auto", "log format: auto, text, color, json")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("env_file", rootCmd.PersistentFlags().Lookup("env-file"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	// .env values never override variables already set in the environment.
	if envFile := viper.GetString("env_file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", envFile, err)
		}
	}

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".aep")
		viper.SetConfigType("yaml")
	}

	configureEnv(viper.GetViper())
	setDefaults(viper.GetViper())

	// Read config file (ignore error if not found)
	if err := viper.ReadInConfig(); err != nil && viper.GetString("config") != "" {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config %s: %v\n", viper.GetString("config"), err)
	}
}

// configureEnv maps AEP_* environment variables onto settings keys:
// AEP_MONGO_URI, AEP_SUB_SECTOR, AEP_DRY_RUN, ...
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("AEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// initLogger configures the package logger from the global flags.
func initLogger() {
	opts := logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	}
	switch strings.ToLower(viper.GetString("log_format")) {
	case "json":
		opts.JSON = true
	case "color", "colour":
		opts.Color = true
	case "text":
	default:
		opts.Color = isTerminal(os.Stderr)
	}
	logger.Init(opts)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		logError("%v", err)
		return err
	}
	return nil
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
