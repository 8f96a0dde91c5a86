package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/energydata/aep/internal/logger"
	"github.com/energydata/aep/internal/output"
	"github.com/energydata/aep/pkg/catalog"
	"github.com/energydata/aep/pkg/fetcher"
	"github.com/energydata/aep/pkg/pipeline"
	"github.com/energydata/aep/pkg/sink"
)

// settings is the resolved configuration of a pipeline run, merged from
// flags, environment, .env and the config file.
type settings struct {
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	Endpoint    string        `mapstructure:"endpoint" validate:"required"`
	Delay       time.Duration `mapstructure:"delay" validate:"min=0"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Sink        string        `mapstructure:"sink" validate:"oneof=mongo file"`
	Output      string        `mapstructure:"output" validate:"required_if=Sink file"`
	Format      string        `mapstructure:"format" validate:"omitempty,oneof=json jsonl yaml yml csv xlsx"`
	Spill       string        `mapstructure:"spill"`
	CatalogFile string        `mapstructure:"catalog"`
	Sector      string        `mapstructure:"sector"`
	SubSector   string        `mapstructure:"sub_sector"`
	DryRun      bool          `mapstructure:"dry_run"`
	Replace     bool          `mapstructure:"replace"`
	Mongo       mongoSettings `mapstructure:"mongo"`
}

type mongoSettings struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database" validate:"required"`
	Collection string `mapstructure:"collection" validate:"required"`
}

func setDefaults(v *viper.Viper) {
	def := fetcher.DefaultConfig()
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("endpoint", def.Endpoint)
	v.SetDefault("delay", def.Delay)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("sink", "mongo")
	v.SetDefault("mongo.database", "aep")
	v.SetDefault("mongo.collection", "indicators")

	// Unmarshal only consults the environment for keys viper knows about.
	for _, key := range []string{"mongo.uri", "output", "format", "spill", "catalog", "sector", "sub_sector"} {
		v.SetDefault(key, "")
	}
	v.SetDefault("dry_run", false)
	v.SetDefault("replace", false)
}

// addPipelineFlags registers the flags shared by run and schedule.
func addPipelineFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	// Portal
	flags.String("base-url", "", "portal base URL")
	flags.Duration("delay", 0, "pause after every portal request (default 2s)")
	flags.Duration("timeout", 0, "per-request timeout (default 1m)")

	// Catalog
	flags.String("catalog", "", "catalog file (YAML or JSON) replacing the built-in indicator list")
	flags.String("sector", "", "only fetch indicators of this sector")
	flags.String("sub-sector", "", "only fetch indicators of this sub-sector")

	// Sink
	flags.String("sink", "", "sink: mongo, file (default mongo)")
	flags.StringP("output", "o", "", "output file for --sink file (- for stdout)")
	flags.String("format", "", fmt.Sprintf("output format: %s (default from extension)", formatList()))
	flags.String("spill", "", "file to write the documents to when the sink fails")
	flags.Bool("replace", false, "delete previous documents from the collection before inserting")
	flags.Bool("dry-run", false, "fetch and pivot without writing to the sink")
	flags.String("mongo-uri", "", "MongoDB connection string (or AEP_MONGO_URI)")
	flags.String("mongo-database", "", "MongoDB database (default aep)")
	flags.String("mongo-collection", "", "MongoDB collection (default indicators)")
}

func formatList() string {
	names := make([]string, 0, len(output.Formats()))
	for _, f := range output.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

var flagKeys = map[string]string{
	"base-url":         "base_url",
	"delay":            "delay",
	"timeout":          "timeout",
	"catalog":          "catalog",
	"sector":           "sector",
	"sub-sector":       "sub_sector",
	"sink":             "sink",
	"output":           "output",
	"format":           "format",
	"spill":            "spill",
	"replace":          "replace",
	"dry-run":          "dry_run",
	"mongo-uri":        "mongo.uri",
	"mongo-database":   "mongo.database",
	"mongo-collection": "mongo.collection",
}

// bindPipelineFlags binds the flags of the executing command. Binding
// happens at run time because run and schedule share keys.
func bindPipelineFlags(cmd *cobra.Command, _ []string) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	initLogger()
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// loadSettings reads and validates the settings from viper.
func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := validate.Struct(s); err != nil {
		return settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	if s.Sink == "mongo" && s.Mongo.URI == "" && !s.DryRun {
		return settings{}, errors.New("invalid settings: mongo sink needs a connection string (--mongo-uri or AEP_MONGO_URI)")
	}
	return s, nil
}

// loadCatalog returns the configured catalog narrowed to the sector filters.
func (s settings) loadCatalog() (catalog.Catalog, error) {
	c := catalog.Default()
	if s.CatalogFile != "" {
		loaded, err := catalog.FromFile(s.CatalogFile)
		if err != nil {
			return catalog.Catalog{}, err
		}
		c = loaded
	}

	if s.Sector != "" || s.SubSector != "" {
		c = c.Filter(s.Sector, s.SubSector)
		if len(c.Indicators()) == 0 {
			return catalog.Catalog{}, fmt.Errorf("no indicators match sector %q sub-sector %q", s.Sector, s.SubSector)
		}
	}
	return c, nil
}

func (s settings) fetcherConfig() fetcher.Config {
	cfg := fetcher.DefaultConfig()
	cfg.BaseURL = s.BaseURL
	cfg.Endpoint = s.Endpoint
	cfg.Delay = s.Delay
	cfg.Timeout = s.Timeout
	return cfg
}

func (s settings) outputFormat() (output.Format, error) {
	if s.Format == "" {
		return "", nil
	}
	return output.ParseFormat(s.Format)
}

// openSink constructs the primary sink. Dry runs get no sink at all.
func (s settings) openSink(ctx context.Context) (pipeline.Sink, error) {
	if s.DryRun {
		return nil, nil
	}
	switch s.Sink {
	case "file":
		format, err := s.outputFormat()
		if err != nil {
			return nil, err
		}
		fs, err := sink.NewFile(s.Output, format)
		if err != nil {
			return nil, err
		}
		return fs, nil
	default:
		ms, err := sink.NewMongo(ctx, sink.MongoConfig{
			URI:        s.Mongo.URI,
			Database:   s.Mongo.Database,
			Collection: s.Mongo.Collection,
			Timeout:    s.Timeout,
			Replace:    s.Replace,
		})
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
}

func (s settings) openSpill() (pipeline.Sink, error) {
	if s.Spill == "" || s.DryRun {
		return nil, nil
	}
	fs, err := sink.NewFile(s.Spill, "", output.WithPretty(false))
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// newRunner wires the catalog, portal client and sinks for one run.
// The returned cleanup closes the sinks.
func (s settings) newRunner(ctx context.Context) (*pipeline.Runner, func(), error) {
	cat, err := s.loadCatalog()
	if err != nil {
		return nil, nil, err
	}

	cfg := s.fetcherConfig()
	cfg.Catalog = &cat
	portal, err := fetcher.NewPortal(cfg)
	if err != nil {
		return nil, nil, err
	}

	primary, err := s.openSink(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open sink: %w", err)
	}
	spill, err := s.openSpill()
	if err != nil {
		closeSink(primary)
		return nil, nil, fmt.Errorf("open spill: %w", err)
	}

	cleanup := func() {
		closeSink(primary)
		closeSink(spill)
		_ = portal.Close()
	}

	return &pipeline.Runner{
		Catalog: cat,
		Fetcher: portal,
		BaseURL: portal.BaseURL(),
		Sink:    primary,
		Spill:   spill,
	}, cleanup, nil
}

func closeSink(s pipeline.Sink) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		logger.WarnContext(ctx, "failed to close sink", "sink", s.Name(), "error", err)
	}
}
