package config

import (
	"runtime"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Input    InputConfig    `yaml:"input" mapstructure:"input"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Layout   LayoutConfig   `yaml:"layout" mapstructure:"layout"`
	Mapper   MapperConfig   `yaml:"mapper" mapstructure:"mapper"`
	Group    GroupConfig    `yaml:"group" mapstructure:"group"`
	Profiles ProfilesConfig `yaml:"profiles" mapstructure:"profiles"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// InputConfig configures how source files are read.
type InputConfig struct {
	// Encoding names the source charset ("utf-8", "windows-1252", "latin1", ...).
	// Empty means UTF-8 with invalid bytes replaced by U+FFFD; "auto" keeps
	// valid UTF-8 and reads invalid bytes as Latin-1.
	Encoding   string `yaml:"encoding" mapstructure:"encoding"`
	Delimiter  string `yaml:"delimiter" mapstructure:"delimiter"`
	LazyQuotes bool   `yaml:"lazy_quotes" mapstructure:"lazy_quotes"`
	// PropertyPattern is matched case-insensitively against ZIP entry names.
	PropertyPattern string `yaml:"property_pattern" mapstructure:"property_pattern"`
	TempDir         string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// OutputConfig configures where result files are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// PipelineConfig configures the per-record stage runner.
type PipelineConfig struct {
	Workers            int `yaml:"workers" mapstructure:"workers"`
	BatchSize          int `yaml:"batch_size" mapstructure:"batch_size"`
	ProgressEvery      int `yaml:"progress_every" mapstructure:"progress_every"`
	ProgressIntervalMS int `yaml:"progress_interval_ms" mapstructure:"progress_interval_ms"`
}

// LayoutConfig points at an external fixed-width layout.
type LayoutConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Sheet string `yaml:"sheet" mapstructure:"sheet"`
}

// MapperConfig tunes the canonical field mapper.
type MapperConfig struct {
	Threshold         float64  `yaml:"threshold" mapstructure:"threshold"`
	OptionalThreshold float64  `yaml:"optional_threshold" mapstructure:"optional_threshold"`
	Optional          []string `yaml:"optional" mapstructure:"optional"`
	Required          []string `yaml:"required" mapstructure:"required"`
}

// GroupConfig tunes owner aggregation.
type GroupConfig struct {
	IDCap          int    `yaml:"id_cap" mapstructure:"id_cap"`
	InvestorIDCap  int    `yaml:"investor_id_cap" mapstructure:"investor_id_cap"`
	AddressCap     int    `yaml:"address_cap" mapstructure:"address_cap"`
	BonusCap       int    `yaml:"bonus_cap" mapstructure:"bonus_cap"`
	SpillThreshold int    `yaml:"spill_threshold" mapstructure:"spill_threshold"`
	TempDir        string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// ProfilesConfig locates profile override files.
type ProfilesConfig struct {
	// Dir holds <profile>.yaml files layered over the built-in profiles.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NOTELEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("input.encoding", "")
	v.SetDefault("input.delimiter", ",")
	v.SetDefault("input.lazy_quotes", true)
	v.SetDefault("input.property_pattern", "PROP*.TXT")
	v.SetDefault("output.dir", "output")
	v.SetDefault("pipeline.workers", runtime.GOMAXPROCS(0))
	v.SetDefault("pipeline.batch_size", 512)
	v.SetDefault("pipeline.progress_every", 50000)
	v.SetDefault("pipeline.progress_interval_ms", 2000)
	v.SetDefault("mapper.threshold", 0.5)
	v.SetDefault("mapper.optional_threshold", 0.7)
	v.SetDefault("mapper.optional", []string{"interest_rate", "maturity_date", "loan_term"})
	v.SetDefault("mapper.required", []string{"lender_name", "loan_amount"})
	v.SetDefault("group.id_cap", 10)
	v.SetDefault("group.investor_id_cap", 20)
	v.SetDefault("group.address_cap", 5)
	v.SetDefault("group.bonus_cap", 10)
	v.SetDefault("group.spill_threshold", 250000)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command depends on. Problems are collected
// and reported together.
func (c *Config) Validate(command string) error {
	var errs []string

	if c.Pipeline.Workers < 1 {
		errs = append(errs, "pipeline.workers must be >= 1")
	}
	if c.Pipeline.BatchSize < 1 {
		errs = append(errs, "pipeline.batch_size must be >= 1")
	}
	if c.Output.Dir == "" {
		errs = append(errs, "output.dir is required")
	}

	switch command {
	case "notes", "map":
		if c.Mapper.Threshold <= 0 || c.Mapper.Threshold > 1 {
			errs = append(errs, "mapper.threshold must be in (0, 1]")
		}
		if c.Mapper.OptionalThreshold < c.Mapper.Threshold || c.Mapper.OptionalThreshold > 1 {
			errs = append(errs, "mapper.optional_threshold must be in [mapper.threshold, 1]")
		}
	case "group":
		if c.Group.IDCap < 1 {
			errs = append(errs, "group.id_cap must be >= 1")
		}
		if c.Group.InvestorIDCap < 1 {
			errs = append(errs, "group.investor_id_cap must be >= 1")
		}
		if c.Group.AddressCap < 1 {
			errs = append(errs, "group.address_cap must be >= 1")
		}
		if c.Group.BonusCap < 0 {
			errs = append(errs, "group.bonus_cap must be >= 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
