package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/enrich-cli/internal/tabular"
)

// Config holds the full application configuration.
type Config struct {
	Dataset Dataset       `yaml:"dataset" mapstructure:"dataset"`
	Country string        `yaml:"country" mapstructure:"country"`
	Chain   string        `yaml:"chain" mapstructure:"chain"` // path to the backend chain yaml
	Delay   Delay         `yaml:"delay" mapstructure:"delay"`
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	Journal Journal       `yaml:"journal" mapstructure:"journal"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// Dataset names the input table, the write paths, and the column mapping.
type Dataset struct {
	Path     string          `yaml:"path" mapstructure:"path"`
	Fallback string          `yaml:"fallback" mapstructure:"fallback"` // secondary write path, optional
	Mapping  tabular.Mapping `yaml:"mapping" mapstructure:"mapping"`
}

// Delay paces backend calls. Jitter is added on top of the base interval.
type Delay struct {
	IntervalSecs float64 `yaml:"interval_secs" mapstructure:"interval_secs"`
	JitterSecs   float64 `yaml:"jitter_secs" mapstructure:"jitter_secs"`
}

// Interval returns the base delay as a duration.
func (d Delay) Interval() time.Duration {
	return time.Duration(d.IntervalSecs * float64(time.Second))
}

// Jitter returns the jitter bound as a duration.
func (d Delay) Jitter() time.Duration {
	return time.Duration(d.JitterSecs * float64(time.Second))
}

// BrowserConfig configures the rendering session used by serp backends.
type BrowserConfig struct {
	Headless    bool `yaml:"headless" mapstructure:"headless"`
	TimeoutSecs int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Journal configures the pass journal database.
type Journal struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("country", "switzerland")
	v.SetDefault("chain", "chain.yaml")
	v.SetDefault("delay.interval_secs", 2.0)
	v.SetDefault("delay.jitter_secs", 0.5)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout_secs", 30)
	v.SetDefault("journal.path", "enrich.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the parts the run command cannot proceed without.
func (c *Config) Validate() error {
	if c.Dataset.Path == "" {
		return eris.New("config: dataset.path is required")
	}
	return c.Dataset.Mapping.Validate()
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
