package app

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/bnema/dexplore/internal/logging"
)

// Config holds the application configuration.
type Config struct {
	DockerRoot string `mapstructure:"docker_root"`

	Mount struct {
		// Binary replaces /bin/mount; parsed as a shell word list.
		Binary string `mapstructure:"binary"`
	} `mapstructure:"mount"`

	History struct {
		ShowEmptyLayers bool `mapstructure:"show_empty_layers"`
	} `mapstructure:"history"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		File   struct {
			Enabled    bool   `mapstructure:"enabled"`
			Path       string `mapstructure:"path"`
			MaxSize    int    `mapstructure:"max_size"`
			MaxBackups int    `mapstructure:"max_backups"`
			MaxAge     int    `mapstructure:"max_age"`
		} `mapstructure:"file"`
	} `mapstructure:"logging"`

	Download struct {
		OutputDir string `mapstructure:"output_dir"`
		Insecure  bool   `mapstructure:"insecure"`
	} `mapstructure:"download"`
}

// NewViper returns a viper instance carrying the defaults and the
// DEXPLORE_ environment binding. Flags are bound on top by the CLI.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("docker_root", DefaultDockerRoot)
	v.SetDefault("mount.binary", "")
	v.SetDefault("history.show_empty_layers", false)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.enabled", false)
	v.SetDefault("logging.file.path", "")
	v.SetDefault("logging.file.max_size", 100)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age", 28)
	v.SetDefault("download.output_dir", DefaultOutputDir)
	v.SetDefault("download.insecure", false)

	v.SetEnvPrefix("DEXPLORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the optional config file into v and decodes the result.
// A missing config file is not an error unless configPath names it.
func LoadConfig(v *viper.Viper, configPath string) (Config, error) {
	ConfigureViper(v, configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}
	if cfg.DockerRoot == "" {
		cfg.DockerRoot = DefaultDockerRoot
	}
	return cfg, nil
}

func (c Config) loggingConfig() logging.Config {
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		File: logging.FileConfig{
			Enabled:    c.Logging.File.Enabled,
			Path:       c.Logging.File.Path,
			MaxSize:    c.Logging.File.MaxSize,
			MaxBackups: c.Logging.File.MaxBackups,
			MaxAge:     c.Logging.File.MaxAge,
			Compress:   true,
		},
	}
}
