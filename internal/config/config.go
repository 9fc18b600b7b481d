package config

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/meza/minepkg/internal/constants"
	"github.com/meza/minepkg/internal/perf"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	KeyDataDir     = "data_dir"
	KeyFeedURL     = "feed_url"
	KeyMetadataURL = "metadata_url"
	KeyConcurrency = "concurrency"
	KeyRateLimit   = "rate_limit"

	DefaultConcurrency = 4
	DefaultRateLimit   = 20.0
)

// Config holds the settings every command shares. It is built once by Load
// and passed down explicitly.
type Config struct {
	DataDir     string  `mapstructure:"data_dir"`
	FeedURL     string  `mapstructure:"feed_url"`
	MetadataURL string  `mapstructure:"metadata_url"`
	Concurrency int     `mapstructure:"concurrency"`
	RateLimit   float64 `mapstructure:"rate_limit"`
	// File is the configuration file that was read, empty when none existed.
	File string `mapstructure:"-"`
}

// DefaultFile is $XDG_CONFIG_HOME/minepkg/config.toml.
func DefaultFile() string {
	return filepath.Join(xdg.ConfigHome, constants.AppName, "config.toml")
}

// DefaultDataDir is $XDG_DATA_HOME/minepkg.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, constants.AppName)
}

// Load merges defaults, the optional configuration file and MINEPKG_*
// environment variables, in increasing precedence. An empty path means
// DefaultFile.
func Load(filesystem afero.Fs, path string) (Config, error) {
	_, span := perf.StartSpan(context.Background(), "io.config.load")
	defer span.End()

	if path == "" {
		path = DefaultFile()
	}

	v := viper.New()
	v.SetFs(filesystem)
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDataDir, DefaultDataDir())
	v.SetDefault(KeyFeedURL, constants.DefaultFeedURL)
	v.SetDefault(KeyMetadataURL, constants.DefaultMetadataURL)
	v.SetDefault(KeyConcurrency, DefaultConcurrency)
	v.SetDefault(KeyRateLimit, DefaultRateLimit)

	file := ""
	if err := v.ReadInConfig(); err != nil {
		if !isMissingFile(err) {
			return Config{}, &ConfigFileInvalidError{Path: path, Err: err}
		}
	} else {
		file = path
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, &ConfigFileInvalidError{Path: path, Err: err}
	}
	config.File = file

	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return &ConfigValueError{Key: KeyDataDir, Value: c.DataDir, Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.FeedURL) == "" {
		return &ConfigValueError{Key: KeyFeedURL, Value: c.FeedURL, Reason: "must not be empty"}
	}
	if c.Concurrency < 0 {
		return &ConfigValueError{Key: KeyConcurrency, Value: c.Concurrency, Reason: "must be zero (unbounded) or positive"}
	}
	if c.RateLimit < 0 {
		return &ConfigValueError{Key: KeyRateLimit, Value: c.RateLimit, Reason: "must be zero (unlimited) or positive"}
	}
	return nil
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
