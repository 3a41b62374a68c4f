// Package config loads semmap settings from a config file, SEMMAP_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/Someblueman/semmap/internal/semmap"
)

// Config file and environment conventions.
const (
	DefaultConfigName = ".semmap"
	DefaultFile       = "SEMMAP.md"
	EnvPrefix         = "SEMMAP"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config keys, shared with flag bindings.
const (
	KeyRoot        = "root"
	KeyFile        = "file"
	KeyOutput      = "output"
	KeyFormat      = "format"
	KeyName        = "name"
	KeyPurpose     = "purpose"
	KeyLogLevel    = "log_level"
	KeyLogFormat   = "log_format"
	KeyInclude     = "include"
	KeyExcludeDirs = "exclude_dirs"
	KeyExclude     = "exclude"
	KeyAllowedTags = "allowed_tags"
	KeyStrict      = "strict"
	KeyHidden      = "include_hidden"
)

// Config is the resolved semmap configuration. An empty Root means the
// command's own default: the working directory for generate, the document's
// directory otherwise.
type Config struct {
	Root          string   `mapstructure:"root"`
	File          string   `mapstructure:"file"`
	Output        string   `mapstructure:"output"`
	Format        string   `mapstructure:"format"`
	Name          string   `mapstructure:"name"`
	Purpose       string   `mapstructure:"purpose"`
	LogLevel      string   `mapstructure:"log_level"`
	LogFormat     string   `mapstructure:"log_format"`
	Include       []string `mapstructure:"include"`
	ExcludeDirs   []string `mapstructure:"exclude_dirs"`
	Exclude       []string `mapstructure:"exclude"`
	AllowedTags   []string `mapstructure:"allowed_tags"`
	Strict        bool     `mapstructure:"strict"`
	IncludeHidden bool     `mapstructure:"include_hidden"`
}

// NewDefault returns the configuration used when nothing is set.
func NewDefault() *Config {
	scan := semmap.DefaultScanOptions()
	return &Config{
		File:        DefaultFile,
		Output:      DefaultFile,
		Format:      "md",
		LogLevel:    "warn",
		LogFormat:   LogFormatText,
		Include:     scan.IncludeExtensions,
		ExcludeDirs: scan.ExcludeDirs,
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.File, validation.Required),
		validation.Field(&c.Format, validation.Required, validation.By(func(any) error {
			_, err := semmap.CodecFor(c.Format)
			return err
		})),
		validation.Field(&c.LogLevel, validation.Required, validation.By(func(any) error {
			_, err := c.Level()
			return err
		})),
		validation.Field(&c.LogFormat, validation.Required, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// ScanOptions converts the configuration into a scan contract.
func (c *Config) ScanOptions(logger *slog.Logger) semmap.ScanOptions {
	opts := semmap.DefaultScanOptions()
	opts.Root = c.Root
	opts.ProjectName = c.Name
	opts.Purpose = c.Purpose
	if len(c.Include) > 0 {
		opts.IncludeExtensions = c.Include
	}
	if len(c.ExcludeDirs) > 0 {
		opts.ExcludeDirs = c.ExcludeDirs
	}
	opts.ExcludeGlobs = c.Exclude
	opts.IncludeHidden = c.IncludeHidden
	opts.Logger = logger
	return opts
}

// NewViper returns a viper instance carrying the defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	def := NewDefault()
	v.SetDefault(KeyRoot, "")
	v.SetDefault(KeyFile, def.File)
	v.SetDefault(KeyOutput, def.Output)
	v.SetDefault(KeyFormat, def.Format)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyLogFormat, def.LogFormat)
	v.SetDefault(KeyInclude, def.Include)
	v.SetDefault(KeyExcludeDirs, def.ExcludeDirs)
	v.SetDefault(KeyExclude, []string{})
	v.SetDefault(KeyAllowedTags, []string{})
	v.SetDefault(KeyStrict, false)
	v.SetDefault(KeyHidden, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile loads configFile into v, or .semmap.yaml from the working directory
// when configFile is empty. A missing default config file is not an error.
func ReadFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && (errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Decode unmarshals and validates the configuration held by v.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads configFile (or the default config file) plus the environment.
func Load(configFile string) (*Config, error) {
	v := NewViper()
	if err := ReadFile(v, configFile); err != nil {
		return nil, err
	}
	return Decode(v)
}
