// Package config defines the configuration structures and loads them from a
// YAML file, a .env file and ANTICRISIS_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/iwvelando/anticrisis-view/internal/snapshot"
	"github.com/iwvelando/anticrisis-view/pkg/constants"
	"github.com/iwvelando/anticrisis-view/pkg/labels"
	"github.com/iwvelando/anticrisis-view/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"golang.org/x/text/language"
)

// Backend source modes.
const (
	// ModeTable reads every part of a period from the table endpoint.
	ModeTable = "table"
	// ModeSections issues one request per section.
	ModeSections = "sections"
)

// Failure policies as written in configuration.
const (
	PolicyFailFast  = "failfast"
	PolicySettleAll = "settleall"
)

// Configuration holds all configuration for anticrisis-view.
type Configuration struct {
	Backend    BackendConfig    `mapstructure:"backend"`
	Locale     string           `mapstructure:"locale"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Output     OutputConfig     `mapstructure:"output"`
	Server     ServerConfig     `mapstructure:"server"`
	Export     ExportConfig     `mapstructure:"export"`
	Labels     labels.Overrides `mapstructure:"labels"`
	LabelsFile string           `mapstructure:"labelsFile"`
}

// BackendConfig describes how to reach the REST API.
type BackendConfig struct {
	BaseURL       string        `mapstructure:"baseURL"`
	Token         string        `mapstructure:"token"`
	TokenFile     string        `mapstructure:"tokenFile"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Mode          string        `mapstructure:"mode"`          // table, sections
	FailurePolicy string        `mapstructure:"failurePolicy"` // failfast, settleall
	FinModel      bool          `mapstructure:"finModel"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level"`      // debug, info, warn, error
	Format     string `mapstructure:"format"`     // json, console
	OutputFile string `mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format"` // table, csv, json
}

// ServerConfig holds the HTTP listener options.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// ExportConfig controls where and how exports are written.
type ExportConfig struct {
	Dir             string `mapstructure:"dir"` // empty writes to stdout
	S3Bucket        string `mapstructure:"s3Bucket"`
	S3Prefix        string `mapstructure:"s3Prefix"`
	AWSProfile      string `mapstructure:"awsProfile"`
	IncludeFinModel bool   `mapstructure:"includeFinModel"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.baseURL", constants.DefaultBackendURL)
	v.SetDefault("backend.token", "")
	v.SetDefault("backend.tokenFile", "")
	v.SetDefault("backend.timeout", time.Duration(constants.DefaultBackendTimeoutSeconds)*time.Second)
	v.SetDefault("backend.mode", ModeTable)
	v.SetDefault("backend.failurePolicy", PolicyFailFast)
	v.SetDefault("backend.finModel", false)
	v.SetDefault("locale", constants.DefaultLocale)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatTable)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.shutdownTimeout", time.Duration(constants.DefaultShutdownTimeoutSeconds)*time.Second)
	v.SetDefault("export.dir", "")
	v.SetDefault("export.s3Bucket", "")
	v.SetDefault("export.s3Prefix", "")
	v.SetDefault("export.awsProfile", "")
	v.SetDefault("export.includeFinModel", false)
	v.SetDefault("labelsFile", "")
}

// LoadConfiguration loads the YAML configuration at configPath. An empty path
// skips the file and relies on defaults and the environment. A .env file in
// the working directory is loaded first when present.
func LoadConfiguration(configPath string) (*Configuration, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if configuration.LabelsFile != "" {
		fromFile, err := labels.LoadOverrides(configuration.LabelsFile)
		if err != nil {
			return nil, err
		}
		configuration.Labels = labels.Merge(fromFile, configuration.Labels)
	}

	return &configuration, nil
}

// Validate checks every option and reports all problems at once.
func (c *Configuration) Validate() error {
	var err error

	if u, perr := url.Parse(c.Backend.BaseURL); perr != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("backend.baseURL: %q is not an http(s) URL", c.Backend.BaseURL))
	}
	if c.Backend.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("backend.timeout: must be positive, got %s", c.Backend.Timeout))
	}
	if c.Backend.Mode != ModeTable && c.Backend.Mode != ModeSections {
		err = multierr.Append(err, fmt.Errorf("backend.mode: expected %s or %s, got %q", ModeTable, ModeSections, c.Backend.Mode))
	}
	if _, perr := c.FailurePolicy(); perr != nil {
		err = multierr.Append(err, perr)
	}
	if _, perr := language.Parse(c.Locale); perr != nil {
		err = multierr.Append(err, fmt.Errorf("locale: %w", perr))
	}
	if verr := validation.ValidateLogLevel(c.Logging.Level); verr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", verr))
	}
	if verr := validation.ValidateLogFormat(c.Logging.Format); verr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.format: %w", verr))
	}
	if verr := validation.ValidateOutputFormat(c.Output.Format); verr != nil {
		err = multierr.Append(err, fmt.Errorf("output.format: %w", verr))
	}
	if c.Server.ShutdownTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("server.shutdownTimeout: must be positive, got %s", c.Server.ShutdownTimeout))
	}
	for section := range c.Labels {
		if _, perr := snapshot.ParseSectionKind(section); perr != nil {
			err = multierr.Append(err, fmt.Errorf("labels: %w", perr))
		}
	}

	return err
}

// FailurePolicy maps the configured policy name.
func (c *Configuration) FailurePolicy() (snapshot.FailurePolicy, error) {
	switch strings.ToLower(c.Backend.FailurePolicy) {
	case PolicyFailFast, "":
		return snapshot.FailFast, nil
	case PolicySettleAll:
		return snapshot.SettleAll, nil
	}
	return snapshot.FailFast, fmt.Errorf("backend.failurePolicy: expected %s or %s, got %q", PolicyFailFast, PolicySettleAll, c.Backend.FailurePolicy)
}

// Resolver builds the label resolver for the configured locale and overrides.
func (c *Configuration) Resolver() (*labels.Resolver, error) {
	return labels.New(c.Locale, c.Labels)
}
