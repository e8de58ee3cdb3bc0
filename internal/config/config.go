// Package config loads nekolog settings from a YAML file, NEKOLOG_*
// environment variables, and built-in defaults, in that order of precedence
// (environment first).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ewilliams-labs/nekolog/internal/adapters/caption"
	"github.com/ewilliams-labs/nekolog/internal/adapters/httpx"
	"github.com/ewilliams-labs/nekolog/internal/adapters/sqlite"
	"github.com/ewilliams-labs/nekolog/internal/audio"
	"github.com/ewilliams-labs/nekolog/internal/core/services"
	"github.com/ewilliams-labs/nekolog/internal/imaging"
	"github.com/ewilliams-labs/nekolog/internal/schedule"
	"github.com/ewilliams-labs/nekolog/internal/scoring"
)

const (
	// FileName is the config file searched for, without extension.
	FileName = "nekolog"
	// EnvPrefix prefixes every environment override, e.g. NEKOLOG_STORAGE_PATH.
	EnvPrefix = "NEKOLOG"
	// EnvName selects ./config/<env>/ in the search path.
	EnvName = "NEKOLOG_ENV"
)

type Server struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type Storage struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// Remote is an HTTP collaborator with retry settings.
type Remote struct {
	URL      string        `mapstructure:"url" yaml:"url"`
	Attempts int           `mapstructure:"attempts" yaml:"attempts"`
	Backoff  time.Duration `mapstructure:"backoff" yaml:"backoff"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	OAuth    httpx.OAuth   `mapstructure:"oauth" yaml:"oauth"`
}

// Policy returns the retry policy of r.
func (r Remote) Policy() httpx.Policy {
	return httpx.Policy{Attempts: r.Attempts, Backoff: r.Backoff}
}

type Caption struct {
	Remote `mapstructure:",squash" yaml:",inline"`

	Persona  string `mapstructure:"persona" yaml:"persona"`
	Fallback string `mapstructure:"fallback" yaml:"fallback"`
}

type Scoring struct {
	Locations []scoring.LocationRule `mapstructure:"locations" yaml:"locations"`
}

type Reminder struct {
	MorningHour   int `mapstructure:"morning_hour" yaml:"morning_hour"`
	MorningMinute int `mapstructure:"morning_minute" yaml:"morning_minute"`
}

type Imaging struct {
	ScreenWidth  int    `mapstructure:"screen_width" yaml:"screen_width"`
	ScreenHeight int    `mapstructure:"screen_height" yaml:"screen_height"`
	IconSize     int    `mapstructure:"icon_size" yaml:"icon_size"`
	BoldFont     string `mapstructure:"bold_font" yaml:"bold_font"`
	RegularFont  string `mapstructure:"regular_font" yaml:"regular_font"`
	DrawUserText bool   `mapstructure:"draw_user_text" yaml:"draw_user_text"`
}

type Audio struct {
	BlockSize int    `mapstructure:"block_size" yaml:"block_size"`
	Language  string `mapstructure:"language" yaml:"language"`
}

type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Config is the full application configuration.
type Config struct {
	Server   Server   `mapstructure:"server" yaml:"server"`
	Storage  Storage  `mapstructure:"storage" yaml:"storage"`
	Caption  Caption  `mapstructure:"caption" yaml:"caption"`
	Vision   Remote   `mapstructure:"vision" yaml:"vision"`
	Scoring  Scoring  `mapstructure:"scoring" yaml:"scoring"`
	Reminder Reminder `mapstructure:"reminder" yaml:"reminder"`
	Imaging  Imaging  `mapstructure:"imaging" yaml:"imaging"`
	Audio    Audio    `mapstructure:"audio" yaml:"audio"`
	Log      Log      `mapstructure:"log" yaml:"log"`
}

// Default returns the built-in configuration. The vision URL is empty, so
// face detection is off until configured.
func Default() Config {
	locations := make([]scoring.LocationRule, len(scoring.DefaultLocations))
	copy(locations, scoring.DefaultLocations)

	return Config{
		Server:  Server{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
		Storage: Storage{Driver: sqlite.DriverCGO, Path: "nekolog.db"},
		Caption: Caption{
			Remote: Remote{
				URL:      caption.DefaultURL,
				Attempts: httpx.DefaultAttempts,
				Backoff:  httpx.DefaultBackoff,
				Timeout:  httpx.DefaultTimeout,
			},
			Persona:  services.DefaultPersona,
			Fallback: caption.DefaultFallback,
		},
		Vision: Remote{
			Attempts: httpx.DefaultAttempts,
			Backoff:  httpx.DefaultBackoff,
			Timeout:  httpx.DefaultTimeout,
		},
		Scoring:  Scoring{Locations: locations},
		Reminder: Reminder{MorningHour: schedule.DefaultMorningHour},
		Imaging: Imaging{
			ScreenWidth:  imaging.DefaultScreenWidth,
			ScreenHeight: imaging.DefaultScreenHeight,
			IconSize:     imaging.DefaultIconSize,
			DrawUserText: true,
		},
		Audio: Audio{BlockSize: audio.DefaultBlockSize, Language: "ja"},
		Log:   Log{Level: "info", Format: "json"},
	}
}

// Load reads the configuration. An explicit path must exist; otherwise
// nekolog.yaml is searched in ./, ./config/<NEKOLOG_ENV>/ and
// $HOME/.nekolog/, and a missing file leaves the defaults in place.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		env := os.Getenv(EnvName)
		if env == "" {
			env = "dev"
		}
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("config", env))
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+FileName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: failed to read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every leaf of def so that environment overrides
// apply even when the key is absent from the file.
func setDefaults(v *viper.Viper, def Config) {
	for key, value := range map[string]any{
		"server.addr":                 def.Server.Addr,
		"server.shutdown_timeout":     def.Server.ShutdownTimeout,
		"storage.driver":              def.Storage.Driver,
		"storage.path":                def.Storage.Path,
		"caption.url":                 def.Caption.URL,
		"caption.attempts":            def.Caption.Attempts,
		"caption.backoff":             def.Caption.Backoff,
		"caption.timeout":             def.Caption.Timeout,
		"caption.oauth.client_id":     "",
		"caption.oauth.client_secret": "",
		"caption.oauth.token_url":     "",
		"caption.persona":             def.Caption.Persona,
		"caption.fallback":            def.Caption.Fallback,
		"vision.url":                  def.Vision.URL,
		"vision.attempts":             def.Vision.Attempts,
		"vision.backoff":              def.Vision.Backoff,
		"vision.timeout":              def.Vision.Timeout,
		"vision.oauth.client_id":      "",
		"vision.oauth.client_secret":  "",
		"vision.oauth.token_url":      "",
		"scoring.locations":           def.Scoring.Locations,
		"reminder.morning_hour":       def.Reminder.MorningHour,
		"reminder.morning_minute":     def.Reminder.MorningMinute,
		"imaging.screen_width":        def.Imaging.ScreenWidth,
		"imaging.screen_height":       def.Imaging.ScreenHeight,
		"imaging.icon_size":           def.Imaging.IconSize,
		"imaging.bold_font":           def.Imaging.BoldFont,
		"imaging.regular_font":        def.Imaging.RegularFont,
		"imaging.draw_user_text":      def.Imaging.DrawUserText,
		"audio.block_size":            def.Audio.BlockSize,
		"audio.language":              def.Audio.Language,
		"log.level":                   def.Log.Level,
		"log.format":                  def.Log.Format,
	} {
		v.SetDefault(key, value)
	}
}

// Validate rejects settings the services cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case sqlite.DriverCGO, sqlite.DriverPure:
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be %q or %q, got %q", sqlite.DriverCGO, sqlite.DriverPure, c.Storage.Driver))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if c.Reminder.MorningHour < 0 || c.Reminder.MorningHour > 23 {
		errs = append(errs, fmt.Errorf("reminder.morning_hour out of range: %d", c.Reminder.MorningHour))
	}
	if c.Reminder.MorningMinute < 0 || c.Reminder.MorningMinute > 59 {
		errs = append(errs, fmt.Errorf("reminder.morning_minute out of range: %d", c.Reminder.MorningMinute))
	}
	if c.Caption.Attempts < 1 || c.Vision.Attempts < 1 {
		errs = append(errs, errors.New("attempts must be at least 1"))
	}
	if _, err := audio.PhraseBookFor(c.Audio.Language); err != nil {
		errs = append(errs, err)
	}
	if (c.Imaging.BoldFont == "") != (c.Imaging.RegularFont == "") {
		errs = append(errs, errors.New("imaging.bold_font and imaging.regular_font must be set together"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path. An
// existing file is left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: %s already exists", path)
		}
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("config: failed to encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	return nil
}
