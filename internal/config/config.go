// Package config reads and writes the user configuration file
// ($XDG_CONFIG_HOME/speechcut/config.toml) and applies SPEECHCUT_*
// environment fallbacks.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/alnah/go-speechcut/internal/interval"
	"github.com/alnah/go-speechcut/internal/lang"
	"github.com/alnah/go-speechcut/internal/logging"
	"github.com/alnah/go-speechcut/internal/transcribe"
)

// Config keys, as written in the file and accepted by `config set`.
const (
	KeyModelSize      = "model-size"
	KeyMergeThreshold = "merge-threshold"
	KeyProvider       = "provider"
	KeyLanguage       = "language"
	KeyOutput         = "output"
	KeyWorkDir        = "work-dir"
	KeyLogLevel       = "log-level"
	KeyLogFormat      = "log-format"
)

// Keys lists every supported key in display order.
var Keys = []string{
	KeyModelSize, KeyMergeThreshold, KeyProvider, KeyLanguage,
	KeyOutput, KeyWorkDir, KeyLogLevel, KeyLogFormat,
}

// Transcription providers.
const (
	ProviderWhisper = "whisper"
	ProviderOpenAI  = "openai"
)

// Defaults for keys that have one.
const (
	DefaultProvider = ProviderWhisper
	DefaultOutput   = "speech_segments.zip"
	DefaultWorkDir  = "output_segments"
)

// envPrefix is prepended to the upper-cased key, e.g. SPEECHCUT_MERGE_THRESHOLD.
const envPrefix = "SPEECHCUT_"

// fileName is the config file name inside the config directory.
const fileName = "config.toml"

var (
	// ErrUnknownKey indicates a key outside Keys.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrInvalidValue indicates a value rejected by the key's validator.
	ErrInvalidValue = errors.New("invalid config value")
)

// Config holds user configuration. Empty strings and a nil MergeThreshold
// mean "not set"; callers apply defaults.
type Config struct {
	ModelSize      string   `toml:"model-size,omitempty"`
	MergeThreshold *float64 `toml:"merge-threshold,omitempty"`
	Provider       string   `toml:"provider,omitempty"`
	Language       string   `toml:"language,omitempty"`
	Output         string   `toml:"output,omitempty"`
	WorkDir        string   `toml:"work-dir,omitempty"`
	LogLevel       string   `toml:"log-level,omitempty"`
	LogFormat      string   `toml:"log-format,omitempty"`
}

// EnvName returns the environment variable consulted for key.
func EnvName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/speechcut.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "speechcut"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "speechcut"), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, fileName), nil
}

// Load reads the config file, then fills keys it leaves unset from the
// environment. A missing file is not an error.
func Load() (Config, error) {
	cfg, err := readFile()
	if err != nil {
		return Config{}, err
	}

	for _, key := range Keys {
		if cfg.Get(key) != "" {
			continue
		}
		v := strings.TrimSpace(os.Getenv(EnvName(key)))
		if v == "" {
			continue
		}
		if err := cfg.Set(key, v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvName(key), err)
		}
	}
	return cfg, nil
}

// readFile decodes the config file. Values are validated so a hand-edited
// file fails early with the offending key.
func readFile() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(p) // #nosec G304 -- config path is built from the config dir
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", p, err)
	}
	for _, key := range Keys {
		if v := cfg.Get(key); v != "" {
			if err := validate(key, v); err != nil {
				return Config{}, fmt.Errorf("config %s: %w", p, err)
			}
		}
	}
	return cfg, nil
}

// Save validates and writes a single key to the config file, keeping the
// other keys.
func Save(key, value string) error {
	p, err := Path()
	if err != nil {
		return err
	}

	cfg, err := readFile()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	return nil
}

// Get reads a single value from the config file. Unset keys return "".
func Get(key string) (string, error) {
	if !slices.Contains(Keys, key) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	cfg, err := readFile()
	if err != nil {
		return "", err
	}
	return cfg.Get(key), nil
}

// List returns every key set in the config file.
func List() (map[string]string, error) {
	cfg, err := readFile()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, key := range Keys {
		if v := cfg.Get(key); v != "" {
			out[key] = v
		}
	}
	return out, nil
}

// Get returns the string form of key, or "" when unset or unknown.
func (c Config) Get(key string) string {
	switch key {
	case KeyModelSize:
		return c.ModelSize
	case KeyMergeThreshold:
		if c.MergeThreshold == nil {
			return ""
		}
		return strconv.FormatFloat(*c.MergeThreshold, 'f', -1, 64)
	case KeyProvider:
		return c.Provider
	case KeyLanguage:
		return c.Language
	case KeyOutput:
		return c.Output
	case KeyWorkDir:
		return c.WorkDir
	case KeyLogLevel:
		return c.LogLevel
	case KeyLogFormat:
		return c.LogFormat
	}
	return ""
}

// Set validates value and assigns it to key.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("%w: %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys, ", "))
	}
	if err := validate(key, value); err != nil {
		return err
	}

	switch key {
	case KeyModelSize:
		c.ModelSize = strings.ToLower(value)
	case KeyMergeThreshold:
		v, _ := strconv.ParseFloat(value, 64)
		c.MergeThreshold = &v
	case KeyProvider:
		c.Provider = strings.ToLower(value)
	case KeyLanguage:
		c.Language = value
	case KeyOutput:
		c.Output = value
	case KeyWorkDir:
		c.WorkDir = value
	case KeyLogLevel:
		c.LogLevel = strings.ToLower(value)
	case KeyLogFormat:
		c.LogFormat = strings.ToLower(value)
	}
	return nil
}

// validate checks value for key. Errors wrap ErrInvalidValue and the
// validator's own sentinel.
func validate(key, value string) error {
	var err error
	switch key {
	case KeyModelSize:
		_, err = transcribe.ParseModelSize(value)
	case KeyMergeThreshold:
		err = validThreshold(value)
	case KeyProvider:
		if p := strings.ToLower(value); p != ProviderWhisper && p != ProviderOpenAI {
			err = fmt.Errorf("%q (use %s or %s)", value, ProviderWhisper, ProviderOpenAI)
		}
	case KeyLanguage:
		_, err = lang.Parse(value)
	case KeyOutput, KeyWorkDir:
		if value == "" {
			err = errors.New("path cannot be empty")
		}
	case KeyLogLevel:
		_, err = logging.ParseLevel(value)
	case KeyLogFormat:
		_, err = logging.ParseFormat(value)
	}
	if err != nil {
		return fmt.Errorf("%w for %s: %w", ErrInvalidValue, key, err)
	}
	return nil
}

func validThreshold(value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) {
		return fmt.Errorf("%w: %q is not a number", interval.ErrInvalidThreshold, value)
	}
	return interval.ValidateThreshold(v)
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}
