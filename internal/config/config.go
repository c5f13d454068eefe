package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Editor  EditorConfig  `yaml:"editor"`
	State   StateConfig   `yaml:"state"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"warn"`
	Format string `yaml:"format" default:"console"`
}

type ServerConfig struct {
	BaseURL string        `yaml:"base_url" default:"http://localhost:8001/api"`
	Timeout time.Duration `yaml:"timeout" default:"30s"`
}

type AuthConfig struct {
	// Provider selects the identity source used by login: google, ed25519 or token.
	Provider string `yaml:"provider" default:"google"`
	// Store selects where the bearer token lives between runs: file, sqlite or memory.
	Store         string        `yaml:"store" default:"file"`
	StorageKey    string        `yaml:"storage_key" default:"auth_token"`
	VerifyTimeout time.Duration `yaml:"verify_timeout" default:"10s"`
	// Revalidate is a cron spec; empty disables periodic verification.
	Revalidate   string        `yaml:"revalidate" default:""`
	RequireAdmin bool          `yaml:"require_admin" default:"true"`
	Google       GoogleConfig  `yaml:"google"`
	Ed25519      Ed25519Config `yaml:"ed25519"`
}

type GoogleConfig struct {
	ClientID      string   `yaml:"client_id" default:""`
	ClientSecret  string   `yaml:"client_secret" default:""`
	DeviceAuthURL string   `yaml:"device_auth_url" default:"https://oauth2.googleapis.com/device/code"`
	TokenURL      string   `yaml:"token_url" default:"https://oauth2.googleapis.com/token"`
	Scopes        []string `yaml:"scopes" default:"openid,email,profile"`
}

type Ed25519Config struct {
	PrivateKeyPath string `yaml:"private_key_path" default:"privkey.pem"`
}

type EditorConfig struct {
	Autosave       AutosaveConfig `yaml:"autosave"`
	PersistTimeout time.Duration  `yaml:"persist_timeout" default:"15s"`
	// Journal keeps local snapshots of drafts that could not be saved: sqlite, memory or off.
	Journal string `yaml:"journal" default:"sqlite"`
}

type AutosaveConfig struct {
	Enabled   bool          `yaml:"enabled" default:"true"`
	Debounce  time.Duration `yaml:"debounce" default:"2s"`
	CreateNew bool          `yaml:"create_new" default:"true"`
}

type StateConfig struct {
	// Dir holds the credentials file and the local database. Empty means the user config dir.
	Dir string `yaml:"dir" default:""`
}

type CacheConfig struct {
	CategoriesTTL time.Duration `yaml:"categories_ttl" default:"5m"`
}

var AppConfig *Config

// LoadConfig loads path into AppConfig.
func LoadConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// Load reads a YAML config file over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
			return config, nil
		}
		return nil, fmt.Errorf(ErrReadConfigFmt, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values that the defaults cannot guarantee.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf(ErrInvalidValueFmt, "server.base_url", c.Server.BaseURL)
	}

	switch c.Auth.Provider {
	case ProviderGoogle, ProviderEd25519, ProviderToken:
	default:
		return fmt.Errorf(ErrInvalidValueFmt, "auth.provider", c.Auth.Provider)
	}

	switch c.Auth.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf(ErrInvalidValueFmt, "auth.store", c.Auth.Store)
	}

	switch c.Editor.Journal {
	case StoreSQLite, StoreMemory, JournalOff:
	default:
		return fmt.Errorf(ErrInvalidValueFmt, "editor.journal", c.Editor.Journal)
	}

	if strings.TrimSpace(c.Auth.StorageKey) == "" {
		return fmt.Errorf(ErrInvalidValueFmt, "auth.storage_key", c.Auth.StorageKey)
	}

	durations := map[string]time.Duration{
		"server.timeout":           c.Server.Timeout,
		"auth.verify_timeout":      c.Auth.VerifyTimeout,
		"editor.autosave.debounce": c.Editor.Autosave.Debounce,
		"editor.persist_timeout":   c.Editor.PersistTimeout,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf(ErrInvalidValueFmt, name, d)
		}
	}

	if c.Auth.Revalidate != "" {
		if _, err := cron.ParseStandard(c.Auth.Revalidate); err != nil {
			return fmt.Errorf(ErrInvalidValueFmt, "auth.revalidate", c.Auth.Revalidate)
		}
	}

	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Int64:
			if field.Type() == durationType {
				if val, err := time.ParseDuration(defaultValue); err == nil {
					field.SetInt(int64(val))
				}
			} else if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
