// Package cli is the quill command line: sign-in, the line-oriented post editor and the blog commands.
package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/config"
)

const version = "0.3.0"

var (
	cfgFile string

	// v layers flags and QUILL_* environment variables over the config file.
	v = newViper()
)

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Write, autosave and publish blog posts from the terminal",
	Long: `quill edits posts on the blog API from your terminal.

Drafts are saved in the background while you type. Publishing, scheduling and
interactions such as likes ask you to sign in first when you are signed out, and
carry on once you are.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line. It is called once by main.main().
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, then the user config dir)")
	flags.String("server", "", "blog API base URL")
	flags.String("provider", "", "identity provider: google, ed25519 or token")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.String("state-dir", "", "directory for the credentials file and local drafts")
	flags.Bool("autosave", true, "save drafts in the background while editing")

	_ = v.BindPFlag("server.base_url", flags.Lookup("server"))
	_ = v.BindPFlag("auth.provider", flags.Lookup("provider"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("state.dir", flags.Lookup("state-dir"))
	_ = v.BindPFlag("editor.autosave.enabled", flags.Lookup("autosave"))
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("QUILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

type override struct {
	key   string
	apply func(c *config.Config, v *viper.Viper)
}

// overrides lists the settings that flags and QUILL_* variables may change,
// e.g. QUILL_SERVER_BASE_URL or QUILL_EDITOR_AUTOSAVE_DEBOUNCE.
var overrides = []override{
	{"server.base_url", func(c *config.Config, v *viper.Viper) { c.Server.BaseURL = v.GetString("server.base_url") }},
	{"server.timeout", func(c *config.Config, v *viper.Viper) { c.Server.Timeout = v.GetDuration("server.timeout") }},
	{"auth.provider", func(c *config.Config, v *viper.Viper) { c.Auth.Provider = v.GetString("auth.provider") }},
	{"auth.store", func(c *config.Config, v *viper.Viper) { c.Auth.Store = v.GetString("auth.store") }},
	{"auth.revalidate", func(c *config.Config, v *viper.Viper) { c.Auth.Revalidate = v.GetString("auth.revalidate") }},
	{"auth.require_admin", func(c *config.Config, v *viper.Viper) { c.Auth.RequireAdmin = v.GetBool("auth.require_admin") }},
	{"auth.google.client_id", func(c *config.Config, v *viper.Viper) { c.Auth.Google.ClientID = v.GetString("auth.google.client_id") }},
	{"auth.google.client_secret", func(c *config.Config, v *viper.Viper) {
		c.Auth.Google.ClientSecret = v.GetString("auth.google.client_secret")
	}},
	{"auth.ed25519.private_key_path", func(c *config.Config, v *viper.Viper) {
		c.Auth.Ed25519.PrivateKeyPath = v.GetString("auth.ed25519.private_key_path")
	}},
	{"editor.autosave.enabled", func(c *config.Config, v *viper.Viper) {
		c.Editor.Autosave.Enabled = v.GetBool("editor.autosave.enabled")
	}},
	{"editor.autosave.debounce", func(c *config.Config, v *viper.Viper) {
		c.Editor.Autosave.Debounce = v.GetDuration("editor.autosave.debounce")
	}},
	{"editor.autosave.create_new", func(c *config.Config, v *viper.Viper) {
		c.Editor.Autosave.CreateNew = v.GetBool("editor.autosave.create_new")
	}},
	{"editor.journal", func(c *config.Config, v *viper.Viper) { c.Editor.Journal = v.GetString("editor.journal") }},
	{"state.dir", func(c *config.Config, v *viper.Viper) { c.State.Dir = v.GetString("state.dir") }},
	{"logging.level", func(c *config.Config, v *viper.Viper) { c.Logging.Level = v.GetString("logging.level") }},
	{"logging.format", func(c *config.Config, v *viper.Viper) { c.Logging.Format = v.GetString("logging.format") }},
}

func applyOverrides(cfg *config.Config, v *viper.Viper) {
	for _, o := range overrides {
		if v.IsSet(o.key) {
			o.apply(cfg, v)
		}
	}
}

// loadConfig reads the config file, then applies flag and environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	config.AppConfig = cfg
	return cfg, nil
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := v.GetString("config"); p != "" {
		return p
	}
	if _, err := os.Stat(config.ConfigFile); err == nil {
		return config.ConfigFile
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, config.AppName, config.ConfigFile)
	}
	return config.ConfigFile
}

var errNotAdmin = errors.New("this account cannot edit posts (auth.require_admin is set)")
