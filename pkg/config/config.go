package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"

	"github.com/mkoval/monoynab/pkg/monobank"
	"github.com/mkoval/monoynab/pkg/syncer"
)

// MonobankConfig holds statement-provider settings.
type MonobankConfig struct {
	Token      string
	BaseURL    string
	WebhookURL string
}

// YNABConfig holds ledger settings.
type YNABConfig struct {
	Token    string
	BudgetID string
}

// SyncConfig tunes the synchronization engine.
type SyncConfig struct {
	Interval     time.Duration
	Lookback     time.Duration
	Chunk        time.Duration
	RequestDelay time.Duration
	Backoff      time.Duration
	AllAccounts  bool
	// Accounts maps the last four card digits of a Monobank account to the
	// name of the YNAB account transactions should land in.
	Accounts map[string]string
}

// ServerConfig holds webhook-listener settings. An empty port disables the
// listener.
type ServerConfig struct {
	Port string
}

// Config is the full application configuration.
type Config struct {
	Monobank MonobankConfig
	YNAB     YNABConfig
	Sync     SyncConfig
	Server   ServerConfig
}

// Build assembles configuration from, in increasing precedence: defaults,
// config.yaml (or cfgFile), environment variables, and command-line flags.
// A .env file in the working directory is loaded into the environment first.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	v.SetDefault("monobank.base_url", monobank.DefaultBaseURL)
	v.SetDefault("sync.interval", syncer.DefaultInterval)
	v.SetDefault("sync.lookback", syncer.DefaultLookback)
	v.SetDefault("sync.chunk", monobank.DefaultChunk)
	v.SetDefault("sync.request_delay", monobank.DefaultDelay)
	v.SetDefault("sync.backoff", monobank.DefaultBackoff)
	v.SetDefault("sync.all_accounts", false)
	v.SetDefault("server.port", "")

	v.SetEnvPrefix("MONOYNAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Bare names kept for compatibility with the usual token env vars.
	_ = v.BindEnv("monobank.token", "MONOYNAB_MONOBANK_TOKEN", "MONOBANK_TOKEN")
	_ = v.BindEnv("ynab.token", "MONOYNAB_YNAB_TOKEN", "YNAB_TOKEN")
	_ = v.BindEnv("ynab.budget_id", "MONOYNAB_YNAB_BUDGET_ID", "YNAB_BUDGET_ID")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if flags != nil {
		bind := func(key, flag string) {
			if f := flags.Lookup(flag); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
		bind("server.port", "port")
		bind("sync.interval", "interval")
		bind("sync.lookback", "lookback")
		bind("sync.all_accounts", "all-accounts")
		bind("monobank.webhook_url", "webhook-url")
	}

	cfg := &Config{
		Monobank: MonobankConfig{
			Token:      v.GetString("monobank.token"),
			BaseURL:    v.GetString("monobank.base_url"),
			WebhookURL: v.GetString("monobank.webhook_url"),
		},
		YNAB: YNABConfig{
			Token:    v.GetString("ynab.token"),
			BudgetID: v.GetString("ynab.budget_id"),
		},
		Sync: SyncConfig{
			Interval:     v.GetDuration("sync.interval"),
			Lookback:     v.GetDuration("sync.lookback"),
			Chunk:        v.GetDuration("sync.chunk"),
			RequestDelay: v.GetDuration("sync.request_delay"),
			Backoff:      v.GetDuration("sync.backoff"),
			AllAccounts:  v.GetBool("sync.all_accounts"),
			Accounts:     v.GetStringMapString("sync.accounts"),
		},
		Server: ServerConfig{
			Port: v.GetString("server.port"),
		},
	}

	if file := v.GetString("sync.accounts_file"); file != "" {
		mappings, err := LoadMappings(file)
		if err != nil {
			return nil, err
		}
		if cfg.Sync.Accounts == nil {
			cfg.Sync.Accounts = make(map[string]string, len(mappings))
		}
		for digits, name := range mappings {
			cfg.Sync.Accounts[digits] = name
		}
	}

	return cfg, nil
}

// Validate checks the fields every sync path needs.
func (c *Config) Validate() error {
	if c.Monobank.Token == "" {
		return errors.New("monobank token is required (MONOBANK_TOKEN or monobank.token)")
	}
	if c.YNAB.Token == "" {
		return errors.New("ynab token is required (YNAB_TOKEN or ynab.token)")
	}
	if c.YNAB.BudgetID == "" {
		return errors.New("ynab budget id is required (YNAB_BUDGET_ID or ynab.budget_id)")
	}
	return nil
}

// LoadMappings reads a standalone YAML mappings file of the form:
//
//	accounts:
//	  "1234": "Checking"
func LoadMappings(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings file: %w", err)
	}

	var doc struct {
		Accounts map[string]string `yaml:"accounts"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse mappings yaml: %w", err)
	}
	if len(doc.Accounts) == 0 {
		return nil, fmt.Errorf("mappings file %s has no accounts", path)
	}
	return doc.Accounts, nil
}
