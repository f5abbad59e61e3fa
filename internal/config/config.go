package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/headquarters-dev/privatebank/internal/bank"
	"github.com/headquarters-dev/privatebank/internal/storage"
)

// FileName is the config file looked up when no path is given.
const FileName = "privatebank.yaml"

// Config represents the top-level privatebank.yaml configuration.
type Config struct {
	Bank     BankConfig    `yaml:"bank"`
	Storage  StorageConfig `yaml:"storage"`
	Display  DisplayConfig `yaml:"display"`
	LogLevel string        `yaml:"log_level,omitempty"`
}

// BankConfig names the ledger and its default payment rates. Rates are kept
// as text so they survive the round trip without float rounding.
type BankConfig struct {
	Name             string `yaml:"name"`
	IncomingInterest string `yaml:"incoming_interest"`
	OutgoingInterest string `yaml:"outgoing_interest"`
}

// StorageConfig locates the account files. A relative Dir is resolved
// against the directory holding the config file.
type StorageConfig struct {
	Dir string `yaml:"dir"`
	Ext string `yaml:"ext,omitempty"`
}

// DisplayConfig controls how amounts are printed.
type DisplayConfig struct {
	Currency string `yaml:"currency"`
}

// Load reads a privatebank.yaml file from disk and fills in defaults for
// optional keys.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Storage.Ext == "" {
		cfg.Storage.Ext = storage.DefaultExt
	}
	if cfg.Display.Currency == "" {
		cfg.Display.Currency = "EUR"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default(name string) *Config {
	return &Config{
		Bank: BankConfig{
			Name:             name,
			IncomingInterest: "0",
			OutgoingInterest: "0",
		},
		Storage: StorageConfig{
			Dir: "accounts",
			Ext: storage.DefaultExt,
		},
		Display: DisplayConfig{
			Currency: "EUR",
		},
		LogLevel: "warn",
	}
}

// Rates parses the default incoming and outgoing payment rates.
func (c *Config) Rates() (incoming, outgoing decimal.Decimal, err error) {
	incoming, err = bank.ParseRate(bank.FieldIncomingInterest, c.Bank.IncomingInterest)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	outgoing, err = bank.ParseRate(bank.FieldOutgoingInterest, c.Bank.OutgoingInterest)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return incoming, outgoing, nil
}

// Validate checks that the config can back a ledger.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Bank.Name) == "" {
		errs = append(errs, errors.New("bank.name is required"))
	}
	if _, _, err := c.Rates(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.Storage.Dir) == "" {
		errs = append(errs, errors.New("storage.dir is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// StoragePath returns the account directory for a config loaded from
// configPath.
func (c *Config) StoragePath(configPath string) string {
	if filepath.IsAbs(c.Storage.Dir) {
		return c.Storage.Dir
	}
	return filepath.Join(filepath.Dir(configPath), c.Storage.Dir)
}
