// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml"
	"github.com/spf13/viper"
	"gitlab.com/accumulatenetwork/tokenledger/internal/logging"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

// EnvPrefix is the prefix of environment variables that override
// configuration values, for example TOKENLEDGER_STORAGE_PATH.
const EnvPrefix = "TOKENLEDGER"

type StorageType string

const (
	MemoryStorage  StorageType = "memory"
	BadgerStorage  StorageType = "badger"
	BoltStorage    StorageType = "bolt"
	LevelDBStorage StorageType = "leveldb"
)

// Persistent returns true if the storage type survives a restart.
func (t StorageType) Persistent() bool {
	return t != MemoryStorage
}

type Config struct {
	Token   Token   `toml:"token" mapstructure:"token"`
	Storage Storage `toml:"storage" mapstructure:"storage"`
	Logging Logging `toml:"logging" mapstructure:"logging"`
	Metrics Metrics `toml:"metrics" mapstructure:"metrics"`
}

// Token holds the construction parameters of the ledger. They are only used
// when the ledger is first deployed.
type Token struct {
	Name      string `toml:"name" mapstructure:"name" validate:"required"`
	Symbol    string `toml:"symbol" mapstructure:"symbol" validate:"required,alphanum"`
	Decimals  uint8  `toml:"decimals" mapstructure:"decimals" validate:"max=77"`
	MaxSupply string `toml:"max-supply" mapstructure:"max-supply" validate:"required,numeric"`
	Owner     string `toml:"owner" mapstructure:"owner" validate:"required,eth_addr"`
	Address   string `toml:"address" mapstructure:"address" validate:"required,eth_addr"`
	ChainID   uint64 `toml:"chain-id" mapstructure:"chain-id"`
}

// Storage selects the key-value backend. Memory storage lives only as long
// as the process and is meant for tests and embedding, so the CLI rejects
// it.
type Storage struct {
	Type StorageType `toml:"type" mapstructure:"type" validate:"oneof=memory badger bolt leveldb"`
	Path string      `toml:"path" mapstructure:"path" validate:"required_unless=Type memory"`
}

type Logging struct {
	Format string `toml:"format" mapstructure:"format" validate:"omitempty,oneof=text plain json"`
	Rules  string `toml:"rules" mapstructure:"rules"`
}

type Metrics struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Listen  string `toml:"listen" mapstructure:"listen" validate:"required_if=Enabled true"`
}

// Default returns the default configuration.
func Default() *Config {
	c := new(Config)
	c.Token.Name = "Capped Token"
	c.Token.Symbol = "CAP"
	c.Token.Decimals = 18
	c.Token.MaxSupply = "100000000000000000000000000"
	c.Token.ChainID = 1
	c.Storage.Type = BadgerStorage
	c.Storage.Path = filepath.Join("data", "ledger.db")
	c.Logging.Format = "text"
	c.Logging.Rules = logging.DefaultRules
	c.Metrics.Listen = ":9090"
	return c
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err != nil {
		return errors.BadRequest.WithFormat("invalid configuration: %w", err)
	}

	_, err = logging.ParseRules(c.Logging.Rules)
	if err != nil {
		return errors.BadRequest.WithFormat("invalid configuration: %w", err)
	}
	return nil
}

// LogRules parses the logging rules.
func (c *Config) LogRules() logging.Rules {
	r, _ := logging.ParseRules(c.Logging.Rules)
	return r
}

// Load reads a TOML, YAML, or JSON configuration file. Values missing from the
// file fall back to [Default], and TOKENLEDGER_* environment variables
// override both. A .env file next to the configuration file is loaded into
// the environment first; variables that are already set take precedence.
func Load(file string) (*Config, error) {
	err := loadDotEnv(filepath.Join(filepath.Dir(file), ".env"))
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigFile(file)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	err = v.ReadInConfig()
	if err != nil {
		return nil, errors.BadRequest.WithFormat("read %s: %w", file, err)
	}

	c := new(Config)
	err = v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)))
	if err != nil {
		return nil, errors.BadRequest.WithFormat("unmarshal %s: %w", file, err)
	}

	err = c.Validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Store writes the configuration to a TOML file.
func Store(file string, c *Config) error {
	err := os.MkdirAll(filepath.Dir(file), 0755)
	if err != nil {
		return errors.UnknownError.WithFormat("create config directory: %w", err)
	}

	f, err := os.Create(file)
	if err != nil {
		return errors.UnknownError.WithFormat("create %s: %w", file, err)
	}

	err = toml.NewEncoder(f).Encode(c)
	if err != nil {
		_ = f.Close()
		return errors.EncodingError.WithFormat("encode config: %w", err)
	}

	err = f.Close()
	if err != nil {
		return errors.UnknownError.WithFormat("close %s: %w", file, err)
	}
	return nil
}

func loadDotEnv(file string) error {
	_, err := os.Stat(file)
	switch {
	case err == nil:
	case os.IsNotExist(err):
		return nil
	default:
		return errors.UnknownError.WithFormat("stat %s: %w", file, err)
	}

	err = godotenv.Load(file)
	if err != nil {
		return errors.BadRequest.WithFormat("load %s: %w", file, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("token.name", c.Token.Name)
	v.SetDefault("token.symbol", c.Token.Symbol)
	v.SetDefault("token.decimals", c.Token.Decimals)
	v.SetDefault("token.max-supply", c.Token.MaxSupply)
	v.SetDefault("token.owner", c.Token.Owner)
	v.SetDefault("token.address", c.Token.Address)
	v.SetDefault("token.chain-id", c.Token.ChainID)
	v.SetDefault("storage.type", string(c.Storage.Type))
	v.SetDefault("storage.path", c.Storage.Path)
	v.SetDefault("logging.format", c.Logging.Format)
	v.SetDefault("logging.rules", c.Logging.Rules)
	v.SetDefault("metrics.enabled", c.Metrics.Enabled)
	v.SetDefault("metrics.listen", c.Metrics.Listen)
}
