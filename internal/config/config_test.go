// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
)

const (
	testOwner   = "0x1000000000000000000000000000000000000001"
	testAddress = "0x2000000000000000000000000000000000000002"
)

func testConfig() *Config {
	cfg := Default()
	cfg.Token.Owner = testOwner
	cfg.Token.Address = testAddress
	return cfg
}

func TestPersistence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config", "tokenledger.toml")

	// Create
	cfg := testConfig()
	cfg.Storage.Type = BoltStorage
	cfg.Storage.Path = "ledger.bolt"
	cfg.Metrics.Enabled = true

	// Store
	require.NoError(t, Store(file, cfg))

	// Load
	lcfg, err := Load(file)
	require.NoError(t, err)

	// Should be equal
	require.Equal(t, cfg, lcfg)
}

func TestLoadFillsDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tokenledger.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
token:
  owner: `+testOwner+`
  address: `+testAddress+`
  symbol: ABC
`), 0600))

	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, "ABC", cfg.Token.Symbol)
	require.Equal(t, Default().Token.MaxSupply, cfg.Token.MaxSupply)
	require.Equal(t, BadgerStorage, cfg.Storage.Type)
}

func TestEnvironmentOverride(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tokenledger.toml")
	require.NoError(t, Store(file, testConfig()))

	t.Setenv("TOKENLEDGER_STORAGE_TYPE", "memory")
	t.Setenv("TOKENLEDGER_TOKEN_MAX_SUPPLY", "500")

	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, MemoryStorage, cfg.Storage.Type)
	require.Equal(t, "500", cfg.Token.MaxSupply)
}

func TestStoreReportsWriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full is not available")
	}
	require.Error(t, Store("/dev/full", testConfig()))
}

func TestStorageTypePersistent(t *testing.T) {
	require.False(t, MemoryStorage.Persistent())
	require.True(t, BadgerStorage.Persistent())
	require.True(t, BoltStorage.Persistent())
	require.True(t, LevelDBStorage.Persistent())
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "tokenledger.toml")
	require.NoError(t, Store(file, testConfig()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TOKENLEDGER_TOKEN_SYMBOL=DOT\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("TOKENLEDGER_TOKEN_SYMBOL") })

	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, "DOT", cfg.Token.Symbol)
}

func TestValidate(t *testing.T) {
	require.NoError(t, testConfig().Validate())

	cases := map[string]func(*Config){
		"missing owner":   func(c *Config) { c.Token.Owner = "" },
		"bad address":     func(c *Config) { c.Token.Address = "not-an-address" },
		"bad supply":      func(c *Config) { c.Token.MaxSupply = "1e9" },
		"bad storage":     func(c *Config) { c.Storage.Type = "etcd" },
		"missing path":    func(c *Config) { c.Storage.Path = "" },
		"bad log format":  func(c *Config) { c.Logging.Format = "xml" },
		"bad log rules":   func(c *Config) { c.Logging.Rules = "token=loud" },
		"metrics no addr": func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Listen = "" },
	}
	for name, mod := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mod(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Equal(t, errors.BadRequest, errors.Code(err))
		})
	}

	// Memory storage does not need a path
	cfg := testConfig()
	cfg.Storage.Type = MemoryStorage
	cfg.Storage.Path = ""
	require.NoError(t, cfg.Validate())
}
