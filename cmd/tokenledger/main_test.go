// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/tokenledger/internal/config"
	"gitlab.com/accumulatenetwork/tokenledger/internal/storage"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/ledger"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/token"
	"gopkg.in/yaml.v3"
)

var (
	testOwner = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testToken = common.HexToAddress("0x7000000000000000000000000000000000000007")
	testAlice = common.HexToAddress("0xA11CE00000000000000000000000000000000002")
)

func TestFormatTokens(t *testing.T) {
	v, err := ledger.ParseAmount("1234567890000000000000000")
	require.NoError(t, err)
	require.Equal(t, "1,234,567.89", formatTokens(v, 18))
	require.Equal(t, "1,234,567,890,000,000,000,000,000", formatTokens(v, 0))

	v, err = ledger.ParseAmount("5")
	require.NoError(t, err)
	require.Equal(t, "0.05", formatTokens(v, 2))
}

// setupWorkDir writes a configuration and deploys a token in a temporary
// working directory.
func setupWorkDir(t *testing.T, typ config.StorageType) string {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Token.Owner = testOwner.Hex()
	cfg.Token.Address = testToken.Hex()
	cfg.Token.MaxSupply = "100000"
	cfg.Token.Decimals = 2
	cfg.Storage.Type = typ
	cfg.Logging.Rules = "error"
	require.NoError(t, config.Store(configFileIn(dir), cfg))

	store, err := storage.Open(cfg.Storage, dir, nil)
	require.NoError(t, err)
	defer store.Close()

	tok, err := token.Deploy(store, token.Params{
		Name:      cfg.Token.Name,
		Symbol:    cfg.Token.Symbol,
		Decimals:  cfg.Token.Decimals,
		MaxSupply: parseAmount(cfg.Token.MaxSupply),
		Owner:     testOwner,
		Address:   testToken,
		ChainID:   cfg.Token.ChainID,
	})
	require.NoError(t, err)
	require.NoError(t, tok.Transfer(testOwner, testAlice, parseAmount("250")))
	return dir
}

func TestExport(t *testing.T) {
	dir := setupWorkDir(t, config.BoltStorage)

	inst := openIn(dir)
	defer inst.close()

	out, err := exportLedger(inst)
	require.NoError(t, err)
	require.Equal(t, "CAP", out.Symbol)
	require.Equal(t, testOwner.Hex(), out.Owner)
	require.Equal(t, "1000", out.TotalIssued)
	require.Len(t, out.Balances, 2)
	require.Len(t, out.Events, 2)
	require.Equal(t, "transferred", out.Events[1].Kind)
	require.Equal(t, "250", out.Events[1].Amount)

	buf := new(bytes.Buffer)
	require.NoError(t, yaml.NewEncoder(buf).Encode(out))

	var decoded exportedLedger
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, out.Balances, decoded.Balances)
}

func TestCheckPersistent(t *testing.T) {
	err := checkPersistent(config.Storage{Type: config.MemoryStorage})
	require.Error(t, err)
	require.Equal(t, errors.BadRequest, errors.Code(err))

	for _, typ := range []config.StorageType{config.BadgerStorage, config.BoltStorage, config.LevelDBStorage} {
		require.NoError(t, checkPersistent(config.Storage{Type: typ, Path: "data"}))
	}
}

func TestDescribeEvent(t *testing.T) {
	disableColor()
	e := &ledger.Event{Kind: ledger.EventBatchTransferred, From: testOwner, Count: 3, Amount: parseAmount("1500")}
	require.Equal(t, "15 from "+testOwner.String()+" to 3 recipients", describeEvent(e, 2))
}
