// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/tokenledger/internal/config"
	"gitlab.com/accumulatenetwork/tokenledger/internal/storage"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/token"
)

var cmdInit = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration and deploy the token",
	Args:  cobra.NoArgs,
	Run:   initLedger,
}

var flagInit struct {
	Name        string
	Symbol      string
	Decimals    uint8
	MaxSupply   string
	Owner       string
	Address     string
	ChainID     uint64
	Storage     string
	StoragePath string
	LogFormat   string
	LogRules    string
	Metrics     string
	Force       bool
}

func init() {
	cmdMain.AddCommand(cmdInit)

	def := config.Default()
	cmdInit.Flags().StringVar(&flagInit.Name, "name", def.Token.Name, "Name of the token")
	cmdInit.Flags().StringVar(&flagInit.Symbol, "symbol", def.Token.Symbol, "Symbol of the token")
	cmdInit.Flags().Uint8Var(&flagInit.Decimals, "decimals", def.Token.Decimals, "Number of decimal places")
	cmdInit.Flags().StringVar(&flagInit.MaxSupply, "max-supply", def.Token.MaxSupply, "Supply cap in base units")
	cmdInit.Flags().StringVar(&flagInit.Owner, "owner", "", "Address of the owner")
	cmdInit.Flags().StringVar(&flagInit.Address, "address", "", "Address of the token itself")
	cmdInit.Flags().Uint64Var(&flagInit.ChainID, "chain-id", def.Token.ChainID, "Chain ID of the signed approval domain")
	cmdInit.Flags().StringVar(&flagInit.Storage, "storage", string(def.Storage.Type), "Storage type (badger, bolt, leveldb)")
	cmdInit.Flags().StringVar(&flagInit.StoragePath, "storage-path", def.Storage.Path, "Storage path, relative to the working directory")
	cmdInit.Flags().StringVar(&flagInit.LogFormat, "log-format", def.Logging.Format, "Log format (text, json)")
	cmdInit.Flags().StringVar(&flagInit.LogRules, "log-rules", def.Logging.Rules, "Log level rules")
	cmdInit.Flags().StringVar(&flagInit.Metrics, "metrics", "", "Enable metrics and listen on this address")
	cmdInit.Flags().BoolVarP(&flagInit.Force, "force", "f", false, "Overwrite an existing configuration")
	_ = cmdInit.MarkFlagRequired("owner")
	_ = cmdInit.MarkFlagRequired("address")
}

func initLedger(*cobra.Command, []string) {
	if _, err := os.Stat(configFile()); err == nil && !flagInit.Force {
		fatalf("%s already exists, use --force to overwrite it", configFile())
	}

	cfg := config.Default()
	cfg.Token.Name = flagInit.Name
	cfg.Token.Symbol = flagInit.Symbol
	cfg.Token.Decimals = flagInit.Decimals
	cfg.Token.MaxSupply = flagInit.MaxSupply
	cfg.Token.Owner = flagInit.Owner
	cfg.Token.Address = flagInit.Address
	cfg.Token.ChainID = flagInit.ChainID
	cfg.Storage.Type = config.StorageType(flagInit.Storage)
	cfg.Storage.Path = flagInit.StoragePath
	cfg.Logging.Format = flagInit.LogFormat
	cfg.Logging.Rules = flagInit.LogRules
	if flagInit.Metrics != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = flagInit.Metrics
	}
	check(cfg.Validate())
	check(checkPersistent(cfg.Storage))

	check(config.Store(configFile(), cfg))

	cfg, logger := loadConfig()
	store, err := storage.Open(cfg.Storage, flagMain.WorkDir, logger)
	checkf(err, "open storage")
	defer store.Close()

	tok, err := token.Deploy(store, token.Params{
		Name:      cfg.Token.Name,
		Symbol:    cfg.Token.Symbol,
		Decimals:  cfg.Token.Decimals,
		MaxSupply: parseAmount(cfg.Token.MaxSupply),
		Owner:     parseAddress(cfg.Token.Owner),
		Address:   parseAddress(cfg.Token.Address),
		ChainID:   cfg.Token.ChainID,
	}, token.WithLogger(logger))
	checkf(err, "deploy")

	supply, err := tok.TotalIssued()
	check(err)
	fmt.Printf("%s %s (%s) at %s\n", colorOK.Sprint("Deployed"), tok.Name(), tok.Symbol(), colorAddress.Sprint(tok.Address()))
	fmt.Printf("Issued %s %s to %s\n", colorAmount.Sprint(formatTokens(supply, tok.Decimals())), tok.Symbol(), colorAddress.Sprint(cfg.Token.Owner))
}
