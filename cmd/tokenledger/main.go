// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/tokenledger/internal/config"
	"gitlab.com/accumulatenetwork/tokenledger/internal/logging"
	"gitlab.com/accumulatenetwork/tokenledger/internal/storage"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/errors"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/token"
)

var cmdMain = &cobra.Command{
	Use:   "tokenledger",
	Short: "Capped fungible token ledger",
	Run:   printUsageAndExit1,
}

var flagMain struct {
	WorkDir string
	NoColor bool
}

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.WorkDir, "work-dir", "w", ".tokenledger", "Working directory for configuration and data")
	cmdMain.PersistentFlags().BoolVar(&flagMain.NoColor, "no-color", false, "Disable colored output")
	cmdMain.PersistentPreRun = func(*cobra.Command, []string) {
		if flagMain.NoColor {
			disableColor()
		}
	}
}

func main() {
	_ = cmdMain.Execute()
}

func printUsageAndExit1(cmd *cobra.Command, args []string) {
	_ = cmd.Usage()
	os.Exit(1)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, colorError.Sprint("Error: ")+format+"\n", args...)
	os.Exit(1)
}

func check(err error) {
	if err != nil {
		fatalf("%v", err)
	}
}

func checkf(err error, format string, otherArgs ...interface{}) {
	if err != nil {
		fatalf(format+": %v", append(otherArgs, err)...)
	}
}

func configFile() string {
	return configFileIn(flagMain.WorkDir)
}

func configFileIn(dir string) string {
	return filepath.Join(dir, "tokenledger.toml")
}

var callMetrics = sync.OnceValue(func() *token.Metrics { return token.NewMetrics(nil) })

// instance is everything a command needs to operate on the ledger.
type instance struct {
	config *config.Config
	logger *slog.Logger
	store  *storage.Store
	token  *token.Token
}

func loadConfig() (*config.Config, *slog.Logger) {
	return loadConfigIn(flagMain.WorkDir)
}

func loadConfigIn(dir string) (*config.Config, *slog.Logger) {
	cfg, err := config.Load(configFileIn(dir))
	checkf(err, "load configuration")

	h, err := logging.NewHandler(logging.Config{
		Format:  cfg.Logging.Format,
		Rules:   cfg.LogRules(),
		NoColor: flagMain.NoColor,
	}, os.Stderr)
	checkf(err, "configure logging")
	logger := slog.New(h)
	slog.SetDefault(logger)
	return cfg, logger
}

// open loads the configuration and opens the deployed token. The caller
// must call close.
func open(opts ...token.Option) *instance {
	return openIn(flagMain.WorkDir, opts...)
}

func openIn(dir string, opts ...token.Option) *instance {
	inst := new(instance)
	inst.config, inst.logger = loadConfigIn(dir)

	err := checkPersistent(inst.config.Storage)
	check(err)

	inst.store, err = storage.Open(inst.config.Storage, dir, inst.logger)
	checkf(err, "open storage")

	opts = append([]token.Option{
		token.WithLogger(inst.logger),
		token.WithHooks(token.NewLogger(inst.logger)),
	}, opts...)
	if inst.config.Metrics.Enabled {
		opts = append(opts, token.WithHooks(callMetrics()))
	}
	inst.token, err = token.Open(inst.store, opts...)
	if err != nil {
		inst.store.Close()
		checkf(err, "open token")
	}
	return inst
}

// checkPersistent rejects storage that does not outlive the command.
func checkPersistent(s config.Storage) error {
	if s.Type.Persistent() {
		return nil
	}
	return errors.BadRequest.WithFormat("%s storage does not persist between commands, use badger, bolt, or leveldb", s.Type)
}

func (inst *instance) close() {
	inst.store.Close()
}
