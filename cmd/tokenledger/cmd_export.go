// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"io"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/ledger"
	"gopkg.in/yaml.v3"
)

var cmdExport = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the ledger state and event log as YAML",
	Args:  cobra.MaximumNArgs(1),
	Run:   export,
}

var flagExport struct {
	NoEvents bool
}

func init() {
	cmdMain.AddCommand(cmdExport)
	cmdExport.Flags().BoolVar(&flagExport.NoEvents, "no-events", false, "Omit the event log")
}

type exportedLedger struct {
	Name        string          `yaml:"name"`
	Symbol      string          `yaml:"symbol"`
	Decimals    uint8           `yaml:"decimals"`
	Address     string          `yaml:"address"`
	ChainID     uint64          `yaml:"chainId"`
	Owner       string          `yaml:"owner"`
	Paused      bool            `yaml:"paused"`
	MaxSupply   string          `yaml:"maxSupply"`
	TotalIssued string          `yaml:"totalIssued"`
	Balances    []exportedEntry `yaml:"balances"`
	Events      []exportedEvent `yaml:"events,omitempty"`
}

type exportedEntry struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"`
}

type exportedEvent struct {
	Sequence uint64 `yaml:"sequence"`
	Kind     string `yaml:"kind"`
	From     string `yaml:"from,omitempty"`
	To       string `yaml:"to,omitempty"`
	Asset    string `yaml:"asset,omitempty"`
	Amount   string `yaml:"amount,omitempty"`
	Count    uint64 `yaml:"count,omitempty"`
}

func export(_ *cobra.Command, args []string) {
	inst := open()
	defer inst.close()

	out, err := exportLedger(inst)
	check(err)

	var w io.Writer = os.Stdout
	if len(args) > 0 {
		f, err := os.Create(args[0])
		checkf(err, "create %s", args[0])
		defer f.Close()
		w = f
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	check(enc.Encode(out))
	check(enc.Close())
}

func exportLedger(inst *instance) (*exportedLedger, error) {
	tok := inst.token
	meta := tok.Metadata()
	out := &exportedLedger{
		Name:     meta.Name,
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
		Address:  meta.Address.Hex(),
		ChainID:  meta.ChainID,
	}

	owner, err := tok.Owner()
	if err != nil {
		return nil, err
	}
	out.Owner = owner.Hex()

	out.Paused, err = tok.Paused()
	if err != nil {
		return nil, err
	}

	r, err := tok.Audit()
	if err != nil {
		return nil, err
	}
	out.MaxSupply = ledger.FormatAmount(r.MaxSupply)
	out.TotalIssued = ledger.FormatAmount(r.TotalIssued)

	batch := inst.store.Begin(false)
	defer batch.Discard()
	holders, err := ledger.Holders(batch)
	if err != nil {
		return nil, err
	}
	for _, h := range holders {
		v, err := tok.BalanceOf(h)
		if err != nil {
			return nil, err
		}
		out.Balances = append(out.Balances, exportedEntry{Address: h.Hex(), Balance: ledger.FormatAmount(v)})
	}
	sort.Slice(out.Balances, func(i, j int) bool { return out.Balances[i].Address < out.Balances[j].Address })

	if flagExport.NoEvents {
		return out, nil
	}

	events, err := tok.Events(0, ^uint64(0))
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		out.Events = append(out.Events, exportEvent(e))
	}
	return out, nil
}

func exportEvent(e *ledger.Event) exportedEvent {
	x := exportedEvent{Sequence: e.Sequence, Kind: string(e.Kind), Count: e.Count}
	hex := func(a common.Address) string {
		if a == (common.Address{}) {
			return ""
		}
		return a.Hex()
	}
	x.From, x.To, x.Asset = hex(e.From), hex(e.To), hex(e.Asset)
	if e.Amount != nil {
		x.Amount = ledger.FormatAmount(e.Amount)
	}
	return x
}
