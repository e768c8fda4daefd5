// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/ledger"
)

var cmdInfo = &cobra.Command{
	Use:   "info",
	Short: "Show the state of the token",
	Args:  cobra.NoArgs,
	Run:   showInfo,
}

var cmdBalance = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show the balance of an address",
	Args:  cobra.ExactArgs(1),
	Run:   showBalance,
}

var cmdAllowance = &cobra.Command{
	Use:   "allowance [owner] [spender]",
	Short: "Show the amount a spender may transfer on behalf of an owner",
	Args:  cobra.ExactArgs(2),
	Run:   showAllowance,
}

var cmdEvents = &cobra.Command{
	Use:   "events",
	Short: "List events",
	Args:  cobra.NoArgs,
	Run:   listEvents,
}

var cmdAudit = &cobra.Command{
	Use:   "audit",
	Short: "Verify the sum of all balances equals the total issued",
	Args:  cobra.NoArgs,
	Run:   audit,
}

var flagEvents struct {
	Start uint64
	Count uint64
	JSON  bool
}

func init() {
	cmdMain.AddCommand(cmdInfo, cmdBalance, cmdAllowance, cmdEvents, cmdAudit)

	cmdEvents.Flags().Uint64Var(&flagEvents.Start, "start", 0, "Sequence number of the first event")
	cmdEvents.Flags().Uint64Var(&flagEvents.Count, "count", 50, "Maximum number of events")
	cmdEvents.Flags().BoolVar(&flagEvents.JSON, "json", false, "Output JSON")
}

func showInfo(*cobra.Command, []string) {
	inst := open()
	defer inst.close()
	tok := inst.token

	supply, err := tok.TotalIssued()
	check(err)
	maxSupply, err := tok.MaxSupply()
	check(err)
	owner, err := tok.Owner()
	check(err)
	paused, err := tok.Paused()
	check(err)
	events, err := tok.EventCount()
	check(err)

	status := colorOK.Sprint("active")
	if paused {
		status = colorWarn.Sprint("paused")
	}

	tw := newTable()
	defer tw.Render()
	row := func(label string, value any) { tw.Append([]string{colorLabel.Sprint(label), fmt.Sprint(value)}) }
	row("Name", tok.Name())
	row("Symbol", tok.Symbol())
	row("Decimals", tok.Decimals())
	row("Address", colorAddress.Sprint(tok.Address()))
	row("Owner", colorAddress.Sprint(owner))
	row("Status", status)
	row("Total issued", colorAmount.Sprint(formatTokens(supply, tok.Decimals())))
	row("Max supply", colorAmount.Sprint(formatTokens(maxSupply, tok.Decimals())))
	row("Events", humanize.Comma(int64(events)))
	row("Storage", inst.store.Type())
}

func showBalance(_ *cobra.Command, args []string) {
	addr := parseAddress(args[0])
	inst := open()
	defer inst.close()

	v, err := inst.token.BalanceOf(addr)
	check(err)
	fmt.Printf("%s %s\n", colorAmount.Sprint(formatTokens(v, inst.token.Decimals())), inst.token.Symbol())
}

func showAllowance(_ *cobra.Command, args []string) {
	owner, spender := parseAddress(args[0]), parseAddress(args[1])
	inst := open()
	defer inst.close()

	v, err := inst.token.Allowance(owner, spender)
	check(err)
	if v.Eq(ledger.MaxAmount) {
		fmt.Println(colorAmount.Sprint("unlimited"))
		return
	}
	fmt.Printf("%s %s\n", colorAmount.Sprint(formatTokens(v, inst.token.Decimals())), inst.token.Symbol())
}

func listEvents(*cobra.Command, []string) {
	inst := open()
	defer inst.close()

	events, err := inst.token.Events(flagEvents.Start, flagEvents.Count)
	check(err)

	if flagEvents.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		check(enc.Encode(events))
		return
	}

	tw := newTable()
	tw.SetHeader([]string{"Seq", "Kind", "Details"})
	for _, e := range events {
		tw.Append([]string{fmt.Sprint(e.Sequence), string(e.Kind), describeEvent(e, inst.token.Decimals())})
	}
	tw.Render()
}

func newTable() *tablewriter.Table {
	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetBorder(false)
	tw.SetColumnSeparator("")
	tw.SetHeaderLine(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return tw
}

func describeEvent(e *ledger.Event, decimals uint8) string {
	amount := func() string { return colorAmount.Sprint(formatTokens(e.Amount, decimals)) }
	addr := func(a fmt.Stringer) string { return colorAddress.Sprint(a) }
	switch e.Kind {
	case ledger.EventIssued:
		return fmt.Sprintf("%s to %s", amount(), addr(e.To))
	case ledger.EventBurned:
		return fmt.Sprintf("%s from %s", amount(), addr(e.From))
	case ledger.EventTransferred:
		return fmt.Sprintf("%s from %s to %s", amount(), addr(e.From), addr(e.To))
	case ledger.EventApproved:
		return fmt.Sprintf("%s by %s for %s", amount(), addr(e.From), addr(e.To))
	case ledger.EventBatchTransferred:
		return fmt.Sprintf("%s from %s to %d recipients", amount(), addr(e.From), e.Count)
	case ledger.EventRescued:
		return fmt.Sprintf("%s of %s to %s", amount(), addr(e.Asset), addr(e.To))
	case ledger.EventPaused, ledger.EventUnpaused:
		return fmt.Sprintf("by %s", addr(e.From))
	case ledger.EventOwnershipTransferred:
		return fmt.Sprintf("from %s to %s", addr(e.From), addr(e.To))
	default:
		return ""
	}
}

func audit(*cobra.Command, []string) {
	inst := open()
	defer inst.close()

	r, err := inst.token.Audit()
	if r == nil {
		check(err)
	}

	d := inst.token.Decimals()
	fmt.Printf("Holders       %s\n", humanize.Comma(int64(r.Holders)))
	fmt.Printf("Sum balances  %s\n", colorAmount.Sprint(formatTokens(r.SumBalances, d)))
	fmt.Printf("Total issued  %s\n", colorAmount.Sprint(formatTokens(r.TotalIssued, d)))
	fmt.Printf("Max supply    %s\n", colorAmount.Sprint(formatTokens(r.MaxSupply, d)))
	if err != nil {
		inst.close()
		fatalf("%v", err)
	}
	fmt.Println(colorOK.Sprint("Balanced"))
}
