// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cmdRescue = &cobra.Command{
	Use:   "rescue [asset-work-dir] [recipient] [amount]",
	Short: "Recover units of another ledger held by this token's address (owner only)",
	Long: "Recover units of another ledger held by this token's address. The other\n" +
		"ledger is identified by its working directory. Rescue is allowed while paused.",
	Args: cobra.ExactArgs(3),
	Run:  rescue,
}

func init() {
	cmdMain.AddCommand(cmdRescue)
	cmdRescue.Flags().Var(&flagTx.From, "from", "Address of the sender")
	_ = cmdRescue.MarkFlagRequired("from")
}

func rescue(_ *cobra.Command, args []string) {
	from := flagTx.From.Address()
	to, amount := parseAddress(args[1]), parseAmount(args[2])

	inst := open()
	defer inst.close()
	asset := openIn(args[0])
	defer asset.close()

	err := inst.token.RescueForeignAsset(from, asset.token, to, amount)
	if err != nil {
		inst.close()
		asset.close()
		fatalf("%v", err)
	}

	fmt.Printf("%s rescued %s %s to %s\n", colorOK.Sprint("✔"),
		colorAmount.Sprint(formatTokens(amount, asset.token.Decimals())), asset.token.Symbol(), colorAddress.Sprint(to))
}
