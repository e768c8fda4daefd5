// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/tokenledger/pkg/token"
)

var cmdMint = &cobra.Command{
	Use:   "mint [recipient] [amount]",
	Short: "Issue new units (owner only)",
	Args:  cobra.ExactArgs(2),
	Run: execute(func(tok *token.Token, from common.Address, args []string) error {
		return tok.Mint(from, parseAddress(args[0]), parseAmount(args[1]))
	}),
}

var cmdBurn = &cobra.Command{
	Use:   "burn [amount]",
	Short: "Destroy units held by the sender",
	Args:  cobra.ExactArgs(1),
	Run: execute(func(tok *token.Token, from common.Address, args []string) error {
		return tok.Burn(from, parseAmount(args[0]))
	}),
}

var cmdTransfer = &cobra.Command{
	Use:   "transfer [recipient] [amount]",
	Short: "Transfer units",
	Args:  cobra.ExactArgs(2),
	Run: execute(func(tok *token.Token, from common.Address, args []string) error {
		return tok.Transfer(from, parseAddress(args[0]), parseAmount(args[1]))
	}),
}

var cmdBatchTransfer = &cobra.Command{
	Use:   "batch-transfer [recipient=amount...]",
	Short: "Transfer units to multiple recipients, all or nothing",
	Long: "Transfer units to multiple recipients, all or nothing. Recipients are given as\n" +
		"address=amount pairs, or read from a file with one pair per line.",
	Run: execute(func(tok *token.Token, from common.Address, args []string) error {
		if flagBatch.File != "" {
			args = append(args, readPairs(flagBatch.File)...)
		}
		var recipients []common.Address
		var amounts []*uint256.Int
		for _, arg := range args {
			addr, amount, ok := strings.Cut(arg, "=")
			if !ok {
				fatalf("invalid recipient %q, expected address=amount", arg)
			}
			recipients = append(recipients, parseAddress(addr))
			amounts = append(amounts, parseAmount(amount))
		}
		return tok.BatchTransfer(from, recipients, amounts)
	}),
}

var cmdApprove = &cobra.Command{
	Use:   "approve [spender] [amount]",
	Short: "Allow a spender to transfer units on behalf of the sender",
	Args:  cobra.ExactArgs(2),
	Run: execute(func(tok *token.Token, from common.Address, args []string) error {
		return tok.Approve(from, parseAddress(args[0]), parseAmount(args[1]))
	}),
}

var cmdTransferFrom = &cobra.Command{
	Use:   "transfer-from [owner] [recipient] [amount]",
	Short: "Transfer units on behalf of an owner, spending the sender's allowance",
	Args:  cobra.ExactArgs(3),
	Run: execute(func(tok *token.Token, from common.Address, args []string) error {
		return tok.TransferFrom(from, parseAddress(args[0]), parseAddress(args[1]), parseAmount(args[2]))
	}),
}

var cmdPause = &cobra.Command{
	Use:   "pause",
	Short: "Pause transfers, issuance, and destruction (owner only)",
	Args:  cobra.NoArgs,
	Run: execute(func(tok *token.Token, from common.Address, args []string) error {
		return tok.Pause(from)
	}),
}

var cmdUnpause = &cobra.Command{
	Use:   "unpause",
	Short: "Resume normal operation (owner only)",
	Args:  cobra.NoArgs,
	Run: execute(func(tok *token.Token, from common.Address, args []string) error {
		return tok.Unpause(from)
	}),
}

var cmdTransferOwnership = &cobra.Command{
	Use:   "transfer-ownership [new-owner]",
	Short: "Hand the owner role to another address (owner only)",
	Args:  cobra.ExactArgs(1),
	Run: execute(func(tok *token.Token, from common.Address, args []string) error {
		return tok.TransferOwnership(from, parseAddress(args[0]))
	}),
}

var flagTx struct {
	From addressFlag
}

var flagBatch struct {
	File string
}

func init() {
	for _, cmd := range []*cobra.Command{
		cmdMint,
		cmdBurn,
		cmdTransfer,
		cmdBatchTransfer,
		cmdApprove,
		cmdTransferFrom,
		cmdPause,
		cmdUnpause,
		cmdTransferOwnership,
	} {
		cmdMain.AddCommand(cmd)
		cmd.Flags().Var(&flagTx.From, "from", "Address of the sender")
		_ = cmd.MarkFlagRequired("from")
	}

	cmdBatchTransfer.Flags().StringVar(&flagBatch.File, "file", "", "Read address=amount pairs from a file")
}

// execute returns a command that runs fn against the token and prints the
// events it emitted.
func execute(fn func(tok *token.Token, from common.Address, args []string) error) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, args []string) {
		from := flagTx.From.Address()
		inst := open()
		defer inst.close()

		start, err := inst.token.EventCount()
		check(err)

		err = fn(inst.token, from, args)
		if err != nil {
			inst.close()
			fatalf("%v", err)
		}

		events, err := inst.token.Events(start, ^uint64(0))
		check(err)
		for _, e := range events {
			fmt.Printf("%s %s %s\n", colorOK.Sprint("✔"), e.Kind, describeEvent(e, inst.token.Decimals()))
		}
	}
}

func readPairs(file string) []string {
	f, err := os.Open(file)
	checkf(err, "open %s", file)
	defer f.Close()

	var pairs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pairs = append(pairs, strings.Join(strings.Fields(line), ""))
	}
	checkf(scanner.Err(), "read %s", file)
	return pairs
}
