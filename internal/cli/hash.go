package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/yolodolo42/safesig/internal/safe"
	"github.com/yolodolo42/safesig/internal/ui"
)

func newHashCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the Safe transaction hash",
		Long: `Compute the EIP-712 hash that owners sign for a Safe transaction.
With --typed-data the full typed-data document is printed instead, for
wallets that want to display it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.loadTarget(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if typed, _ := cmd.Flags().GetBool("typed-data"); typed {
				doc, err := json.MarshalIndent(safe.TypedData(t.domain, t.tx), "", "  ")
				if err != nil {
					return fmt.Errorf("encode typed data: %w", err)
				}
				fmt.Fprintln(out, string(doc))
				return nil
			}

			if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
				fmt.Fprintln(out, t.hash.Hex())
				return nil
			}
			printTarget(out, t)
			return nil
		},
	}
	addTxFlag(cmd)
	cmd.Flags().Bool("typed-data", false, "Print the EIP-712 typed data as JSON")
	cmd.Flags().BoolP("quiet", "q", false, "Print only the hash")
	return cmd
}

func printTarget(out io.Writer, t *target) {
	chainLabel := t.domain.ChainID.String()
	if t.chainName != "" {
		chainLabel += " (" + t.chainName + ")"
	}
	fmt.Fprintln(out, ui.Field("Safe", t.domain.VerifyingContract.Hex()))
	fmt.Fprintln(out, ui.Field("Chain", chainLabel))
	fmt.Fprintln(out, ui.Field("To", t.tx.To.Hex()))
	fmt.Fprintln(out, ui.Field("Value", amount(t.tx.Value)))
	fmt.Fprintln(out, ui.Field("Operation", t.tx.Operation.String()))
	fmt.Fprintln(out, ui.Field("Nonce", amount(t.tx.Nonce)))
	fmt.Fprintln(out, ui.Field("Safe tx hash", t.hash.Hex()))
}

func amount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
