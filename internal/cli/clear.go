package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the signatures collected for a Safe transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := a.loadTarget(ctx, cmd)
			if err != nil {
				return err
			}

			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			existed, err := db.Bundles().Clear(ctx, t.key())
			if err != nil {
				return err
			}
			if existed {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared signatures for %s\n", t.hash.Hex())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "No signatures stored for %s\n", t.hash.Hex())
			}
			return nil
		},
	}
	addTxFlag(cmd)
	return cmd
}
