package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yolodolo42/safesig/internal/safe"
	"github.com/yolodolo42/safesig/internal/store"
	"github.com/yolodolo42/safesig/internal/ui"
)

func newReceiptCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Show the recorded execution of a Safe transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := a.loadTarget(ctx, cmd)
			if err != nil {
				return err
			}
			if t.chainName == "" {
				return fmt.Errorf("%w: no chain configured for chain id %s", safe.ErrConfiguration, t.domain.ChainID)
			}

			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			r, err := db.Receipts().Find(t.chainName, t.hash)
			if errors.Is(err, store.ErrNotFound) {
				fmt.Fprintf(out, "No receipt stored for %s\n", t.hash.Hex())
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, ui.Field("Safe tx hash", r.SafeTxHash))
			fmt.Fprintln(out, ui.Field("Chain", r.Chain))
			fmt.Fprintln(out, ui.Field("Tx hash", r.TxHash))
			if r.Succeeded() {
				fmt.Fprintln(out, ui.Field("Status", ui.Check("success")))
			} else {
				fmt.Fprintln(out, ui.Field("Status", ui.Cross("reverted")))
			}
			fmt.Fprintln(out, ui.Field("Gas used", fmt.Sprint(r.GasUsed)))
			if !r.CreatedAt.IsZero() {
				fmt.Fprintln(out, ui.Field("Recorded", r.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC")))
			}
			if cfg, err := a.chainClient().GetChainConfig(t.chainName); err == nil && cfg.ExplorerURL != "" {
				fmt.Fprintln(out, ui.Field("Explorer", cfg.ExplorerURL+"/tx/"+r.TxHash))
			}
			return nil
		},
	}
	addTxFlag(cmd)
	return cmd
}
