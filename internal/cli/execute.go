package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yolodolo42/safesig/internal/safe"
	"github.com/yolodolo42/safesig/internal/store"
	"github.com/yolodolo42/safesig/internal/tx"
	"github.com/yolodolo42/safesig/internal/ui"
)

var errAlreadyExecuted = errors.New("safe transaction already executed")

func newExecuteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Submit execTransaction with the collected signatures",
		Long: `Send the Safe's execTransaction from an EOA, carrying the collected
signature bundle. The bundle is refused when it holds fewer signatures
than the Safe's threshold, or when a successful execution is already
recorded. Once the transaction succeeds the stored signatures are cleared.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			signer, err := a.resolveSigner(cmd, true)
			if err != nil {
				return err
			}

			t, err := a.loadTarget(ctx, cmd)
			if err != nil {
				return err
			}
			if t.chainName == "" {
				return fmt.Errorf("%w: no RPC configured for chain id %s", safe.ErrConfiguration, t.domain.ChainID)
			}

			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			bundles := db.Bundles()
			receipts := db.Receipts()

			prev, err := receipts.Find(t.chainName, t.hash)
			switch {
			case err == nil && prev.Succeeded():
				return fmt.Errorf("%w: %s in %s", errAlreadyExecuted, t.hash.Hex(), prev.TxHash)
			case err != nil && !errors.Is(err, store.ErrNotFound):
				return err
			}

			blob, err := a.collected(ctx, cmd, bundles, t)
			if err != nil {
				return err
			}

			wait, _ := cmd.Flags().GetBool("wait")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			executor := tx.NewExecutor(a.chainClient(), receipts, a.logger)
			res, err := executor.Execute(ctx, signer, tx.Request{
				Chain:      t.chainName,
				Domain:     t.domain,
				Tx:         t.tx,
				Signatures: blob,
				Wait:       wait,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Field("Safe tx hash", res.SafeTxHash.Hex()))
			fmt.Fprintln(out, ui.Field("Signatures", fmt.Sprint(len(res.Owners))))
			fmt.Fprintln(out, ui.Field("Tx hash", res.Tx.Hash().Hex()))
			if cfg, err := a.chainClient().GetChainConfig(t.chainName); err == nil && cfg.ExplorerURL != "" {
				fmt.Fprintln(out, ui.Field("Explorer", cfg.ExplorerURL+"/tx/"+res.Tx.Hash().Hex()))
			}

			if res.Receipt == nil {
				return nil
			}
			if res.Receipt.Status != types.ReceiptStatusSuccessful {
				fmt.Fprintln(out, ui.Cross("transaction reverted"))
				return fmt.Errorf("execTransaction reverted in block %s", res.Receipt.BlockNumber)
			}
			fmt.Fprintln(out, ui.Check(fmt.Sprintf("executed, gas used %d", res.Receipt.GasUsed)))

			if _, err := bundles.Clear(ctx, t.key()); err != nil {
				a.logger.Warn("could not clear executed bundle", zap.Error(err))
			}
			return nil
		},
	}
	addTxFlag(cmd)
	addSignaturesFlag(cmd)
	addSignerFlags(cmd)
	cmd.Flags().Bool("wait", true, "Wait for the transaction to be mined")
	cmd.Flags().Duration("timeout", 5*time.Minute, "How long to wait for mining")
	return cmd
}
