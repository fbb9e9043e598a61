package cli

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/yolodolo42/safesig/internal/safe"
	"github.com/yolodolo42/safesig/internal/ui"
)

func newRecoverCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Show which owner produced each collected signature",
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

			blob, err := a.collected(ctx, cmd, db.Bundles(), t)
			if err != nil {
				return err
			}
			sigs, err := safe.SplitSignatures(blob)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Field("Safe tx hash", t.hash.Hex()))
			if len(sigs) == 0 {
				fmt.Fprintln(out, "No signatures collected.")
				return nil
			}

			var owners map[common.Address]bool
			var threshold *big.Int
			if check, _ := cmd.Flags().GetBool("check-owners"); check {
				if t.chainName == "" {
					return fmt.Errorf("%w: --check-owners needs an RPC for chain id %s", safe.ErrConfiguration, t.domain.ChainID)
				}
				client := a.chainClient()
				list, err := client.SafeOwners(ctx, t.chainName, t.domain.VerifyingContract)
				if err != nil {
					return err
				}
				owners = make(map[common.Address]bool, len(list))
				for _, o := range list {
					owners[o] = true
				}
				threshold, err = client.SafeThreshold(ctx, t.chainName, t.domain.VerifyingContract)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Field("Threshold", fmt.Sprintf("%s of %d owners", threshold, len(list))))
			}

			session := safe.NewSession(t.domain, t.tx)
			var failed error
			approved := 0
			for i, sig := range sigs {
				scheme, _ := sig.Scheme()
				owner, err := session.Add(sig)
				if err != nil {
					fmt.Fprintf(out, "%d. %s\n", i+1, ui.Cross(err.Error()))
					failed = errors.Join(failed, fmt.Errorf("signature %d: %w", i+1, err))
					continue
				}
				line := fmt.Sprintf("%d. %s  %s", i+1, owner.Hex(), ui.SelectorDim.Render(scheme.String()))
				if owners != nil {
					if owners[owner] {
						approved++
						line += " " + ui.Check("owner")
					} else {
						line += " " + ui.Cross("not an owner")
					}
				}
				fmt.Fprintln(out, line)
			}
			if failed != nil {
				return failed
			}

			if _, err := session.Owners(); err != nil {
				return err
			}
			if threshold != nil {
				if big.NewInt(int64(approved)).Cmp(threshold) >= 0 {
					fmt.Fprintln(out, ui.Check(fmt.Sprintf("%d/%s signatures, ready to execute", approved, threshold)))
				} else {
					fmt.Fprintln(out, ui.WarningStyle.Render(fmt.Sprintf("%d/%s signatures collected", approved, threshold)))
				}
			}
			return nil
		},
	}
	addTxFlag(cmd)
	addSignaturesFlag(cmd)
	cmd.Flags().Bool("check-owners", false, "Compare recovered owners with the Safe's owner list on chain")
	return cmd
}

func hexBundle(bundle []byte) string {
	if len(bundle) == 0 {
		return "0x"
	}
	return hexutil.Encode(bundle)
}
