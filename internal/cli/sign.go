package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yolodolo42/safesig/internal/safe"
	"github.com/yolodolo42/safesig/internal/ui"
	"github.com/yolodolo42/safesig/internal/wallet"
)

var schemeLabels = map[safe.Scheme]ui.SelectorItem{
	safe.SchemeTypedData:       {Label: "Typed data", Description: "EIP-712 signature of the Safe transaction"},
	safe.SchemePersonalMessage: {Label: "eth_sign", Description: "personal-message signature of the hash"},
	safe.SchemePreApproved:     {Label: "Pre-approved", Description: "owner approved the hash on chain"},
}

func newSignCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Add an owner signature to a Safe transaction",
		Long: `Sign a Safe transaction as one owner and merge the signature into the
signatures collected so far. The merged bundle is sorted by owner address
and stored for the next signer; it is also printed so it can be passed
along with --signatures.

Schemes: eip712 (typed data), ethsign (personal message) and validator
(pre-approved; needs only the owner address).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			scheme, err := a.pickScheme(cmd)
			if err != nil {
				return err
			}
			signer, err := a.resolveSigner(cmd, scheme != safe.SchemePreApproved)
			if err != nil {
				return err
			}

			t, err := a.loadTarget(ctx, cmd)
			if err != nil {
				return err
			}

			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			bundles := db.Bundles()

			existing, err := a.collected(ctx, cmd, bundles, t)
			if err != nil {
				return err
			}

			session := safe.NewSession(t.domain, t.tx)
			if err := session.Load(existing); err != nil {
				return fmt.Errorf("collected signatures: %w", err)
			}

			pair, err := session.Sign(ctx, scheme, wallet.NewCapability(signer))
			if err != nil {
				return err
			}
			bundle, err := session.Bundle()
			if err != nil {
				return err
			}
			if err := bundles.Save(ctx, t.key(), bundle); err != nil {
				return err
			}

			a.logger.Info("signed",
				zap.Stringer("owner", pair.Owner),
				zap.String("scheme", scheme.String()),
				zap.Int("signatures", session.Len()))

			out := cmd.OutOrStdout()
			if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
				fmt.Fprintln(out, ui.Check(fmt.Sprintf("%s signed with %s", pair.Owner.Hex(), scheme)))
				fmt.Fprintln(out, ui.Field("Safe tx hash", t.hash.Hex()))
				fmt.Fprintln(out, ui.Field("Signatures", fmt.Sprint(session.Len())))
			}
			fmt.Fprintln(out, hexBundle(bundle))
			return nil
		},
	}
	addTxFlag(cmd)
	addSignaturesFlag(cmd)
	addSignerFlags(cmd)
	cmd.Flags().String("scheme", "", "Signature scheme: eip712, ethsign or validator (prompted on a terminal)")
	cmd.Flags().BoolP("quiet", "q", false, "Print only the signature bundle")
	return cmd
}

// pickScheme reads --scheme, or asks on a terminal, or defaults to eip712.
func (a *app) pickScheme(cmd *cobra.Command) (safe.Scheme, error) {
	if name, _ := cmd.Flags().GetString("scheme"); name != "" {
		return safe.ParseScheme(name)
	}
	if name := a.v.GetString("scheme"); name != "" {
		return safe.ParseScheme(name)
	}
	if !a.isTerminal() {
		return safe.SchemeTypedData, nil
	}

	items := make([]ui.SelectorItem, 0, len(safe.Schemes()))
	for _, s := range safe.Schemes() {
		item := schemeLabels[s]
		item.ID = s.String()
		item.Current = s == safe.SchemeTypedData
		items = append(items, item)
	}
	choice, err := ui.PickOne(a.in, cmd.ErrOrStderr(), "Signature scheme", items)
	if err != nil {
		return 0, err
	}
	return safe.ParseScheme(choice)
}
