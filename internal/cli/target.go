package cli

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yolodolo42/safesig/internal/safe"
	"github.com/yolodolo42/safesig/internal/store"
)

// target is one Safe transaction resolved from a transaction file plus
// flags and config.
type target struct {
	chainName string // empty when the chain id has no configured RPC
	domain    safe.Domain
	tx        safe.Transaction
	hash      common.Hash
}

func addTxFlag(cmd *cobra.Command) {
	cmd.Flags().String("tx", "", "Transaction file (YAML, JSON or TOML)")
	_ = cmd.MarkFlagRequired("tx")
}

// loadTarget reads --tx and fills in the Safe domain. A missing nonce is
// read from the Safe on chain.
func (a *app) loadTarget(ctx context.Context, cmd *cobra.Command) (*target, error) {
	path, _ := cmd.Flags().GetString("tx")
	draft, err := safe.LoadDraft(path)
	if err != nil {
		return nil, err
	}

	t := &target{tx: draft.Tx}

	chainName := a.v.GetString("chain")
	cfg, ok := a.chains[chainName]
	switch {
	case draft.ChainID == nil && !ok:
		return nil, fmt.Errorf("%w: unknown chain %q (configured: %s)",
			safe.ErrConfiguration, chainName, strings.Join(a.chainClient().ListChains(), ", "))
	case draft.ChainID == nil:
		t.chainName = chainName
		t.domain.ChainID = cfg.ChainID
	default:
		t.domain.ChainID = draft.ChainID
		t.chainName = a.chainNameFor(draft.ChainID, chainName)
	}

	switch {
	case draft.Safe != nil:
		t.domain.VerifyingContract = *draft.Safe
	case a.v.GetString("safe") != "":
		addr := a.v.GetString("safe")
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("%w: --safe is not an address: %q", safe.ErrConfiguration, addr)
		}
		t.domain.VerifyingContract = common.HexToAddress(addr)
	default:
		return nil, fmt.Errorf("%w: safe address is required (--safe or \"safe\" in the transaction file)", safe.ErrConfiguration)
	}

	if !draft.HasNonce {
		if t.chainName == "" {
			return nil, fmt.Errorf("%w: nonce missing and chain id %s has no configured RPC", safe.ErrConfiguration, t.domain.ChainID)
		}
		nonce, err := a.chainClient().SafeNonce(ctx, t.chainName, t.domain.VerifyingContract)
		if err != nil {
			return nil, fmt.Errorf("nonce missing from transaction file: %w", err)
		}
		t.tx.Nonce = nonce
		a.logger.Debug("fetched safe nonce", zap.Stringer("nonce", nonce))
	}

	t.hash = safe.Hash(t.domain, t.tx)
	a.logger.Debug("resolved safe transaction",
		zap.String("chain", t.chainName),
		zap.Stringer("chainId", t.domain.ChainID),
		zap.Stringer("safe", t.domain.VerifyingContract),
		zap.Stringer("safeTxHash", t.hash))
	return t, nil
}

// chainNameFor prefers the selected chain when its id matches, then the
// first configured chain by name.
func (a *app) chainNameFor(id *big.Int, preferred string) string {
	if cfg, ok := a.chains[preferred]; ok && cfg.ChainID.Cmp(id) == 0 {
		return preferred
	}
	for _, name := range a.chainClient().ListChains() {
		if a.chains[name].ChainID.Cmp(id) == 0 {
			return name
		}
	}
	return ""
}

func (t *target) key() store.BundleKey {
	return store.KeyFor(t.domain, t.hash)
}

func addSignaturesFlag(cmd *cobra.Command) {
	cmd.Flags().String("signatures", "", "Accumulated signatures (hex); defaults to the stored bundle")
}

// collected returns --signatures when given, else the stored bundle.
func (a *app) collected(ctx context.Context, cmd *cobra.Command, bundles *store.BundleStore, t *target) ([]byte, error) {
	if cmd.Flags().Changed("signatures") {
		raw, _ := cmd.Flags().GetString("signatures")
		sigs, err := safe.ParseSignatures(raw)
		if err != nil {
			return nil, err
		}
		return safe.JoinSignatures(sigs), nil
	}
	return bundles.Load(ctx, t.key())
}

func (a *app) openStore() (*store.DB, error) {
	db, err := store.Open(a.dataDir(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return db, nil
}
