package chain

import (
	"fmt"
	"math/big"

	"github.com/spf13/viper"
)

// ChainConfig holds configuration for an EVM chain that hosts Safes.
// Invariant: ChainID and ChainIDInt must always represent the same value.
// ChainIDInt exists for config decoding (big.Int doesn't decode cleanly).
// ChainID is used at runtime for the Safe domain, RPC validation and signing.
type ChainConfig struct {
	Name           string   `mapstructure:"name" yaml:"name"`
	ChainID        *big.Int `mapstructure:"-" yaml:"-"`
	ChainIDInt     int64    `mapstructure:"chain_id" yaml:"chain_id"`
	RPCURLs        []string `mapstructure:"rpc_urls" yaml:"rpc_urls"`
	ExplorerURL    string   `mapstructure:"explorer_url" yaml:"explorer_url"`
	NativeCurrency string   `mapstructure:"native_currency" yaml:"native_currency"`
	IsTestnet      bool     `mapstructure:"is_testnet" yaml:"is_testnet"`
}

func newChain(name string, id int64, currency string, testnet bool, explorer string, rpcs ...string) *ChainConfig {
	return &ChainConfig{
		Name:           name,
		ChainID:        big.NewInt(id),
		ChainIDInt:     id,
		RPCURLs:        rpcs,
		ExplorerURL:    explorer,
		NativeCurrency: currency,
		IsTestnet:      testnet,
	}
}

// DefaultChains returns the default chain configurations
func DefaultChains() map[string]*ChainConfig {
	return map[string]*ChainConfig{
		"ethereum": newChain("Ethereum Mainnet", 1, "ETH", false, "https://etherscan.io",
			"https://eth.llamarpc.com", "https://rpc.ankr.com/eth"),
		"gnosis": newChain("Gnosis Chain", 100, "xDAI", false, "https://gnosisscan.io",
			"https://rpc.gnosischain.com", "https://gnosis.drpc.org"),
		"base": newChain("Base", 8453, "ETH", false, "https://basescan.org",
			"https://mainnet.base.org", "https://base.llamarpc.com"),
		"arbitrum": newChain("Arbitrum One", 42161, "ETH", false, "https://arbiscan.io",
			"https://arb1.arbitrum.io/rpc", "https://arbitrum.llamarpc.com"),
		"optimism": newChain("Optimism", 10, "ETH", false, "https://optimistic.etherscan.io",
			"https://mainnet.optimism.io", "https://optimism.llamarpc.com"),
		"polygon": newChain("Polygon", 137, "MATIC", false, "https://polygonscan.com",
			"https://polygon-rpc.com", "https://polygon.llamarpc.com"),
		"sepolia": newChain("Sepolia Testnet", 11155111, "ETH", true, "https://sepolia.etherscan.io",
			"https://rpc.sepolia.org", "https://sepolia.drpc.org"),
		"base-sepolia": newChain("Base Sepolia Testnet", 84532, "ETH", true, "https://sepolia.basescan.org",
			"https://sepolia.base.org"),
	}
}

// LoadChains returns DefaultChains with the entries under the "chains" config
// key merged over them. A partial entry only replaces the fields it sets.
func LoadChains(v *viper.Viper) (map[string]*ChainConfig, error) {
	chains := DefaultChains()
	if v == nil || !v.IsSet("chains") {
		return chains, nil
	}

	var overrides map[string]ChainConfig
	if err := v.UnmarshalKey("chains", &overrides); err != nil {
		return nil, fmt.Errorf("invalid chains config: %w", err)
	}

	for name, o := range overrides {
		cfg, ok := chains[name]
		if !ok {
			if o.ChainIDInt <= 0 {
				return nil, fmt.Errorf("chain %q: chain_id is required", name)
			}
			if len(o.RPCURLs) == 0 {
				return nil, fmt.Errorf("chain %q: rpc_urls is required", name)
			}
			cfg = &ChainConfig{Name: name}
			chains[name] = cfg
		}
		if o.Name != "" {
			cfg.Name = o.Name
		}
		if o.ChainIDInt > 0 {
			cfg.ChainIDInt = o.ChainIDInt
		}
		if len(o.RPCURLs) > 0 {
			cfg.RPCURLs = o.RPCURLs
		}
		if o.ExplorerURL != "" {
			cfg.ExplorerURL = o.ExplorerURL
		}
		if o.NativeCurrency != "" {
			cfg.NativeCurrency = o.NativeCurrency
		}
		if o.IsTestnet {
			cfg.IsTestnet = true
		}
		cfg.ChainID = big.NewInt(cfg.ChainIDInt)
	}
	return chains, nil
}
