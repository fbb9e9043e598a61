package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yolodolo42/safesig/internal/chain"
	"github.com/yolodolo42/safesig/internal/ui"
)

const envPrefix = "SAFESIG"

// app carries what every command shares: configuration, the chain table and
// the logger. It is created fresh for each root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *zap.Logger
	chains  map[string]*chain.ChainConfig
	client  *chain.Client
	in      io.Reader
	reader  *bufio.Reader
}

// NewRootCmd builds the safesig command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "safesig",
		Short: "Collect owner signatures for Safe multisig transactions",
		Long: `safesig computes the hash of a Safe transaction, signs it with one
owner at a time, and accumulates the signatures into the sorted bundle
that execTransaction expects.

Signatures can be produced as EIP-712 typed data, as eth_sign personal
messages, or as pre-approved (validator) signatures.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.safesig/config.yaml)")
	flags.String("chain", "ethereum", "Chain hosting the Safe")
	flags.String("safe", "", "Safe address")
	flags.String("rpc", "", "RPC URL overriding the chain's configured endpoints")
	flags.String("data-dir", "", "Directory for keystore and collected signatures (default is $HOME/.safesig)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	for _, name := range []string{"chain", "safe", "rpc", "data-dir", "verbose"} {
		_ = a.v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	rootCmd.AddCommand(
		newHashCmd(a),
		newSignCmd(a),
		newRecoverCmd(a),
		newClearCmd(a),
		newExecuteCmd(a),
		newReceiptCmd(a),
		newWalletCmd(a),
	)
	return rootCmd
}

// Execute runs the CLI and prints any error.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("Error: "+err.Error()))
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()
	for _, key := range []string{"account", "private_key", "password", "scheme"} {
		_ = a.v.BindEnv(key)
	}
	a.in = cmd.InOrStdin()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(defaultDataDir())
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
	}

	// Missing config file is fine; a broken one given explicitly is not.
	if err := a.v.ReadInConfig(); err != nil && a.cfgFile != "" {
		if _, statErr := os.Stat(a.cfgFile); statErr == nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	a.logger = newLogger(cmd.ErrOrStderr(), a.v.GetBool("verbose"))

	chains, err := chain.LoadChains(a.v)
	if err != nil {
		return err
	}
	a.chains = chains

	a.logger.Debug("config loaded",
		zap.String("file", a.v.ConfigFileUsed()),
		zap.String("chain", a.v.GetString("chain")),
		zap.String("dataDir", a.dataDir()),
		zap.Any("settings", redactSettings(a.v.AllSettings())))
	return nil
}

func (a *app) close() {
	if a.client != nil {
		a.client.Close()
		a.client = nil
	}
	_ = a.logger.Sync()
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".safesig"
	}
	return filepath.Join(home, ".safesig")
}

func (a *app) dataDir() string {
	if dir := a.v.GetString("data_dir"); dir != "" {
		return dir
	}
	return defaultDataDir()
}

// chainClient returns the RPC client, honoring --rpc for the selected chain.
func (a *app) chainClient() *chain.Client {
	if a.client != nil {
		return a.client
	}
	if rpc := a.v.GetString("rpc"); rpc != "" {
		if cfg, ok := a.chains[a.v.GetString("chain")]; ok {
			cfg.RPCURLs = []string{rpc}
		}
	}
	a.client = chain.NewClient(a.chains)
	return a.client
}
