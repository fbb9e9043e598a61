package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yolodolo42/safesig/internal/wallet"
)

const minPasswordLen = 8

func newWalletCmd(a *app) *cobra.Command {
	walletCmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage owner and executor keys",
		Long:  `Create, import, and list the encrypted keystore accounts used to sign.`,
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new wallet",
		RunE:  a.runWalletCreate,
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import a wallet from private key",
		RunE:  a.runWalletImport,
	}
	importCmd.Flags().String("key", "", "Private key to import (hex, with or without 0x prefix)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all wallets",
		RunE:  a.runWalletList,
	}

	walletCmd.AddCommand(createCmd, importCmd, listCmd)
	return walletCmd
}

func (a *app) keystore() (*wallet.KeystoreManager, error) {
	km, err := wallet.NewKeystoreManager(a.dataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keystore: %w", err)
	}
	return km, nil
}

// newPassword prompts twice, or takes SAFESIG_PASSWORD as is.
func (a *app) newPassword(cmd *cobra.Command, prompt string) (string, error) {
	if password := a.v.GetString("password"); password != "" {
		if len(password) < minPasswordLen {
			return "", fmt.Errorf("password must be at least %d characters", minPasswordLen)
		}
		return password, nil
	}

	w := cmd.ErrOrStderr()
	password, err := a.readPassword(w, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) < minPasswordLen {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	confirm, err := a.readPassword(w, "Confirm password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password confirmation: %w", err)
	}

	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}

func (a *app) runWalletCreate(cmd *cobra.Command, args []string) error {
	km, err := a.keystore()
	if err != nil {
		return err
	}

	password, err := a.newPassword(cmd, "Enter password for new wallet: ")
	if err != nil {
		return err
	}

	account, err := km.CreateAccount(password)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nWallet created successfully!")
	fmt.Fprintf(out, "Address: %s\n", account.Address.Hex())
	fmt.Fprintf(out, "Keystore: %s\n", account.URL.Path)
	fmt.Fprintln(out, "\nIMPORTANT: Back up your keystore file and remember your password!")

	return nil
}

func (a *app) runWalletImport(cmd *cobra.Command, args []string) error {
	privateKey, _ := cmd.Flags().GetString("key")

	if privateKey == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Enter private key (hex): ")
		line, _ := a.lines().ReadString('\n')
		privateKey = strings.TrimSpace(line)
	}

	if privateKey == "" {
		return fmt.Errorf("private key is required")
	}

	km, err := a.keystore()
	if err != nil {
		return err
	}

	password, err := a.newPassword(cmd, "Enter password to encrypt wallet: ")
	if err != nil {
		return err
	}

	account, err := km.ImportKey(privateKey, password)
	if err != nil {
		return fmt.Errorf("failed to import key: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nWallet imported successfully!")
	fmt.Fprintf(out, "Address: %s\n", account.Address.Hex())
	fmt.Fprintf(out, "Keystore: %s\n", account.URL.Path)

	return nil
}

func (a *app) runWalletList(cmd *cobra.Command, args []string) error {
	km, err := a.keystore()
	if err != nil {
		return err
	}

	accounts := km.ListAccounts()
	out := cmd.OutOrStdout()

	if len(accounts) == 0 {
		fmt.Fprintln(out, "No wallets found.")
		fmt.Fprintln(out, "Use 'safesig wallet create' to create a new wallet.")
		return nil
	}

	fmt.Fprintf(out, "Found %d wallet(s):\n\n", len(accounts))
	for i, acc := range accounts {
		fmt.Fprintf(out, "%d. %s\n", i+1, acc.Address.Hex())
	}

	return nil
}
