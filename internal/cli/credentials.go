package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yolodolo42/safesig/internal/wallet"
)

var errNoSigner = errors.New("no signer: pass --account or --private-key")

func addSignerFlags(cmd *cobra.Command) {
	cmd.Flags().String("account", "", "Keystore account address (see 'safesig wallet list')")
	cmd.Flags().String("private-key", "", "Raw private key (hex); prefer SAFESIG_PRIVATE_KEY or the keystore")
}

// resolveSigner picks the signer from --private-key (or SAFESIG_PRIVATE_KEY)
// or a keystore --account. When needKey is false an account that is not in
// the keystore becomes a watch-only signer, which is all a pre-approved
// signature needs.
func (a *app) resolveSigner(cmd *cobra.Command, needKey bool) (wallet.Signer, error) {
	privateKey, _ := cmd.Flags().GetString("private-key")
	if privateKey == "" {
		privateKey = a.v.GetString("private_key")
	}
	if privateKey != "" {
		return wallet.NewKeySigner(privateKey)
	}

	account, _ := cmd.Flags().GetString("account")
	if account == "" {
		account = a.v.GetString("account")
	}
	if account == "" {
		return nil, errNoSigner
	}
	if !common.IsHexAddress(account) {
		return nil, fmt.Errorf("--account is not an address: %q", account)
	}
	address := common.HexToAddress(account)
	if !needKey {
		return wallet.NewAddressSigner(address), nil
	}

	km, err := wallet.NewKeystoreManager(a.dataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keystore: %w", err)
	}
	if !km.HasAccount(address) {
		return nil, fmt.Errorf("%w: %s", wallet.ErrAccountNotFound, address.Hex())
	}

	password := a.v.GetString("password")
	if password == "" {
		password, err = a.readPassword(cmd.ErrOrStderr(), fmt.Sprintf("Password for %s: ", address.Hex()))
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
	}
	return km.GetSigner(address, password)
}

func (a *app) isTerminal() bool {
	f, ok := a.in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// readPassword reads without echo on a terminal, or one line otherwise.
func (a *app) readPassword(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	if a.isTerminal() {
		password, err := term.ReadPassword(int(a.in.(*os.File).Fd()))
		fmt.Fprintln(w) // newline after password input
		if err != nil {
			return "", err
		}
		return string(password), nil
	}
	line, err := a.lines().ReadString('\n')
	fmt.Fprintln(w)
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// lines buffers a.in so consecutive prompts don't lose input.
func (a *app) lines() *bufio.Reader {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.in)
	}
	return a.reader
}
