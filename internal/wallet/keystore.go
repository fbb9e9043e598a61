package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountLocked   = errors.New("account is locked")
	ErrInvalidKey      = errors.New("invalid private key")
)

// KeystoreSigner implements Signer using go-ethereum's encrypted keystore
type KeystoreSigner struct {
	// mu protects key from concurrent access. Prevents signing operations from
	// racing with Lock() which zeros the key material.
	mu      sync.RWMutex
	account accounts.Account
	key     *ecdsa.PrivateKey // nil when locked
}

// KeystoreManager manages the keystore directory and owner accounts
type KeystoreManager struct {
	ks  *keystore.KeyStore
	dir string
}

// KeystoreOption tunes a KeystoreManager.
type KeystoreOption func(*keystoreOptions)

type keystoreOptions struct {
	scryptN, scryptP int
}

// WithLightScrypt trades key-file hardness for speed. Meant for tests.
func WithLightScrypt() KeystoreOption {
	return func(o *keystoreOptions) {
		o.scryptN, o.scryptP = keystore.LightScryptN, keystore.LightScryptP
	}
}

// NewKeystoreManager opens (or creates) dataDir/keystore
func NewKeystoreManager(dataDir string, opts ...KeystoreOption) (*KeystoreManager, error) {
	o := keystoreOptions{
		// StandardScryptN and StandardScryptP are secure defaults
		scryptN: keystore.StandardScryptN,
		scryptP: keystore.StandardScryptP,
	}
	for _, opt := range opts {
		opt(&o)
	}

	dir := filepath.Join(dataDir, "keystore")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create keystore directory: %w", err)
	}

	return &KeystoreManager{
		ks:  keystore.NewKeyStore(dir, o.scryptN, o.scryptP),
		dir: dir,
	}, nil
}

// Dir returns the directory holding the encrypted key files
func (km *KeystoreManager) Dir() string {
	return km.dir
}

// CreateAccount creates a new account with the given password
func (km *KeystoreManager) CreateAccount(password string) (accounts.Account, error) {
	return km.ks.NewAccount(password)
}

// ImportKey imports a private key and encrypts it with the password
func (km *KeystoreManager) ImportKey(privateKeyHex string, password string) (accounts.Account, error) {
	privateKey, err := ParsePrivateKey(privateKeyHex)
	if err != nil {
		return accounts.Account{}, err
	}
	return km.ks.ImportECDSA(privateKey, password)
}

// ListAccounts returns all accounts in the keystore
func (km *KeystoreManager) ListAccounts() []accounts.Account {
	return km.ks.Accounts()
}

// HasAccount reports whether the keystore holds a key for address
func (km *KeystoreManager) HasAccount(address common.Address) bool {
	return km.ks.HasAddress(address)
}

// GetSigner decrypts the key for address and returns a signer holding it
func (km *KeystoreManager) GetSigner(address common.Address, password string) (*KeystoreSigner, error) {
	account, err := km.ks.Find(accounts.Account{Address: address})
	if err != nil {
		return nil, ErrAccountNotFound
	}

	keyJSON, err := os.ReadFile(account.URL.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	key, err := keystore.DecryptKey(keyJSON, password)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock account: %w", err)
	}

	return &KeystoreSigner{
		account: account,
		key:     key.PrivateKey,
	}, nil
}

// ParsePrivateKey decodes a hex private key, with or without 0x prefix
func ParsePrivateKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")

	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return privateKey, nil
}

// Address returns the address of the signer
func (ks *KeystoreSigner) Address() common.Address {
	return ks.account.Address
}

// SignTransaction signs a transaction
func (ks *KeystoreSigner) SignTransaction(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if ks.key == nil {
		return nil, ErrAccountLocked
	}

	signer := types.LatestSignerForChainID(chainID)
	return types.SignTx(tx, signer, ks.key)
}

// SignMessage signs an arbitrary message using EIP-191 personal sign
func (ks *KeystoreSigner) SignMessage(message []byte) ([]byte, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if ks.key == nil {
		return nil, ErrAccountLocked
	}
	return signPersonal(ks.key, message)
}

// SignTypedData signs EIP-712 typed data
func (ks *KeystoreSigner) SignTypedData(typedData apitypes.TypedData) ([]byte, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	if ks.key == nil {
		return nil, ErrAccountLocked
	}
	return signTypedData(ks.key, typedData)
}

// Lock zeros private key material from memory to prevent extraction via memory
// dumps, debuggers, or core dumps. Safe to call multiple times. After Lock(),
// all signing operations return ErrAccountLocked.
func (ks *KeystoreSigner) Lock() {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if ks.key != nil {
		// Zero out the key bytes before releasing reference
		ks.key.D.SetInt64(0)
		ks.key = nil
	}
}
