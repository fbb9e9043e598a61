package safe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yolodolo42/safesig/internal/testutil"
)

func TestParseDraft(t *testing.T) {
	t.Run("full yaml", func(t *testing.T) {
		in := `
safe: "0x5afe5afe5afe5afe5afe5afe5afe5afe5afe5afe"
chainId: "100"
to: "0x1111111111111111111111111111111111111111"
value: "1000000000000000000000"
data: "0xdeadbeef"
operation: 1
safeTxGas: "0x10"
baseGas: 0
gasPrice: "0"
gasToken: "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
refundReceiver: ""
nonce: "7"
`
		d, err := ParseDraft(strings.NewReader(in), "yaml")
		require.NoError(t, err)

		assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), d.Tx.To)
		assert.Equal(t, "1000000000000000000000", d.Tx.Value.String())
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, d.Tx.Data)
		assert.Equal(t, OperationDelegateCall, d.Tx.Operation)
		assert.Equal(t, int64(16), d.Tx.SafeTxGas.Int64())
		assert.Equal(t, common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"), d.Tx.GasToken)
		assert.Equal(t, common.Address{}, d.Tx.RefundReceiver)
		assert.True(t, d.HasNonce)
		assert.Equal(t, int64(7), d.Tx.Nonce.Int64())
		require.NotNil(t, d.ChainID)
		assert.Equal(t, int64(100), d.ChainID.Int64())
		require.NotNil(t, d.Safe)
		assert.Equal(t, common.HexToAddress("0x5afe5afe5afe5afe5afe5afe5afe5afe5afe5afe"), *d.Safe)
	})

	t.Run("minimal json defaults the rest", func(t *testing.T) {
		d, err := ParseDraft(strings.NewReader(`{"to": "0x1111111111111111111111111111111111111111"}`), "json")
		require.NoError(t, err)

		assert.False(t, d.HasNonce)
		assert.Nil(t, d.ChainID)
		assert.Nil(t, d.Safe)
		assert.Equal(t, int64(0), d.Tx.Value.Int64())
		assert.Empty(t, d.Tx.Data)
		assert.Equal(t, OperationCall, d.Tx.Operation)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		cases := map[string]string{
			"missing to":       `{"value": "1"}`,
			"bad address":      `{"to": "0x1234"}`,
			"negative value":   `{"to": "0x1111111111111111111111111111111111111111", "value": "-1"}`,
			"overflowing gas":  `{"to": "0x1111111111111111111111111111111111111111", "safeTxGas": "0x1` + strings.Repeat("0", 64) + `"}`,
			"bad operation":    `{"to": "0x1111111111111111111111111111111111111111", "operation": "2"}`,
			"data not hex":     `{"to": "0x1111111111111111111111111111111111111111", "data": "zz"}`,
			"nonce not number": `{"to": "0x1111111111111111111111111111111111111111", "nonce": "abc"}`,
		}
		for name, in := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := ParseDraft(strings.NewReader(in), "json")
				assert.ErrorIs(t, err, ErrInvalidTransaction)
			})
		}
	})
}

func TestParseDraft_UnquotedNumbers(t *testing.T) {
	const to = `"to": "0x1111111111111111111111111111111111111111"`

	t.Run("small json integers are exact", func(t *testing.T) {
		d, err := ParseDraft(strings.NewReader(`{`+to+`, "value": 1000, "nonce": 9007199254740991, "operation": 1}`), "json")
		require.NoError(t, err)
		assert.Equal(t, "1000", d.Tx.Value.String())
		assert.Equal(t, "9007199254740991", d.Tx.Nonce.String())
		assert.Equal(t, OperationDelegateCall, d.Tx.Operation)
	})

	t.Run("large json integers are refused", func(t *testing.T) {
		for _, field := range []string{
			`"value": 1234567890123456789`,
			`"nonce": 9007199254740993`,
			`"safeTxGas": 9007199254740992`,
		} {
			_, err := ParseDraft(strings.NewReader(`{`+to+`, `+field+`}`), "json")
			assert.ErrorIs(t, err, ErrInvalidTransaction, field)
		}
	})

	t.Run("fractions are refused", func(t *testing.T) {
		_, err := ParseDraft(strings.NewReader(`{`+to+`, "value": 1.5}`), "json")
		assert.ErrorIs(t, err, ErrInvalidTransaction)
	})

	t.Run("quoted large json integers are exact", func(t *testing.T) {
		d, err := ParseDraft(strings.NewReader(`{`+to+`, "value": "1234567890123456789"}`), "json")
		require.NoError(t, err)
		assert.Equal(t, "1234567890123456789", d.Tx.Value.String())
	})

	t.Run("unquoted yaml integers are exact", func(t *testing.T) {
		in := "to: \"0x1111111111111111111111111111111111111111\"\nvalue: 1234567890123456789\n"
		d, err := ParseDraft(strings.NewReader(in), "yaml")
		require.NoError(t, err)
		assert.Equal(t, "1234567890123456789", d.Tx.Value.String())
	})
}

func TestLoadDraft(t *testing.T) {
	t.Run("reads by extension", func(t *testing.T) {
		dir := testutil.TempDir(t)
		path := filepath.Join(dir, "tx.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`to: "0x1111111111111111111111111111111111111111"`+"\n"), 0o600))

		d, err := LoadDraft(path)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), d.Tx.To)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadDraft(filepath.Join(testutil.TempDir(t), "nope.yaml"))
		assert.Error(t, err)
	})
}
