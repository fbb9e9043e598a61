package safe

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	ctx := context.Background()

	t.Run("typed data keeps v in 27..30", func(t *testing.T) {
		c := newKeyCapability(t, keyA)
		sig, err := Sign(ctx, testDomain(), testTx(), SchemeTypedData, c)
		require.NoError(t, err)
		assert.Contains(t, []byte{27, 28}, sig.V())

		scheme, err := sig.Scheme()
		require.NoError(t, err)
		assert.Equal(t, SchemeTypedData, scheme)
	})

	t.Run("personal message shifts v into 31..34", func(t *testing.T) {
		c := newKeyCapability(t, keyA)
		sig, err := Sign(ctx, testDomain(), testTx(), SchemePersonalMessage, c)
		require.NoError(t, err)
		assert.Contains(t, []byte{31, 32}, sig.V())
	})

	t.Run("personal message signs the eip191 hash of the safe tx hash", func(t *testing.T) {
		c := newKeyCapability(t, keyA)
		hash := Hash(testDomain(), testTx())
		direct, err := c.SignMessage(ctx, hash[:])
		require.NoError(t, err)

		sig, err := Sign(ctx, testDomain(), testTx(), SchemePersonalMessage, c)
		require.NoError(t, err)
		assert.Equal(t, direct[:64], sig[:64])
		assert.Equal(t, direct[64]+27+4, sig.V())
	})

	t.Run("pre-approved embeds the owner address", func(t *testing.T) {
		c := newKeyCapability(t, keyB)
		sig, err := Sign(ctx, testDomain(), testTx(), SchemePreApproved, c)
		require.NoError(t, err)

		assert.Equal(t, common.LeftPadBytes(c.Address().Bytes(), 32), sig[:32])
		assert.Equal(t, make([]byte, 32), sig[32:64])
		assert.Equal(t, byte(1), sig.V())
	})

	t.Run("pre-approved never asks for a signature", func(t *testing.T) {
		owner := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
		sig, err := Sign(ctx, testDomain(), testTx(), SchemePreApproved, failingCapability{addr: owner, err: errUserRejected})
		require.NoError(t, err)
		assert.Equal(t, owner, common.BytesToAddress(sig[12:32]))
	})

	t.Run("capability failure is a signing failure", func(t *testing.T) {
		for _, scheme := range []Scheme{SchemeTypedData, SchemePersonalMessage} {
			_, err := Sign(ctx, testDomain(), testTx(), scheme, failingCapability{err: errUserRejected})
			assert.ErrorIs(t, err, ErrSigningFailed, scheme.String())
			assert.ErrorIs(t, err, errUserRejected, scheme.String())
		}
	})

	t.Run("short capability output is a signing failure", func(t *testing.T) {
		_, err := Sign(ctx, testDomain(), testTx(), SchemeTypedData, rawCapability{out: make([]byte, 64)})
		assert.ErrorIs(t, err, ErrSigningFailed)
	})

	t.Run("capability v outside 27/28 is a signing failure", func(t *testing.T) {
		out := make([]byte, 65)
		out[64] = 31
		_, err := Sign(ctx, testDomain(), testTx(), SchemePersonalMessage, rawCapability{out: out})
		assert.ErrorIs(t, err, ErrSigningFailed)
	})

	t.Run("unknown scheme is a configuration error", func(t *testing.T) {
		_, err := Sign(ctx, testDomain(), testTx(), Scheme(42), newKeyCapability(t, keyA))
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}
