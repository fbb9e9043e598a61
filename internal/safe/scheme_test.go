package safe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Run("recognized ranges", func(t *testing.T) {
		cases := map[byte]Scheme{
			1:  SchemePreApproved,
			27: SchemeTypedData,
			28: SchemeTypedData,
			29: SchemeTypedData,
			30: SchemeTypedData,
			31: SchemePersonalMessage,
			32: SchemePersonalMessage,
			33: SchemePersonalMessage,
			34: SchemePersonalMessage,
		}
		for v, want := range cases {
			got, err := Classify(v)
			require.NoError(t, err, "v=%d", v)
			assert.Equal(t, want, got, "v=%d", v)
		}
	})

	t.Run("every other value is rejected", func(t *testing.T) {
		for v := 0; v < 256; v++ {
			if v == 1 || (v >= 27 && v <= 34) {
				continue
			}
			_, err := Classify(byte(v))
			assert.ErrorIs(t, err, ErrInvalidSignatureDiscriminant, "v=%d", v)
		}
	})
}

func TestParseScheme(t *testing.T) {
	for _, s := range Schemes() {
		got, err := ParseScheme(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseScheme("  EIP712 ")
	require.NoError(t, err)
	assert.Equal(t, SchemeTypedData, got)

	_, err = ParseScheme("eip1271")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSchemeString(t *testing.T) {
	assert.Equal(t, "eip712", SchemeTypedData.String())
	assert.Equal(t, "ethsign", SchemePersonalMessage.String())
	assert.Equal(t, "validator", SchemePreApproved.String())
	assert.Equal(t, "scheme(9)", Scheme(9).String())
}
