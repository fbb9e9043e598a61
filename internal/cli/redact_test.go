package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactSettings(t *testing.T) {
	got := redactSettings(map[string]any{
		"password":    "hunter22",
		"private_key": "0xac09",
		"account":     "0xf39F",
		"chains": map[string]any{
			"devnet": map[string]any{"secret": "s", "chain_id": 5},
		},
		"list": []any{map[string]any{"Password": "pw"}},
		"empty": map[string]any{"password": ""},
	})

	assert.Equal(t, redacted, got["password"])
	assert.Equal(t, redacted, got["private_key"])
	assert.Equal(t, "0xf39F", got["account"])

	devnet := got["chains"].(map[string]any)["devnet"].(map[string]any)
	assert.Equal(t, redacted, devnet["secret"])
	assert.Equal(t, 5, devnet["chain_id"])

	list := got["list"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, redacted, list[0].(map[string]any)["Password"])

	assert.Equal(t, "", got["empty"].(map[string]any)["password"])
}

func TestRedactSettings_DoesNotMutate(t *testing.T) {
	in := map[string]any{"password": "hunter22"}
	_ = redactSettings(in)
	assert.Equal(t, "hunter22", in["password"])
}
