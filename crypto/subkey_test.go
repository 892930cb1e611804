package crypto

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/0xPolygon/polygon-xt/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSubkey writes a shell script standing in for the subkey binary.
// Tests using it run sequentially: executing a freshly written file races with concurrent forks.
func fakeSubkey(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not available")
	}

	path := filepath.Join(t.TempDir(), "subkey")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0700))

	return path
}

func TestSubkeySigner_Sign(t *testing.T) {
	sig := strings.Repeat("ab", 64)
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	stdinFile := filepath.Join(dir, "stdin")

	bin := fakeSubkey(t, `echo "$@" > `+argsFile+`
cat > `+stdinFile+`
echo 0x`+sig)

	account := types.AccountID{1}
	signer := NewSubkeySigner(nil, bin, "//Alice", types.SchemeSr25519, account)

	out, err := signer.Sign(context.Background(), account, []byte{0xde, 0xad})
	require.NoError(t, err)

	assert.Equal(t, types.SchemeSr25519, out.Scheme)
	assert.Equal(t, strings.Repeat("\xab", 64), string(out.Signature))

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "sign --hex --scheme Sr25519 --suri //Alice\n", string(args))

	stdin, err := os.ReadFile(stdinFile)
	require.NoError(t, err)
	assert.Equal(t, "dead", string(stdin))
}

func TestSubkeySigner_Errors(t *testing.T) {
	account := types.AccountID{1}

	t.Run("wrong account", func(t *testing.T) {
		signer := NewSubkeySigner(nil, fakeSubkey(t, "exit 0"), "//Alice", types.SchemeSr25519, account)

		_, err := signer.Sign(context.Background(), types.AccountID{2}, nil)
		assert.ErrorIs(t, err, ErrUnknownAccount)
	})

	t.Run("tool failure", func(t *testing.T) {
		signer := NewSubkeySigner(nil, fakeSubkey(t, "echo 'Invalid secret URI' >&2\nexit 1"), "bad", types.SchemeSr25519, account)

		_, err := signer.Sign(context.Background(), account, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid secret URI")
		assert.Contains(t, err.Error(), "code 1")
	})

	t.Run("short signature", func(t *testing.T) {
		signer := NewSubkeySigner(nil, fakeSubkey(t, "cat >/dev/null\necho abcd"), "//Alice", types.SchemeEd25519, account)

		_, err := signer.Sign(context.Background(), account, nil)
		assert.Error(t, err)
	})

	t.Run("missing binary", func(t *testing.T) {
		signer := NewSubkeySigner(nil, filepath.Join(t.TempDir(), "nope"), "//Alice", types.SchemeEd25519, account)

		_, err := signer.Sign(context.Background(), account, nil)
		assert.ErrorContains(t, err, "failed to run subkey")
	})
}
