package keyfile

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/solana-wallet-cli/internal/domain"
)

func writeTestKeypair(t *testing.T) (string, domain.Address) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wallet.json")
	address, err := Generate(path)
	require.NoError(t, err)

	return path, address
}

func TestGenerateWritesSolanaCompatibleKeyfile(t *testing.T) {
	path, address := writeTestKeypair(t)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var values []int
	require.NoError(t, json.Unmarshal(data, &values))
	require.Len(t, values, ed25519.PrivateKeySize)

	key, err := ReadKeypair(path)
	require.NoError(t, err)
	assert.Equal(t, address, AddressOf(key))
}

func TestGenerateRefusesToOverwrite(t *testing.T) {
	path, address := writeTestKeypair(t)

	_, err := Generate(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// The original keypair is untouched.
	key, err := ReadKeypair(path)
	require.NoError(t, err)
	assert.Equal(t, address, AddressOf(key))
}

func TestDecodeKeypairRejectsMalformedFiles(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "not json", data: "definitely not json", wantErr: "parse keyfile"},
		{name: "wrong length", data: "[1,2,3]", wantErr: "want 64"},
		{name: "value out of range", data: outOfRangeKeyfile(), wantErr: "out of byte range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeKeypair([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func outOfRangeKeyfile() string {
	values := make([]string, 64)
	for i := range values {
		values[i] = "1"
	}
	values[0] = "300"

	return "[" + strings.Join(values, ",") + "]"
}

func TestProviderConnectDisconnectLifecycle(t *testing.T) {
	path, address := writeTestKeypair(t)
	provider := NewProvider(path)
	ctx := context.Background()

	assert.True(t, provider.Available(ctx))
	assert.False(t, provider.Connected())

	got, err := provider.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, address, got)
	assert.True(t, provider.Connected())
	assert.Equal(t, address, provider.Address())

	key, err := provider.Keypair(ctx)
	require.NoError(t, err)
	assert.Len(t, key, ed25519.PrivateKeySize)

	// Connecting again while connected is a no-op returning the same address.
	again, err := provider.Connect(ctx)
	require.NoError(t, err)
	assert.Equal(t, address, again)

	require.NoError(t, provider.Disconnect(ctx))
	assert.False(t, provider.Connected())
	assert.True(t, provider.Address().IsZero())

	_, err = provider.Keypair(ctx)
	assert.ErrorIs(t, err, domain.ErrNotConnected)

	// Disconnecting while not connected is a no-op, not an error.
	require.NoError(t, provider.Disconnect(ctx))
}

func TestProviderConnectWithoutKeyfile(t *testing.T) {
	provider := NewProvider(filepath.Join(t.TempDir(), "missing.json"))
	ctx := context.Background()

	assert.False(t, provider.Available(ctx))

	_, err := provider.Connect(ctx)
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)

	empty := NewProvider("")
	assert.False(t, empty.Available(ctx))
	_, err = empty.Connect(ctx)
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
}

func TestProviderEventsFireAndUnsubscribe(t *testing.T) {
	path, _ := writeTestKeypair(t)
	provider := NewProvider(path)
	ctx := context.Background()

	connects := 0
	disconnects := 0
	unsubscribeConnect := provider.Subscribe(domain.WalletEventConnect, func() { connects++ })
	unsubscribeDisconnect := provider.Subscribe(domain.WalletEventDisconnect, func() { disconnects++ })

	_, err := provider.Connect(ctx)
	require.NoError(t, err)
	require.NoError(t, provider.Disconnect(ctx))
	assert.Equal(t, 1, connects)
	assert.Equal(t, 1, disconnects)

	unsubscribeConnect()
	unsubscribeDisconnect()

	_, err = provider.Connect(ctx)
	require.NoError(t, err)
	require.NoError(t, provider.Disconnect(ctx))
	assert.Equal(t, 1, connects)
	assert.Equal(t, 1, disconnects)
}

func TestProviderKeypairReturnsACopy(t *testing.T) {
	path, _ := writeTestKeypair(t)
	provider := NewProvider(path)
	ctx := context.Background()

	_, err := provider.Connect(ctx)
	require.NoError(t, err)

	first, err := provider.Keypair(ctx)
	require.NoError(t, err)
	original := first[0]
	first[0] ^= 0xFF

	second, err := provider.Keypair(ctx)
	require.NoError(t, err)
	assert.Equal(t, original, second[0])
}
