package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/solana-wallet-cli/internal/domain"
)

func newTestRegistry(t *testing.T, walletsPath string) *Registry {
	t.Helper()

	config := viper.New()
	config.Set("wallets.path", walletsPath)

	registry, err := NewRegistry(config)
	require.NoError(t, err)

	return registry
}

func TestRegistryRoundTrip(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, filepath.Join(t.TempDir(), "wallets.toml"))

	first := domain.Wallet{
		Name:      "main",
		Address:   "6y4eBGeTYEzjWWsCmQYGUmLrdp2GEZBzRN3gVSPnUUXP",
		KeyPath:   "/keys/main.json",
		CreatedAt: time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC),
	}
	second := domain.Wallet{
		Name:    "faucet",
		Address: "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
		KeyPath: "/keys/faucet.json",
	}

	require.NoError(t, registry.Create(context.Background(), first))
	require.NoError(t, registry.Create(context.Background(), second))

	got, err := registry.GetByName(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	wallets, err := registry.List(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.Wallet{first, second}, wallets)
}

func TestRegistryCreateRejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, filepath.Join(t.TempDir(), "wallets.toml"))
	wallet := domain.Wallet{Name: "main", KeyPath: "/keys/main.json"}

	require.NoError(t, registry.Create(context.Background(), wallet))

	err := registry.Create(context.Background(), wallet)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWalletExists)
}

func TestRegistryFirstWalletBecomesActive(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, filepath.Join(t.TempDir(), "wallets.toml"))

	_, err := registry.Active(context.Background())
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)

	require.NoError(t, registry.Create(context.Background(), domain.Wallet{Name: "main", KeyPath: "/keys/main.json"}))
	require.NoError(t, registry.Create(context.Background(), domain.Wallet{Name: "other", KeyPath: "/keys/other.json"}))

	active, err := registry.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", active.Name)

	require.NoError(t, registry.SetActive(context.Background(), "other"))
	active, err = registry.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "other", active.Name)

	err = registry.SetActive(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestRegistryRemoveClearsActive(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, filepath.Join(t.TempDir(), "wallets.toml"))

	require.NoError(t, registry.Create(context.Background(), domain.Wallet{Name: "main", KeyPath: "/keys/main.json"}))
	require.NoError(t, registry.Remove(context.Background(), "main"))

	_, err := registry.Active(context.Background())
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)

	err = registry.Remove(context.Background(), "main")
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestRegistryCreateDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	registry, err := NewRegistry(viper.New())
	require.NoError(t, err)

	require.NoError(t, registry.Create(context.Background(), domain.Wallet{Name: "main", KeyPath: "/keys/main.json"}))

	walletsPath := filepath.Join(homeDir, ".config", "sw", "wallets.toml")
	info, err := os.Stat(walletsPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRegistryMissingFileBehaviors(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, filepath.Join(t.TempDir(), "missing", "wallets.toml"))

	wallets, err := registry.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, wallets)

	_, err = registry.GetByName(context.Background(), "main")
	require.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestRegistryMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	walletsPath := filepath.Join(t.TempDir(), "wallets.toml")
	require.NoError(t, os.WriteFile(walletsPath, []byte("wallets = ["), 0o600))

	registry := newTestRegistry(t, walletsPath)

	_, err := registry.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode wallets file")
}

func TestRegistryCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, filepath.Join(t.TempDir(), "wallets.toml"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := registry.Create(ctx, domain.Wallet{Name: "main", KeyPath: "/keys/main.json"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRegistryConcurrentCreatesAcrossInstancesPreserveAllWallets(t *testing.T) {
	t.Parallel()

	walletsPath := filepath.Join(t.TempDir(), "wallets.toml")

	registryA := newTestRegistry(t, walletsPath)
	registryB := newTestRegistry(t, walletsPath)

	const perRegistryWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perRegistryWrites*2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < perRegistryWrites; i++ {
			errCh <- registryA.Create(context.Background(), domain.Wallet{Name: "a-" + strconv.Itoa(i), KeyPath: "/keys/a.json"})
		}
	}()

	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < perRegistryWrites; i++ {
			errCh <- registryB.Create(context.Background(), domain.Wallet{Name: "b-" + strconv.Itoa(i), KeyPath: "/keys/b.json"})
		}
	}()

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	wallets, err := registryA.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, wallets, perRegistryWrites*2)
}

func TestRegistryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	walletsPath := filepath.Join(t.TempDir(), "wallets.toml")
	require.NoError(t, os.WriteFile(walletsPath, []byte(strings.Join([]string{
		"version = 999",
		"",
		"wallets = []",
		"",
	}, "\n")), 0o600))

	registry := newTestRegistry(t, walletsPath)

	_, err := registry.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported wallets schema version")
}
