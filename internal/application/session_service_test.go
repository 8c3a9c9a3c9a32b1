package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/solana-wallet-cli/internal/domain"
	"github.com/bnema/solana-wallet-cli/internal/ports/mocks"
)

func newTestGateways(provider *mocks.WalletProvider, chain *mocks.ChainClient) (*SessionService, *TokenService) {
	tokens := NewTokenService(provider, chain, 9, domain.LamportsFromSol(0.002))
	sessions := NewSessionService(provider, chain, tokens, 5)

	return sessions, tokens
}

func testHandle() domain.TokenHandle {
	return domain.TokenHandle{Mint: mocks.Address(3), HoldingAccount: mocks.Address(4)}
}

func TestConnectPopulatesSession(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	chain := mocks.NewChainClient()
	chain.BalanceResult = domain.LamportsFromSol(5)
	sessions, _ := newTestGateways(provider, chain)

	session, err := sessions.Connect(context.Background())
	require.NoError(t, err)

	assert.True(t, session.Connected)
	assert.Equal(t, mocks.Address(1), session.Account)
	assert.Equal(t, domain.LamportsFromSol(5), session.NativeBalance)
	assert.Equal(t, session, sessions.Session())
}

func TestConnectFailsWithoutAvailableProvider(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	provider.AvailableResult = false
	chain := mocks.NewChainClient()
	sessions, _ := newTestGateways(provider, chain)

	_, err := sessions.Connect(context.Background())
	require.ErrorIs(t, err, domain.ErrProviderNotFound)

	assert.Zero(t, provider.ConnectCalls)
	assert.Zero(t, chain.CallCount("NativeBalance"))
}

func TestConnectWrapsProviderFailure(t *testing.T) {
	t.Parallel()

	rejected := errors.New("user rejected the request")
	provider := mocks.NewWalletProvider(mocks.Address(1))
	provider.ConnectErr = rejected
	sessions, _ := newTestGateways(provider, mocks.NewChainClient())

	_, err := sessions.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect failed")
	assert.ErrorIs(t, err, rejected)
	assert.False(t, sessions.Session().Connected)
}

func TestConnectBalanceFailureKeepsProviderConnected(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	chain := mocks.NewChainClient()
	chain.BalanceErr = errors.New("rpc unreachable")
	sessions, _ := newTestGateways(provider, chain)

	_, err := sessions.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect failed")

	// Partial progress stays: the provider connected, the session did not.
	assert.True(t, provider.Connected())
	assert.False(t, sessions.Session().Connected)
}

func TestConnectHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	sessions, _ := newTestGateways(provider, mocks.NewChainClient())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sessions.Connect(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, provider.ConnectCalls)
}

func TestDisconnectIsNoopWhenNotConnected(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	sessions, _ := newTestGateways(provider, mocks.NewChainClient())

	require.NoError(t, sessions.Disconnect(context.Background()))
	assert.Zero(t, provider.DisconnectCalls)
}

func TestDisconnectClearsSessionAndToken(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	sessions, tokens := newTestGateways(provider, mocks.NewChainClient())

	_, err := sessions.Connect(context.Background())
	require.NoError(t, err)
	tokens.SetToken(testHandle())

	require.NoError(t, sessions.Disconnect(context.Background()))

	assert.Equal(t, domain.Session{}, sessions.Session())
	assert.True(t, tokens.Token().IsZero())
	assert.Equal(t, 1, provider.DisconnectCalls)
}

func TestDisconnectWrapsProviderFailure(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	sessions, _ := newTestGateways(provider, mocks.NewChainClient())

	_, err := sessions.Connect(context.Background())
	require.NoError(t, err)

	provider.DisconnectErr = errors.New("provider wedged")
	err = sessions.Disconnect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disconnect failed")

	// The session survives a failed disconnect; nothing is rolled back.
	assert.True(t, sessions.Session().Connected)
}

func TestProviderInitiatedDisconnectClearsState(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	sessions, tokens := newTestGateways(provider, mocks.NewChainClient())

	_, err := sessions.Connect(context.Background())
	require.NoError(t, err)
	tokens.SetToken(testHandle())

	provider.EmitDisconnect()

	assert.Equal(t, domain.Session{}, sessions.Session())
	assert.True(t, tokens.Token().IsZero())
	assert.Zero(t, provider.DisconnectCalls)
}

func TestCloseDropsProviderSubscription(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	sessions, tokens := newTestGateways(provider, mocks.NewChainClient())

	_, err := sessions.Connect(context.Background())
	require.NoError(t, err)
	tokens.SetToken(testHandle())

	sessions.Close()
	provider.EmitDisconnect()

	assert.True(t, sessions.Session().Connected)
	assert.False(t, tokens.Token().IsZero())
}

func TestFetchHistoryReturnsNewestFirst(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	chain := mocks.NewChainClient()
	chain.Records = []domain.TransactionRecord{
		{Signature: "sig-b", Slot: 20, Time: time.Unix(1_700_000_100, 0).UTC()},
		{Signature: "sig-a", Slot: 10, Time: time.Unix(1_700_000_000, 0).UTC()},
	}
	sessions, _ := newTestGateways(provider, chain)

	_, err := sessions.Connect(context.Background())
	require.NoError(t, err)

	records, err := sessions.FetchHistory(context.Background(), provider.Address())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "sig-b", records[0].Signature)
	assert.Equal(t, 5, chain.LastLimit)
}

func TestFetchHistoryRequiresConnection(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	chain := mocks.NewChainClient()
	sessions, _ := newTestGateways(provider, chain)

	_, err := sessions.FetchHistory(context.Background(), provider.Address())
	require.ErrorIs(t, err, domain.ErrNotConnected)
	assert.Zero(t, chain.CallCount("RecentSignatures"))
}

func TestFetchHistoryWrapsChainFailure(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	chain := mocks.NewChainClient()
	chain.RecordsErr = errors.New("rpc unreachable")
	sessions, _ := newTestGateways(provider, chain)

	_, err := sessions.Connect(context.Background())
	require.NoError(t, err)

	_, err = sessions.FetchHistory(context.Background(), provider.Address())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history fetch failed")
}

func TestFetchHistoryWithNoTransactions(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	sessions, _ := newTestGateways(provider, mocks.NewChainClient())

	_, err := sessions.Connect(context.Background())
	require.NoError(t, err)

	records, err := sessions.FetchHistory(context.Background(), provider.Address())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRequestAirdropRefreshesBalance(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	chain := mocks.NewChainClient()
	chain.AirdropSignature = "sig-airdrop"
	sessions, _ := newTestGateways(provider, chain)

	_, err := sessions.Connect(context.Background())
	require.NoError(t, err)

	chain.BalanceResult = domain.LamportsFromSol(1)
	signature, err := sessions.RequestAirdrop(context.Background(), domain.LamportsFromSol(1))
	require.NoError(t, err)
	assert.Equal(t, "sig-airdrop", signature)
	assert.Equal(t, domain.LamportsFromSol(1), sessions.Session().NativeBalance)
	assert.Equal(t, domain.LamportsFromSol(1), chain.LastAirdrop)
}

func TestRequestAirdropRequiresConnection(t *testing.T) {
	t.Parallel()

	chain := mocks.NewChainClient()
	sessions, _ := newTestGateways(mocks.NewWalletProvider(mocks.Address(1)), chain)

	_, err := sessions.RequestAirdrop(context.Background(), domain.LamportsFromSol(1))
	require.ErrorIs(t, err, domain.ErrNotConnected)
	assert.Zero(t, chain.CallCount("RequestAirdrop"))
}

func TestRequestAirdropWrapsChainFailure(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	chain := mocks.NewChainClient()
	chain.AirdropErr = errors.New("faucet rate limited")
	sessions, _ := newTestGateways(provider, chain)

	_, err := sessions.Connect(context.Background())
	require.NoError(t, err)

	_, err = sessions.RequestAirdrop(context.Background(), domain.LamportsFromSol(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "airdrop failed")
}

func TestRefreshBalanceUpdatesSnapshot(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	chain := mocks.NewChainClient()
	chain.BalanceResult = domain.LamportsFromSol(1)
	sessions, _ := newTestGateways(provider, chain)

	_, err := sessions.Connect(context.Background())
	require.NoError(t, err)

	chain.BalanceResult = domain.LamportsFromSol(3)

	balance, err := sessions.RefreshBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.LamportsFromSol(3), balance)
	assert.Equal(t, domain.LamportsFromSol(3), sessions.Session().NativeBalance)
}

func TestRefreshBalanceRequiresConnection(t *testing.T) {
	t.Parallel()

	sessions, _ := newTestGateways(mocks.NewWalletProvider(mocks.Address(1)), mocks.NewChainClient())

	_, err := sessions.RefreshBalance(context.Background())
	require.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestHistoryLimitDefaultsWhenZero(t *testing.T) {
	t.Parallel()

	provider := mocks.NewWalletProvider(mocks.Address(1))
	chain := mocks.NewChainClient()
	tokens := NewTokenService(provider, chain, 9, domain.LamportsFromSol(0.002))
	sessions := NewSessionService(provider, chain, tokens, 0)

	_, err := sessions.Connect(context.Background())
	require.NoError(t, err)

	_, err = sessions.FetchHistory(context.Background(), provider.Address())
	require.NoError(t, err)
	assert.Equal(t, 5, chain.LastLimit)
}
