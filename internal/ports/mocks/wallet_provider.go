// Package mocks provides hand-rolled, configurable test doubles for the
// port interfaces.
package mocks

import (
	"bytes"
	"context"
	"sync"

	"github.com/mr-tron/base58"

	"github.com/bnema/solana-wallet-cli/internal/domain"
	"github.com/bnema/solana-wallet-cli/internal/ports"
)

// Address returns a syntactically valid base58 account address derived
// from the fill byte.
func Address(fill byte) domain.Address {
	return domain.Address(base58.Encode(bytes.Repeat([]byte{fill}, 32)))
}

type WalletProvider struct {
	AvailableResult bool
	Account         domain.Address
	Key             []byte
	ConnectErr      error
	DisconnectErr   error

	mu              sync.Mutex
	connected       bool
	ConnectCalls    int
	DisconnectCalls int

	handlersMu sync.Mutex
	handlers   map[domain.WalletEvent]map[int]func()
	nextSub    int
}

var _ ports.WalletProvider = (*WalletProvider)(nil)

func NewWalletProvider(account domain.Address) *WalletProvider {
	return &WalletProvider{
		AvailableResult: true,
		Account:         account,
		handlers:        map[domain.WalletEvent]map[int]func(){},
	}
}

func (p *WalletProvider) Available(context.Context) bool {
	return p.AvailableResult
}

func (p *WalletProvider) Connect(context.Context) (domain.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ConnectCalls++
	if p.ConnectErr != nil {
		return "", p.ConnectErr
	}
	p.connected = true

	return p.Account, nil
}

func (p *WalletProvider) Disconnect(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.DisconnectCalls++
	if p.DisconnectErr != nil {
		return p.DisconnectErr
	}
	p.connected = false

	return nil
}

func (p *WalletProvider) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.connected
}

func (p *WalletProvider) Address() domain.Address {
	return p.Account
}

func (p *WalletProvider) Keypair(context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected {
		return nil, domain.ErrNotConnected
	}

	return p.Key, nil
}

func (p *WalletProvider) Subscribe(event domain.WalletEvent, handler func()) func() {
	p.handlersMu.Lock()
	defer p.handlersMu.Unlock()

	if p.handlers[event] == nil {
		p.handlers[event] = map[int]func(){}
	}
	id := p.nextSub
	p.nextSub++
	p.handlers[event][id] = handler

	return func() {
		p.handlersMu.Lock()
		defer p.handlersMu.Unlock()

		delete(p.handlers[event], id)
	}
}

// EmitDisconnect simulates the provider dropping the session on its own.
func (p *WalletProvider) EmitDisconnect() {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()

	p.handlersMu.Lock()
	snapshot := make([]func(), 0, len(p.handlers[domain.WalletEventDisconnect]))
	for _, handler := range p.handlers[domain.WalletEventDisconnect] {
		snapshot = append(snapshot, handler)
	}
	p.handlersMu.Unlock()

	for _, handler := range snapshot {
		handler()
	}
}
