package keyfile

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/bnema/solana-wallet-cli/internal/domain"
	"github.com/bnema/solana-wallet-cli/internal/log"
	"github.com/bnema/solana-wallet-cli/internal/ports"
)

// Provider is a wallet provider backed by a local Solana CLI keyfile. The
// keypair is held in memory only while connected and zeroed on disconnect.
type Provider struct {
	keyPath string

	mu      sync.RWMutex
	key     ed25519.PrivateKey
	address domain.Address

	subMu   sync.Mutex
	subs    map[domain.WalletEvent]map[int]func()
	nextSub int
}

var _ ports.WalletProvider = (*Provider)(nil)

func NewProvider(keyPath string) *Provider {
	return &Provider{
		keyPath: keyPath,
		subs:    map[domain.WalletEvent]map[int]func(){},
	}
}

// Available reports whether a parseable keyfile is present. It never
// retains the key material it probes.
func (p *Provider) Available(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	if p.keyPath == "" {
		return false
	}

	_, err := ReadKeypair(p.keyPath)
	return err == nil
}

func (p *Provider) Connect(ctx context.Context) (domain.Address, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	if p.key != nil {
		address := p.address
		p.mu.Unlock()
		return address, nil
	}
	p.mu.Unlock()

	if p.keyPath == "" {
		return "", domain.ErrProviderNotFound
	}

	key, err := ReadKeypair(p.keyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrProviderNotFound
		}
		return "", fmt.Errorf("load wallet keypair: %w", err)
	}

	address := AddressOf(key)

	p.mu.Lock()
	p.key = key
	p.address = address
	p.mu.Unlock()

	log.Wallet.Debug().Str("address", address.Short()).Msg("wallet connected")
	p.emit(domain.WalletEventConnect)

	return address, nil
}

func (p *Provider) Disconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.key == nil {
		p.mu.Unlock()
		return nil
	}

	for i := range p.key {
		p.key[i] = 0
	}
	p.key = nil
	p.address = ""
	p.mu.Unlock()

	log.Wallet.Debug().Msg("wallet disconnected")
	p.emit(domain.WalletEventDisconnect)

	return nil
}

func (p *Provider) Connected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.key != nil
}

func (p *Provider) Address() domain.Address {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.address
}

// Keypair returns a copy of the 64-byte keypair for transaction signing.
func (p *Provider) Keypair(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.key == nil {
		return nil, domain.ErrNotConnected
	}

	out := make([]byte, len(p.key))
	copy(out, p.key)

	return out, nil
}

func (p *Provider) Subscribe(event domain.WalletEvent, handler func()) func() {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	if p.subs[event] == nil {
		p.subs[event] = map[int]func(){}
	}
	id := p.nextSub
	p.nextSub++
	p.subs[event][id] = handler

	return func() {
		p.subMu.Lock()
		defer p.subMu.Unlock()

		delete(p.subs[event], id)
	}
}

func (p *Provider) emit(event domain.WalletEvent) {
	p.subMu.Lock()
	handlers := make([]func(), 0, len(p.subs[event]))
	for _, handler := range p.subs[event] {
		handlers = append(handlers, handler)
	}
	p.subMu.Unlock()

	for _, handler := range handlers {
		handler()
	}
}
