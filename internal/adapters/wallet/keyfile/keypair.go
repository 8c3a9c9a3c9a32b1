package keyfile

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mr-tron/base58"

	"github.com/bnema/solana-wallet-cli/internal/domain"
)

const (
	keyFileMode = 0o600
	keyDirMode  = 0o700
)

// Generate creates a fresh ed25519 keypair and writes it at path in the
// Solana CLI keyfile format: a JSON array of 64 byte values. It refuses to
// overwrite an existing keyfile.
func Generate(path string) (domain.Address, error) {
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("keyfile %s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("probe keyfile: %w", err)
	}

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return "", fmt.Errorf("generate keypair: %w", err)
	}

	if err := WriteKeypair(path, priv); err != nil {
		return "", err
	}

	return domain.Address(base58.Encode(pub)), nil
}

func WriteKeypair(path string, key ed25519.PrivateKey) error {
	if len(key) != ed25519.PrivateKeySize {
		return fmt.Errorf("keypair length %d, want %d", len(key), ed25519.PrivateKeySize)
	}

	if err := os.MkdirAll(filepath.Dir(path), keyDirMode); err != nil {
		return fmt.Errorf("create wallet directory: %w", err)
	}

	values := make([]int, len(key))
	for i, b := range key {
		values[i] = int(b)
	}

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode keyfile: %w", err)
	}

	if err := os.WriteFile(path, data, keyFileMode); err != nil {
		return fmt.Errorf("write keyfile: %w", err)
	}

	return nil
}

// ReadKeypair loads and validates a Solana CLI keyfile.
func ReadKeypair(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return decodeKeypair(data)
}

func decodeKeypair(data []byte) (ed25519.PrivateKey, error) {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse keyfile: %w", err)
	}
	if len(values) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keyfile holds %d values, want %d", len(values), ed25519.PrivateKeySize)
	}

	key := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("keyfile value at index %d out of byte range", i)
		}
		key[i] = byte(v)
	}

	return key, nil
}

// AddressOf derives the base58 public address of a keypair.
func AddressOf(key ed25519.PrivateKey) domain.Address {
	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return ""
	}

	return domain.Address(base58.Encode(pub))
}
