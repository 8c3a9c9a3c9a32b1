package domain

import "errors"

var (
	ErrProviderNotFound  = errors.New("wallet provider not found")
	ErrNotConnected      = errors.New("wallet not connected")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoToken           = errors.New("no token created")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrWalletExists      = errors.New("wallet already exists")
	ErrWalletNotFound    = errors.New("wallet not found")
)
