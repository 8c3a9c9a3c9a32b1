package solana

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/bnema/solana-wallet-cli/internal/domain"
	"github.com/bnema/solana-wallet-cli/internal/log"
	"github.com/bnema/solana-wallet-cli/internal/ports"
)

const (
	defaultConfirmPollInterval = time.Second
	defaultConfirmTimeout      = 60 * time.Second
)

type Config struct {
	RPCURL     string
	Commitment rpc.Commitment

	// ConfirmPollInterval is the delay between signature-status polls.
	ConfirmPollInterval time.Duration
	// ConfirmTimeout bounds the confirmation wait when the caller's
	// context carries no deadline of its own.
	ConfirmTimeout time.Duration
}

// Client implements the chain boundary against a Solana RPC endpoint.
// Submissions are confirmed at the configured commitment before the
// signature is returned.
type Client struct {
	rpc            *client.Client
	commitment     rpc.Commitment
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

var _ ports.ChainClient = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("rpc url is required")
	}

	commitment := cfg.Commitment
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}

	pollInterval := cfg.ConfirmPollInterval
	if pollInterval <= 0 {
		pollInterval = defaultConfirmPollInterval
	}

	confirmTimeout := cfg.ConfirmTimeout
	if confirmTimeout <= 0 {
		confirmTimeout = defaultConfirmTimeout
	}

	return &Client{
		rpc:            client.NewClient(cfg.RPCURL),
		commitment:     commitment,
		pollInterval:   pollInterval,
		confirmTimeout: confirmTimeout,
	}, nil
}

func CommitmentFromString(value string) (rpc.Commitment, error) {
	switch value {
	case "processed":
		return rpc.CommitmentProcessed, nil
	case "confirmed":
		return rpc.CommitmentConfirmed, nil
	case "finalized":
		return rpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("unsupported commitment %q", value)
	}
}

func (c *Client) NativeBalance(ctx context.Context, account domain.Address) (domain.Lamports, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	balance, err := c.rpc.GetBalanceWithConfig(ctx, account.String(), client.GetBalanceConfig{Commitment: c.commitment})
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return domain.Lamports(balance), nil
}

func (c *Client) TokenBalance(ctx context.Context, holdingAccount domain.Address) (domain.TokenAmount, error) {
	if err := ctx.Err(); err != nil {
		return domain.TokenAmount{}, err
	}

	balance, err := c.rpc.GetTokenAccountBalanceWithConfig(ctx, holdingAccount.String(), client.GetTokenAccountBalanceConfig{Commitment: c.commitment})
	if err != nil {
		return domain.TokenAmount{}, fmt.Errorf("get token account balance: %w", err)
	}

	return domain.TokenAmount{
		Raw:      balance.Amount,
		Decimals: balance.Decimals,
		Display:  balance.UIAmountString,
	}, nil
}

func (c *Client) RecentSignatures(ctx context.Context, account domain.Address, limit int) ([]domain.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, fmt.Errorf("history limit %d must be positive", limit)
	}

	signatures, err := c.rpc.GetSignaturesForAddressWithConfig(ctx, account.String(), client.GetSignaturesForAddressConfig{
		Limit:      limit,
		Commitment: c.commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("get signatures: %w", err)
	}

	records := make([]domain.TransactionRecord, 0, len(signatures))
	for _, signature := range signatures {
		record := domain.TransactionRecord{
			Signature: signature.Signature,
			Slot:      signature.Slot,
		}
		if signature.BlockTime != nil {
			record.Time = time.Unix(*signature.BlockTime, 0).UTC()
		}
		records = append(records, record)
	}

	return records, nil
}

// CreateToken creates a new mint with the signer as mint authority and the
// signer's associated token account for it, in a single transaction.
func (c *Client) CreateToken(ctx context.Context, signer ports.Signer, decimals uint8) (ports.CreateTokenResult, error) {
	owner, err := signerAccount(ctx, signer)
	if err != nil {
		return ports.CreateTokenResult{}, err
	}

	mint := types.NewAccount()

	rent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return ports.CreateTokenResult{}, fmt.Errorf("get rent exemption: %w", err)
	}

	holdingAccount, _, err := common.FindAssociatedTokenAddress(owner.PublicKey, mint.PublicKey)
	if err != nil {
		return ports.CreateTokenResult{}, fmt.Errorf("derive holding account: %w", err)
	}

	instructions := []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     owner.PublicKey,
			New:      mint.PublicKey,
			Owner:    common.TokenProgramID,
			Lamports: rent,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals: decimals,
			Mint:     mint.PublicKey,
			MintAuth: owner.PublicKey,
		}),
		associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 owner.PublicKey,
			Owner:                  owner.PublicKey,
			Mint:                   mint.PublicKey,
			AssociatedTokenAccount: holdingAccount,
		}),
	}

	signature, err := c.submit(ctx, []types.Account{owner, mint}, owner.PublicKey, instructions)
	if err != nil {
		return ports.CreateTokenResult{}, err
	}

	return ports.CreateTokenResult{
		Handle: domain.TokenHandle{
			Mint:           domain.Address(mint.PublicKey.ToBase58()),
			HoldingAccount: domain.Address(holdingAccount.ToBase58()),
		},
		Signature: signature,
	}, nil
}

func (c *Client) MintTokens(ctx context.Context, signer ports.Signer, handle domain.TokenHandle, rawAmount uint64) (string, error) {
	owner, err := signerAccount(ctx, signer)
	if err != nil {
		return "", err
	}

	instructions := []types.Instruction{
		token.MintTo(token.MintToParam{
			Mint:   common.PublicKeyFromString(handle.Mint.String()),
			To:     common.PublicKeyFromString(handle.HoldingAccount.String()),
			Auth:   owner.PublicKey,
			Amount: rawAmount,
		}),
	}

	return c.submit(ctx, []types.Account{owner}, owner.PublicKey, instructions)
}

// TransferTokens moves rawAmount from the handle's holding account to the
// destination owner's holding account, creating the latter when absent.
func (c *Client) TransferTokens(ctx context.Context, signer ports.Signer, handle domain.TokenHandle, destination domain.Address, rawAmount uint64) (string, error) {
	owner, err := signerAccount(ctx, signer)
	if err != nil {
		return "", err
	}

	mint := common.PublicKeyFromString(handle.Mint.String())
	source := common.PublicKeyFromString(handle.HoldingAccount.String())
	destinationOwner := common.PublicKeyFromString(destination.String())

	destinationAccount, _, err := common.FindAssociatedTokenAddress(destinationOwner, mint)
	if err != nil {
		return "", fmt.Errorf("derive destination holding account: %w", err)
	}

	instructions := make([]types.Instruction, 0, 2)

	exists, err := c.accountExists(ctx, destinationAccount)
	if err != nil {
		return "", err
	}
	if !exists {
		instructions = append(instructions, associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 owner.PublicKey,
			Owner:                  destinationOwner,
			Mint:                   mint,
			AssociatedTokenAccount: destinationAccount,
		}))
	}

	instructions = append(instructions, token.Transfer(token.TransferParam{
		From:   source,
		To:     destinationAccount,
		Auth:   owner.PublicKey,
		Amount: rawAmount,
	}))

	return c.submit(ctx, []types.Account{owner}, owner.PublicKey, instructions)
}

func (c *Client) RequestAirdrop(ctx context.Context, account domain.Address, amount domain.Lamports) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	signature, err := c.rpc.RequestAirdrop(ctx, account.String(), uint64(amount))
	if err != nil {
		return "", fmt.Errorf("request airdrop: %w", err)
	}

	if err := c.waitForConfirmation(ctx, signature); err != nil {
		return "", err
	}

	return signature, nil
}

func (c *Client) HoldingAccount(owner, mint domain.Address) (domain.Address, error) {
	holdingAccount, _, err := common.FindAssociatedTokenAddress(
		common.PublicKeyFromString(owner.String()),
		common.PublicKeyFromString(mint.String()),
	)
	if err != nil {
		return "", fmt.Errorf("derive holding account: %w", err)
	}

	return domain.Address(holdingAccount.ToBase58()), nil
}

func (c *Client) submit(ctx context.Context, signers []types.Account, feePayer common.PublicKey, instructions []types.Instruction) (string, error) {
	recent, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: signers,
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        feePayer,
			RecentBlockhash: recent.Blockhash,
			Instructions:    instructions,
		}),
	})
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	signature, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	log.Chain.Debug().Str("signature", shortenSignature(signature)).Msg("transaction submitted")

	if err := c.waitForConfirmation(ctx, signature); err != nil {
		return "", err
	}

	return signature, nil
}

func (c *Client) waitForConfirmation(ctx context.Context, signature string) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.confirmTimeout)
		defer cancel()
	}

	for {
		status, err := c.rpc.GetSignatureStatus(ctx, signature)
		if err != nil {
			return fmt.Errorf("get signature status: %w", err)
		}
		if status != nil {
			if status.Err != nil {
				return fmt.Errorf("transaction failed on chain: %v", status.Err)
			}
			if status.ConfirmationStatus != nil && commitmentReached(*status.ConfirmationStatus, c.commitment) {
				log.Chain.Debug().Str("signature", shortenSignature(signature)).Msg("transaction confirmed")
				return nil
			}
		}

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("confirm transaction: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

func (c *Client) accountExists(ctx context.Context, account common.PublicKey) (bool, error) {
	info, err := c.rpc.GetAccountInfo(ctx, account.ToBase58())
	if err != nil {
		if isNotFoundErr(err) {
			return false, nil
		}
		return false, fmt.Errorf("get account info: %w", err)
	}

	// Some RPC backends report a missing account as a null value rather
	// than an error; the zero owner marks that case.
	return info.Owner != (common.PublicKey{}), nil
}

func signerAccount(ctx context.Context, signer ports.Signer) (types.Account, error) {
	if signer == nil {
		return types.Account{}, errors.New("signer is required")
	}

	raw, err := signer.Keypair(ctx)
	if err != nil {
		return types.Account{}, err
	}

	account, err := types.AccountFromBytes(raw)
	if err != nil {
		return types.Account{}, fmt.Errorf("load signer account: %w", err)
	}

	return account, nil
}

func isNotFoundErr(err error) bool {
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "not found") || strings.Contains(message, "could not find")
}

func shortenSignature(signature string) string {
	if len(signature) <= 10 {
		return signature
	}

	return signature[:6] + "…" + signature[len(signature)-4:]
}

func commitmentReached(current, target rpc.Commitment) bool {
	rank := map[rpc.Commitment]int{
		rpc.CommitmentProcessed: 0,
		rpc.CommitmentConfirmed: 1,
		rpc.CommitmentFinalized: 2,
	}

	currentRank, ok := rank[current]
	if !ok {
		return false
	}

	return currentRank >= rank[target]
}
