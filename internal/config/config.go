package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/bnema/solana-wallet-cli/internal/domain"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".config/sw"
	envPrefix  = "SW"

	keyRPCURL           = "rpc_url"
	keyCommitment       = "commitment"
	keyWalletDir        = "wallet_dir"
	keyMintAmount       = "mint_amount"
	keySendAmount       = "send_amount"
	keyTokenDecimals    = "token_decimals"
	keyHistoryLimit     = "history_limit"
	keyMinCreateBalance = "min_create_balance_sol"
	keyStatusReset      = "status_reset"
	keyOpTimeout        = "op_timeout"
	keyLogLevel         = "log_level"
	keyLogJSON          = "log_json"
)

// Defaults reproduce the product constants: devnet endpoint, confirmed
// commitment, mint 100 / send 50 at 9 decimals, 5 history entries, a
// 0.002 SOL creation reserve, and a 3-second status reset.
const (
	defaultRPCURL        = "https://api.devnet.solana.com"
	defaultCommitment    = "confirmed"
	defaultMintAmount    = 100
	defaultSendAmount    = 50
	defaultTokenDecimals = 9
	defaultHistoryLimit  = 5
	defaultMinCreateSol  = 0.002
	defaultStatusReset   = 3 * time.Second
	defaultOpTimeout     = 90 * time.Second
	defaultLogLevel      = "warn"
)

type Config struct {
	RPCURL           string
	Commitment       string
	WalletDir        string
	MintAmount       uint64
	SendAmount       uint64
	TokenDecimals    uint8
	HistoryLimit     int
	MinCreateBalance domain.Lamports
	StatusReset      time.Duration
	OpTimeout        time.Duration
	LogLevel         string
	LogJSON          bool
}

// Load resolves configuration with viper: flags bound by the caller win,
// then SW_* environment variables, then ~/.config/sw/config.toml, then the
// defaults above.
func Load(cfg *viper.Viper) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	cfg.SetEnvPrefix(envPrefix)
	cfg.AutomaticEnv()

	cfg.SetDefault(keyRPCURL, defaultRPCURL)
	cfg.SetDefault(keyCommitment, defaultCommitment)
	cfg.SetDefault(keyWalletDir, filepath.Join(homeDir, configDir, "wallets"))
	cfg.SetDefault(keyMintAmount, defaultMintAmount)
	cfg.SetDefault(keySendAmount, defaultSendAmount)
	cfg.SetDefault(keyTokenDecimals, defaultTokenDecimals)
	cfg.SetDefault(keyHistoryLimit, defaultHistoryLimit)
	cfg.SetDefault(keyMinCreateBalance, defaultMinCreateSol)
	cfg.SetDefault(keyStatusReset, defaultStatusReset)
	cfg.SetDefault(keyOpTimeout, defaultOpTimeout)
	cfg.SetDefault(keyLogLevel, defaultLogLevel)
	cfg.SetDefault(keyLogJSON, false)

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	loaded := Config{
		RPCURL:           cfg.GetString(keyRPCURL),
		Commitment:       cfg.GetString(keyCommitment),
		WalletDir:        cfg.GetString(keyWalletDir),
		MintAmount:       cfg.GetUint64(keyMintAmount),
		SendAmount:       cfg.GetUint64(keySendAmount),
		TokenDecimals:    uint8(cfg.GetUint(keyTokenDecimals)),
		HistoryLimit:     cfg.GetInt(keyHistoryLimit),
		MinCreateBalance: domain.LamportsFromSol(cfg.GetFloat64(keyMinCreateBalance)),
		StatusReset:      cfg.GetDuration(keyStatusReset),
		OpTimeout:        cfg.GetDuration(keyOpTimeout),
		LogLevel:         cfg.GetString(keyLogLevel),
		LogJSON:          cfg.GetBool(keyLogJSON),
	}

	if err := loaded.validate(); err != nil {
		return Config{}, err
	}

	return loaded, nil
}

func (c Config) validate() error {
	if c.RPCURL == "" {
		return errors.New("rpc_url is empty")
	}

	switch c.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("unsupported commitment %q", c.Commitment)
	}

	if c.MintAmount == 0 {
		return errors.New("mint_amount must be positive")
	}
	if c.SendAmount == 0 {
		return errors.New("send_amount must be positive")
	}
	if c.TokenDecimals > 18 {
		return fmt.Errorf("token_decimals %d out of range", c.TokenDecimals)
	}
	if c.HistoryLimit < 1 {
		return errors.New("history_limit must be at least 1")
	}
	if c.StatusReset <= 0 {
		return errors.New("status_reset must be positive")
	}
	if c.OpTimeout <= 0 {
		return errors.New("op_timeout must be positive")
	}

	return nil
}
