package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/bnema/solana-wallet-cli/internal/domain"
	"github.com/bnema/solana-wallet-cli/internal/ports"
)

const (
	configName        = "config"
	configType        = "toml"
	walletsPathKey    = "wallets.path"
	walletsFileMode   = 0o600
	walletsDirMode    = 0o700
	walletsConfigDir  = ".config/sw"
	walletsConfigFile = "wallets.toml"
	tempFilePattern   = ".wallets-*.toml.tmp"
)

// Registry stores named wallet entries in a single TOML file with atomic
// replace-on-write semantics. The keyfiles themselves live elsewhere; the
// registry only records where.
type Registry struct {
	walletsPath string
	mu          *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.WalletRegistry = (*Registry)(nil)

func NewRegistry(cfg *viper.Viper) (*Registry, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, walletsConfigDir, walletsConfigFile)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, walletsConfigDir))
	cfg.SetDefault(walletsPathKey, defaultPath)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	walletsPath := cfg.GetString(walletsPathKey)
	if walletsPath == "" {
		return nil, errors.New("wallets path is empty")
	}
	walletsPath, err = normalizeWalletsPath(walletsPath)
	if err != nil {
		return nil, err
	}

	return &Registry{walletsPath: walletsPath, mu: lockForPath(walletsPath)}, nil
}

func (r *Registry) Create(ctx context.Context, wallet domain.Wallet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := wallet.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	for _, entry := range file.Wallets {
		if entry.Name == wallet.Name {
			return fmt.Errorf("wallet %q: %w", wallet.Name, domain.ErrWalletExists)
		}
	}

	file.Wallets = append(file.Wallets, toSchema(wallet))

	// The first registered wallet becomes active.
	if file.Active == "" {
		file.Active = wallet.Name
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Registry) GetByName(ctx context.Context, name string) (domain.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return domain.Wallet{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Wallet{}, err
	}

	for _, entry := range file.Wallets {
		if entry.Name == name {
			return fromSchema(entry), nil
		}
	}

	return domain.Wallet{}, fmt.Errorf("wallet %q: %w", name, domain.ErrWalletNotFound)
}

func (r *Registry) List(ctx context.Context) ([]domain.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	wallets := make([]domain.Wallet, 0, len(file.Wallets))
	for _, entry := range file.Wallets {
		wallets = append(wallets, fromSchema(entry))
	}

	return wallets, nil
}

func (r *Registry) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	kept := make([]walletSchema, 0, len(file.Wallets))
	found := false
	for _, entry := range file.Wallets {
		if entry.Name == name {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return fmt.Errorf("wallet %q: %w", name, domain.ErrWalletNotFound)
	}

	file.Wallets = kept
	if file.Active == name {
		file.Active = ""
	}

	return r.writeSchema(file)
}

func (r *Registry) Active(ctx context.Context) (domain.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return domain.Wallet{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Wallet{}, err
	}

	if file.Active == "" {
		return domain.Wallet{}, domain.ErrWalletNotFound
	}

	for _, entry := range file.Wallets {
		if entry.Name == file.Active {
			return fromSchema(entry), nil
		}
	}

	return domain.Wallet{}, fmt.Errorf("active wallet %q: %w", file.Active, domain.ErrWalletNotFound)
}

func (r *Registry) SetActive(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	found := false
	for _, entry := range file.Wallets {
		if entry.Name == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("wallet %q: %w", name, domain.ErrWalletNotFound)
	}

	file.Active = name

	return r.writeSchema(file)
}

func (r *Registry) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.walletsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read wallets file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode wallets file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Registry) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.walletsPath), walletsDirMode); err != nil {
		return fmt.Errorf("create wallets directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode wallets file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.walletsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp wallets file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp wallets file: %w", err)
	}

	if err := tempFile.Chmod(walletsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp wallets file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp wallets file: %w", err)
	}

	if err := os.Rename(tempName, r.walletsPath); err != nil {
		return fmt.Errorf("replace wallets file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(r.walletsPath, walletsFileMode); err != nil {
		return fmt.Errorf("chmod wallets file: %w", err)
	}

	return nil
}

func normalizeWalletsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve wallets path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(wallet domain.Wallet) walletSchema {
	return walletSchema{
		Name:      wallet.Name,
		Address:   string(wallet.Address),
		KeyPath:   wallet.KeyPath,
		CreatedAt: formatTime(wallet.CreatedAt),
	}
}

func fromSchema(wallet walletSchema) domain.Wallet {
	return domain.Wallet{
		Name:      wallet.Name,
		Address:   domain.Address(wallet.Address),
		KeyPath:   wallet.KeyPath,
		CreatedAt: parseTime(wallet.CreatedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}
