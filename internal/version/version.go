package version

// Version is the release version, overridden at build time via
// -ldflags "-X github.com/bnema/solana-wallet-cli/internal/version.Version=...".
var Version = "dev"
