// Package version holds build metadata injected at link time.
package version

// Version is overridden with -ldflags "-X github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/version.Version=..."
var Version = "dev"
