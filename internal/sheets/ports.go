// Package sheets defines the outbound ledger port. The worker exports
// transactions through it; google and memory provide the adapters.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// LedgerWriter appends one transaction to the external ledger and returns
// an adapter-specific row reference.
type LedgerWriter interface {
	Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
}
