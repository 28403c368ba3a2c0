package domain

import (
	"github.com/pkg/errors"
)

// Dependency failures keep their direction apart on purpose: the rate limiter
// fails open, the ledger fails closed.
var (
	ErrLedgerUnavailable = errors.New("credit ledger store is unavailable")
)
