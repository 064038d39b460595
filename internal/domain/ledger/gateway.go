package ledger

import (
	"context"
	"errors"
	"math/big"

	"github.com/wanderquest-labs/backend/internal/entity"
)

// Gateway is the synchronous interface to the external ledger. It owns no
// persistent state and performs no retries: every call either yields a
// transaction hash pending confirmation or a classified error.
type Gateway interface {
	// Transfer submits a token transfer of amount WANDER units to the wallet.
	Transfer(ctx context.Context, to string, amount float64) (SubmitReceipt, error)

	// Mint submits a collectible mint of the given token id to the wallet.
	// The kind selects the passport or achievement contract.
	Mint(ctx context.Context, to string, tokenID int64, kind entity.MintKind) (SubmitReceipt, error)

	// BalanceOf reads the WANDER balance of an account.
	BalanceOf(ctx context.Context, account string) (*big.Int, error)

	// NFTBalanceOf reads how many instances of a collectible token id the
	// account holds on the given kind's contract.
	NFTBalanceOf(ctx context.Context, account string, tokenID int64, kind entity.MintKind) (*big.Int, error)
}

type SubmitReceipt struct {
	TxHash string
}

type ErrorClass int

const (
	// UserRejected means the wallet owner declined signing. Not retryable.
	UserRejected ErrorClass = iota + 1

	// Transient covers RPC and network failures. The same request may be
	// retried; no transaction reached the ledger.
	Transient

	// ChainRejected means the ledger reverted the transaction. Retrying
	// requires a fresh request.
	ChainRejected
)

type SubmitError struct {
	Class ErrorClass
	Err   error
}

func NewSubmitError(class ErrorClass, err error) *SubmitError {
	return &SubmitError{Class: class, Err: err}
}

func (e *SubmitError) Error() string {
	return e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// ClassOf extracts the error class of a gateway failure. Unclassified
// errors are treated as transient, the safe default before submission.
func ClassOf(err error) ErrorClass {
	var submitErr *SubmitError
	if errors.As(err, &submitErr) {
		return submitErr.Class
	}

	return Transient
}
