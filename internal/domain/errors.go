package domain

import (
	"errors"
	"fmt"
)

var (
	// Wallet errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account external reference already in use")
	ErrAccountBanned     = errors.New("account is banned")
	ErrNothingToRollback = errors.New("nothing to rollback")
	ErrAlreadySettled    = errors.New("bet already settled")
	ErrBetNotFound       = errors.New("bet not found")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrInvalidSignature  = errors.New("invalid signature")

	// Request errors
	ErrInvalidRequest  = errors.New("invalid request")
	ErrRecordNotFound  = errors.New("idempotency record not found")
	ErrVersionConflict = errors.New("account version conflict")
	// ErrWriteConflict marks a commit that lost a uniqueness race. Retrying
	// re-reads the winner's state.
	ErrWriteConflict = errors.New("conflicting concurrent write")

	// Transfer errors
	ErrSameAccount      = errors.New("cannot transfer to same account")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrTransferNotFound = errors.New("transfer not found")
)

// DuplicateRequestError reports a callback whose effect was already applied.
// Prior holds the result recorded the first time.
type DuplicateRequestError struct {
	Prior *OperationResult
}

func (e *DuplicateRequestError) Error() string {
	if e.Prior == nil {
		return ErrDuplicateRequest.Error()
	}
	return fmt.Sprintf("%s: %s/%s already applied", ErrDuplicateRequest, e.Prior.ExternalTxnRef, e.Prior.OpKind)
}

// Is makes errors.Is(err, ErrDuplicateRequest) match.
func (e *DuplicateRequestError) Is(target error) bool {
	return target == ErrDuplicateRequest
}

// AsDuplicate extracts the prior result from a duplicate error.
func AsDuplicate(err error) (*OperationResult, bool) {
	var dup *DuplicateRequestError
	if errors.As(err, &dup) {
		return dup.Prior, true
	}
	return nil, false
}
