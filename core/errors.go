package core

import (
	"errors"
	"fmt"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrGrantNotFound       = errors.New("recurring grant not found")
	ErrOptimisticLock      = errors.New("optimistic lock failed")
)

type WalletResolutionError struct {
	URL string
	Err error
}

func (e *WalletResolutionError) Error() string {
	return fmt.Sprintf("resolve wallet address %s: %v", e.URL, e.Err)
}

func (e *WalletResolutionError) Unwrap() error { return e.Err }

type GrantRequestError struct {
	AuthServer string
	Status     int
	Err        error
}

func (e *GrantRequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("grant request to %s: status %d: %v", e.AuthServer, e.Status, e.Err)
	}

	return fmt.Sprintf("grant request to %s: %v", e.AuthServer, e.Err)
}

func (e *GrantRequestError) Unwrap() error { return e.Err }

// HashVerificationError is fatal: continuation must never run after it.
type HashVerificationError struct {
	ID string
}

func (e *HashVerificationError) Error() string {
	return fmt.Sprintf("finish hash mismatch for %s", e.ID)
}

type GrantContinuationError struct {
	ContinueURI string
	Status      int
	Err         error
}

func (e *GrantContinuationError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("grant continuation at %s: status %d: %v", e.ContinueURI, e.Status, e.Err)
	}

	return fmt.Sprintf("grant continuation at %s: %v", e.ContinueURI, e.Err)
}

func (e *GrantContinuationError) Unwrap() error { return e.Err }

type QuoteError struct {
	Reason string
	Want   *Amount
	Got    *Amount
}

func (e *QuoteError) Error() string {
	if e.Want != nil && e.Got != nil {
		return fmt.Sprintf("quote: %s: want %s, got %s", e.Reason, *e.Want, *e.Got)
	}

	return fmt.Sprintf("quote: %s", e.Reason)
}

type PaymentCreationError struct {
	Kind   string // "incoming-payment" or "outgoing-payment"
	Status int
	Err    error
}

func (e *PaymentCreationError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("create %s: status %d: %v", e.Kind, e.Status, e.Err)
	}

	return fmt.Sprintf("create %s: %v", e.Kind, e.Err)
}

func (e *PaymentCreationError) Unwrap() error { return e.Err }

// RecurringDoneError is the terminal answer to executing an installment on
// an exhausted or revoked grant; callers must not treat it as transient.
type RecurringDoneError struct {
	ID    string
	State RecurringState
}

func (e *RecurringDoneError) Error() string {
	return fmt.Sprintf("recurring grant %s is %s", e.ID, e.State)
}
