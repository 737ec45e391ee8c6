package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNetwork is returned when no network descriptor matches a logical name
	ErrUnknownNetwork = errors.New("unknown network")
	// ErrUnknownClientKind is returned for a client kind outside the supported set
	ErrUnknownClientKind = errors.New("unknown client kind")
	// ErrTemplateNotFound is returned when a template does not exist
	ErrTemplateNotFound = errors.New("template not found")
	// ErrContractNotFound is returned when no active contract serves a template network
	ErrContractNotFound = errors.New("contract not found")
	// ErrHolderNotFound is returned when a holder does not exist
	ErrHolderNotFound = errors.New("holder not found")
	// ErrPaymentNotFound is returned when no payment request matches an external id
	ErrPaymentNotFound = errors.New("payment request not found")
	// ErrAssetNotFound is returned when a minted asset record does not exist
	ErrAssetNotFound = errors.New("minted asset not found")

	// ErrCapExceeded is returned when a mint would take a template past its cap
	ErrCapExceeded = errors.New("cap exceeded")
	// ErrHolderUnresolvable is returned when no holder address can be derived
	ErrHolderUnresolvable = errors.New("holder unresolvable")
	// ErrTemplateNotForSale is returned when a quote is requested for a template not sold in game
	ErrTemplateNotForSale = errors.New("template is not for sale")
	// ErrTemplateScopeMismatch is returned when a template belongs to another scope
	ErrTemplateScopeMismatch = errors.New("template does not belong to scope")
	// ErrTemplateNotActive is returned when minting from a template that is not active
	ErrTemplateNotActive = errors.New("template is not active")
	// ErrInvalidAmount is returned for a zero mint amount
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidPaymentState is returned when a payment request is not in the state an operation expects
	ErrInvalidPaymentState = errors.New("invalid payment request state")

	// ErrAssetNotPending is returned when finalizing an asset record that already left pending
	ErrAssetNotPending = errors.New("minted asset is not pending")
	// ErrPaymentAlreadySettled is returned when a completion arrives for a terminal payment request
	ErrPaymentAlreadySettled = errors.New("payment request already settled")

	// ErrCorrelationTimeout marks a confirmation that did not arrive within the listener TTL
	ErrCorrelationTimeout = errors.New("correlation timeout")
	// ErrEventStreamUnsupported is returned by back-ends without a live event feed
	ErrEventStreamUnsupported = errors.New("event stream unsupported")
	// ErrSignerNotConfigured is returned when no signing key matches a contract owner
	ErrSignerNotConfigured = errors.New("signer not configured")
	// ErrUnsupportedOperation is returned when a back-end cannot perform an operation
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrListenerClosed is delivered to awaiting callers when the correlator shuts down
	ErrListenerClosed = errors.New("listener closed")
)

// ErrorKind classifies errors surfaced to the web layer
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindCapExceeded        ErrorKind = "cap_exceeded"
	KindNotFound           ErrorKind = "not_found"
	KindUpstream           ErrorKind = "upstream"
	KindCorrelationTimeout ErrorKind = "correlation_timeout"
	KindInternal           ErrorKind = "internal"
)

// Error is a classified error. Op names the failed operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Upstream wraps a failed call to a chain, processor, custody or storage back-end
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindUpstream, Op: op, Err: err}
}

// Validation wraps an input error rejected before any external call
func Validation(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// KindOf returns the classification of err
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	switch {
	case errors.Is(err, ErrCapExceeded):
		return KindCapExceeded
	case errors.Is(err, ErrCorrelationTimeout):
		return KindCorrelationTimeout
	case errors.Is(err, ErrTemplateNotFound),
		errors.Is(err, ErrContractNotFound),
		errors.Is(err, ErrHolderNotFound),
		errors.Is(err, ErrPaymentNotFound),
		errors.Is(err, ErrAssetNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnknownNetwork),
		errors.Is(err, ErrUnknownClientKind),
		errors.Is(err, ErrHolderUnresolvable),
		errors.Is(err, ErrTemplateNotForSale),
		errors.Is(err, ErrTemplateScopeMismatch),
		errors.Is(err, ErrTemplateNotActive),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidPaymentState),
		errors.Is(err, ErrPaymentAlreadySettled),
		errors.Is(err, ErrUnsupportedOperation):
		return KindValidation
	default:
		return KindInternal
	}
}

// IsClientError reports whether err maps to a 4xx response
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindCapExceeded, KindNotFound:
		return true
	default:
		return false
	}
}
