package domain

import (
	"context"
	"errors"
)

// Lookup pipeline errors. Producers wrap these with fmt.Errorf("%w: ...").
var (
	// ErrDerivationExhausted is returned when no bump yields an off-curve address.
	ErrDerivationExhausted = errors.New("derivation exhausted")

	// ErrFetchFailed is returned on ledger transport or RPC failures.
	// Callers may retry; the pipeline never does.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrAccountNotFound is returned when a required account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrMalformedAccount is returned when account bytes violate the expected layout.
	ErrMalformedAccount = errors.New("malformed account")

	// ErrMetadataMismatch is returned when a metadata account references a different mint.
	ErrMetadataMismatch = errors.New("metadata mismatch")

	// ErrURIUnreachable is returned when the off-chain document cannot be fetched.
	ErrURIUnreachable = errors.New("uri unreachable")

	// ErrURIInvalidJSON is returned when the off-chain document is not a JSON object.
	ErrURIInvalidJSON = errors.New("uri invalid json")
)

// Reason classifies a stage failure for reporting.
type Reason string

const (
	ReasonDerivationExhausted Reason = "DerivationExhausted"
	ReasonFetchFailed         Reason = "FetchFailed"
	ReasonAccountNotFound     Reason = "AccountNotFound"
	ReasonMalformedAccount    Reason = "MalformedAccount"
	ReasonMetadataMismatch    Reason = "MetadataMismatch"
	ReasonURIUnreachable      Reason = "UriUnreachable"
	ReasonURIInvalidJSON      Reason = "UriInvalidJson"
	ReasonCanceled            Reason = "Canceled"
	ReasonUnknown             Reason = "Unknown"
)

// ReasonOf maps an error onto the taxonomy.
// Checked in order so that a wrapped cause wins over its transport wrapper.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMetadataMismatch):
		return ReasonMetadataMismatch
	case errors.Is(err, ErrMalformedAccount):
		return ReasonMalformedAccount
	case errors.Is(err, ErrDerivationExhausted):
		return ReasonDerivationExhausted
	case errors.Is(err, ErrAccountNotFound):
		return ReasonAccountNotFound
	case errors.Is(err, ErrURIInvalidJSON):
		return ReasonURIInvalidJSON
	case errors.Is(err, ErrURIUnreachable):
		return ReasonURIUnreachable
	case errors.Is(err, ErrFetchFailed):
		return ReasonFetchFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	default:
		return ReasonUnknown
	}
}
