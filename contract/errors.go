package contract

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine readable part of a failure.
type ErrorKind string

const (
	KindUnauthorized         ErrorKind = "unauthorized"
	KindInvalidIdentity      ErrorKind = "invalid_identity"
	KindInvalidRecipient     ErrorKind = "invalid_recipient"
	KindInvalidName          ErrorKind = "invalid_name"
	KindAlreadyRegistered    ErrorKind = "already_registered"
	KindNotRegistered        ErrorKind = "not_registered"
	KindNotFound             ErrorKind = "not_found"
	KindAlreadyFinalized     ErrorKind = "already_finalized"
	KindVotingClosed         ErrorKind = "voting_closed"
	KindVotingStillActive    ErrorKind = "voting_still_active"
	KindDuplicateVote        ErrorKind = "duplicate_vote"
	KindAmountOutOfRange     ErrorKind = "amount_out_of_range"
	KindInvalidDuration      ErrorKind = "invalid_duration"
	KindProposalRejected     ErrorKind = "proposal_rejected"
	KindInsufficientTreasury ErrorKind = "insufficient_treasury"
	KindTransferFailed       ErrorKind = "transfer_failed"
	KindReentrantCall        ErrorKind = "reentrant_call"
	KindNotInitialized       ErrorKind = "not_initialized"
	KindAlreadyInitialized   ErrorKind = "already_initialized"
	KindInvalidPayload       ErrorKind = "invalid_payload"
	KindUnknownAction        ErrorKind = "unknown_action"
	KindInternal             ErrorKind = "internal"
)

// Error is returned by every contract operation that rejects a call.
type Error struct {
	Kind   ErrorKind
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Reason
}

// Is matches on kind so errors.Is(err, ErrDuplicateVote) works for any reason text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) Unwrap() error { return e.cause }

// Sentinels for errors.Is.
var (
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrInvalidIdentity      = &Error{Kind: KindInvalidIdentity}
	ErrInvalidRecipient     = &Error{Kind: KindInvalidRecipient}
	ErrInvalidName          = &Error{Kind: KindInvalidName}
	ErrAlreadyRegistered    = &Error{Kind: KindAlreadyRegistered}
	ErrNotRegistered        = &Error{Kind: KindNotRegistered}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrAlreadyFinalized     = &Error{Kind: KindAlreadyFinalized}
	ErrVotingClosed         = &Error{Kind: KindVotingClosed}
	ErrVotingStillActive    = &Error{Kind: KindVotingStillActive}
	ErrDuplicateVote        = &Error{Kind: KindDuplicateVote}
	ErrAmountOutOfRange     = &Error{Kind: KindAmountOutOfRange}
	ErrInvalidDuration      = &Error{Kind: KindInvalidDuration}
	ErrProposalRejected     = &Error{Kind: KindProposalRejected}
	ErrInsufficientTreasury = &Error{Kind: KindInsufficientTreasury}
	ErrTransferFailed       = &Error{Kind: KindTransferFailed}
	ErrReentrantCall        = &Error{Kind: KindReentrantCall}
	ErrNotInitialized       = &Error{Kind: KindNotInitialized}
	ErrAlreadyInitialized   = &Error{Kind: KindAlreadyInitialized}
	ErrInvalidPayload       = &Error{Kind: KindInvalidPayload}
	ErrUnknownAction        = &Error{Kind: KindUnknownAction}
	ErrInternal             = &Error{Kind: KindInternal}
)

func fail(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// internal wraps a storage or codec failure.
func internal(err error, format string, args ...any) error {
	return &Error{Kind: KindInternal, Reason: fmt.Sprintf(format, args...) + ": " + err.Error(), cause: err}
}

// KindOf extracts the kind of err. Foreign errors report KindInternal, nil reports "".
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
