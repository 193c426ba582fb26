// Package errs defines the structured error type shared by the codec
// packages (codec/*, cid, reserve, locator).
//
// Callers should branch on Kind/RuleID rather than matching error strings.
// Error() strings are human-readable and may evolve.
package errs

import "errors"

// Kind is a stable category for programmatic error handling.
type Kind string

const (
	// KindInvalidCID covers bad prefixes, lengths, multihash headers and codec tags.
	KindInvalidCID Kind = "InvalidCID"
	// KindInvalidReserveAddress covers bad symbols, decoded length and checksum mismatch.
	KindInvalidReserveAddress Kind = "InvalidReserveAddress"
	// KindInvalidURL covers the scheme separator, unknown schemes and missing identifiers.
	KindInvalidURL Kind = "InvalidURL"
	// KindInvalidCharacter is the codec-level kind; it usually appears as the
	// Cause of one of the kinds above.
	KindInvalidCharacter Kind = "InvalidCharacter"
)

// Kinds lists every Kind, in declaration order.
var Kinds = []Kind{KindInvalidCID, KindInvalidReserveAddress, KindInvalidURL, KindInvalidCharacter}

// Error is the structured error returned by every parse/encode operation.
//
// RuleID is a stable identifier (e.g. RCID-CID-003) naming the violated rule.
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New returns a *Error without a cause.
func New(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

// Wrap returns a *Error carrying cause. A nil cause behaves like New.
func Wrap(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return New(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err, or any *Error in its cause chain, has the given Kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// KindOf returns the Kind of the outermost *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
