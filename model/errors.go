package model

import (
	"errors"
	"fmt"

	"xdao.co/reservecid/errs"
	"xdao.co/reservecid/storage"
)

type ErrorCode string

const (
	ErrInvalidRequest        ErrorCode = "INVALID_REQUEST"
	ErrInvalidCID            ErrorCode = "INVALID_CID"
	ErrInvalidReserveAddress ErrorCode = "INVALID_RESERVE_ADDRESS"
	ErrInvalidURL            ErrorCode = "INVALID_URL"
	ErrNotFound              ErrorCode = "NOT_FOUND"
	ErrCIDMismatch           ErrorCode = "CID_MISMATCH"
	ErrInternal              ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	RuleID  string    `json:"ruleId,omitempty"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// ErrorFrom classifies err. Codec errors keep their rule id.
func ErrorFrom(err error) *CodedError {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}
	out := &CodedError{Code: ErrInternal, Message: err.Error(), RuleID: errs.RuleID(err)}
	switch errs.KindOf(err) {
	case errs.KindInvalidCID:
		out.Code = ErrInvalidCID
	case errs.KindInvalidReserveAddress:
		out.Code = ErrInvalidReserveAddress
	case errs.KindInvalidURL:
		out.Code = ErrInvalidURL
	case errs.KindInvalidCharacter:
		out.Code = ErrInvalidRequest
	default:
		switch {
		case errors.Is(err, storage.ErrNotFound):
			out.Code = ErrNotFound
		case errors.Is(err, storage.ErrInvalidCID):
			out.Code = ErrInvalidCID
		case errors.Is(err, storage.ErrCIDMismatch), errors.Is(err, storage.ErrImmutable):
			out.Code = ErrCIDMismatch
		}
	}
	return out
}
