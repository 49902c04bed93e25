package domain

import (
	"errors"
	"fmt"
)

// 错误分类，handler 根据分类映射 HTTP 状态码
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrStorageFailure     = errors.New("storage failure")
	ErrForbidden          = errors.New("forbidden")
)

// 具体原因
var (
	ErrInvalidStatus          = errors.New("invalid status")
	ErrEmptyReason            = errors.New("reason must not be empty")
	ErrInvalidDate            = errors.New("invalid date")
	ErrEmptyName              = errors.New("name must not be empty")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrMalformedWorkbook      = errors.New("malformed workbook")
	ErrLocked                 = errors.New("document is locked")
	ErrNotApproved            = errors.New("cheque is not approved")
	ErrInsufficientSignatures = errors.New("insufficient signatures")
)

// Error 携带分类、具体原因和底层错误
type Error struct {
	Kind    error
	Reason  error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && errors.Is(e.Kind, ErrStorageFailure) {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 3)
	for _, err := range []error{e.Kind, e.Reason, e.Err} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// NotFound 例如 "Cheque with ID 42 not found"
func NotFound(entity string, id uint) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s with ID %d not found", entity, id),
	}
}

func Invalid(reason error, message string) *Error {
	return &Error{Kind: ErrInvalidInput, Reason: reason, Message: message}
}

// InvalidWrap 用于把下层校验错误（例如金额校验）归类为非法输入
func InvalidWrap(reason error, err error) *Error {
	return &Error{Kind: ErrInvalidInput, Reason: reason, Message: err.Error(), Err: err}
}

func Violation(reason error, message string) *Error {
	return &Error{Kind: ErrInvariantViolation, Reason: reason, Message: message}
}

func Forbidden(reason error, message string) *Error {
	return &Error{Kind: ErrForbidden, Reason: reason, Message: message}
}

// Storage 包装持久化层错误，op 描述失败的操作
func Storage(op string, err error) *Error {
	return &Error{Kind: ErrStorageFailure, Message: op, Err: err}
}

// KindOf 返回错误所属分类，无法识别时归为存储错误
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrInvalidInput, ErrInvariantViolation, ErrForbidden, ErrStorageFailure} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrStorageFailure
}
