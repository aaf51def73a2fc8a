package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
// Provider- and backend-specific error shapes are translated into this
// closed set at the adapter boundary; no caller inspects raw provider errors.
type ErrorCode string

const (
	// ErrCodeInvalidCredentials indicates every credential source rejected the secret.
	ErrCodeInvalidCredentials ErrorCode = "invalid_credentials"
	// ErrCodeUnauthorized indicates the caller authenticated but holds the wrong role.
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	// ErrCodeNetwork indicates a transport-level failure reaching a collaborator.
	ErrCodeNetwork ErrorCode = "network"
	// ErrCodeOtpFlow indicates a password-reset step was rejected or taken out of order.
	ErrCodeOtpFlow ErrorCode = "otp_flow"
	// ErrCodeStorage indicates a durable vault read or write failed. Non-fatal.
	ErrCodeStorage ErrorCode = "storage"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError is a structured application error with a code, message, and
// optional cause. It supports errors.Is and errors.As via Unwrap.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// InvalidCredentials creates an invalid-credentials error.
func InvalidCredentials(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidCredentials, Message: message}
}

// Unauthorized creates a wrong-role authorization error.
func Unauthorized(message string) *AppError {
	return &AppError{Code: ErrCodeUnauthorized, Message: message}
}

// Network creates a transport-failure error.
func Network(message string) *AppError {
	return &AppError{Code: ErrCodeNetwork, Message: message}
}

// OtpFlow creates a password-reset flow error.
func OtpFlow(message string) *AppError {
	return &AppError{Code: ErrCodeOtpFlow, Message: message}
}

// Storage creates a durable-storage error.
func Storage(message string) *AppError {
	return &AppError{Code: ErrCodeStorage, Message: message}
}

// Validation creates an invalid-input error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Internal creates an internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates an internal error with a formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsInvalidCredentials checks if an error is an invalid-credentials error.
func IsInvalidCredentials(err error) bool {
	return isCode(err, ErrCodeInvalidCredentials)
}

// IsUnauthorized checks if an error is a wrong-role authorization error.
func IsUnauthorized(err error) bool {
	return isCode(err, ErrCodeUnauthorized)
}

// IsNetwork checks if an error is a transport-failure error.
func IsNetwork(err error) bool {
	return isCode(err, ErrCodeNetwork)
}

// IsOtpFlow checks if an error is a password-reset flow error.
func IsOtpFlow(err error) bool {
	return isCode(err, ErrCodeOtpFlow)
}

// IsStorage checks if an error is a durable-storage error.
func IsStorage(err error) bool {
	return isCode(err, ErrCodeStorage)
}

// IsValidation checks if an error is an invalid-input error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsInternal checks if an error is an internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
