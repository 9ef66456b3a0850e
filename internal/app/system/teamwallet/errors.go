// internal/app/system/teamwallet/errors.go
package teamwallet

import (
	"errors"
	"fmt"
)

// Stable machine-readable error codes. API callers match on these; the
// strings never change.
const (
	CodeWorkspaceNotFound       = "WORKSPACE_NOT_FOUND"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeWalletAlreadyExists     = "WALLET_ALREADY_EXISTS"
	CodeWalletNotInitialized    = "WALLET_NOT_INITIALIZED"
	CodeAccountFrozen           = "ACCOUNT_FROZEN"
	CodeInsufficientBalance     = "INSUFFICIENT_BALANCE"
	CodeTokenRequestNotFound    = "TOKEN_REQUEST_NOT_FOUND"
	CodeAuditRecordNotFound     = "AUDIT_RECORD_NOT_FOUND"
	CodeValidationError         = "VALIDATION_ERROR"
	CodeUserNotMember           = "USER_NOT_MEMBER"
	CodeUserAlreadyMember       = "USER_ALREADY_MEMBER"
	CodeRateLimitExceeded       = "RATE_LIMIT_EXCEEDED"
	CodeTransactionError        = "TRANSACTION_ERROR"
	CodeTeamWalletError         = "TEAM_WALLET_ERROR"
)

// Error is the typed failure every wallet operation returns for business
// rule violations. Code is stable; Message is human-readable and safe to
// show to callers. The wrapped cause, if any, stays internal.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// infraError marks storage or transfer-system failures that are not
// business rule violations.
func infraError(op string, err error) *Error {
	return &Error{Code: CodeTransactionError, Message: op + " failed", Err: err}
}

// CodeOf extracts the stable error code from err, or "" when err is not a
// wallet error.
func CodeOf(err error) string {
	var we *Error
	if errors.As(err, &we) {
		return we.Code
	}
	return ""
}

// IsCode reports whether err carries the given wallet error code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
