// internal/app/features/wallet/respond.go
package wallet

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/secondbraindb/sbdwallet/internal/app/system/teamwallet"
	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a wallet error to its HTTP status and stable code.
// Non-wallet errors are reported as TEAM_WALLET_ERROR without leaking
// internals.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var we *teamwallet.Error
	if !errors.As(err, &we) {
		log.Error("unclassified wallet failure", zap.Error(err))
		we = &teamwallet.Error{Code: teamwallet.CodeTeamWalletError, Message: "operation failed"}
	}

	var body errorBody
	body.Error.Code = we.Code
	body.Error.Message = we.Message
	writeJSON(w, statusFor(we.Code), body)
}

func statusFor(code string) int {
	switch code {
	case teamwallet.CodeWorkspaceNotFound,
		teamwallet.CodeTokenRequestNotFound,
		teamwallet.CodeAuditRecordNotFound:
		return http.StatusNotFound
	case teamwallet.CodeInsufficientPermissions:
		return http.StatusForbidden
	case teamwallet.CodeValidationError,
		teamwallet.CodeUserNotMember,
		teamwallet.CodeUserAlreadyMember:
		return http.StatusBadRequest
	case teamwallet.CodeWalletAlreadyExists,
		teamwallet.CodeWalletNotInitialized,
		teamwallet.CodeAccountFrozen,
		teamwallet.CodeTeamWalletError:
		return http.StatusConflict
	case teamwallet.CodeInsufficientBalance:
		return http.StatusPaymentRequired
	case teamwallet.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case teamwallet.CodeTransactionError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode parses a JSON request body into dst, rejecting unknown fields.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func badRequest(w http.ResponseWriter, message string) {
	var body errorBody
	body.Error.Code = teamwallet.CodeValidationError
	body.Error.Message = message
	writeJSON(w, http.StatusBadRequest, body)
}
