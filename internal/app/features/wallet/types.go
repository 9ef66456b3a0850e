// internal/app/features/wallet/types.go
package wallet

// initializeRequest is the body for POST /workspaces/{workspaceID}/wallet.
// It has no fields today; the body may be empty.
type initializeRequest struct{}

// tokenRequestBody is the body for POST /workspaces/{workspaceID}/wallet/requests.
type tokenRequestBody struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// reviewBody is the body for POST /wallet/requests/{requestID}/review.
type reviewBody struct {
	Action   string `json:"action"` // approve or deny
	Comments string `json:"comments,omitempty"`
}

// permissionsBody is the body for PUT .../wallet/permissions/{userID}.
type permissionsBody struct {
	CanSpend      bool  `json:"can_spend"`
	SpendingLimit int64 `json:"spending_limit"`
}

// freezeBody is the body for POST .../wallet/freeze.
type freezeBody struct {
	Reason string `json:"reason,omitempty"`
}

// emergencyBody is the body for POST .../wallet/emergency-unfreeze.
type emergencyBody struct {
	Reason string `json:"reason"`
}
