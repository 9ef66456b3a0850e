// internal/app/features/workspaces/types.go
package workspaces

// createBody is the body for POST /workspaces.
type createBody struct {
	WorkspaceID string `json:"workspace_id,omitempty"`
	Name        string `json:"name"`
}

// addMemberBody is the body for POST /workspaces/{workspaceID}/members.
type addMemberBody struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// thresholdBody is the body for PUT .../settings/auto-approval.
type thresholdBody struct {
	Threshold int64 `json:"threshold"`
}

// authMethodsBody is the body for PUT .../settings/auth-methods.
type authMethodsBody struct {
	Methods []string `json:"methods"`
}

// authMethodView is one entry in the GET .../settings/auth-methods response.
// OAuthConfigured is only meaningful for provider-backed methods.
type authMethodView struct {
	Value           string `json:"value"`
	Label           string `json:"label"`
	OAuthConfigured bool   `json:"oauth_configured,omitempty"`
}
