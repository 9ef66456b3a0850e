package models

// AuthMethod describes one way a workspace member can authenticate.
type AuthMethod struct {
	Value string // stored identifier, e.g. "google"
	Label string // display label, e.g. "Google"
}

// Supported auth method identifiers.
const (
	AuthPassword = "password"
	AuthGoogle   = "google"
	AuthGitHub   = "github"
	AuthAPIToken = "api_token"
)

// AllAuthMethods lists every method the service knows about, in display order.
var AllAuthMethods = []AuthMethod{
	{Value: AuthPassword, Label: "Password"},
	{Value: AuthGoogle, Label: "Google"},
	{Value: AuthGitHub, Label: "GitHub"},
	{Value: AuthAPIToken, Label: "API Token"},
}

// IsValidAuthMethod reports whether value names a supported method.
func IsValidAuthMethod(value string) bool {
	for _, m := range AllAuthMethods {
		if m.Value == value {
			return true
		}
	}
	return false
}

// EnabledAuthMethods resolves a workspace's enabled method list. An empty
// stored list means every method is enabled.
func EnabledAuthMethods(enabled []string) []AuthMethod {
	if len(enabled) == 0 {
		return AllAuthMethods
	}
	set := make(map[string]bool, len(enabled))
	for _, v := range enabled {
		set[v] = true
	}
	var out []AuthMethod
	for _, m := range AllAuthMethods {
		if set[m.Value] {
			out = append(out, m)
		}
	}
	return out
}
