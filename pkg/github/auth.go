package github

import (
	"net/http"
	"slices"
	"strings"
)

// Scopes the CLI relies on. Fine-grained tokens report no scopes at all.
const (
	ScopeRepo       = "repo"
	ScopeDeleteRepo = "delete_repo"
)

// TokenInfo contains information about the authenticated token
type TokenInfo struct {
	User   string   `json:"user" yaml:"user"`
	Scopes []string `json:"scopes" yaml:"scopes"`

	// Classic is false when the response carried no X-OAuth-Scopes header,
	// as happens for fine-grained and app tokens
	Classic bool `json:"classic" yaml:"classic"`
}

// HasScope reports whether the token was granted scope. Tokens without scope
// information are assumed to have it.
func (t *TokenInfo) HasScope(scope string) bool {
	if t == nil || !t.Classic {
		return true
	}
	return slices.Contains(t.Scopes, scope)
}

// MissingScopes returns the required scopes the token lacks
func (t *TokenInfo) MissingScopes(required ...string) []string {
	var missing []string
	for _, scope := range required {
		if !t.HasScope(scope) {
			missing = append(missing, scope)
		}
	}
	return missing
}

func newTokenInfo(user string, header http.Header) *TokenInfo {
	info := &TokenInfo{User: user, Scopes: []string{}}

	values, ok := header["X-Oauth-Scopes"]
	if !ok {
		return info
	}
	info.Classic = true

	for _, value := range values {
		for _, scope := range strings.Split(value, ",") {
			if scope = strings.TrimSpace(scope); scope != "" {
				info.Scopes = append(info.Scopes, scope)
			}
		}
	}
	return info
}

// GetAuthInstructions returns instructions for setting up GitHub authentication
func GetAuthInstructions() string {
	return `GitHub authentication is required. Please set up authentication using one of the following methods:

1. Environment Variable (Recommended for CI/CD):
   export GH_TOKEN="your_personal_access_token"

2. Configuration File:
   Run "supergithub init" and add the token to ~/.supergithub/config.yaml:

   github:
     token: "your_personal_access_token"

To create a personal access token:
1. Go to GitHub Settings > Developer settings > Personal access tokens
2. Click "Generate new token (classic)"
3. Select the following scopes:
   - repo (Full control of private repositories)
   - delete_repo (only needed for "supergithub delete" and "organize --delete")
4. Copy the generated token and use it with one of the methods above`
}
