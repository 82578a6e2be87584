package auth

import (
	"maps"
	"net/url"
)

// TokenAuthenticator logs in by sending a fixed set of parameters to a login
// path, e.g. `{"access_token": "..."}` to `/_facebook`.
type TokenAuthenticator struct {
	loginPath string
	params    map[string]string
}

var _ Authenticator = (*TokenAuthenticator)(nil)

// LoginParametersForSite returns a copy of the configured parameters, the
// same for every site.
func (a *TokenAuthenticator) LoginParametersForSite(*url.URL) map[string]string {
	return maps.Clone(a.params)
}

// LoginPathForSite returns the login path with a leading slash.
func (a *TokenAuthenticator) LoginPathForSite(*url.URL) string {
	return "/" + a.loginPath
}

func (a *TokenAuthenticator) UsesCookieBasedLogin() bool {
	return true
}

func (a *TokenAuthenticator) AuthUserInfo() (string, bool) {
	return "", false
}

func (a *TokenAuthenticator) sealed() {}
