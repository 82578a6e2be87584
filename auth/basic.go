package auth

import (
	"encoding/base64"
	"net/url"
)

// BasicAuthenticator logs in with a username and password.
type BasicAuthenticator struct {
	username string
	password string
}

var _ Authenticator = (*BasicAuthenticator)(nil)

// Username returns the configured username.
func (a *BasicAuthenticator) Username() string {
	return a.username
}

// LoginParametersForSite always returns nil, credentials travel in the user
// info instead.
func (a *BasicAuthenticator) LoginParametersForSite(*url.URL) map[string]string {
	return nil
}

// LoginPathForSite always returns "".
func (a *BasicAuthenticator) LoginPathForSite(*url.URL) string {
	return ""
}

// UsesCookieBasedLogin returns true. Sync servers issue a session cookie for
// basic auth too.
func (a *BasicAuthenticator) UsesCookieBasedLogin() bool {
	return true
}

// AuthUserInfo returns "username:password".
func (a *BasicAuthenticator) AuthUserInfo() (string, bool) {
	return a.username + ":" + a.password, true
}

// AuthorizationHeader returns the value for an `Authorization` header.
func (a *BasicAuthenticator) AuthorizationHeader() string {
	info, _ := a.AuthUserInfo()
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(info))
}

func (a *BasicAuthenticator) sealed() {}
