package auth

import (
	"net/url"
	"strings"
)

// LoginRequest is everything the transport needs to authenticate against a
// site with a given authenticator.
type LoginRequest struct {
	Kind Kind

	// Path to send Params to. Empty when no login request is needed.
	Path string

	// Parameters for the login request. Nil when none are available, which
	// for Persona means a new assertion is needed.
	Params map[string]string

	// Whether the server answers with a session cookie.
	UsesCookie bool

	// "username:password" for the URL user info, if HasUserInfo.
	UserInfo    string
	HasUserInfo bool
}

// NewLoginRequest resolves a for site.
func NewLoginRequest(a Authenticator, site *url.URL) LoginRequest {
	userInfo, ok := a.AuthUserInfo()
	return LoginRequest{
		Kind:        Scheme(a),
		Path:        a.LoginPathForSite(site),
		Params:      a.LoginParametersForSite(site),
		UsesCookie:  a.UsesCookieBasedLogin(),
		UserInfo:    userInfo,
		HasUserInfo: ok,
	}
}

// NeedsCredentials reports whether the authenticator had nothing to log in
// with, e.g. a Persona authenticator without a registered assertion.
func (r LoginRequest) NeedsCredentials() bool {
	return r.Path != "" && r.Params == nil
}

// URL returns the login URL for a remote database: the login path appended to
// the database path, with user info applied when the scheme provides it.
func (r LoginRequest) URL(db *url.URL) *url.URL {
	u := *db
	if r.HasUserInfo {
		user, pass, _ := strings.Cut(r.UserInfo, ":")
		u.User = url.UserPassword(user, pass)
	}
	if r.Path != "" {
		return u.JoinPath(r.Path)
	}
	return &u
}
