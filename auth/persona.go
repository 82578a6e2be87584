package auth

import (
	"net/url"

	"github.com/dpup/syncauth/persona"
)

// Name of the login parameter carrying a Persona assertion.
const AssertionParam = "assertion"

// PersonaAuthenticator logs in with whichever assertion has been registered
// for its email and the target site. When there is none the caller must
// obtain a new assertion from the identity provider and register it. A zero
// value uses the default authorizer.
type PersonaAuthenticator struct {
	email      string
	loginPath  string
	authorizer *persona.Authorizer
}

var _ Authenticator = (*PersonaAuthenticator)(nil)

// EmailAddress returns the email the authenticator logs in as.
func (a *PersonaAuthenticator) EmailAddress() string {
	return a.email
}

// AssertionForSite returns the registered assertion for site, if any.
func (a *PersonaAuthenticator) AssertionForSite(site *url.URL) (string, bool) {
	return a.auth().AssertionForEmailAndSite(a.email, site)
}

func (a *PersonaAuthenticator) auth() *persona.Authorizer {
	if a.authorizer == nil {
		return persona.DefaultAuthorizer()
	}
	return a.authorizer
}

// LoginParametersForSite returns `{"assertion": ...}`, or nil if no assertion
// is registered for site.
func (a *PersonaAuthenticator) LoginParametersForSite(site *url.URL) map[string]string {
	assertion, ok := a.AssertionForSite(site)
	if !ok {
		return nil
	}
	return map[string]string{AssertionParam: assertion}
}

func (a *PersonaAuthenticator) LoginPathForSite(*url.URL) string {
	return "/" + a.loginPath
}

func (a *PersonaAuthenticator) UsesCookieBasedLogin() bool {
	return true
}

func (a *PersonaAuthenticator) AuthUserInfo() (string, bool) {
	return "", false
}

func (a *PersonaAuthenticator) sealed() {}
