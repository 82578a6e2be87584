// Package auth produces the credentials a sync client presents when it logs
// in to a remote database.
//
// Three schemes are supported, each an Authenticator:
//
//   - BasicAuthenticator sends a username and password as HTTP Basic auth.
//   - TokenAuthenticator POSTs a fixed set of parameters, such as a Facebook
//     access token, to a login path.
//   - PersonaAuthenticator POSTs a cached Persona assertion for the target
//     site, if one has been registered.
//
// The transport layer consumes an authenticator through NewLoginRequest,
// which resolves everything it needs for a given site.
package auth

import (
	"net/url"

	"github.com/dpup/syncauth/errors"
	"google.golang.org/grpc/codes"
)

var (
	// A username was required but not provided.
	ErrInvalidCredentials = errors.NewC("auth: invalid credentials", codes.InvalidArgument)

	// A login path was required but not provided.
	ErrInvalidLoginPath = errors.NewC("auth: invalid login path", codes.InvalidArgument)

	// An access token was required but not provided.
	ErrMissingToken = errors.NewC("auth: missing access token", codes.InvalidArgument)

	// The email of a registered assertion differs from the expected one.
	ErrEmailMismatch = errors.NewC("auth: assertion email mismatch", codes.InvalidArgument)

	// The OAuth2 token has expired or carries no access token.
	ErrExpiredToken = errors.NewC("auth: token is expired or invalid", codes.Unauthenticated)
)

// Authenticator describes how to log in to a remote site. The set of
// implementations is closed: BasicAuthenticator, TokenAuthenticator and
// PersonaAuthenticator.
type Authenticator interface {
	// LoginParametersForSite returns the parameters to send to the login path,
	// or nil if the authenticator has none for site.
	LoginParametersForSite(site *url.URL) map[string]string

	// LoginPathForSite returns the path, relative to the remote database, that
	// login parameters are sent to. Empty if the scheme has no login request.
	LoginPathForSite(site *url.URL) string

	// UsesCookieBasedLogin reports whether the server answers a successful
	// login with a session cookie that is reused for later requests.
	UsesCookieBasedLogin() bool

	// AuthUserInfo returns "username:password" for schemes that put
	// credentials in the URL user info or an Authorization header.
	AuthUserInfo() (string, bool)

	sealed()
}

// Kind identifies an authentication scheme.
type Kind int

const (
	KindBasic Kind = iota + 1
	KindToken
	KindPersona
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindToken:
		return "token"
	case KindPersona:
		return "persona"
	default:
		return "unknown"
	}
}

// Scheme returns the kind of a. Nil returns 0.
func Scheme(a Authenticator) Kind {
	switch a.(type) {
	case *BasicAuthenticator:
		return KindBasic
	case *TokenAuthenticator:
		return KindToken
	case *PersonaAuthenticator:
		return KindPersona
	default:
		return 0
	}
}
