// Package persona decodes Mozilla Persona (BrowserID) assertions and keeps
// the assertions a client has obtained, keyed by the email address they were
// issued for and the origin of the site they target.
//
// Assertions are decoded but never verified. The remote server verifies them
// when the client logs in; the client only needs to know which email and
// site an assertion belongs to.
//
//	cache := persona.NewCache()
//	email, err := cache.Register(assertion)
//	...
//	assertion, ok := cache.Lookup(email, siteURL)
package persona

import (
	"github.com/dpup/syncauth/errors"
	"google.golang.org/grpc/codes"
)

var (
	// The assertion could not be decoded, or lacks an email or audience.
	ErrMalformedAssertion = errors.NewC("persona: malformed assertion", codes.InvalidArgument)

	// The origin is not an absolute URL with a scheme and host.
	ErrInvalidOrigin = errors.NewC("persona: invalid origin", codes.InvalidArgument)
)
