package auth

import (
	"maps"
	"strings"

	"github.com/dpup/syncauth"
	"github.com/dpup/syncauth/errors"
	"github.com/dpup/syncauth/logging"
	"github.com/dpup/syncauth/persona"
)

// Name of the login parameter carrying an access token.
const AccessTokenParam = "access_token"

// NewBasicAuthenticator returns an authenticator for username and password.
// The password may be empty.
func NewBasicAuthenticator(username, password string) (*BasicAuthenticator, error) {
	if username == "" {
		return nil, errors.Mark(ErrInvalidCredentials, 0).Append("empty username")
	}
	return &BasicAuthenticator{username: username, password: password}, nil
}

// NewTokenAuthenticator returns an authenticator that sends params to
// loginPath. A leading slash on loginPath is ignored. params is copied.
func NewTokenAuthenticator(loginPath string, params map[string]string) (*TokenAuthenticator, error) {
	loginPath = strings.TrimPrefix(loginPath, "/")
	if loginPath == "" {
		return nil, errors.Mark(ErrInvalidLoginPath, 0).Append("empty login path")
	}
	p := maps.Clone(params)
	if p == nil {
		p = map[string]string{}
	}
	return &TokenAuthenticator{loginPath: loginPath, params: p}, nil
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithAuthorizer sets the Persona authorizer that assertions are registered
// with and looked up from. Defaults to persona.DefaultAuthorizer().
func WithAuthorizer(a *persona.Authorizer) FactoryOption {
	return func(f *Factory) {
		f.authorizer = a
	}
}

// WithFacebookLoginPath overrides the `auth.facebook.loginPath` config value.
func WithFacebookLoginPath(p string) FactoryOption {
	return func(f *Factory) {
		f.facebookLoginPath = p
	}
}

// WithPersonaLoginPath overrides the `auth.persona.loginPath` config value.
func WithPersonaLoginPath(p string) FactoryOption {
	return func(f *Factory) {
		f.personaLoginPath = p
	}
}

// WithLogger sets the logger used by the factory.
func WithLogger(l logging.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = l
	}
}

// Factory creates authenticators for the login schemes a sync server offers.
type Factory struct {
	authorizer        *persona.Authorizer
	facebookLoginPath string
	personaLoginPath  string
	logger            logging.Logger
}

// NewFactory returns a factory configured from the global config.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		facebookLoginPath: syncauth.ConfigString(syncauth.KeyFacebookLoginPath),
		personaLoginPath:  syncauth.ConfigString(syncauth.KeyPersonaLoginPath),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.authorizer == nil {
		f.authorizer = persona.DefaultAuthorizer()
	}
	if f.logger == nil {
		f.logger = logging.NewNopLogger()
	}
	f.facebookLoginPath = strings.TrimPrefix(f.facebookLoginPath, "/")
	f.personaLoginPath = strings.TrimPrefix(f.personaLoginPath, "/")
	return f
}

// Authorizer returns the Persona authorizer used by the factory.
func (f *Factory) Authorizer() *persona.Authorizer {
	return f.authorizer
}

// NewFacebookAuthenticator returns a token authenticator that logs in with a
// Facebook access token.
func (f *Factory) NewFacebookAuthenticator(accessToken string) (*TokenAuthenticator, error) {
	if accessToken == "" {
		return nil, errors.Mark(ErrMissingToken, 0).Append("empty facebook access token")
	}
	return NewTokenAuthenticator(f.facebookLoginPath, map[string]string{
		AccessTokenParam: accessToken,
	})
}

// NewPersonaAuthenticator registers assertion and returns a token
// authenticator that sends it to the Persona login path. If emailHint is
// non-empty it must match the email the assertion was issued for, otherwise
// nothing is registered.
//
// Unlike NewPersonaAuthenticatorForEmail, the returned authenticator always
// sends this assertion, whatever site it is used with.
func (f *Factory) NewPersonaAuthenticator(assertion, emailHint string) (*TokenAuthenticator, error) {
	var check func(*persona.Claims) error
	if emailHint != "" {
		check = func(claims *persona.Claims) error {
			if claims.Email != emailHint {
				return errors.Mark(ErrEmailMismatch, 0).Append("expected " + emailHint + ", got " + claims.Email)
			}
			return nil
		}
	}
	email, err := f.authorizer.RegisterAssertionFunc(assertion, check)
	if err != nil {
		f.logger.Debugw("auth: persona assertion rejected", logging.ErrorFields(err)...)
		return nil, err
	}
	f.logger.Debugw("auth: created persona authenticator", "persona.email", email)
	return NewTokenAuthenticator(f.personaLoginPath, map[string]string{
		AssertionParam: assertion,
	})
}

// NewPersonaAuthenticatorForEmail returns an authenticator that logs in as
// email with whichever assertion is registered for the target site.
func (f *Factory) NewPersonaAuthenticatorForEmail(email string) (*PersonaAuthenticator, error) {
	if email == "" {
		return nil, errors.Mark(ErrInvalidCredentials, 0).Append("empty email")
	}
	if f.personaLoginPath == "" {
		return nil, errors.Mark(ErrInvalidLoginPath, 0).Append("empty persona login path")
	}
	return &PersonaAuthenticator{
		email:      email,
		loginPath:  f.personaLoginPath,
		authorizer: f.authorizer,
	}, nil
}
