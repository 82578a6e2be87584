package auth

import (
	"github.com/dpup/syncauth/errors"
	"golang.org/x/oauth2"
)

// Name of the login parameter carrying an OAuth2 refresh token.
const RefreshTokenParam = "refresh_token"

// NewOAuth2Authenticator returns a token authenticator that sends an OAuth2
// access token, and its refresh token if there is one, to loginPath.
//
//	tok, err := conf.Exchange(ctx, code)
//	...
//	a, err := auth.NewOAuth2Authenticator("_oidc", tok)
func NewOAuth2Authenticator(loginPath string, token *oauth2.Token) (*TokenAuthenticator, error) {
	if !token.Valid() {
		return nil, errors.Mark(ErrExpiredToken, 0)
	}
	params := map[string]string{AccessTokenParam: token.AccessToken}
	if token.RefreshToken != "" {
		params[RefreshTokenParam] = token.RefreshToken
	}
	return NewTokenAuthenticator(loginPath, params)
}
