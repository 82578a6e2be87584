package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func segment(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(b)
}

// assertionFor builds an unsigned Persona assertion for email and audience.
func assertionFor(t *testing.T, email, audience string) string {
	t.Helper()
	sig := base64.RawURLEncoding.EncodeToString([]byte("sig"))
	cert := segment(t, map[string]any{"alg": "RS256"}) + "." +
		segment(t, map[string]any{"principal": map[string]any{"email": email}, "iss": "login.persona.org"}) + "." + sig
	aud := segment(t, map[string]any{"alg": "DS128"}) + "." +
		segment(t, map[string]any{"aud": audience, "exp": 1358296438495}) + "." + sig
	return cert + "~" + aud
}

func mustParseURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}
