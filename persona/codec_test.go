package persona

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dpup/syncauth/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestParseAssertion_sample(t *testing.T) {
	claims, err := ParseAssertion(sampleAssertion)
	require.NoError(t, err)

	assert.Equal(t, sampleEmail, claims.Email)
	assert.Equal(t, sampleOrigin, claims.Origin)
	assert.Equal(t, "login.persona.org", claims.Issuer)
	assert.Equal(t, time.UnixMilli(1358296237577), claims.IssuedAt)
	assert.Equal(t, time.UnixMilli(1358296438495), claims.Expiry)
	assert.Equal(t, time.UnixMilli(1358382637577), claims.CertificateExpiry)

	email, ok := claims.Get(ClaimEmail)
	assert.True(t, ok)
	assert.Equal(t, sampleEmail, email)
	origin, ok := claims.Get(ClaimOrigin)
	assert.True(t, ok)
	assert.Equal(t, sampleOrigin, origin)

	assert.Contains(t, claims.Extra, "public-key")
	assert.Equal(t, "login.persona.org", claims.Extra["iss"])
	assert.NotContains(t, claims.Extra, "principal")
	assert.NotContains(t, claims.Extra, "aud")

	// The audience assertion's expiry wins over the certificate's.
	assert.Equal(t, json.Number("1358296438495"), claims.Extra["exp"])
}

func TestParse_generated(t *testing.T) {
	raw := makeAssertion(t, "alice@example.com", "https://sync.example.com", map[string]any{"nonce": "abc"})

	claims, err := NewCodec().Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "https://sync.example.com", claims.Origin)

	nonce, ok := claims.Get("nonce")
	assert.True(t, ok)
	assert.Equal(t, "abc", nonce)

	_, ok = claims.Get("missing")
	assert.False(t, ok)
}

func TestParse_paddedSegments(t *testing.T) {
	pad := func(seg string) string {
		if n := len(seg) % 4; n > 0 {
			seg += strings.Repeat("=", 4-n)
		}
		return seg
	}
	var halves []string
	for _, half := range strings.Split(sampleAssertion, "~") {
		parts := strings.Split(half, ".")
		for i := range parts {
			parts[i] = pad(parts[i])
		}
		halves = append(halves, strings.Join(parts, "."))
	}

	claims, err := NewCodec(WithCacheSize(0)).Parse(strings.Join(halves, "~"))
	require.NoError(t, err)
	assert.Equal(t, sampleEmail, claims.Email)
	assert.Equal(t, sampleOrigin, claims.Origin)
}

func TestParse_malformed(t *testing.T) {
	b64 := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	good := makeAssertion(t, "alice@example.com", "https://sync.example.com", nil)
	cert, aud, _ := strings.Cut(good, "~")
	audParts := strings.Split(aud, ".")

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no separator", cert},
		{"too many segments", good + "~" + aud},
		{"empty certificate", "~" + aud},
		{"empty audience", cert + "~"},
		{"two part segment", cert + "~" + audParts[0] + "." + audParts[1]},
		{"four part segment", cert + "~" + aud + ".extra"},
		{"bad base64 payload", cert + "~" + audParts[0] + ".!!!." + audParts[2]},
		{"bad base64 signature", cert + "~" + audParts[0] + "." + audParts[1] + ".!!!"},
		{"payload not json", cert + "~" + audParts[0] + "." + b64("not json") + "." + audParts[2]},
		{"header not json", cert + "~" + b64("{") + "." + audParts[1] + "." + audParts[2]},
		{"dummy", "DUMMY_ASSERTION"},
		{"missing email", makeAssertion(t, "", "https://sync.example.com", nil)},
		{"missing audience", makeAssertion(t, "alice@example.com", "", nil)},
		{"list audience", cert + "~" + audParts[0] + "." + b64(`{"aud":["https://sync.example.com"]}`) + "." + audParts[2]},
	}
	codec := NewCodec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Parse(tt.raw)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.True(t, errors.Is(err, ErrMalformedAssertion), "got %v", err)
			assert.Equal(t, codes.InvalidArgument, errors.Code(err))
		})
	}
}

func TestParse_memoReturnsCopies(t *testing.T) {
	codec := NewCodec(WithCacheSize(2))
	require.NotNil(t, codec.memo)

	first, err := codec.Parse(sampleAssertion)
	require.NoError(t, err)
	first.Extra["iss"] = "tampered"
	first.Email = "tampered@example.com"

	second, err := codec.Parse(sampleAssertion)
	require.NoError(t, err)
	assert.Equal(t, sampleEmail, second.Email)
	assert.Equal(t, "login.persona.org", second.Extra["iss"])
	assert.Equal(t, 1, codec.memo.Len())
}

func TestParse_memoCopiesNestedClaims(t *testing.T) {
	codec := NewCodec(WithCacheSize(2))

	first, err := codec.Parse(sampleAssertion)
	require.NoError(t, err)
	key, ok := first.Extra["public-key"].(map[string]any)
	require.True(t, ok, "public-key should decode to a map")
	original := key["algorithm"]
	key["algorithm"] = "TAMPERED"

	second, err := codec.Parse(sampleAssertion)
	require.NoError(t, err)
	secondKey, ok := second.Extra["public-key"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, original, secondKey["algorithm"])
	assert.NotEqual(t, "TAMPERED", secondKey["algorithm"])
}

func TestParse_memoDisabled(t *testing.T) {
	codec := NewCodec(WithCacheSize(0))
	assert.Nil(t, codec.memo)

	claims, err := codec.Parse(sampleAssertion)
	require.NoError(t, err)
	assert.Equal(t, sampleEmail, claims.Email)
}

func TestParse_malformedNotMemoized(t *testing.T) {
	codec := NewCodec(WithCacheSize(4))
	_, err := codec.Parse("DUMMY_ASSERTION")
	require.Error(t, err)
	assert.Equal(t, 0, codec.memo.Len())
}

func TestClaims_Expired(t *testing.T) {
	claims, err := ParseAssertion(sampleAssertion)
	require.NoError(t, err)

	assert.True(t, claims.Expired(time.Now()))
	assert.False(t, claims.Expired(claims.Expiry.Add(-time.Minute)))
	assert.False(t, (&Claims{}).Expired(time.Now()))
}
