package persona

import (
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/dpup/syncauth"
	"github.com/dpup/syncauth/errors"
	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mitchellh/copystructure"
	"github.com/mitchellh/mapstructure"
)

// Names of the claims exposed through Claims.Get.
const (
	ClaimEmail  = "email"
	ClaimOrigin = "origin"
)

const (
	assertionSeparator = "~"
	segmentParts       = 3
)

// Claims holds the decoded contents of a Persona assertion.
type Claims struct {
	// Email address from the certificate's `principal.email` claim.
	Email string

	// Audience of the assertion, exactly as it appears in the `aud` claim.
	Origin string

	// Issuer of the identity certificate, e.g. "login.persona.org".
	Issuer string

	// When the identity certificate was issued. Zero if absent.
	IssuedAt time.Time

	// When the audience assertion expires. Zero if absent.
	Expiry time.Time

	// When the identity certificate expires. Zero if absent.
	CertificateExpiry time.Time

	// Remaining top-level claims of both payloads. Values of the audience
	// assertion win over the certificate's. Numbers are json.Number.
	Extra map[string]any
}

// Get returns a claim by name. `email` and `origin` map to the Email and
// Origin fields, everything else is looked up in Extra.
func (c *Claims) Get(name string) (any, bool) {
	switch name {
	case ClaimEmail:
		return c.Email, true
	case ClaimOrigin:
		return c.Origin, true
	}
	v, ok := c.Extra[name]
	return v, ok
}

// Expired reports whether the audience assertion had expired at now. Claims
// without an expiry never expire.
func (c *Claims) Expired(now time.Time) bool {
	return !c.Expiry.IsZero() && now.After(c.Expiry)
}

// clone deep copies c so callers never share nested claim values with the
// memo or each other.
func (c *Claims) clone() *Claims {
	cp := *c
	if extra, err := copystructure.Copy(c.Extra); err == nil {
		cp.Extra = extra.(map[string]any)
	} else {
		// Decoded JSON only holds maps, slices and scalars, which always copy.
		cp.Extra = maps.Clone(c.Extra)
	}
	return &cp
}

type certificatePayload struct {
	Principal struct {
		Email string `mapstructure:"email"`
	} `mapstructure:"principal"`
	IssuedAt int64  `mapstructure:"iat"`
	Expiry   int64  `mapstructure:"exp"`
	Issuer   string `mapstructure:"iss"`
}

type audiencePayload struct {
	Audience string `mapstructure:"aud"`
	Expiry   int64  `mapstructure:"exp"`
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithCacheSize sets how many decoded assertions the codec memoizes. Zero
// disables memoization.
func WithCacheSize(n int) CodecOption {
	return func(c *Codec) {
		c.cacheSize = n
	}
}

// Codec decodes Persona assertions.
type Codec struct {
	parser    *jwt.Parser
	cacheSize int
	memo      *lru.Cache[string, *Claims]
}

// NewCodec returns a codec. The memo size defaults to the
// `auth.persona.codecCacheSize` config value.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{
		parser:    jwt.NewParser(jwt.WithJSONNumber(), jwt.WithPaddingAllowed()),
		cacheSize: syncauth.ConfigInt(syncauth.KeyPersonaCodecCacheSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cacheSize > 0 {
		// Only errors for non-positive sizes.
		c.memo, _ = lru.New[string, *Claims](c.cacheSize)
	}
	return c
}

var (
	defaultCodec     *Codec
	defaultCodecOnce sync.Once
)

// DefaultCodec returns the codec used by ParseAssertion and by caches created
// without WithCodec.
func DefaultCodec() *Codec {
	defaultCodecOnce.Do(func() {
		defaultCodec = NewCodec()
	})
	return defaultCodec
}

// ParseAssertion decodes raw with the default codec.
func ParseAssertion(raw string) (*Claims, error) {
	return DefaultCodec().Parse(raw)
}

// Parse decodes a Persona assertion of the form
// `<certificate>~<audience assertion>`, where both halves are JWS compact
// serializations. Signatures are decoded but not verified. The returned
// claims always carry a non-empty Email and Origin.
func (c *Codec) Parse(raw string) (*Claims, error) {
	if c.memo != nil {
		if claims, ok := c.memo.Get(raw); ok {
			return claims.clone(), nil
		}
	}

	segments := strings.Split(raw, assertionSeparator)
	if len(segments) != 2 {
		return nil, errors.Mark(ErrMalformedAssertion, 0).
			Append("expected certificate and audience assertion separated by '~'")
	}

	certClaims, err := c.decodeSegment(segments[0])
	if err != nil {
		return nil, errors.Mark(ErrMalformedAssertion, 0).Append("certificate: " + err.Error())
	}
	audClaims, err := c.decodeSegment(segments[1])
	if err != nil {
		return nil, errors.Mark(ErrMalformedAssertion, 0).Append("audience assertion: " + err.Error())
	}

	var cert certificatePayload
	if err := mapstructure.Decode(certClaims, &cert); err != nil {
		return nil, errors.Mark(ErrMalformedAssertion, 0).Append("certificate: " + err.Error())
	}
	var aud audiencePayload
	if err := mapstructure.Decode(audClaims, &aud); err != nil {
		return nil, errors.Mark(ErrMalformedAssertion, 0).Append("audience assertion: " + err.Error())
	}
	if cert.Principal.Email == "" {
		return nil, errors.Mark(ErrMalformedAssertion, 0).Append("missing principal email")
	}
	if aud.Audience == "" {
		return nil, errors.Mark(ErrMalformedAssertion, 0).Append("missing audience")
	}

	claims := &Claims{
		Email:             cert.Principal.Email,
		Origin:            aud.Audience,
		Issuer:            cert.Issuer,
		IssuedAt:          fromMillis(cert.IssuedAt),
		Expiry:            fromMillis(aud.Expiry),
		CertificateExpiry: fromMillis(cert.Expiry),
		Extra:             make(map[string]any, len(certClaims)+len(audClaims)),
	}
	for _, src := range []jwt.MapClaims{certClaims, audClaims} {
		for k, v := range src {
			if k == "principal" || k == "aud" {
				continue
			}
			claims.Extra[k] = v
		}
	}

	if c.memo != nil {
		c.memo.Add(raw, claims.clone())
	}
	return claims, nil
}

// decodeSegment decodes the header and payload of one JWS. The signing
// algorithms Persona uses (e.g. DS128) are unknown to the jwt package, which
// only matters for verification.
func (c *Codec) decodeSegment(segment string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, parts, err := c.parser.ParseUnverified(segment, claims)
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, err
	}
	if len(parts) != segmentParts {
		return nil, jwt.ErrTokenMalformed
	}
	if _, err := c.parser.DecodeSegment(parts[2]); err != nil {
		return nil, errors.WrapPrefix(err, "could not base64 decode signature", 0)
	}
	return claims, nil
}

// Persona timestamps are milliseconds since the epoch.
func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
