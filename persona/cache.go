package persona

import (
	"net/url"
	"sync"

	"github.com/dpup/syncauth/errors"
	"github.com/dpup/syncauth/eventbus"
	"github.com/dpup/syncauth/logging"
	"github.com/dpup/syncauth/storage"
	"github.com/dpup/syncauth/storage/memorystore"
)

// Topic published to when an assertion is registered. Message data is an
// AssertionRegistered.
const TopicAssertionRegistered = "persona.assertionRegistered"

// AssertionRegistered describes a successful registration. Replaced is exact
// for registrations made through one Cache; caches sharing a store may both
// report a new entry for the same pair.
type AssertionRegistered struct {
	Email    string
	Origin   string
	Replaced bool
}

// Emails and normalized origins can not contain NUL.
const keySeparator = "\x00"

type assertionRecord struct {
	Email     string `json:"email"`
	Origin    string `json:"origin"`
	Assertion string `json:"assertion"`
}

func (r assertionRecord) PK() string {
	return cacheKey(r.Email, r.Origin)
}

func cacheKey(email, origin string) string {
	return email + keySeparator + origin
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithStore sets where assertions are kept. Defaults to an in-memory store.
func WithStore(s storage.Store) CacheOption {
	return func(c *Cache) {
		c.store = s
	}
}

// WithCodec sets the codec used to decode registered assertions.
func WithCodec(codec *Codec) CacheOption {
	return func(c *Cache) {
		c.codec = codec
	}
}

// WithLogger sets the logger used for registration and lookup events.
func WithLogger(l logging.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = l
	}
}

// WithEventBus publishes an AssertionRegistered event for each registration.
func WithEventBus(bus eventbus.EventBus) CacheOption {
	return func(c *Cache) {
		c.events = bus
	}
}

// Cache maps (email, origin) pairs to the most recently registered assertion.
// It is safe for concurrent use. Entries are never evicted or expired.
type Cache struct {
	store  storage.Store
	codec  *Codec
	logger logging.Logger
	events eventbus.EventBus

	mu sync.Mutex // Serializes the existence check and write in Register.
}

// NewCache returns an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = memorystore.New()
	}
	if c.codec == nil {
		c.codec = DefaultCodec()
	}
	if c.logger == nil {
		c.logger = logging.NewNopLogger()
	}
	return c
}

// Register decodes raw and stores it under its email and normalized origin,
// replacing any previous assertion for the pair. It returns the email.
func (c *Cache) Register(raw string) (string, error) {
	return c.RegisterFunc(raw, nil)
}

// RegisterFunc is Register with a check run on the decoded claims before
// anything is stored. An error from check is returned as is and leaves the
// cache unchanged.
func (c *Cache) RegisterFunc(raw string, check func(*Claims) error) (string, error) {
	claims, err := c.codec.Parse(raw)
	if err != nil {
		return "", err
	}
	origin, err := NormalizeOrigin(claims.Origin)
	if err != nil {
		return "", errors.Mark(ErrMalformedAssertion, 0).Append(err.Error())
	}
	if check != nil {
		if err := check(claims); err != nil {
			return "", err
		}
	}

	rec := assertionRecord{Email: claims.Email, Origin: origin, Assertion: raw}
	c.mu.Lock()
	replaced, err := c.store.Exists(rec.PK(), &assertionRecord{})
	if err == nil {
		err = c.store.Upsert(rec)
	}
	c.mu.Unlock()
	if err != nil {
		return "", err
	}

	c.logger.Debugw("persona: registered assertion",
		"persona.email", rec.Email,
		"persona.origin", rec.Origin,
		"persona.replaced", replaced,
	)
	if c.events != nil {
		c.events.Publish(TopicAssertionRegistered, AssertionRegistered{
			Email:    rec.Email,
			Origin:   rec.Origin,
			Replaced: replaced,
		})
	}
	return rec.Email, nil
}

// Lookup returns the assertion registered for email on site's origin. A nil
// or unusable site is reported as absent.
func (c *Cache) Lookup(email string, site *url.URL) (string, bool) {
	origin, err := NormalizeURL(site)
	if err != nil {
		return "", false
	}
	return c.lookup(email, origin)
}

// LookupOrigin is Lookup for an origin given as a string.
func (c *Cache) LookupOrigin(email, origin string) (string, bool) {
	normalized, err := NormalizeOrigin(origin)
	if err != nil {
		return "", false
	}
	return c.lookup(email, normalized)
}

func (c *Cache) lookup(email, origin string) (string, bool) {
	var rec assertionRecord
	err := c.store.Read(cacheKey(email, origin), &rec)
	if errors.Is(err, storage.ErrNotFound) {
		c.logger.Debugw("persona: no assertion", "persona.email", email, "persona.origin", origin)
		return "", false
	} else if err != nil {
		c.logger.Warnw("persona: assertion lookup failed", logging.ErrorFields(err)...)
		return "", false
	}
	return rec.Assertion, true
}
