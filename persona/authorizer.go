package persona

import (
	"net/url"
	"sync"
)

// Authorizer is the entry point used by authenticators. It delegates to a
// Cache and holds no state of its own.
type Authorizer struct {
	cache *Cache
}

// NewAuthorizer returns an authorizer backed by cache. A nil cache gets a new
// empty one.
func NewAuthorizer(cache *Cache) *Authorizer {
	if cache == nil {
		cache = NewCache()
	}
	return &Authorizer{cache: cache}
}

var (
	defaultAuthorizer     *Authorizer
	defaultAuthorizerOnce sync.Once
)

// DefaultAuthorizer returns the process-wide authorizer. Assertions registered
// through it are visible to every authenticator that has not been given its
// own authorizer.
func DefaultAuthorizer() *Authorizer {
	defaultAuthorizerOnce.Do(func() {
		defaultAuthorizer = NewAuthorizer(NewCache())
	})
	return defaultAuthorizer
}

// RegisterAssertion stores raw and returns the email it was issued for.
func (a *Authorizer) RegisterAssertion(raw string) (string, error) {
	return a.cache.Register(raw)
}

// RegisterAssertionFunc stores raw if check accepts its claims. See
// Cache.RegisterFunc.
func (a *Authorizer) RegisterAssertionFunc(raw string, check func(*Claims) error) (string, error) {
	return a.cache.RegisterFunc(raw, check)
}

// AssertionForEmailAndSite returns the assertion registered for email on
// site's origin, if any.
func (a *Authorizer) AssertionForEmailAndSite(email string, site *url.URL) (string, bool) {
	return a.cache.Lookup(email, site)
}

// Cache returns the cache the authorizer delegates to.
func (a *Authorizer) Cache() *Cache {
	return a.cache
}
