package persona

import (
	"net"
	"net/url"
	"strings"

	"github.com/dpup/syncauth/errors"
	"golang.org/x/net/idna"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

// NormalizeOrigin reduces a URL to the `scheme://host[:port]` form used as a
// cache key. Scheme and host are lower-cased, internationalized hosts are
// converted to their ASCII form, default ports are dropped, as are user info,
// path, query and fragment.
//
//	NormalizeOrigin("Http://LocalHost:4984/db") // "http://localhost:4984"
func NormalizeOrigin(origin string) (string, error) {
	if origin == "" {
		return "", errors.Mark(ErrInvalidOrigin, 0).Append("empty origin")
	}
	u, err := url.Parse(origin)
	if err != nil {
		return "", errors.Mark(ErrInvalidOrigin, 0).Append(err.Error())
	}
	return normalizeURL(u)
}

// NormalizeURL is NormalizeOrigin for an already parsed URL.
func NormalizeURL(u *url.URL) (string, error) {
	if u == nil {
		return "", errors.Mark(ErrInvalidOrigin, 0).Append("nil url")
	}
	return normalizeURL(u)
}

func normalizeURL(u *url.URL) (string, error) {
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		return "", errors.Mark(ErrInvalidOrigin, 0).Append("missing scheme")
	}
	hostname := u.Hostname()
	if hostname == "" {
		return "", errors.Mark(ErrInvalidOrigin, 0).Append("missing host")
	}

	host := normalizeHost(hostname)
	if port := u.Port(); port != "" && port != defaultPorts[scheme] {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return scheme + "://" + host, nil
}

func normalizeHost(host string) string {
	if ip := net.ParseIP(host); ip != nil {
		return strings.ToLower(host)
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return strings.ToLower(host)
}
