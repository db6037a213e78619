package history

import (
	"net/url"
	"strconv"
	"strings"
)

// Schemes that require an authority component.
var hostSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"ws":    true,
	"wss":   true,
}

// ParseURL validates raw as an absolute URL and returns its lower-cased
// host name. Scheme-only URLs such as about:blank are valid and have an
// empty domain. For http(s), ftp and ws(s) the slashes after the scheme
// are optional, as in browsers: http:example.com is http://example.com.
func ParseURL(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", &ValidationError{URL: raw, Reason: "empty"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", &ValidationError{URL: raw, Reason: err.Error()}
	}
	if u.Scheme == "" {
		return "", &ValidationError{URL: raw, Reason: "missing scheme"}
	}

	if hostSchemes[strings.ToLower(u.Scheme)] {
		if u.Host == "" {
			rest := strings.TrimLeft(raw[len(u.Scheme)+1:], `/\`)
			if u, err = url.Parse(u.Scheme + "://" + rest); err != nil {
				return "", &ValidationError{URL: raw, Reason: err.Error()}
			}
		}
		if u.Hostname() == "" {
			return "", &ValidationError{URL: raw, Reason: "missing host"}
		}
		if p := u.Port(); p != "" {
			if n, err := strconv.Atoi(p); err != nil || n > 65535 {
				return "", &ValidationError{URL: raw, Reason: "port out of range"}
			}
		}
	}
	return strings.ToLower(u.Hostname()), nil
}

// IsValidURL reports whether raw passes ParseURL.
func IsValidURL(raw string) bool {
	_, err := ParseURL(raw)
	return err == nil
}
