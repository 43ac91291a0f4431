// Package website checks whether a lead's site responds and scrapes contact details
// from its pages. Nothing in this package returns an error to callers: failures
// are reported as "not reachable" and logged.
package website

import (
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultUserAgent identifies the scraper to the sites it fetches.
	DefaultUserAgent = "Mozilla/5.0 (compatible; OrdoLeadGen/1.0; +https://ordo.com)"

	defaultValidateTimeout = 5 * time.Second
	defaultFetchTimeout    = 10 * time.Second
	defaultProbeTimeout    = 3 * time.Second
	maxRedirects           = 5
	maxBodyBytes           = 2 << 20
)

// HTTPClient abstracts HTTP requests so tests can stub them.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client that follows a bounded number of redirects.
// Per-call deadlines come from the request context.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: defaultFetchTimeout,
			}).DialContext,
			TLSHandshakeTimeout: defaultFetchTimeout,
		},
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// withScheme prefixes https:// unless the input already names an http(s) scheme.
func withScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
		return raw
	}
	return "https://" + raw
}

// insecureVariant returns the http:// form tried after a failed https attempt.
func insecureVariant(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "https://") {
		return "http://" + raw[len("https://"):]
	}
	return "http://" + raw
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
