package website

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Validator answers whether a website responds at all.
type Validator struct {
	httpClient HTTPClient
	timeout    time.Duration
}

// ValidatorOption configures optional dependencies.
type ValidatorOption func(*Validator)

// WithValidatorHTTPClient overrides the default HTTP client.
func WithValidatorHTTPClient(client HTTPClient) ValidatorOption {
	return func(v *Validator) {
		if client != nil {
			v.httpClient = client
		}
	}
}

// WithValidateTimeout overrides the per-attempt timeout.
func WithValidateTimeout(d time.Duration) ValidatorOption {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewValidator builds a validator with a 5s per-attempt timeout.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		httpClient: NewHTTPClient(),
		timeout:    defaultValidateTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// IsReachable issues a HEAD against the https-qualified URL. When that attempt
// fails at the transport level, it retries once over plain http unless the
// input already asked for http://. A non-2xx answer is final.
func (v *Validator) IsReachable(ctx context.Context, rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return false
	}
	log := zap.L().With(zap.String("url", rawURL))

	ok, err := v.head(ctx, withScheme(rawURL))
	if err == nil {
		return ok
	}
	log.Debug("website: head failed", zap.Error(err))

	if strings.HasPrefix(strings.ToLower(rawURL), "http://") || ctx.Err() != nil {
		return false
	}
	ok, err = v.head(ctx, insecureVariant(rawURL))
	if err != nil {
		log.Debug("website: http fallback failed", zap.Error(err))
		return false
	}
	return ok
}

// head reports the outcome of one attempt. Servers that reject HEAD with 405
// get a GET instead.
func (v *Validator) head(ctx context.Context, target string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	status, err := v.do(ctx, http.MethodHead, target)
	if err != nil {
		return false, err
	}
	if status != http.StatusMethodNotAllowed {
		return isSuccess(status), nil
	}
	status, err = v.do(ctx, http.MethodGet, target)
	if err != nil {
		return false, err
	}
	return isSuccess(status), nil
}

func (v *Validator) do(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close() //nolint:errcheck
	return resp.StatusCode, nil
}
