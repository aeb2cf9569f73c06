// Package httpclient builds the resty clients used to call upstream services
// on behalf of the caller.
package httpclient

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Alijeyrad/caseservice/config"
	"github.com/Alijeyrad/caseservice/pkg/constants"
	"github.com/Alijeyrad/caseservice/pkg/observability"
)

var (
	// ErrUnauthorized means the upstream rejected the forwarded token.
	ErrUnauthorized = errors.New("upstream rejected credentials")
	// ErrNotFound means the upstream answered 404.
	ErrNotFound = errors.New("upstream resource not found")
	// ErrUnavailable covers transport failures, timeouts and unexpected statuses.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrMalformed means a 200 response whose body could not be decoded.
	ErrMalformed = errors.New("upstream returned malformed body")
)

// Config holds settings for one upstream service.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// DefaultTimeout bounds every upstream call when none is configured.
const DefaultTimeout = 5 * time.Second

// FromCentralConfig converts central config.UpstreamConfig to package Config
func FromCentralConfig(c config.UpstreamConfig) Config {
	timeout := DefaultTimeout
	if c.TimeoutSeconds > 0 {
		timeout = time.Duration(c.TimeoutSeconds) * time.Second
	}
	return Config{
		BaseURL:    strings.TrimRight(c.BaseURL, "/"),
		Timeout:    timeout,
		RetryCount: c.RetryCount,
	}
}

// New returns a JSON client with the configured base URL, timeout and retry
// policy. Requests are traced through the OpenTelemetry transport.
func New(cfg Config) *resty.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetTransport(observability.Transport(nil)).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", constants.ServiceName+"/"+constants.ServiceVersion)

	if cfg.RetryCount > 0 {
		client.
			SetRetryCount(cfg.RetryCount).
			SetRetryWaitTime(100 * time.Millisecond).
			SetRetryMaxWaitTime(time.Second)
	}

	return client
}

// CheckStatus maps an upstream response to the package errors. A nil error
// means 200.
func CheckStatus(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch code := resp.StatusCode(); {
	case code == 200:
		return nil
	case code == 401 || code == 403:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, code)
	case code == 404:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	}
}
