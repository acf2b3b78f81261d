package httpclient

import (
	"context"
	"crypto/tls"
	"math"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// RetryPolicy describes how the transport retries a single logical exchange.
// Attempts counts retries on top of the initial request; zero disables
// retrying. A retry fires on a status in RetryOnStatus or on a
// connection-level failure, and the wait before retry n is
// BackoffFactor * 2^(n-1) seconds, capped by the transport.
type RetryPolicy struct {
	Attempts      int
	BackoffFactor float64
	RetryOnStatus []int
}

// defaultRetryPolicy builds the client default. The status slice is
// constructed fresh per client so instances never share mutable state.
func defaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:      0,
		BackoffFactor: 0.1,
		RetryOnStatus: []int{429, 500, 502, 503, 504},
	}
}

// requestOptions carries per-call overrides. Unset fields fall back to the
// client default independently of each other.
type requestOptions struct {
	attempts      *int
	backoffFactor *float64
	retryOnStatus []int
}

// RequestOption overrides part of the retry policy for a single call.
type RequestOption func(*requestOptions)

// WithRetryAttempts overrides the number of retry attempts for this call.
func WithRetryAttempts(n int) RequestOption {
	return func(o *requestOptions) { o.attempts = &n }
}

// WithBackoffFactor overrides the backoff multiplier for this call.
func WithBackoffFactor(f float64) RequestOption {
	return func(o *requestOptions) { o.backoffFactor = &f }
}

// WithRetryOnStatus overrides the retryable status codes for this call.
func WithRetryOnStatus(codes ...int) RequestOption {
	return func(o *requestOptions) { o.retryOnStatus = codes }
}

// resolve merges per-call overrides over the default policy, field by field.
func (o *requestOptions) resolve(def RetryPolicy) RetryPolicy {
	p := def
	if o.attempts != nil {
		p.Attempts = *o.attempts
	}
	if o.backoffFactor != nil {
		p.BackoffFactor = *o.backoffFactor
	}
	if o.retryOnStatus != nil {
		p.RetryOnStatus = o.retryOnStatus
	}
	return p
}

// expBackoff implements wait = factor * 2^(n-1) for retry n. retryablehttp
// hands us attemptNum starting at 0 for the first retry.
func expBackoff(factor float64) retryablehttp.Backoff {
	return func(_, maxWait time.Duration, attemptNum int, _ *http.Response) time.Duration {
		wait := time.Duration(factor * math.Pow(2, float64(attemptNum)) * float64(time.Second))
		if wait > maxWait {
			wait = maxWait
		}
		return wait
	}
}

// statusRetryPolicy retries on the resolved status set and on
// connection-level failures. Context cancellation stops the attempt loop.
func statusRetryPolicy(codes []int) retryablehttp.CheckRetry {
	set := make(map[int]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, nil
		}
		if resp != nil && set[resp.StatusCode] {
			return true, nil
		}
		return false, nil
	}
}

// newSession builds the scoped transport for a single call. The session is
// never reused: the caller closes its idle connections when the exchange is
// done. Exhausted retries return the last response, they do not raise.
func (c *Client) newSession(policy RetryPolicy) *retryablehttp.Client {
	transport := http.DefaultTransport
	if c.insecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	session := retryablehttp.NewClient()
	session.HTTPClient = &http.Client{
		Timeout:   c.timeout,
		Transport: transport,
	}
	session.Logger = nil
	session.RetryMax = policy.Attempts
	session.Backoff = expBackoff(policy.BackoffFactor)
	session.CheckRetry = statusRetryPolicy(policy.RetryOnStatus)
	session.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return session
}
