package httpclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/apexview/go-apikit/cookiesign"
	"github.com/apexview/go-apikit/logger"
	"github.com/apexview/go-apikit/trace"
)

const (
	acceptJSON        = "application/json"
	acceptOctetStream = "application/octet-stream"
	contentTypeForm   = "application/x-www-form-urlencoded"

	defaultTimeout            = 30 * time.Second
	defaultMaxPayloadLogBytes = 1024
)

// Client is a convenience wrapper for a single REST API host. It carries
// persistent headers and cookies, a timeout and a default retry policy, and
// exposes one synchronous exchange per operation.
type Client struct {
	host string
	log  logger.Logger

	timeout time.Duration
	retry   RetryPolicy

	headers map[string]string
	cookies map[string]string

	requestIDHeader    string
	insecureSkipVerify bool
	logPayloads        bool
	maxPayloadLogBytes int
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithTimeout sets the per-exchange timeout. The default is 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithDefaultRetryAttempts sets the default number of retry attempts.
func WithDefaultRetryAttempts(n int) Option {
	return func(c *Client) { c.retry.Attempts = n }
}

// WithDefaultBackoffFactor sets the default backoff multiplier.
func WithDefaultBackoffFactor(f float64) Option {
	return func(c *Client) { c.retry.BackoffFactor = f }
}

// WithDefaultRetryOnStatus sets the default retryable status codes.
func WithDefaultRetryOnStatus(codes ...int) Option {
	return func(c *Client) { c.retry.RetryOnStatus = codes }
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify() Option {
	return func(c *Client) { c.insecureSkipVerify = true }
}

// WithPayloadLogging enables debug logging of headers and body payloads,
// capped at maxBytes per body.
func WithPayloadLogging(maxBytes int) Option {
	return func(c *Client) {
		c.logPayloads = true
		if maxBytes > 0 {
			c.maxPayloadLogBytes = maxBytes
		}
	}
}

// WithRequestIDHeader changes the header used for request-ID propagation.
// The default is X-Request-ID.
func WithRequestIDHeader(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.requestIDHeader = name
		}
	}
}

// New creates a client for the given host. The host must be an absolute URL
// without a path component; only scheme and authority are kept. A nil logger
// falls back to a no-op sink.
func New(host string, log logger.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, &HostError{Host: host, Reason: "host is not a valid URL"}
	}
	if u.Path != "" {
		return nil, &HostError{Host: host, Reason: "no path should be specified on the host"}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &HostError{Host: host, Reason: "host must be an absolute URL"}
	}

	if log == nil {
		log = logger.NewNop()
	}

	c := &Client{
		host:               u.Scheme + "://" + u.Host,
		log:                log,
		timeout:            defaultTimeout,
		retry:              defaultRetryPolicy(),
		headers:            make(map[string]string),
		cookies:            make(map[string]string),
		requestIDHeader:    trace.HeaderXRequestID,
		maxPayloadLogBytes: defaultMaxPayloadLogBytes,
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	return c, nil
}

// Host returns the normalized scheme://authority the client was built with.
func (c *Client) Host() string { return c.host }

// AddHeader sets a persistent header sent with every request.
func (c *Client) AddHeader(name, value string) {
	c.headers[name] = value
}

// RemoveHeader deletes a persistent header. Removing an absent header is a
// no-op.
func (c *Client) RemoveHeader(name string) {
	delete(c.headers, name)
}

// SetBasicAuth sets the Authorization header to a basic-auth credential,
// replacing any prior Authorization header.
func (c *Client) SetBasicAuth(username, password string) {
	encoded := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	c.AddHeader("Authorization", "Basic "+encoded)
}

// SetTokenAuth sets the Authorization header to a bearer token, replacing any
// prior Authorization header.
func (c *Client) SetTokenAuth(token string) {
	c.AddHeader("Authorization", "Bearer "+token)
}

// AddCookie sets a persistent cookie sent with every request.
func (c *Client) AddCookie(name, payload string) {
	c.cookies[name] = payload
}

// RemoveCookie deletes a persistent cookie. Removing an absent cookie is a
// no-op.
func (c *Client) RemoveCookie(name string) {
	delete(c.cookies, name)
}

// AddSignedCookie signs the payload with a single-entry keyring and stores
// the resulting token as a persistent cookie. The payload handed to the
// signer carries an injected "key_id" field so the verifying side can select
// the matching key.
func (c *Client) AddSignedCookie(name string, payload map[string]any, signingKeyID, signingKey string) error {
	signer := cookiesign.New(map[string]string{signingKeyID: signingKey})

	signed := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		signed[k] = v
	}
	signed["key_id"] = signingKeyID

	token, err := signer.Sign(signed, signingKeyID)
	if err != nil {
		return err
	}
	c.AddCookie(name, token)
	return nil
}

// Get sends a GET request expecting a JSON response.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, acceptJSON, nil, nil, opts)
}

// GetBinary sends a GET request expecting a binary response. The raw bytes
// are available on Response.Raw.
func (c *Client) GetBinary(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, acceptOctetStream, nil, nil, opts)
}

// Post sends a POST request. jsonBody is sent JSON-encoded, formBody
// form-encoded; when both are given the JSON body wins.
func (c *Client) Post(ctx context.Context, path string, jsonBody map[string]any, formBody url.Values, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, acceptJSON, jsonBody, formBody, opts)
}

// Delete sends a DELETE request expecting a JSON response.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, acceptJSON, nil, nil, opts)
}

func (c *Client) do(ctx context.Context, method, path, accept string, jsonBody map[string]any, formBody url.Values, opts []RequestOption) (*Response, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, &PathError{Path: path}
	}
	fullURL := c.host + path

	// Per-call header set: persistent headers are merged into a copy so
	// Accept/Content-Type never leak back into the client's own map.
	headers := make(http.Header, len(c.headers)+2)
	for name, value := range c.headers {
		headers.Set(name, value)
	}
	headers.Set("Accept", accept)

	var rawBody []byte
	if formBody != nil {
		rawBody = []byte(formBody.Encode())
		headers.Set("Content-Type", contentTypeForm)
	}
	if jsonBody != nil {
		encoded, err := json.Marshal(jsonBody)
		if err != nil {
			return nil, err
		}
		rawBody = encoded
		headers.Set("Content-Type", acceptJSON)
	}

	reqOpts := &requestOptions{}
	for _, o := range opts {
		if o != nil {
			o(reqOpts)
		}
	}
	policy := reqOpts.resolve(c.retry)

	requestID := trace.EnsureRequestID(ctx)
	headers.Set(c.requestIDHeader, requestID)

	var body any
	if rawBody != nil {
		body = rawBody
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	req.Header = headers
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	c.logRequest(method, fullURL, requestID, headers, len(c.cookies), rawBody)

	// Session is scoped to this call; retries happen inside session.Do and a
	// final failing status comes back as a response, not an error.
	session := c.newSession(policy)
	defer session.HTTPClient.CloseIdleConnections()

	start := time.Now()
	httpResp, err := session.Do(req)
	if err != nil {
		// Transport-level failures propagate unwrapped.
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return nil, c.rateLimited(raw)
	}

	resp := newResponse(httpResp.StatusCode, reasonPhrase(httpResp), raw)
	c.logResponse(method, fullURL, requestID, resp, time.Since(start))
	return resp, nil
}

// rateLimited turns a raw 429 response into a distinguished error, logged at
// warning severity.
func (c *Client) rateLimited(raw []byte) error {
	message := "Rate limit exceeded"
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err == nil {
		if m, ok := decoded["message"].(string); ok && m != "" {
			message = m
		}
	}
	msg := "External API rate limit: " + message
	c.log.Warn().Msg(msg)
	return &TooManyRequestsError{Message: msg}
}

// reasonPhrase extracts the reason phrase from a response's status line.
func reasonPhrase(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}
