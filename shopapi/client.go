package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/storefront-qa/storefront-contract-tests/framework"
	"github.com/storefront-qa/storefront-contract-tests/framework/helpers"
)

const (
	defaultRequestTimeout = time.Second * 30
	defaultUserAgent      = "storefront-contract-tests"
)

// Config is the read-only configuration for a Client. The client never mutates it, so
// one Config value can be shared by any number of clients.
type Config struct {
	// BaseURL is the root URL of the target API, such as "https://staging.example.com/api".
	BaseURL string

	// Endpoints are the path templates for the target API. Unset fields use the
	// standard storefront paths.
	Endpoints Endpoints

	// Timeout bounds each individual HTTP exchange. Zero means 30 seconds.
	Timeout time.Duration

	// Retry controls retries of transport-level failures. The zero value means the
	// default policy; use NoRetries() to disable retries explicitly.
	Retry RetryPolicy

	// UserAgent overrides the User-Agent header sent with every request.
	UserAgent string

	// Logger receives a debug line for every request and response, with sensitive
	// body fields masked. Nil disables debug output.
	Logger framework.Logger

	// HTTPClient overrides the underlying HTTP client. Tests use this to point the
	// client at httptest servers with custom transports; when set, its own timeout
	// is left alone and Timeout above is ignored.
	HTTPClient *http.Client
}

// Client is a stateful API test client for the storefront service. It holds at most
// one session token, obtained by Login and discarded by Logout. A Client must not be
// shared between concurrently running test scopes.
type Client struct {
	baseURL    string
	endpoints  Endpoints
	retry      RetryPolicy
	userAgent  string
	logger     framework.Logger
	httpClient *http.Client
	token      string
}

// NewClient creates a Client from the given configuration.
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	retry := config.Retry
	if retry == (RetryPolicy{}) {
		retry = DefaultRetryPolicy()
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := config.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Client{
		baseURL:    config.BaseURL,
		endpoints:  config.Endpoints.WithDefaults(),
		retry:      retry.normalized(),
		userAgent:  userAgent,
		logger:     logger,
		httpClient: httpClient,
	}
}

// Endpoints returns the resolved path templates the client is using.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Token returns the current session token, or "" if the client is not logged in.
func (c *Client) Token() string {
	return c.token
}

// Login authenticates with the target API and, on a 2xx response containing a token,
// stores that token for subsequent requests. Any completed response, success or not,
// is returned as a Result; the session state only changes on success.
func (c *Client) Login(ctx context.Context, email, password string) (Result, error) {
	result, err := c.Request(ctx, http.MethodPost, c.endpoints.Login,
		map[string]string{"email": email, "password": password}, WithoutAuth())
	if err != nil {
		return result, err
	}
	if result.OK() {
		if token := result.Field("token").StringValue(); token != "" {
			c.token = token
		}
	}
	return result, nil
}

// Logout ends the session. The local token is cleared whatever the outcome, so a
// second Logout is harmless: it just sends an unauthenticated logout request.
func (c *Client) Logout(ctx context.Context) (Result, error) {
	result, err := c.Request(ctx, http.MethodPost, c.endpoints.Logout, nil)
	c.token = ""
	return result, err
}

// Request sends one request to the target API and returns the completed exchange.
//
// The path is joined to the configured base URL. A struct or map body is serialized
// as JSON; string, []byte, and json.RawMessage bodies are sent as-is so tests can
// deliver deliberately malformed payloads. The stored session token is attached
// unless WithoutAuth() is given.
//
// Transport-level failures are retried according to the configured policy (unless
// WithoutRetry() is given) and then reported as a *TransportError. Completed
// responses are never retried, whatever their status.
func (c *Client) Request(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	options ...RequestOption,
) (Result, error) {
	var params requestParams
	if err := helpers.ApplyOptions(&params, options...); err != nil {
		return Result{}, err
	}

	url := joinURL(c.baseURL, path)
	bodyBytes, err := encodeBody(body)
	if err != nil {
		return Result{}, fmt.Errorf("cannot serialize request body: %w", err)
	}
	// Validate method and URL once, before any attempt goes on the wire.
	if _, err := http.NewRequest(method, url, nil); err != nil {
		return Result{}, fmt.Errorf("cannot construct request: %w", err)
	}

	policy := c.retry
	if params.noRetry {
		policy = NoRetries()
	}

	op := method + " " + path
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if delay := policy.DelayBeforeAttempt(attempt); delay > 0 {
			c.logger.Printf("%s: retrying in %s (attempt %d of %d)", op, delay, attempt, policy.MaxAttempts)
			select {
			case <-ctx.Done():
				return Result{}, &TransportError{Op: op, Attempts: attempt - 1, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		result, err := c.do(ctx, method, url, bodyBytes, params)
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			// The failure came from cancellation, not the target; stop immediately.
			te := &TransportError{Op: op, Attempts: attempt, Err: lastErr}
			c.logger.Printf("%s", te)
			return Result{Attempts: attempt}, te
		}
	}

	te := &TransportError{Op: op, Attempts: policy.MaxAttempts, Err: lastErr}
	c.logger.Printf("%s", te)
	return Result{Attempts: policy.MaxAttempts}, te
}

func (c *Client) do(
	ctx context.Context,
	method string,
	url string,
	body []byte,
	params requestParams,
) (Result, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return Result{}, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		if contentType := params.contentType.OrElse("application/json"); contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
	}
	if !params.noAuth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for name, values := range params.headers {
		req.Header[name] = values
	}

	c.logger.Printf("%s %s", method, url)
	if body != nil {
		c.logger.Printf("  request body: %s", maskSensitiveBody(body))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("  transport error: %s", err)
		return Result{}, err
	}
	elapsed := time.Since(start)

	var rawBody []byte
	if resp.Body != nil {
		rawBody, err = io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			c.logger.Printf("  transport error reading response: %s", err)
			return Result{}, err
		}
	}

	c.logger.Printf("  response: %d (%s)", resp.StatusCode, elapsed)
	if len(rawBody) > 0 {
		c.logger.Printf("  response body: %s", maskSensitiveBody(rawBody))
	}

	return Result{
		Status:  resp.StatusCode,
		Body:    parseBody(rawBody),
		RawBody: rawBody,
		Header:  resp.Header,
		Elapsed: elapsed,
	}, nil
}

func parseBody(data []byte) ldvalue.Value {
	if !json.Valid(data) {
		return ldvalue.Null()
	}
	return ldvalue.Parse(data)
}

func encodeBody(body interface{}) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case json.RawMessage:
		return b, nil
	case ldvalue.Value:
		return []byte(b.JSONString()), nil
	default:
		return json.Marshal(body)
	}
}
