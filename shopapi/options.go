package shopapi

import (
	"net/http"

	"github.com/storefront-qa/storefront-contract-tests/framework/helpers"
	o "github.com/storefront-qa/storefront-contract-tests/framework/opt"
)

type requestParams struct {
	noAuth      bool
	noRetry     bool
	contentType o.Maybe[string]
	headers     http.Header
}

// RequestOption modifies a single request made with Client.Request. The With*
// functions in this package provide all the available options.
type RequestOption = helpers.ConfigOption[requestParams]

type requestOptionFunc func(*requestParams) error

func (f requestOptionFunc) Configure(p *requestParams) error { return f(p) }

// WithoutAuth suppresses the Authorization header even if the client has a session
// token. Login uses this, as do tests of unauthenticated access.
func WithoutAuth() RequestOption {
	return requestOptionFunc(func(p *requestParams) error {
		p.noAuth = true
		return nil
	})
}

// WithoutRetry sends the request exactly once regardless of the client's retry policy.
// Used for non-idempotent operations such as checkout submission.
func WithoutRetry() RequestOption {
	return requestOptionFunc(func(p *requestParams) error {
		p.noRetry = true
		return nil
	})
}

// WithHeader adds a header to the request.
func WithHeader(name, value string) RequestOption {
	return requestOptionFunc(func(p *requestParams) error {
		if p.headers == nil {
			p.headers = make(http.Header)
		}
		p.headers.Add(name, value)
		return nil
	})
}

// WithContentType overrides the default application/json content type for the request
// body. An empty string drops the Content-Type header entirely, for tests of how the
// target treats untyped payloads.
func WithContentType(contentType string) RequestOption {
	return requestOptionFunc(func(p *requestParams) error {
		p.contentType = o.Some(contentType)
		return nil
	})
}
