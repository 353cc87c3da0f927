package shopapi

import (
	"net/http"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// Result describes one completed HTTP exchange with the target API. The client returns
// a Result for every response it receives, including error statuses; test code decides
// what any given status means.
type Result struct {
	// Status is the HTTP status code.
	Status int

	// Body is the response body parsed as JSON, or ldvalue.Null() if the body was empty
	// or not valid JSON (RawBody always has the original bytes).
	Body ldvalue.Value

	// RawBody is the unparsed response body.
	RawBody []byte

	// Header is the response header.
	Header http.Header

	// Elapsed is how long the successful exchange took, not counting earlier failed
	// attempts or retry pauses.
	Elapsed time.Duration

	// Attempts is how many times the request was sent, counting this successful one.
	Attempts int
}

// OK returns true for any 2xx status.
func (r Result) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Field returns a top-level property of the JSON response body, or ldvalue.Null() if
// the body is not an object or has no such property.
func (r Result) Field(name string) ldvalue.Value {
	return r.Body.GetByKey(name)
}

// ErrorMessage returns the error description from the response body, checking the
// "error" and "message" properties the storefront API uses, or "" if there is none.
func (r Result) ErrorMessage() string {
	if msg := r.Field("error").StringValue(); msg != "" {
		return msg
	}
	return r.Field("message").StringValue()
}
