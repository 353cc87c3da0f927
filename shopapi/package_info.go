// Package shopapi is the API test client for the storefront service.
//
// A Client wraps one authenticated session against the target API: it builds requests
// from configured endpoint templates, attaches the bearer token obtained by Login,
// applies the configured timeout and retry policy, and returns every completed HTTP
// exchange as a Result regardless of status code. Only transport-level failures (after
// the retry policy is exhausted) are reported as Go errors, so test code can always
// distinguish "the API answered with an error status" from "the API never answered".
//
// Clients are not safe for concurrent use; each test scope creates its own.
package shopapi
