// Package apitest contains a test runner framework that is similar to Go's testing
// package, but is run as regular Go application code rather than Go tests. It adds
// richer capabilities for filtering, logging, and result reporting, which the
// storefront suites rely on when running against a live target.
package apitest
