// Package framework contains the low-level test harness infrastructure that is not
// specific to the storefront API domain. The base package holds shared types such as
// Logger; the test runner lives in the apitest subpackage, and target probing in the
// harness subpackage.
//
// The general model is:
//
// 1. The harness points at a single target API, which it verifies is reachable before
// any tests run. In mock mode the target is an in-process implementation of the same
// API surface, hosted on a local listener.
//
// 2. There is a general notion of a test scope which is similar to Go's testing.T,
// allowing pieces of test logic to be associated with a test identifier and to
// accumulate success/failure results along with captured debug output.
//
// The domain-specific code that knows what is being tested lives outside framework:
// the shopapi client, the testdata fixtures, and the apitests suites.
package framework
