// Package apitests contains the storefront API test suites.
//
// Tests in this package use other packages as follows:
//
// shopapi: the API test client that performs the HTTP operations being verified
//
// apitest: the basic test scope framework
//
// testdata: the read-only fixture set (accounts, products, checkout data, limits)
//
// harness: target verification and metadata
//
// Each test scope creates its own shopapi.Client, so no session state is shared
// between tests. Suites only depend on the fixture set and the documented API
// contract, never on internals of any particular deployment.
package apitests
