package apitests

import (
	"context"
	"strings"

	"github.com/stretchr/testify/require"

	"github.com/storefront-qa/storefront-contract-tests/framework/apitest"
	"github.com/storefront-qa/storefront-contract-tests/framework/harness"
	"github.com/storefront-qa/storefront-contract-tests/shopapi"
	"github.com/storefront-qa/storefront-contract-tests/testdata"
)

// SuiteContext is the application context that the suite entry point places in the
// test configuration: the fixture set, the client configuration for the target, and
// the metadata captured when the harness verified the target.
type SuiteContext struct {
	targetInfo   harness.TargetInfo
	data         testdata.TestData
	clientConfig shopapi.Config
}

func requireContext(t *apitest.T) SuiteContext {
	if c, ok := t.Context().(SuiteContext); ok {
		return c
	}
	panic("SuiteContext was not included in the global test configuration!" +
		" This is a basic mistake in the initialization logic.")
}

// requireSafeEnvironment skips the current scope if the target's health metadata says
// it is a production deployment. Tests that place orders or drain stock must call this
// first; pointing the suite at production should never buy anything.
func requireSafeEnvironment(t *apitest.T) {
	info := requireContext(t).targetInfo
	if strings.EqualFold(info.Environment, "production") {
		t.SkipWithReason("target identifies itself as production; not running tests that create orders")
	}
}

// NewShopClient creates a client for the target API in this test scope. Debug output
// from the client goes to the scope's captured log. Every scope gets its own client,
// so session state never leaks between tests.
func NewShopClient(t *apitest.T) *shopapi.Client {
	config := requireContext(t).clientConfig
	config.Logger = t.DebugLogger()
	return shopapi.NewClient(config)
}

// LoggedInClient creates a client and logs it in as the given account, failing the
// test if the login is rejected. The session is closed when the test scope exits.
func LoggedInClient(t *apitest.T, user testdata.User) *shopapi.Client {
	t.Helper()
	client := NewShopClient(t)
	result, err := client.Login(context.Background(), user.Email, user.Password)
	require.NoError(t, err)
	require.True(t, result.OK(), "login as %s failed with status %d: %s",
		user.Email, result.Status, result.ErrorMessage())
	require.NotEmpty(t, client.Token(), "login succeeded but no token was issued")
	t.Defer(func() {
		_, _ = client.Logout(context.Background())
	})
	return client
}

// newCartClient returns a client logged in as the standard user with an emptied cart.
// The cart is emptied again before the session is closed, so tests do not leave
// items behind for whoever uses the account next.
func newCartClient(t *apitest.T) *shopapi.Client {
	t.Helper()
	client := LoggedInClient(t, requireContext(t).data.Users.Standard)
	result, err := client.ClearCart(context.Background())
	require.NoError(t, err)
	require.True(t, result.OK(), "could not clear the cart before the test (status %d)", result.Status)
	t.Defer(func() {
		_, _ = client.ClearCart(context.Background())
	})
	return client
}

// mustAddItem adds a product to the cart and fails the test if the target rejects it.
// This is for tests whose subject is a later operation, not the add itself.
func mustAddItem(t *apitest.T, client *shopapi.Client, product testdata.Product, quantity int) {
	t.Helper()
	result, err := client.AddCartItem(context.Background(), product.ID, quantity)
	require.NoError(t, err)
	require.True(t, result.OK(), "adding %s (quantity %d) failed with status %d: %s",
		product.ID, quantity, result.Status, result.ErrorMessage())
}
