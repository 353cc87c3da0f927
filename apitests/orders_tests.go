package apitests

import (
	"context"
	"net/http"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-qa/storefront-contract-tests/framework/apitest"
)

func doOrderTests(t *apitest.T) {
	t.Run("fetch after checkout", doOrderFetchTests)
	t.Run("unknown order id", doOrderUnknownIDTest)
	t.Run("requires authentication", doOrderAuthenticationTest)
	t.Run("orders are private to their account", doOrderPrivacyTest)
}

func doOrderFetchTests(t *apitest.T) {
	requireSafeEnvironment(t)
	ctx := context.Background()
	data := requireContext(t).data
	product := data.Products.Book

	client := newCartClient(t)
	confirmation := placeOrder(t, client, product, 1)
	orderID := confirmation.Field("order_id").StringValue()
	require.NotEmpty(t, orderID)

	result, err := client.GetOrder(ctx, orderID)
	require.NoError(t, err)
	m.In(t).Assert(result, m.AllOf(
		IsOK(),
		BodyProperty("order_id", m.Equal(orderID)),
		BodyProperty("status", m.Not(m.Equal(""))),
		BodyProperty("items", m.ItemsInAnyOrder(cartLine(product.ID, 1))),
	))
	assert.InDelta(t, confirmation.Field("total").Float64Value(),
		result.Field("total").Float64Value(), 0.001,
		"fetched order total differs from the confirmation")
}

func doOrderUnknownIDTest(t *apitest.T) {
	ctx := context.Background()
	data := requireContext(t).data

	client := LoggedInClient(t, data.Users.Standard)
	result, err := client.GetOrder(ctx, "ord-0")
	require.NoError(t, err)
	m.In(t).Assert(result, m.AllOf(
		HasStatus(http.StatusNotFound),
		HasErrorMessage(),
		WasNotRetried(),
	))
}

func doOrderAuthenticationTest(t *apitest.T) {
	ctx := context.Background()

	client := NewShopClient(t) // never logged in
	result, err := client.GetOrder(ctx, "ord-1001")
	require.NoError(t, err)
	m.In(t).Assert(result, m.AllOf(
		HasStatus(http.StatusUnauthorized),
		HasErrorMessage(),
	))
}

func doOrderPrivacyTest(t *apitest.T) {
	requireSafeEnvironment(t)
	ctx := context.Background()
	data := requireContext(t).data

	buyer := newCartClient(t)
	confirmation := placeOrder(t, buyer, data.Products.Book, 1)
	orderID := confirmation.Field("order_id").StringValue()
	require.NotEmpty(t, orderID)

	// a different account must not be able to read the order, and must not be able
	// to tell that it exists at all
	other := LoggedInClient(t, data.Users.Admin)
	result, err := other.GetOrder(ctx, orderID)
	require.NoError(t, err)
	m.In(t).Assert(result, m.AllOf(
		HasStatusIn(http.StatusForbidden, http.StatusNotFound),
		HasErrorMessage(),
	))
}
