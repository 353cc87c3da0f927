package apitests

import (
	"context"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/storefront-qa/storefront-contract-tests/framework/apitest"
)

// doSmokeTests is the minimal subset that proves the core purchase path works at all:
// log in, put something in the cart, start checkout.
func doSmokeTests(t *apitest.T) {
	ctx := context.Background()

	t.Run("login", func(t *apitest.T) {
		user := requireContext(t).data.Users.Standard
		client := NewShopClient(t)

		result, err := client.Login(ctx, user.Email, user.Password)
		require.NoError(t, err)
		m.In(t).Assert(result, m.AllOf(
			IsOK(),
			BodyProperty("token", m.Not(m.Equal(""))),
		))
		require.NotEmpty(t, client.Token())
		t.Defer(func() { _, _ = client.Logout(ctx) })
	})

	t.Run("add item to cart", func(t *apitest.T) {
		product := requireContext(t).data.Products.Book
		client := newCartClient(t)

		result, err := client.AddCartItem(ctx, product.ID, 1)
		require.NoError(t, err)
		m.In(t).Assert(result, IsOK())
	})

	t.Run("initiate checkout", func(t *apitest.T) {
		data := requireContext(t).data
		client := newCartClient(t)
		mustAddItem(t, client, data.Products.Book, 1)

		result, err := client.BeginCheckout(ctx)
		require.NoError(t, err)
		m.In(t).Assert(result, m.AllOf(
			IsOK(),
			ResultBody().Should(m.JSONProperty("total").Should(m.Not(m.BeNil()))),
		))
	})
}
