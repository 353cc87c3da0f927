package apitests

import (
	"context"
	"net/http"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-qa/storefront-contract-tests/framework/apitest"
	"github.com/storefront-qa/storefront-contract-tests/shopapi"
)

func doCartTests(t *apitest.T) {
	t.Run("add and modify", doCartAddModifyTests)
	t.Run("contents", doCartContentsTests)
	t.Run("quantity validation", doCartQuantityValidationTests)
	t.Run("product validation", doCartProductValidationTests)
	t.Run("access control", doCartAccessControlTests)
	t.Run("malformed payload", doCartMalformedPayloadTests)
	t.Run("cart persists across sessions", doCartPersistenceTest)
}

// cartLine matches one element of a cart's items array.
func cartLine(productID string, quantity int) m.Matcher {
	return m.AllOf(
		m.JSONProperty("product_id").Should(m.Equal(productID)),
		m.JSONProperty("quantity").Should(m.Equal(quantity)),
		m.JSONProperty("name").Should(m.Not(m.Equal(""))),
		m.JSONProperty("price").Should(m.Not(m.BeNil())),
	)
}

// cartWith matches a GET /cart response holding exactly the given lines, in any order.
func cartWith(lines ...m.Matcher) m.Matcher {
	return ResultBody().Should(m.AllOf(
		m.JSONProperty("items").Should(m.ItemsInAnyOrder(lines...)),
		m.JSONProperty("total").Should(m.Not(m.BeNil())),
	))
}

func requireCart(t *apitest.T, client *shopapi.Client) shopapi.Result {
	t.Helper()
	result, err := client.GetCart(context.Background())
	require.NoError(t, err)
	require.True(t, result.OK(), "fetching the cart failed with status %d: %s",
		result.Status, result.ErrorMessage())
	return result
}

func doCartAddModifyTests(t *apitest.T) {
	ctx := context.Background()
	data := requireContext(t).data

	t.Run("add one product", func(t *apitest.T) {
		product := data.Products.Book
		client := newCartClient(t)

		result, err := client.AddCartItem(ctx, product.ID, 2)
		require.NoError(t, err)
		m.In(t).Assert(result, m.AllOf(
			HasStatusIn(http.StatusOK, http.StatusCreated),
			WasNotRetried(),
		))

		m.In(t).Assert(requireCart(t, client), cartWith(cartLine(product.ID, 2)))
	})

	t.Run("add several products", func(t *apitest.T) {
		client := newCartClient(t)
		mustAddItem(t, client, data.Products.Laptop, 1)
		mustAddItem(t, client, data.Products.Book, 3)

		m.In(t).Assert(requireCart(t, client), cartWith(
			cartLine(data.Products.Laptop.ID, 1),
			cartLine(data.Products.Book.ID, 3),
		))
	})

	t.Run("adding the same product merges lines", func(t *apitest.T) {
		product := data.Products.Book
		client := newCartClient(t)
		mustAddItem(t, client, product, 1)
		mustAddItem(t, client, product, 1)

		// one line with the combined quantity, not two lines of one
		m.In(t).Assert(requireCart(t, client), cartWith(cartLine(product.ID, 2)))
	})

	t.Run("update quantity", func(t *apitest.T) {
		product := data.Products.Book
		client := newCartClient(t)
		mustAddItem(t, client, product, 1)

		result, err := client.UpdateCartItem(ctx, product.ID, 3)
		require.NoError(t, err)
		m.In(t).Assert(result, IsOK())

		m.In(t).Assert(requireCart(t, client), cartWith(cartLine(product.ID, 3)))
	})

	t.Run("remove item", func(t *apitest.T) {
		client := newCartClient(t)
		mustAddItem(t, client, data.Products.Laptop, 1)
		mustAddItem(t, client, data.Products.Book, 1)

		result, err := client.RemoveCartItem(ctx, data.Products.Laptop.ID)
		require.NoError(t, err)
		m.In(t).Assert(result, IsOK())

		m.In(t).Assert(requireCart(t, client), cartWith(cartLine(data.Products.Book.ID, 1)))
	})

	t.Run("clear cart", func(t *apitest.T) {
		client := newCartClient(t)
		mustAddItem(t, client, data.Products.Laptop, 1)
		mustAddItem(t, client, data.Products.Book, 2)

		result, err := client.ClearCart(ctx)
		require.NoError(t, err)
		m.In(t).Assert(result, IsOK())

		m.In(t).Assert(requireCart(t, client), cartWith())
	})
}

func doCartContentsTests(t *apitest.T) {
	data := requireContext(t).data

	t.Run("line item structure", func(t *apitest.T) {
		product := data.Products.Smartphone
		client := newCartClient(t)
		mustAddItem(t, client, product, 2)

		m.In(t).Assert(requireCart(t, client), cartWith(cartLine(product.ID, 2)))
	})

	t.Run("total matches line prices", func(t *apitest.T) {
		client := newCartClient(t)
		mustAddItem(t, client, data.Products.Laptop, 2)
		mustAddItem(t, client, data.Products.Book, 3)

		result := requireCart(t, client)

		// The total must equal the sum of the returned lines; the lines in turn must
		// carry the catalog prices the fixtures promise.
		items := result.Field("items")
		sumOfLines := 0.0
		for i := 0; i < items.Count(); i++ {
			line := items.GetByIndex(i)
			sumOfLines += line.GetByKey("price").Float64Value() *
				float64(line.GetByKey("quantity").IntValue())
		}
		assert.InDelta(t, sumOfLines, result.Field("total").Float64Value(), 0.011,
			"cart total does not match the sum of its line items")

		expected := 2*data.Products.Laptop.Price + 3*data.Products.Book.Price
		assert.InDelta(t, expected, result.Field("total").Float64Value(), 0.011,
			"cart total does not match the fixture catalog prices")
	})

	t.Run("empty cart reads as zero", func(t *apitest.T) {
		client := newCartClient(t)

		result := requireCart(t, client)
		m.In(t).Assert(result, cartWith())
		assert.Zero(t, result.Field("total").Float64Value())
	})
}

func doCartQuantityValidationTests(t *apitest.T) {
	ctx := context.Background()
	data := requireContext(t).data
	maxQuantity := data.Boundaries.MaxCartQuantity

	t.Run("maximum quantity is accepted", func(t *apitest.T) {
		product := data.Products.Book
		client := newCartClient(t)

		result, err := client.AddCartItem(ctx, product.ID, maxQuantity)
		require.NoError(t, err)
		m.In(t).Assert(result, HasStatusIn(http.StatusOK, http.StatusCreated))

		m.In(t).Assert(requireCart(t, client), cartWith(cartLine(product.ID, maxQuantity)))
	})

	allParams := []struct {
		name            string
		quantity        int
		allowedStatuses []int
	}{
		{"zero quantity", 0, []int{400, 422}},
		{"negative quantity", -1, []int{400, 422}},
		{"beyond maximum quantity", maxQuantity + 1, []int{400, 409, 422}},
		{"very large quantity", 99999, []int{400, 409, 422}},
	}
	for _, p := range allParams {
		t.Run(p.name, func(t *apitest.T) {
			client := newCartClient(t)

			result, err := client.AddCartItem(ctx, data.Products.Book.ID, p.quantity)
			require.NoError(t, err)

			// a completed refusal, never a transport error, and never retried
			m.In(t).Assert(result, m.AllOf(
				HasStatusIn(p.allowedStatuses...),
				HasErrorMessage(),
				WasNotRetried(),
			))
			m.In(t).For("cart after refusal").Assert(requireCart(t, client), cartWith())
		})
	}
}

func doCartProductValidationTests(t *apitest.T) {
	ctx := context.Background()
	data := requireContext(t).data

	t.Run("unknown product id", func(t *apitest.T) {
		client := newCartClient(t)

		result, err := client.AddCartItem(ctx, "prod-does-not-exist", 1)
		require.NoError(t, err)
		m.In(t).Assert(result, m.AllOf(
			HasStatusIn(400, 404, 422),
			HasErrorMessage(),
			WasNotRetried(),
		))
	})

	t.Run("out-of-stock product", func(t *apitest.T) {
		client := newCartClient(t)

		result, err := client.AddCartItem(ctx, data.Products.OutOfStock.ID, 1)
		require.NoError(t, err)
		m.In(t).Assert(result, m.AllOf(
			HasStatusIn(400, 409, 422),
			ErrorMessageMentions("stock", "unavailable"),
		))
	})

	t.Run("update a product that is not in the cart", func(t *apitest.T) {
		client := newCartClient(t)

		result, err := client.UpdateCartItem(ctx, data.Products.Laptop.ID, 2)
		require.NoError(t, err)
		m.In(t).Assert(result, m.AllOf(
			HasStatusIn(400, 404),
			HasErrorMessage(),
		))
	})

	t.Run("remove a product that is not in the cart", func(t *apitest.T) {
		client := newCartClient(t)

		result, err := client.RemoveCartItem(ctx, data.Products.Laptop.ID)
		require.NoError(t, err)
		m.In(t).Assert(result, m.AllOf(
			HasStatusIn(400, 404),
			HasErrorMessage(),
		))
	})
}

func doCartAccessControlTests(t *apitest.T) {
	ctx := context.Background()
	data := requireContext(t).data

	allParams := []struct {
		name string
		call func(*shopapi.Client) (shopapi.Result, error)
	}{
		{"get cart", func(c *shopapi.Client) (shopapi.Result, error) {
			return c.GetCart(ctx)
		}},
		{"add item", func(c *shopapi.Client) (shopapi.Result, error) {
			return c.AddCartItem(ctx, data.Products.Book.ID, 1)
		}},
		{"update item", func(c *shopapi.Client) (shopapi.Result, error) {
			return c.UpdateCartItem(ctx, data.Products.Book.ID, 1)
		}},
		{"clear cart", func(c *shopapi.Client) (shopapi.Result, error) {
			return c.ClearCart(ctx)
		}},
	}
	for _, p := range allParams {
		t.Run(p.name, func(t *apitest.T) {
			client := NewShopClient(t) // never logged in

			result, err := p.call(client)
			require.NoError(t, err)
			m.In(t).Assert(result, m.AllOf(
				HasStatus(http.StatusUnauthorized),
				HasErrorMessage(),
			))
		})
	}
}

func doCartMalformedPayloadTests(t *apitest.T) {
	ctx := context.Background()

	allParams := []struct {
		name string
		body string
	}{
		{"truncated JSON", `{"product_id": "prod-1003", "quantity": `},
		{"not JSON at all", `product_id=prod-1003&quantity=1`},
		{"wrong value types", `{"product_id": 42, "quantity": "three"}`},
	}
	for _, p := range allParams {
		t.Run(p.name, func(t *apitest.T) {
			client := newCartClient(t)

			result, err := client.Request(ctx, http.MethodPost, client.Endpoints().CartItems, p.body)
			require.NoError(t, err)
			m.In(t).Assert(result, m.AllOf(
				HasStatusIn(400, 422),
				WasNotRetried(),
			))
		})
	}
}

func doCartPersistenceTest(t *apitest.T) {
	ctx := context.Background()
	t.NonCritical("whether carts survive across sessions server-side is deployment-defined")
	data := requireContext(t).data
	product := data.Products.Book

	first := newCartClient(t)
	mustAddItem(t, first, product, 1)
	_, err := first.Logout(ctx)
	require.NoError(t, err)

	second := LoggedInClient(t, data.Users.Standard)
	t.Defer(func() { _, _ = second.ClearCart(ctx) })

	m.In(t).Assert(requireCart(t, second), cartWith(cartLine(product.ID, 1)))
}
