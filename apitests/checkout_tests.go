package apitests

import (
	"context"
	"fmt"
	"net/http"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-qa/storefront-contract-tests/framework/apitest"
	h "github.com/storefront-qa/storefront-contract-tests/framework/helpers"
	"github.com/storefront-qa/storefront-contract-tests/shopapi"
	"github.com/storefront-qa/storefront-contract-tests/testdata"
)

func doCheckoutTests(t *apitest.T) {
	t.Run("initiation", doCheckoutInitiationTests)
	t.Run("submission", doCheckoutSubmissionTests)
	t.Run("address validation", doCheckoutAddressValidationTests)
	t.Run("payment validation", doCheckoutPaymentValidationTests)
	t.Run("access control", doCheckoutAccessControlTests)
	t.Run("pricing", doCheckoutPricingTests)
	t.Run("stock conflicts", doCheckoutStockConflictTests)
}

// placeOrder drives a complete purchase of one product and returns the order
// response. It fails the test if the submission is refused.
func placeOrder(t *apitest.T, client *shopapi.Client, product testdata.Product, quantity int) shopapi.Result {
	t.Helper()
	data := requireContext(t).data
	mustAddItem(t, client, product, quantity)
	result, err := client.SubmitCheckout(context.Background(),
		data.Checkout.ValidAddress, data.Checkout.ValidPayment)
	require.NoError(t, err)
	require.True(t, result.OK(), "checkout submission was refused with status %d: %s",
		result.Status, result.ErrorMessage())
	return result
}

// submitCheckoutWith stages a one-item cart and submits it with the given address and
// payment details, returning the client so callers can inspect the cart afterwards.
func submitCheckoutWith(t *apitest.T, address testdata.Address, payment testdata.PaymentCard) (*shopapi.Client, shopapi.Result) {
	t.Helper()
	data := requireContext(t).data
	client := newCartClient(t)
	mustAddItem(t, client, data.Products.Book, 1)
	result, err := client.SubmitCheckout(context.Background(), address, payment)
	require.NoError(t, err)
	return client, result
}

func doCheckoutInitiationTests(t *apitest.T) {
	ctx := context.Background()
	data := requireContext(t).data

	t.Run("previews the cart", func(t *apitest.T) {
		product := data.Products.Book
		client := newCartClient(t)
		mustAddItem(t, client, product, 2)

		result, err := client.BeginCheckout(ctx)
		require.NoError(t, err)
		m.In(t).Assert(result, m.AllOf(
			IsOK(),
			BodyProperty("total", m.Not(m.BeNil())),
			BodyProperty("items", m.ItemsInAnyOrder(cartLine(product.ID, 2))),
		))

		// previewing must not consume the cart
		m.In(t).For("cart after preview").Assert(requireCart(t, client),
			cartWith(cartLine(product.ID, 2)))
	})

	t.Run("refuses an empty cart", func(t *apitest.T) {
		client := newCartClient(t)

		result, err := client.BeginCheckout(ctx)
		require.NoError(t, err)
		m.In(t).Assert(result, m.AllOf(
			HasStatusIn(400, 409),
			ErrorMessageMentions("empty", "cart"),
			WasNotRetried(),
		))
	})
}

func doCheckoutSubmissionTests(t *apitest.T) {
	requireSafeEnvironment(t)
	ctx := context.Background()
	data := requireContext(t).data

	t.Run("produces a confirmed order", func(t *apitest.T) {
		client := newCartClient(t)
		order := placeOrder(t, client, data.Products.Book, 2)

		m.In(t).Assert(order, m.AllOf(
			HasStatusIn(http.StatusOK, http.StatusCreated),
			BodyProperty("order_id", m.Not(m.Equal(""))),
			BodyProperty("status", m.Not(m.Equal(""))),
			BodyProperty("total", m.Not(m.BeNil())),
		))

		// the purchase consumed the cart
		m.In(t).For("cart after checkout").Assert(requireCart(t, client), cartWith())

		orderID := order.Field("order_id").StringValue()
		require.NotEmpty(t, orderID)
		fetched, err := client.GetOrder(ctx, orderID)
		require.NoError(t, err)
		m.In(t).For("order fetched back by id").Assert(fetched, m.AllOf(
			IsOK(),
			BodyProperty("order_id", m.Equal(orderID)),
		))
		assert.InDelta(t, order.Field("total").Float64Value(),
			fetched.Field("total").Float64Value(), 0.001,
			"fetched order total differs from the confirmation")
	})

	t.Run("totals on a multi-line order", func(t *apitest.T) {
		client := newCartClient(t)
		mustAddItem(t, client, data.Products.Laptop, 1)
		mustAddItem(t, client, data.Products.Book, 2)

		order, err := client.SubmitCheckout(ctx, data.Checkout.ValidAddress, data.Checkout.ValidPayment)
		require.NoError(t, err)
		require.True(t, order.OK(), "checkout submission was refused with status %d: %s",
			order.Status, order.ErrorMessage())

		m.In(t).Assert(order, BodyProperty("items", m.ItemsInAnyOrder(
			cartLine(data.Products.Laptop.ID, 1),
			cartLine(data.Products.Book.ID, 2),
		)))

		expectedSubtotal := data.Products.Laptop.Price + 2*data.Products.Book.Price
		total := order.Field("total").Float64Value()
		subtotal, tax, shipping := order.Field("subtotal"), order.Field("tax"), order.Field("shipping")
		if subtotal.IsNull() || tax.IsNull() || shipping.IsNull() {
			t.Debug("order response does not itemize subtotal, tax, and shipping")
			assert.GreaterOrEqual(t, total, expectedSubtotal-0.01,
				"order total is less than the catalog price of its items")
		} else {
			assert.InDelta(t, expectedSubtotal, subtotal.Float64Value(), 0.011,
				"order subtotal does not match catalog prices")
			assert.InDelta(t, subtotal.Float64Value()+tax.Float64Value()+shipping.Float64Value(),
				total, 0.011, "order total is not subtotal plus tax plus shipping")
		}
	})

	t.Run("refuses an empty cart", func(t *apitest.T) {
		client := newCartClient(t)

		result, err := client.SubmitCheckout(ctx, data.Checkout.ValidAddress, data.Checkout.ValidPayment)
		require.NoError(t, err)
		m.In(t).Assert(result, m.AllOf(
			HasStatusIn(400, 409),
			ErrorMessageMentions("empty", "cart"),
			WasNotRetried(),
		))
	})

	t.Run("a second submission does not create a second order", func(t *apitest.T) {
		client := newCartClient(t)
		first := placeOrder(t, client, data.Products.Book, 1)
		require.NotEmpty(t, first.Field("order_id").StringValue())

		second, err := client.SubmitCheckout(ctx, data.Checkout.ValidAddress, data.Checkout.ValidPayment)
		require.NoError(t, err)
		m.In(t).Assert(second, m.AllOf(
			HasStatusIn(400, 409),
			HasErrorMessage(),
			WasNotRetried(),
		))
	})
}

func doCheckoutAddressValidationTests(t *apitest.T) {
	requireSafeEnvironment(t)
	data := requireContext(t).data

	allParams := []struct {
		name   string
		mutate func(*testdata.Address)
	}{
		{"missing street", func(a *testdata.Address) { a.Street = "" }},
		{"missing city", func(a *testdata.Address) { a.City = "" }},
		{"missing state", func(a *testdata.Address) { a.State = "" }},
		{"missing zip code", func(a *testdata.Address) { a.ZipCode = "" }},
		{"blank street", func(a *testdata.Address) { a.Street = "   " }},
	}
	for _, p := range allParams {
		t.Run(p.name, func(t *apitest.T) {
			address := data.Checkout.ValidAddress
			p.mutate(&address)

			client, result := submitCheckoutWith(t, address, data.Checkout.ValidPayment)
			m.In(t).Assert(result, m.AllOf(
				HasStatusIn(400, 422),
				HasErrorMessage(),
				WasNotRetried(),
			))
			// the refused submission must leave the cart intact
			m.In(t).For("cart after refusal").Assert(requireCart(t, client),
				cartWith(cartLine(data.Products.Book.ID, 1)))
		})
	}
}

func doCheckoutPaymentValidationTests(t *apitest.T) {
	requireSafeEnvironment(t)
	data := requireContext(t).data

	allParams := []struct {
		name            string
		mutate          func(*testdata.PaymentCard)
		allowedStatuses []int
	}{
		{"card number failing the checksum", func(c *testdata.PaymentCard) {
			c.CardNumber = data.Checkout.InvalidPayment.CardNumber
		}, []int{400, 402, 422}},
		{"card number with letters", func(c *testdata.PaymentCard) {
			c.CardNumber = "4111abcd1111efgh"
		}, []int{400, 422}},
		{"card number too short", func(c *testdata.PaymentCard) {
			c.CardNumber = "4111"
		}, []int{400, 422}},
		{"empty card number", func(c *testdata.PaymentCard) {
			c.CardNumber = ""
		}, []int{400, 422}},
		{"expired card", func(c *testdata.PaymentCard) {
			c.ExpiryYear = "2020"
		}, []int{400, 402, 422}},
		{"expiry month out of range", func(c *testdata.PaymentCard) {
			c.ExpiryMonth = "13"
		}, []int{400, 422}},
		{"CVV too short", func(c *testdata.PaymentCard) {
			c.CVV = "12"
		}, []int{400, 422}},
		{"CVV too long", func(c *testdata.PaymentCard) {
			c.CVV = "12345"
		}, []int{400, 422}},
		{"CVV with letters", func(c *testdata.PaymentCard) {
			c.CVV = "abc"
		}, []int{400, 422}},
		{"missing cardholder name", func(c *testdata.PaymentCard) {
			c.CardholderName = ""
		}, []int{400, 422}},
	}
	for _, p := range allParams {
		t.Run(p.name, func(t *apitest.T) {
			payment := data.Checkout.ValidPayment
			p.mutate(&payment)

			client, result := submitCheckoutWith(t, data.Checkout.ValidAddress, payment)
			m.In(t).Assert(result, m.AllOf(
				HasStatusIn(p.allowedStatuses...),
				HasErrorMessage(),
				WasNotRetried(),
			))
			m.In(t).For("cart after refusal").Assert(requireCart(t, client),
				cartWith(cartLine(data.Products.Book.ID, 1)))
		})
	}

	t.Run("declined card", func(t *apitest.T) {
		client, result := submitCheckoutWith(t, data.Checkout.ValidAddress, data.Checkout.DeclinedPayment)
		m.In(t).Assert(result, m.AllOf(
			HasStatusIn(http.StatusBadRequest, http.StatusPaymentRequired),
			ErrorMessageMentions("declin"),
			WasNotRetried(),
		))
		// no order was created, so the cart must still hold the item
		m.In(t).For("cart after decline").Assert(requireCart(t, client),
			cartWith(cartLine(data.Products.Book.ID, 1)))
	})
}

func doCheckoutAccessControlTests(t *apitest.T) {
	ctx := context.Background()
	data := requireContext(t).data

	allParams := []struct {
		name string
		call func(*shopapi.Client) (shopapi.Result, error)
	}{
		{"initiate checkout", func(c *shopapi.Client) (shopapi.Result, error) {
			return c.BeginCheckout(ctx)
		}},
		{"submit checkout", func(c *shopapi.Client) (shopapi.Result, error) {
			return c.SubmitCheckout(ctx, data.Checkout.ValidAddress, data.Checkout.ValidPayment)
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

func doCheckoutPricingTests(t *apitest.T) {
	requireSafeEnvironment(t)
	t.NonCritical("tax rates and shipping charges are deployment-defined")
	data := requireContext(t).data

	client := newCartClient(t)
	order := placeOrder(t, client, data.Products.Laptop, 1)
	t.Debug("order: %s", h.CanonicalizedJSONString(order.Body))

	subtotal, tax, shipping := order.Field("subtotal"), order.Field("tax"), order.Field("shipping")
	if subtotal.IsNull() || tax.IsNull() || shipping.IsNull() {
		t.SkipWithReason("order response does not itemize subtotal, tax, and shipping")
	}
	assert.GreaterOrEqual(t, tax.Float64Value(), 0.0, "tax is negative")
	assert.LessOrEqual(t, tax.Float64Value(), subtotal.Float64Value()*0.3,
		"tax is more than 30 percent of the subtotal")
	assert.GreaterOrEqual(t, shipping.Float64Value(), 0.0, "shipping charge is negative")
	assert.LessOrEqual(t, shipping.Float64Value(), 50.0, "shipping charge is implausibly high")
}

func doCheckoutStockConflictTests(t *apitest.T) {
	requireSafeEnvironment(t)
	t.NonCritical("staging a stock conflict depends on inventory levels the deployment controls")
	ctx := context.Background()
	data := requireContext(t).data

	product := data.Products.Laptop
	held := data.Boundaries.MaxCartQuantity
	if product.Stock <= held || product.Stock > held*6 {
		t.SkipWithReason(fmt.Sprintf("needs %q stock between %d and %d, fixture lists %d",
			product.Name, held+1, held*6, product.Stock))
	}

	// The buyer holds the maximum quantity in their cart while another account buys
	// out the inventory, so the buyer's submission arrives after stock has run short.
	buyer := newCartClient(t)
	mustAddItem(t, buyer, product, held)

	other := LoggedInClient(t, data.Users.Admin)
	t.Defer(func() { _, _ = other.ClearCart(ctx) })
	_, err := other.ClearCart(ctx)
	require.NoError(t, err)
	for remaining := product.Stock; remaining >= held; remaining -= held {
		mustAddItem(t, other, product, held)
		result, err := other.SubmitCheckout(ctx, data.Checkout.ValidAddress, data.Checkout.ValidPayment)
		require.NoError(t, err)
		require.True(t, result.OK(), "draining order was refused with status %d: %s",
			result.Status, result.ErrorMessage())
	}

	result, err := buyer.SubmitCheckout(ctx, data.Checkout.ValidAddress, data.Checkout.ValidPayment)
	require.NoError(t, err)
	m.In(t).Assert(result, m.AllOf(
		HasStatusIn(400, 409, 422),
		ErrorMessageMentions("stock", "available"),
		WasNotRetried(),
	))
}
