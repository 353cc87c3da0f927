package shopapi

import (
	"context"
	"net/http"
)

// Typed wrappers for the storefront operations the test suites use. Each one is a
// thin layer over Request with the right method, path template, and payload shape.

// GetProfile fetches the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (Result, error) {
	return c.Request(ctx, http.MethodGet, c.endpoints.Profile, nil)
}

// GetCart fetches the current cart contents.
func (c *Client) GetCart(ctx context.Context) (Result, error) {
	return c.Request(ctx, http.MethodGet, c.endpoints.Cart, nil)
}

// AddCartItem adds a quantity of a product to the cart.
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) (Result, error) {
	return c.Request(ctx, http.MethodPost, c.endpoints.CartItems,
		map[string]interface{}{"product_id": productID, "quantity": quantity})
}

// UpdateCartItem changes the quantity of a cart line item.
func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) (Result, error) {
	return c.Request(ctx, http.MethodPut, c.endpoints.CartItem(productID),
		map[string]interface{}{"quantity": quantity})
}

// RemoveCartItem deletes one line item from the cart.
func (c *Client) RemoveCartItem(ctx context.Context, productID string) (Result, error) {
	return c.Request(ctx, http.MethodDelete, c.endpoints.CartItem(productID), nil)
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) (Result, error) {
	return c.Request(ctx, http.MethodDelete, c.endpoints.Cart, nil)
}

// BeginCheckout initiates checkout for the current cart.
func (c *Client) BeginCheckout(ctx context.Context) (Result, error) {
	return c.Request(ctx, http.MethodPost, c.endpoints.Checkout, nil)
}

// SubmitCheckout submits the order with shipping and payment details. The request is
// sent exactly once; checkout submission is not idempotent.
func (c *Client) SubmitCheckout(ctx context.Context, shippingAddress, paymentInfo interface{}) (Result, error) {
	return c.Request(ctx, http.MethodPost, c.endpoints.CheckoutSubmit,
		map[string]interface{}{"shipping_address": shippingAddress, "payment_info": paymentInfo},
		WithoutRetry())
}

// GetOrder fetches one order by ID.
func (c *Client) GetOrder(ctx context.Context, orderID string) (Result, error) {
	return c.Request(ctx, http.MethodGet, c.endpoints.Order(orderID), nil)
}
