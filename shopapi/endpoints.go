package shopapi

import (
	"net/url"
	"strings"
)

// Endpoints holds the path templates for the target API. The zero value of any field
// falls back to the standard storefront path, so a fixture file only needs to list the
// paths that differ on a particular deployment.
type Endpoints struct {
	Login          string `json:"login" yaml:"login"`
	Logout         string `json:"logout" yaml:"logout"`
	Profile        string `json:"profile" yaml:"profile"`
	Cart           string `json:"cart" yaml:"cart"`
	CartItems      string `json:"cart_items" yaml:"cart_items"`
	Checkout       string `json:"checkout" yaml:"checkout"`
	CheckoutSubmit string `json:"checkout_submit" yaml:"checkout_submit"`
	Orders         string `json:"orders" yaml:"orders"`
	Health         string `json:"health" yaml:"health"`
}

// DefaultEndpoints returns the standard storefront API paths.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:          "/auth/login",
		Logout:         "/auth/logout",
		Profile:        "/users/profile",
		Cart:           "/cart",
		CartItems:      "/cart/items",
		Checkout:       "/checkout",
		CheckoutSubmit: "/checkout/submit",
		Orders:         "/orders",
		Health:         "/health",
	}
}

// WithDefaults returns a copy with every unset field replaced by its standard path.
func (e Endpoints) WithDefaults() Endpoints {
	defaults := DefaultEndpoints()
	fill := func(value, fallback string) string {
		if value == "" {
			return fallback
		}
		return value
	}
	return Endpoints{
		Login:          fill(e.Login, defaults.Login),
		Logout:         fill(e.Logout, defaults.Logout),
		Profile:        fill(e.Profile, defaults.Profile),
		Cart:           fill(e.Cart, defaults.Cart),
		CartItems:      fill(e.CartItems, defaults.CartItems),
		Checkout:       fill(e.Checkout, defaults.Checkout),
		CheckoutSubmit: fill(e.CheckoutSubmit, defaults.CheckoutSubmit),
		Orders:         fill(e.Orders, defaults.Orders),
		Health:         fill(e.Health, defaults.Health),
	}
}

// CartItem returns the path for one cart line item.
func (e Endpoints) CartItem(productID string) string {
	return e.CartItems + "/" + url.PathEscape(productID)
}

// Order returns the path for one order.
func (e Endpoints) Order(orderID string) string {
	return e.Orders + "/" + url.PathEscape(orderID)
}

func joinURL(baseURL, path string) string {
	base := strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
