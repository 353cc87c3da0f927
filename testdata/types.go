// Package testdata provides the read-only fixture set used by the test suites: known
// user accounts, products, checkout addresses and payment cards, and boundary values.
// Defaults are embedded in the binary; a run can override them with -data <file>.
//
// Fixture files may be JSON or YAML. Overrides merge field by field, so a file only
// needs to list the values that differ for a particular target deployment.
package testdata

import (
	"github.com/storefront-qa/storefront-contract-tests/shopapi"
)

// TestData is the complete fixture set for one run.
type TestData struct {
	Users      Users             `json:"users"`
	Products   Products          `json:"products"`
	Checkout   Checkout          `json:"checkout"`
	Boundaries Boundaries        `json:"boundaries"`
	Endpoints  shopapi.Endpoints `json:"endpoints"`
}

// Users holds the accounts the target API is expected to know about, plus credential
// sets that must be rejected.
type Users struct {
	Standard     User `json:"standard"`
	Admin        User `json:"admin"`
	InvalidEmail User `json:"invalid_email"`
	NonExistent  User `json:"non_existent"`
}

// User is one account fixture.
type User struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Products holds the catalog entries the suites rely on. The target catalog must
// contain these products with at least the listed stock (except OutOfStock, which
// must have none).
type Products struct {
	Laptop     Product `json:"laptop"`
	Smartphone Product `json:"smartphone"`
	Book       Product `json:"book"`
	OutOfStock Product `json:"out_of_stock"`
}

// Product is one catalog fixture.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// All returns every product fixture, in catalog order.
func (p Products) All() []Product {
	return []Product{p.Laptop, p.Smartphone, p.Book, p.OutOfStock}
}

// Checkout holds shipping and payment fixtures, including cards that must be rejected
// or declined.
type Checkout struct {
	ValidAddress    Address     `json:"valid_address"`
	ValidPayment    PaymentCard `json:"valid_payment"`
	InvalidPayment  PaymentCard `json:"invalid_payment"`
	DeclinedPayment PaymentCard `json:"declined_payment"`
}

// Address is a shipping address in the shape the checkout endpoint accepts.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// PaymentCard is payment information in the shape the checkout endpoint accepts.
type PaymentCard struct {
	CardNumber     string `json:"card_number"`
	ExpiryMonth    string `json:"expiry_month"`
	ExpiryYear     string `json:"expiry_year"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholder_name"`
}

// Boundaries holds the limits the boundary suites probe.
type Boundaries struct {
	EmailMaxLength    int `json:"email_max_length"`
	PasswordMinLength int `json:"password_min_length"`
	PasswordMaxLength int `json:"password_max_length"`
	MaxCartQuantity   int `json:"max_cart_quantity"`
}
