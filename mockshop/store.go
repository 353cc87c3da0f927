package mockshop

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/maps"

	"github.com/storefront-qa/storefront-contract-tests/framework/helpers"
	"github.com/storefront-qa/storefront-contract-tests/testdata"
)

var (
	errProductNotFound   = errors.New("product not found")
	errOutOfStock        = errors.New("product out of stock")
	errInsufficientStock = errors.New("insufficient stock")
	errQuantityTooLarge  = errors.New("quantity exceeds maximum")
	errItemNotInCart     = errors.New("item not in cart")
	errOrderNotFound     = errors.New("order not found")
	errCartEmpty         = errors.New("cart empty")
)

// Account is a registered user as returned by the login and profile endpoints.
// The password is kept out of every response body.
type Account struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`

	password string
}

// CartItem is one line of a cart or order.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Cart is the response shape of the cart endpoints.
type Cart struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

// Order is a completed purchase.
type Order struct {
	OrderID         string           `json:"order_id"`
	Status          string           `json:"status"`
	Items           []CartItem       `json:"items"`
	Subtotal        float64          `json:"subtotal"`
	Tax             float64          `json:"tax"`
	Shipping        float64          `json:"shipping"`
	Total           float64          `json:"total"`
	ShippingAddress testdata.Address `json:"shipping_address"`
	CreatedAt       time.Time        `json:"created_at"`

	userEmail string
}

const (
	taxRate              = 0.08
	flatShippingCost     = 9.99
	freeShippingOver     = 100.0
	defaultMaxQuantity   = 10
	orderStatusConfirmed = "confirmed"
)

// store holds all mutable state of the mock storefront. Handlers run on server
// goroutines, so every access goes through the lock.
type store struct {
	users       map[string]Account // key: lowercased email
	products    map[string]testdata.Product
	carts       map[string]map[string]int // user email -> product ID -> quantity
	orders      map[string]Order
	maxQuantity int
	nextOrderID int
	lock        sync.Mutex
}

func newStore(seed testdata.TestData) *store {
	s := &store{
		users:       make(map[string]Account),
		products:    make(map[string]testdata.Product),
		carts:       make(map[string]map[string]int),
		orders:      make(map[string]Order),
		maxQuantity: seed.Boundaries.MaxCartQuantity,
		nextOrderID: 1000,
	}
	if s.maxQuantity <= 0 {
		s.maxQuantity = defaultMaxQuantity
	}
	for i, u := range []testdata.User{seed.Users.Standard, seed.Users.Admin} {
		if u.Email == "" {
			continue
		}
		s.users[normalizeEmail(u.Email)] = Account{
			ID:        fmt.Sprintf("u-%d", 1001+i),
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      u.Role,
			password:  u.Password,
		}
	}
	for _, p := range seed.Products.All() {
		if p.ID != "" {
			s.products[p.ID] = p
		}
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func (s *store) findAccount(email string) (Account, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	a, ok := s.users[normalizeEmail(email)]
	return a, ok
}

func (s *store) userCart(email string) map[string]int {
	key := normalizeEmail(email)
	c := s.carts[key]
	if c == nil {
		c = make(map[string]int)
		s.carts[key] = c
	}
	return c
}

// cartSnapshot builds the response shape for the user's cart. Items come out in a
// stable order so that repeated reads look the same.
func (s *store) cartSnapshot(email string) Cart {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cartSnapshotLocked(email)
}

func (s *store) cartSnapshotLocked(email string) Cart {
	c := s.userCart(email)
	items := make([]CartItem, 0, len(c))
	for _, p := range s.sortedProducts() {
		qty, ok := c[p.ID]
		if !ok {
			continue
		}
		items = append(items, CartItem{ProductID: p.ID, Name: p.Name, Quantity: qty, Price: p.Price})
	}
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return Cart{Items: items, Total: roundCents(total)}
}

func (s *store) sortedProducts() []testdata.Product {
	out := make([]testdata.Product, 0, len(s.products))
	for _, id := range helpers.Sorted(maps.Keys(s.products)) {
		out = append(out, s.products[id])
	}
	return out
}

// addCartItem adds quantity of a product to the user's cart, merging with any
// existing line for the same product. The quantity has already been checked to be
// positive by the handler.
func (s *store) addCartItem(email, productID string, quantity int) (CartItem, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return CartItem{}, errProductNotFound
	}
	c := s.userCart(email)
	newQuantity := c[productID] + quantity
	if err := s.checkQuantityLocked(product, newQuantity); err != nil {
		return CartItem{}, err
	}
	c[productID] = newQuantity
	return CartItem{ProductID: product.ID, Name: product.Name, Quantity: newQuantity, Price: product.Price}, nil
}

// updateCartItem replaces the quantity of an existing cart line.
func (s *store) updateCartItem(email, productID string, quantity int) (CartItem, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	c := s.userCart(email)
	if _, ok := c[productID]; !ok {
		return CartItem{}, errItemNotInCart
	}
	product, ok := s.products[productID]
	if !ok {
		return CartItem{}, errProductNotFound
	}
	if err := s.checkQuantityLocked(product, quantity); err != nil {
		return CartItem{}, err
	}
	c[productID] = quantity
	return CartItem{ProductID: product.ID, Name: product.Name, Quantity: quantity, Price: product.Price}, nil
}

func (s *store) checkQuantityLocked(product testdata.Product, quantity int) error {
	if product.Stock == 0 {
		return errOutOfStock
	}
	if quantity > s.maxQuantity {
		return errQuantityTooLarge
	}
	if quantity > product.Stock {
		return errInsufficientStock
	}
	return nil
}

func (s *store) removeCartItem(email, productID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	c := s.userCart(email)
	if _, ok := c[productID]; !ok {
		return errItemNotInCart
	}
	delete(c, productID)
	return nil
}

func (s *store) clearCart(email string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.carts[normalizeEmail(email)] = make(map[string]int)
}

// createOrder turns the user's cart into an order: re-checks stock, computes the
// totals, decrements inventory, and empties the cart.
func (s *store) createOrder(email string, address testdata.Address) (Order, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	cart := s.cartSnapshotLocked(email)
	if len(cart.Items) == 0 {
		return Order{}, errCartEmpty
	}
	for _, item := range cart.Items {
		product := s.products[item.ProductID]
		if item.Quantity > product.Stock {
			return Order{}, errInsufficientStock
		}
	}
	for _, item := range cart.Items {
		product := s.products[item.ProductID]
		product.Stock -= item.Quantity
		s.products[item.ProductID] = product
	}

	subtotal := cart.Total
	tax := roundCents(subtotal * taxRate)
	shipping := flatShippingCost
	if subtotal >= freeShippingOver {
		shipping = 0
	}
	s.nextOrderID++
	order := Order{
		OrderID:         fmt.Sprintf("ord-%d", s.nextOrderID),
		Status:          orderStatusConfirmed,
		Items:           cart.Items,
		Subtotal:        subtotal,
		Tax:             tax,
		Shipping:        shipping,
		Total:           roundCents(subtotal + tax + shipping),
		ShippingAddress: address,
		CreatedAt:       time.Now().UTC(),
		userEmail:       normalizeEmail(email),
	}
	s.orders[order.OrderID] = order
	s.carts[normalizeEmail(email)] = make(map[string]int)
	return order, nil
}

// findOrder returns an order only to the user who placed it; anyone else gets the
// same not-found answer as for an unknown ID.
func (s *store) findOrder(email, orderID string) (Order, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	order, ok := s.orders[orderID]
	if !ok || order.userEmail != normalizeEmail(email) {
		return Order{}, errOrderNotFound
	}
	return order, nil
}
