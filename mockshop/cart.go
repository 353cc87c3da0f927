package mockshop

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (s *Service) getCart(w http.ResponseWriter, r *http.Request) {
	account, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.cartSnapshot(account.Email))
}

func (s *Service) deleteCart(w http.ResponseWriter, r *http.Request) {
	account, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	s.store.clearCart(account.Email)
	s.writeJSON(w, http.StatusOK, s.store.cartSnapshot(account.Email))
}

func (s *Service) postCartItem(w http.ResponseWriter, r *http.Request) {
	account, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if !hasJSONContentType(r) {
		s.writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	var req cartItemRequest
	if !s.readJSONBody(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		s.writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if req.Quantity <= 0 {
		s.writeError(w, http.StatusBadRequest, "Quantity must be greater than zero")
		return
	}
	item, err := s.store.addCartItem(account.Email, req.ProductID, req.Quantity)
	if err != nil {
		s.writeCartError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"item": item,
		"cart": s.store.cartSnapshot(account.Email),
	})
}

func (s *Service) putCartItem(w http.ResponseWriter, r *http.Request) {
	account, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !s.readJSONBody(w, r, &req) {
		return
	}
	if req.Quantity <= 0 {
		s.writeError(w, http.StatusBadRequest, "Quantity must be greater than zero")
		return
	}
	item, err := s.store.updateCartItem(account.Email, mux.Vars(r)["productId"], req.Quantity)
	if err != nil {
		s.writeCartError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"item": item,
		"cart": s.store.cartSnapshot(account.Email),
	})
}

func (s *Service) deleteCartItem(w http.ResponseWriter, r *http.Request) {
	account, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if err := s.store.removeCartItem(account.Email, mux.Vars(r)["productId"]); err != nil {
		s.writeCartError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Item removed",
		"cart":    s.store.cartSnapshot(account.Email),
	})
}

func (s *Service) writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errProductNotFound):
		s.writeError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, errItemNotInCart):
		s.writeError(w, http.StatusNotFound, "Item is not in the cart")
	case errors.Is(err, errOutOfStock):
		s.writeError(w, http.StatusConflict, "Product is out of stock")
	case errors.Is(err, errInsufficientStock):
		s.writeError(w, http.StatusConflict, "Insufficient stock available")
	case errors.Is(err, errQuantityTooLarge):
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Quantity exceeds the maximum of %d per item", s.store.maxQuantity))
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}
