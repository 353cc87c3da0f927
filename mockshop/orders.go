package mockshop

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Service) getOrder(w http.ResponseWriter, r *http.Request) {
	account, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	order, err := s.store.findOrder(account.Email, mux.Vars(r)["orderId"])
	if err != nil {
		s.writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	s.writeJSON(w, http.StatusOK, order)
}

func (s *Service) getProfile(w http.ResponseWriter, r *http.Request) {
	account, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, account)
}
