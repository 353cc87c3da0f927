package mockshop

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-qa/storefront-contract-tests/testdata"
)

const declinedTestCardNumber = "4000000000000002"

type checkoutSubmitRequest struct {
	ShippingAddress testdata.Address     `json:"shipping_address"`
	PaymentInfo     testdata.PaymentCard `json:"payment_info"`
}

// postCheckout begins the checkout flow: it validates that there is something to buy
// and returns a preview of the order without creating anything.
func (s *Service) postCheckout(w http.ResponseWriter, r *http.Request) {
	account, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	cart := s.store.cartSnapshot(account.Email)
	if len(cart.Items) == 0 {
		s.writeError(w, http.StatusConflict, "Cart is empty")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"checkout_id": fmt.Sprintf("chk-%d", time.Now().UnixNano()),
		"items":       cart.Items,
		"total":       cart.Total,
	})
}

func (s *Service) postCheckoutSubmit(w http.ResponseWriter, r *http.Request) {
	account, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if !hasJSONContentType(r) {
		s.writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	var req checkoutSubmitRequest
	if !s.readJSONBody(w, r, &req) {
		return
	}
	if message := validateAddress(req.ShippingAddress); message != "" {
		s.writeError(w, http.StatusBadRequest, message)
		return
	}
	if message := validateCard(req.PaymentInfo, time.Now()); message != "" {
		s.writeError(w, http.StatusBadRequest, message)
		return
	}
	if cardDigits(req.PaymentInfo.CardNumber) == declinedTestCardNumber {
		s.writeError(w, http.StatusPaymentRequired, "Payment declined by card issuer")
		return
	}

	order, err := s.store.createOrder(account.Email, req.ShippingAddress)
	switch {
	case errors.Is(err, errCartEmpty):
		s.writeError(w, http.StatusConflict, "Cart is empty")
		return
	case errors.Is(err, errInsufficientStock):
		s.writeError(w, http.StatusConflict, "Insufficient stock available")
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.debugLogger.Printf("Created order %s for %s (total %.2f)", order.OrderID, account.Email, order.Total)
	s.writeJSON(w, http.StatusCreated, order)
}

func validateAddress(address testdata.Address) string {
	for _, field := range []struct{ name, value string }{
		{"street", address.Street},
		{"city", address.City},
		{"state", address.State},
		{"zip_code", address.ZipCode},
	} {
		if strings.TrimSpace(field.value) == "" {
			return "Missing required address field: " + field.name
		}
	}
	return ""
}

// validateCard checks the payment fields the way a payment gateway's front door
// would: digits and Luhn for the number, a three-digit CVV, and an expiry date that
// is this month or later. It returns an error message, or "" if the card is valid.
func validateCard(card testdata.PaymentCard, now time.Time) string {
	digits := cardDigits(card.CardNumber)
	if len(digits) < 13 || len(digits) > 19 || !isAllDigits(digits) {
		return "Invalid card number"
	}
	if !passesLuhnCheck(digits) {
		return "Invalid card number"
	}
	if len(card.CVV) != 3 || !isAllDigits(card.CVV) {
		return "Invalid CVV"
	}
	if strings.TrimSpace(card.CardholderName) == "" {
		return "Cardholder name is required"
	}
	month, err := strconv.Atoi(card.ExpiryMonth)
	if err != nil || month < 1 || month > 12 {
		return "Invalid card expiry month"
	}
	year, err := strconv.Atoi(card.ExpiryYear)
	if err != nil || year < 1000 {
		return "Invalid card expiry year"
	}
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return "Card is expired"
	}
	return ""
}

func cardDigits(cardNumber string) string {
	return strings.ReplaceAll(strings.ReplaceAll(cardNumber, " ", ""), "-", "")
}

func isAllDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// passesLuhnCheck implements the standard mod-10 checksum used by card issuers.
func passesLuhnCheck(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
