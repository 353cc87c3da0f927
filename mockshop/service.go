// Package mockshop is an in-process implementation of the storefront API surface that
// the contract tests target. It backs the -mock run mode and the harness's own unit
// tests, so every behavior the suites probe (authentication, cart rules, checkout
// validation, order retrieval) is implemented here against in-memory state.
package mockshop

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/storefront-qa/storefront-contract-tests/framework"
	"github.com/storefront-qa/storefront-contract-tests/testdata"
)

const (
	serviceName        = "mock-storefront"
	serviceVersion     = "1.0.0"
	serviceEnvironment = "mock"
)

// Service implements the storefront API over an in-memory store seeded from the
// fixture set. It is safe for concurrent requests.
type Service struct {
	handler     http.Handler
	store       *store
	tokens      *tokenIssuerState
	limiter     *loginLimiter
	limits      testdata.Boundaries
	debugLogger framework.Logger
	startTime   time.Time
}

// NewService creates a mock storefront seeded with the given fixture data. Accounts,
// products, stock levels and limits all match what the fixtures promise, so the full
// suite passes against it.
func NewService(seed testdata.TestData, debugLogger framework.Logger) (*Service, error) {
	tokens, err := newTokenIssuer()
	if err != nil {
		return nil, err
	}
	s := &Service{
		store:       newStore(seed),
		tokens:      tokens,
		limiter:     newLoginLimiter(),
		limits:      seed.Boundaries,
		debugLogger: debugLogger,
		startTime:   time.Now(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/auth/login", s.postLogin).Methods("POST")
	router.HandleFunc("/auth/logout", s.postLogout).Methods("POST")
	router.HandleFunc("/users/profile", s.getProfile).Methods("GET")
	router.HandleFunc("/cart", s.getCart).Methods("GET")
	router.HandleFunc("/cart", s.deleteCart).Methods("DELETE")
	router.HandleFunc("/cart/items", s.postCartItem).Methods("POST")
	router.HandleFunc("/cart/items/{productId}", s.putCartItem).Methods("PUT")
	router.HandleFunc("/cart/items/{productId}", s.deleteCartItem).Methods("DELETE")
	router.HandleFunc("/checkout", s.postCheckout).Methods("POST")
	router.HandleFunc("/checkout/submit", s.postCheckoutSubmit).Methods("POST")
	router.HandleFunc("/orders/{orderId}", s.getOrder).Methods("GET")
	router.HandleFunc("/health", s.getHealth).Methods("GET")
	router.NotFoundHandler = http.HandlerFunc(s.notFound)
	s.handler = router

	return s, nil
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.debugLogger.Printf("Received %s %s", r.Method, r.URL)
	s.handler.ServeHTTP(w, r)
}

func (s *Service) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":        serviceName,
		"version":     serviceVersion,
		"environment": serviceEnvironment,
		"uptime_sec":  int(time.Since(s.startTime) / time.Second),
	})
}

func (s *Service) notFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, "Resource not found")
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.debugLogger.Printf("Unable to marshal response: %s", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.debugLogger.Printf("Responding %d: %s", status, message)
	s.writeJSON(w, status, map[string]interface{}{"error": message})
}

// readJSONBody decodes the request body into target, writing the 400 response itself
// when the body is not valid JSON of the expected shape.
func (s *Service) readJSONBody(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Unable to read request body")
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		s.debugLogger.Printf("Received bad request body (%s): %s", err, string(data))
		s.writeError(w, http.StatusBadRequest, "Malformed request body")
		return false
	}
	return true
}
