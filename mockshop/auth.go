package mockshop

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "mock-storefront"
	tokenLifetime = time.Hour

	failedLoginLimit  = 5
	failedLoginWindow = time.Minute
)

var emailFormat = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// tokenIssuerState signs and verifies the bearer tokens the mock hands out. A fresh
// random HS256 secret is generated per service instance, so tokens never outlive the
// process that issued them.
type tokenIssuerState struct {
	secret []byte
}

func newTokenIssuer() (*tokenIssuerState, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate token secret: %w", err)
	}
	return &tokenIssuerState{secret: secret}, nil
}

func (t *tokenIssuerState) issue(email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": tokenIssuer,
		"sub": normalizeEmail(email),
		"iat": now.Unix(),
		"exp": now.Add(tokenLifetime).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// verify returns the email a bearer token was issued for, or false for anything that
// does not parse, was signed with another key, or has expired.
func (t *tokenIssuerState) verify(authorizationHeader string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authorizationHeader, prefix) {
		return "", false
	}
	token, err := jwt.Parse(strings.TrimPrefix(authorizationHeader, prefix),
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return t.secret, nil
		})
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	email, _ := claims["sub"].(string)
	return email, email != ""
}

// loginLimiter tracks failed login attempts per account within a sliding window.
type loginLimiter struct {
	failures map[string][]time.Time
	lock     sync.Mutex
}

func newLoginLimiter() *loginLimiter {
	return &loginLimiter{failures: make(map[string][]time.Time)}
}

func (l *loginLimiter) isLimited(email string) bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.recentLocked(email)) >= failedLoginLimit
}

func (l *loginLimiter) recordFailure(email string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	key := normalizeEmail(email)
	l.failures[key] = append(l.recentLocked(email), time.Now())
}

func (l *loginLimiter) reset(email string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	delete(l.failures, normalizeEmail(email))
}

func (l *loginLimiter) recentLocked(email string) []time.Time {
	cutoff := time.Now().Add(-failedLoginWindow)
	recent := make([]time.Time, 0)
	for _, at := range l.failures[normalizeEmail(email)] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	return recent
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) postLogin(w http.ResponseWriter, r *http.Request) {
	if !hasJSONContentType(r) {
		s.writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	var req loginRequest
	if !s.readJSONBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if s.limits.EmailMaxLength > 0 && len(req.Email) > s.limits.EmailMaxLength {
		s.writeError(w, http.StatusBadRequest, "Email address is too long")
		return
	}
	if !emailFormat.MatchString(req.Email) {
		s.writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if s.limits.PasswordMinLength > 0 && len(req.Password) < s.limits.PasswordMinLength {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Password must be at least %d characters", s.limits.PasswordMinLength))
		return
	}
	if s.limits.PasswordMaxLength > 0 && len(req.Password) > s.limits.PasswordMaxLength {
		s.writeError(w, http.StatusBadRequest, "Password is too long")
		return
	}
	if s.limiter.isLimited(req.Email) {
		s.writeError(w, http.StatusTooManyRequests,
			"Rate limit exceeded: too many failed login attempts")
		return
	}

	account, found := s.store.findAccount(req.Email)
	if !found || account.password != req.Password {
		s.limiter.recordFailure(req.Email)
		s.writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.limiter.reset(req.Email)

	token, err := s.tokens.issue(account.Email)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	s.debugLogger.Printf("Issued token for %s", account.Email)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  account,
	})
}

// postLogout always succeeds. The mock has no token revocation list; ending the
// session is the client's side of the contract.
func (s *Service) postLogout(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Logged out"})
}

// authenticate resolves the bearer token to an account, writing the 401 response
// itself when the request has no valid token.
func (s *Service) authenticate(w http.ResponseWriter, r *http.Request) (Account, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		s.writeError(w, http.StatusUnauthorized, "Authentication required")
		return Account{}, false
	}
	email, ok := s.tokens.verify(header)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return Account{}, false
	}
	account, found := s.store.findAccount(email)
	if !found {
		s.writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return Account{}, false
	}
	return account, true
}

func hasJSONContentType(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
