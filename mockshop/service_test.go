package mockshop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-qa/storefront-contract-tests/framework"
	"github.com/storefront-qa/storefront-contract-tests/testdata"
)

type serviceFixture struct {
	t      *testing.T
	server *httptest.Server
	seed   testdata.TestData
}

func withMockShop(t *testing.T, action func(f *serviceFixture)) {
	seed, err := testdata.Load()
	require.NoError(t, err)
	withSeededMockShop(t, seed, action)
}

func withSeededMockShop(t *testing.T, seed testdata.TestData, action func(f *serviceFixture)) {
	service, err := NewService(seed, framework.NullLogger())
	require.NoError(t, err)
	httphelpers.WithServer(service, func(server *httptest.Server) {
		action(&serviceFixture{t: t, server: server, seed: seed})
	})
}

// request sends one JSON request and returns the status plus the parsed body.
func (f *serviceFixture) request(method, path, token string, body interface{}) (int, ldvalue.Value) {
	var reader io.Reader
	if body != nil {
		var data []byte
		if s, ok := body.(string); ok {
			data = []byte(s)
		} else {
			var err error
			data, err = json.Marshal(body)
			require.NoError(f.t, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(f.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(f.t, err)
	return resp.StatusCode, ldvalue.Parse(respBody)
}

func (f *serviceFixture) login(email, password string) (int, ldvalue.Value) {
	return f.request("POST", "/auth/login", "",
		map[string]string{"email": email, "password": password})
}

// mustLogin logs in as the given account and returns the issued token.
func (f *serviceFixture) mustLogin(user testdata.User) string {
	status, body := f.login(user.Email, user.Password)
	require.Equal(f.t, 200, status)
	token := body.GetByKey("token").StringValue()
	require.NotEmpty(f.t, token)
	return token
}

func TestLoginIssuesTokenForValidCredentials(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		status, body := f.login(f.seed.Users.Standard.Email, f.seed.Users.Standard.Password)

		require.Equal(t, 200, status)
		assert.NotEmpty(t, body.GetByKey("token").StringValue())
		user := body.GetByKey("user")
		assert.Equal(t, f.seed.Users.Standard.Email, user.GetByKey("email").StringValue())
		assert.NotEmpty(t, user.GetByKey("id").StringValue())
		assert.NotEmpty(t, user.GetByKey("first_name").StringValue())
		assert.NotEmpty(t, user.GetByKey("last_name").StringValue())
		assert.Equal(t, "customer", user.GetByKey("role").StringValue())
	})
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		for _, params := range []struct {
			desc           string
			email          string
			password       string
			expectedStatus int
		}{
			{"wrong password", f.seed.Users.Standard.Email, "WrongPass999!", 401},
			{"non-existent user", f.seed.Users.NonExistent.Email, f.seed.Users.NonExistent.Password, 401},
			{"invalid email format", f.seed.Users.InvalidEmail.Email, f.seed.Users.InvalidEmail.Password, 400},
			{"empty credentials", "", "", 400},
			{"password below minimum length", f.seed.Users.Standard.Email, "a", 400},
			{"SQL injection payload", "' OR '1'='1", "' OR '1'='1", 400},
		} {
			t.Run(params.desc, func(t *testing.T) {
				status, body := f.login(params.email, params.password)
				assert.Equal(t, params.expectedStatus, status)
				assert.NotEmpty(t, body.GetByKey("error").StringValue())
			})
		}
	})
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		status, body := f.login("USER@Example.COM", f.seed.Users.Standard.Password)

		require.Equal(t, 200, status)
		assert.NotEmpty(t, body.GetByKey("token").StringValue())
	})
}

func TestLoginRequiresJSONContentType(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		payload := fmt.Sprintf(`{"email": %q, "password": %q}`,
			f.seed.Users.Standard.Email, f.seed.Users.Standard.Password)
		req, err := http.NewRequest("POST", f.server.URL+"/auth/login", bytes.NewReader([]byte(payload)))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "text/plain")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, 415, resp.StatusCode)
	})
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		status, body := f.request("POST", "/auth/login", "", `{"email": `)

		assert.Equal(t, 400, status)
		assert.NotEmpty(t, body.GetByKey("error").StringValue())
	})
}

func TestLoginRateLimitsRepeatedFailures(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		for i := 0; i < failedLoginLimit; i++ {
			status, _ := f.login(f.seed.Users.Standard.Email, "WrongPass999!")
			require.Equal(t, 401, status)
		}

		// even the correct password is refused while the account is limited
		status, body := f.login(f.seed.Users.Standard.Email, f.seed.Users.Standard.Password)
		assert.Equal(t, 429, status)
		assert.Contains(t, body.GetByKey("error").StringValue(), "Rate limit")

		// other accounts are unaffected
		status, _ = f.login(f.seed.Users.Admin.Email, f.seed.Users.Admin.Password)
		assert.Equal(t, 200, status)
	})
}

func TestSuccessfulLoginResetsFailureCount(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		for i := 0; i < failedLoginLimit-1; i++ {
			status, _ := f.login(f.seed.Users.Standard.Email, "WrongPass999!")
			require.Equal(t, 401, status)
		}
		status, _ := f.login(f.seed.Users.Standard.Email, f.seed.Users.Standard.Password)
		require.Equal(t, 200, status)

		// the window starts over after a success
		status, _ = f.login(f.seed.Users.Standard.Email, "WrongPass999!")
		assert.Equal(t, 401, status)
	})
}

func TestProtectedEndpointsRequireValidToken(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		for _, params := range []struct {
			desc  string
			token string
		}{
			{"missing token", ""},
			{"garbage token", "not-a-jwt"},
		} {
			t.Run(params.desc, func(t *testing.T) {
				status, body := f.request("GET", "/cart", params.token, nil)
				assert.Equal(t, 401, status)
				assert.NotEmpty(t, body.GetByKey("error").StringValue())
			})
		}
	})
}

func TestProfileReturnsAccountWithoutPassword(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		token := f.mustLogin(f.seed.Users.Standard)

		status, body := f.request("GET", "/users/profile", token, nil)
		require.Equal(t, 200, status)
		assert.Equal(t, f.seed.Users.Standard.Email, body.GetByKey("email").StringValue())
		assert.True(t, body.GetByKey("password").IsNull())
	})
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		token := f.mustLogin(f.seed.Users.Standard)

		status, _ := f.request("POST", "/auth/logout", token, nil)
		assert.Equal(t, 200, status)

		status, _ = f.request("POST", "/auth/logout", "", nil)
		assert.Equal(t, 200, status)
	})
}

func TestHealthEndpointReportsMetadata(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		status, body := f.request("GET", "/health", "", nil)

		require.Equal(t, 200, status)
		assert.Equal(t, serviceName, body.GetByKey("name").StringValue())
		assert.Equal(t, serviceVersion, body.GetByKey("version").StringValue())
		assert.Equal(t, serviceEnvironment, body.GetByKey("environment").StringValue())
	})
}

func TestUnknownRouteReturnsJSONError(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		status, body := f.request("GET", "/no/such/path", "", nil)

		assert.Equal(t, 404, status)
		assert.NotEmpty(t, body.GetByKey("error").StringValue())
	})
}
