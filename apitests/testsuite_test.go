package apitests

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-qa/storefront-contract-tests/framework"
	"github.com/storefront-qa/storefront-contract-tests/framework/apitest"
	"github.com/storefront-qa/storefront-contract-tests/framework/harness"
	"github.com/storefront-qa/storefront-contract-tests/mockshop"
	"github.com/storefront-qa/storefront-contract-tests/shopapi"
	"github.com/storefront-qa/storefront-contract-tests/testdata"
)

// runSuiteAgainstMock runs the suite tree against a fresh in-process mock storefront,
// which starts with full fixture inventory and no rate limiter history.
func runSuiteAgainstMock(t *testing.T, filter apitest.Filter) apitest.Results {
	data, err := testdata.Load()
	require.NoError(t, err)

	service, err := mockshop.NewService(data, framework.NullLogger())
	require.NoError(t, err)
	server := httptest.NewServer(service)
	t.Cleanup(server.Close)

	h, err := harness.NewHarness(server.URL, shopapi.DefaultEndpoints().Health,
		time.Second*5, framework.NullLogger(), io.Discard)
	require.NoError(t, err)

	clientConfig := shopapi.Config{
		BaseURL:   server.URL,
		Endpoints: data.Endpoints,
		Timeout:   time.Second * 5,
		Retry: shopapi.RetryPolicy{
			MaxAttempts:  2,
			InitialDelay: time.Millisecond * 10,
			MaxDelay:     time.Millisecond * 20,
			Multiplier:   2,
		},
	}
	return RunStorefrontTestSuite(h, data, clientConfig, filter, nil)
}

func TestSuitePassesAgainstMockStorefront(t *testing.T) {
	results := runSuiteAgainstMock(t, nil)

	for _, f := range results.Failures {
		t.Errorf("test %q failed: %v", f.TestID, f.Errors)
	}
	// The mock implements every tolerated behavior too, so even the non-critical
	// tests must pass against it.
	for _, f := range results.NonCriticalFailures {
		t.Errorf("test %q failed (non-critical): %v", f.TestID, f.Errors)
	}
	assert.True(t, results.OK())
	assert.NotEmpty(t, results.Tests)
}

func TestSuiteHonorsFilters(t *testing.T) {
	pattern, err := apitest.ParseTestIDPattern("^smoke$")
	require.NoError(t, err)
	filter := apitest.RegexFilters{MustMatch: apitest.TestIDPatternList{pattern}}

	results := runSuiteAgainstMock(t, filter)

	require.True(t, results.OK(), "failures: %v", results.Failures)
	ran := 0
	for _, r := range results.Tests {
		if len(r.TestID) == 0 {
			continue // the root scope has no name
		}
		assert.Equal(t, "smoke", r.TestID[0], "test %q ran despite the filter", r.TestID)
		ran++
	}
	assert.NotZero(t, ran, "the filter should still have let the smoke tests run")
}
