package apitests

import (
	"fmt"
	"os"

	"github.com/storefront-qa/storefront-contract-tests/framework/apitest"
	"github.com/storefront-qa/storefront-contract-tests/framework/harness"
	"github.com/storefront-qa/storefront-contract-tests/shopapi"
	"github.com/storefront-qa/storefront-contract-tests/testdata"
)

// RunStorefrontTestSuite runs the complete suite tree against the target that the
// harness verified, and returns the accumulated results. The client configuration is
// used as the template for every client a test scope creates; each scope gets its own
// copy with its own debug logger and session state.
func RunStorefrontTestSuite(
	h *harness.Harness,
	data testdata.TestData,
	clientConfig shopapi.Config,
	filter apitest.Filter,
	testLogger apitest.TestLogger,
) apitest.Results {
	info := h.TargetInfo()
	if info.Name != "" {
		fmt.Printf("Running storefront contract test suite against %s %s (%s)\n",
			info.Name, info.Version, info.Environment)
	} else {
		fmt.Printf("Running storefront contract test suite against %s\n", info.BaseURL)
	}
	fmt.Println()

	if sdf, ok := filter.(apitest.SelfDescribingFilter); ok {
		sdf.Describe(os.Stdout)
	}

	config := apitest.TestConfiguration{
		Filter:     filter,
		TestLogger: testLogger,
		Context: SuiteContext{
			targetInfo:   info,
			data:         data,
			clientConfig: clientConfig,
		},
	}

	return apitest.Run(config, doAllStorefrontTests)
}

func doAllStorefrontTests(t *apitest.T) {
	t.Run("smoke", doSmokeTests)
	t.Run("auth", doAuthTests)
	t.Run("cart", doCartTests)
	t.Run("checkout", doCheckoutTests)
	t.Run("orders", doOrderTests)
}
