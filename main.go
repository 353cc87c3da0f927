package main

import (
	"bufio"
	_ "embed" // this is required in order for go:embed to work
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/storefront-qa/storefront-contract-tests/apitests"
	"github.com/storefront-qa/storefront-contract-tests/framework"
	"github.com/storefront-qa/storefront-contract-tests/framework/apitest"
	"github.com/storefront-qa/storefront-contract-tests/framework/harness"
	"github.com/storefront-qa/storefront-contract-tests/mockshop"
	"github.com/storefront-qa/storefront-contract-tests/shopapi"
	"github.com/storefront-qa/storefront-contract-tests/testdata"
)

const statusQueryTimeout = time.Second * 10

//go:embed VERSION
var versionString string // comes from the VERSION file which we update for each release

func main() {
	fmt.Printf("storefront-contract-tests v%s\n", strings.TrimSpace(versionString))

	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	results, err := run(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !results.OK() {
		os.Exit(1)
	}
}

func run(params commandParams) (*apitest.Results, error) {
	if params.skipFile != "" {
		if err := loadSuppressions(&params); err != nil {
			return nil, err
		}
	}

	data, err := loadTestData(params)
	if err != nil {
		return nil, err
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	targetURL := params.targetURL
	if params.runMock {
		targetURL, err = startMockStorefront(params, data)
		if err != nil {
			return nil, err
		}
	}

	h, err := harness.NewHarness(
		targetURL,
		data.Endpoints.WithDefaults().Health,
		statusQueryTimeout,
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		return nil, err
	}

	var testLogger apitest.TestLogger
	consoleLogger := apitest.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	loggers := []apitest.TestLogger{consoleLogger}
	if params.jUnitFile != "" {
		loggers = append(loggers, apitest.NewJUnitTestLogger(params.jUnitFile, h.TargetInfo(), params.filters))
	}
	if params.excelFile != "" {
		loggers = append(loggers, apitest.NewExcelTestLogger(params.excelFile))
	}
	if len(loggers) == 1 {
		testLogger = consoleLogger
	} else {
		testLogger = &apitest.MultiTestLogger{Loggers: loggers}
	}

	clientConfig := shopapi.Config{
		BaseURL:   targetURL,
		Endpoints: data.Endpoints,
		Timeout:   params.requestTimeout,
		Retry:     retryPolicy(params),
	}

	results := apitests.RunStorefrontTestSuite(h, data, clientConfig, params.filters, testLogger)

	fmt.Println()
	if logErr := testLogger.EndLog(results); logErr != nil {
		return nil, fmt.Errorf("error writing log: %v", logErr)
	}

	if params.recordFailures != "" {
		f, err := os.Create(params.recordFailures)
		if err != nil {
			return nil, fmt.Errorf("cannot create suppression file: %v", err)
		}
		for _, test := range results.Failures {
			fmt.Fprintln(f, test.TestID)
		}
		_ = f.Close()
	}

	return &results, nil
}

func loadTestData(params commandParams) (testdata.TestData, error) {
	if params.dataFile != "" {
		return testdata.LoadFile(params.dataFile)
	}
	return testdata.Load()
}

func retryPolicy(params commandParams) shopapi.RetryPolicy {
	policy := shopapi.DefaultRetryPolicy()
	if params.retryAttempts > 0 {
		policy.MaxAttempts = params.retryAttempts
	}
	if params.retryDelay > 0 {
		policy.InitialDelay = params.retryDelay
	}
	return policy
}

// startMockStorefront hosts the bundled mock storefront on the configured port and
// returns its base URL. The mock's request log is only shown with -debug-all, and the
// harness's own health probes are filtered out of it.
func startMockStorefront(params commandParams, data testdata.TestData) (string, error) {
	mockLogger := framework.NullLogger()
	if params.debugAll {
		logWriter := harness.NewFilteredWriter(os.Stdout, []*regexp.Regexp{
			regexp.MustCompile(`Received (HEAD|GET) /health`),
		})
		mockLogger = log.New(logWriter, "[mockshop] ", log.LstdFlags)
	}
	service, err := mockshop.NewService(data, mockLogger)
	if err != nil {
		return "", err
	}
	fmt.Printf("Starting mock storefront on port %d\n", params.mockPort)
	if err := harness.StartServer(params.mockPort, service); err != nil {
		return "", err
	}
	return fmt.Sprintf("http://localhost:%d", params.mockPort), nil
}

func loadSuppressions(params *commandParams) error {
	file, err := os.Open(params.skipFile)
	if err != nil {
		return fmt.Errorf("cannot open provided suppression file: %v", err)
	}
	defer func() { _ = file.Close() }()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// Ignore blank lines
		if strings.TrimSpace(line) == "" {
			continue
		}
		escaped := regexp.QuoteMeta(line)
		if err := params.filters.MustNotMatch.Set(escaped); err != nil {
			return fmt.Errorf("cannot parse suppression: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("while processing suppression file: %v", err)
	}
	return nil
}
