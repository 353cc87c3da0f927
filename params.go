package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/storefront-qa/storefront-contract-tests/framework/apitest"
)

const (
	defaultMockPort       = 8222
	defaultRequestTimeout = time.Second * 30
)

type commandParams struct {
	targetURL      string
	runMock        bool
	mockPort       int
	filters        apitest.RegexFilters
	jUnitFile      string
	excelFile      string
	skipFile       string
	recordFailures string
	dataFile       string
	envFile        string
	requestTimeout time.Duration
	retryAttempts  int
	retryDelay     time.Duration
	debug          bool
	debugAll       bool
}

func (c *commandParams) Read(args []string) bool {
	// The environment file must be loaded before the flag set is built, because the
	// flag defaults below are computed from the environment.
	if err := loadEnvFile(envFilePathArg(args)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}

	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.targetURL, "url", os.Getenv("STOREFRONT_BASE_URL"),
		"base URL of the storefront API to test")
	fs.BoolVar(&c.runMock, "mock", false, "test the bundled mock storefront instead of a remote target")
	fs.IntVar(&c.mockPort, "mock-port", defaultMockPort, "port for the bundled mock storefront")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.StringVar(&c.jUnitFile, "junit", "", "write JUnit XML output to the specified path")
	fs.StringVar(&c.excelFile, "excel", "", "write an Excel report to the specified path")
	fs.StringVar(&c.skipFile, "skip-file", "", "file with IDs of tests that should be skipped")
	fs.StringVar(&c.recordFailures, "record-failures", "",
		"file to write IDs of failed tests to (for use with -skip-file)")
	fs.StringVar(&c.dataFile, "data", os.Getenv("STOREFRONT_DATA_FILE"),
		"fixture data file overriding the embedded defaults")
	fs.StringVar(&c.envFile, "env-file", "",
		"environment file to load before reading other settings (default .env if present)")
	fs.DurationVar(&c.requestTimeout, "request-timeout",
		envDuration("STOREFRONT_REQUEST_TIMEOUT", defaultRequestTimeout),
		"timeout for each HTTP request to the target")
	fs.IntVar(&c.retryAttempts, "retry-attempts", envInt("STOREFRONT_RETRY_ATTEMPTS", 0),
		"how many times a request may be sent when the transport fails (0 means the built-in default)")
	fs.DurationVar(&c.retryDelay, "retry-delay", envDuration("STOREFRONT_RETRY_DELAY", 0),
		"initial delay before retrying a failed request (0 means the built-in default)")
	fs.BoolVar(&c.debug, "debug", envBool("STOREFRONT_DEBUG", false),
		"enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}

	urlSetOnCommandLine := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "url" {
			urlSetOnCommandLine = true
		}
	})
	if c.runMock && urlSetOnCommandLine {
		fmt.Fprintln(os.Stderr, "-url and -mock cannot both be specified")
		fs.Usage()
		return false
	}
	if !c.runMock && c.targetURL == "" {
		fmt.Fprintln(os.Stderr, "-url (or STOREFRONT_BASE_URL) is required unless -mock is used")
		fs.Usage()
		return false
	}
	if c.retryAttempts < 0 {
		fmt.Fprintln(os.Stderr, "-retry-attempts cannot be negative")
		return false
	}
	return true
}

// envFilePathArg finds the -env-file argument without running the full flag parse.
func envFilePathArg(args []string) string {
	for i := 1; i < len(args); i++ {
		arg := strings.TrimPrefix(args[i], "-")
		switch {
		case arg == "env-file" || arg == "-env-file":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "env-file="):
			return strings.TrimPrefix(arg, "env-file=")
		case strings.HasPrefix(arg, "-env-file="):
			return strings.TrimPrefix(arg, "-env-file=")
		}
	}
	return ""
}

// loadEnvFile loads settings from an environment file into the process environment.
// An explicitly named file must exist; the default .env is optional.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("cannot load environment file %s: %v", path, err)
	}
	return nil
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func envInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func envBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
