package harness

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/storefront-qa/storefront-contract-tests/framework"
)

const httpListenerTimeout = time.Second * 10

// Harness manages communication with the storefront API deployment under test.
//
// It always communicates with a single target, which it verifies is alive on startup by
// polling the health resource. It contains no domain-specific test logic, but only provides
// a general mechanism for test suites to build on. When the tool is asked to test its own
// bundled mock storefront, the harness also hosts that server (StartServer).
type Harness struct {
	targetBaseURL string
	targetInfo    TargetInfo
	logger        framework.Logger
}

// NewHarness creates a Harness instance, and verifies that the target API is responding
// by querying its health resource.
func NewHarness(
	targetBaseURL string,
	healthPath string,
	statusQueryTimeout time.Duration,
	debugLogger framework.Logger,
	startupOutput io.Writer,
) (*Harness, error) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}

	h := &Harness{
		targetBaseURL: targetBaseURL,
		logger:        debugLogger,
	}

	targetInfo, err := queryTargetInfo(targetBaseURL, healthPath, statusQueryTimeout, startupOutput)
	if err != nil {
		return nil, err
	}
	targetInfo.BaseURL = targetBaseURL
	h.targetInfo = targetInfo

	return h, nil
}

// TargetInfo returns the initial status information received from the target API.
func (h *Harness) TargetInfo() TargetInfo {
	return h.targetInfo
}

// StartServer starts an HTTP listener on the specified port and does not return until
// the listener is accepting requests. This is how the bundled mock storefront is hosted
// when the tool runs in self-contained mode.
func StartServer(port int, handler http.Handler) error {
	server := &http.Server{
		Addr: fmt.Sprintf(":%d", port),
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == "HEAD" {
				w.WriteHeader(200) // we use this to test whether our own listener is active yet
				return
			}
			handler.ServeHTTP(w, r)
		}),
		ReadHeaderTimeout: 10 * time.Second, // arbitrary but non-infinite timeout to avoid Slowloris Attack
	}
	go func() {
		if err := server.ListenAndServe(); err != nil {
			panic(err)
		}
	}()

	// Wait till the server is definitely listening for requests before we run any tests
	deadline := time.NewTimer(httpListenerTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Millisecond * 10)
	defer ticker.Stop()
	for {
		select {
		case <-deadline.C:
			return fmt.Errorf("could not detect own listener at %s", server.Addr)
		case <-ticker.C:
			resp, err := http.DefaultClient.Head(fmt.Sprintf("http://localhost:%d", port))
			if err == nil {
				if resp.Body != nil {
					_ = resp.Body.Close()
				}
				return nil
			}
		}
	}
}
