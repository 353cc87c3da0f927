package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TargetInfo is status information returned by the target API from the initial health query.
type TargetInfo struct {
	TargetStatus

	// BaseURL is the base URL of the target API that was probed.
	BaseURL string

	// FullData is the entire response received from the health resource, which might contain
	// additional properties beyond TargetStatus.
	FullData []byte
}

// TargetStatus is the set of health resource properties the harness understands. The bundled
// mock storefront provides all of them; real deployments may provide any subset.
type TargetStatus struct {
	// Name identifies the service, such as "mockshop".
	Name string `json:"name"`

	// Version is the deployed service version.
	Version string `json:"version"`

	// Environment is the deployment environment, such as "staging".
	Environment string `json:"environment"`
}

func healthURL(baseURL, healthPath string) string {
	return strings.TrimSuffix(baseURL, "/") + healthPath
}

func queryTargetInfo(baseURL, healthPath string, timeout time.Duration, output io.Writer) (TargetInfo, error) {
	url := healthURL(baseURL, healthPath)
	fmt.Fprintf(output, "Connecting to target API at %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := http.DefaultClient.Get(url)
		if err == nil && resp.StatusCode < 500 {
			fmt.Fprintln(output)
			if resp.StatusCode != 200 {
				// The target is reachable but does not expose a health resource. That is
				// allowed for real deployments, so carry on without metadata.
				drainAndClose(resp)
				fmt.Fprintf(output, "Health query returned status %d; continuing without target metadata\n",
					resp.StatusCode)
				return TargetInfo{}, nil
			}
			if resp.Body == nil {
				fmt.Fprintf(output, "Health query successful, but target provided no metadata\n")
				return TargetInfo{}, nil
			}
			respData, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				return TargetInfo{}, err
			}
			fmt.Fprintf(output, "Health query returned metadata: %s\n", string(respData))
			var status TargetStatus
			if err := json.Unmarshal(respData, &status); err != nil {
				return TargetInfo{}, fmt.Errorf("malformed health response from target: %s", string(respData))
			}
			return TargetInfo{TargetStatus: status, FullData: respData}, nil
		}
		if err == nil {
			drainAndClose(resp)
			err = fmt.Errorf("target returned status code %d", resp.StatusCode)
		}
		if !time.Now().Before(deadline) {
			return TargetInfo{}, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(time.Millisecond * 100)
	}
}

func drainAndClose(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}
}
