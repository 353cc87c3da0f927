package harness

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonResponseHandler(body string) http.Handler {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	return httphelpers.HandlerWithResponse(200, headers, []byte(body))
}

func TestQueryTargetInfoParsesHealthMetadata(t *testing.T) {
	handler := jsonResponseHandler(`{"name": "mockshop", "version": "1.2.1", "environment": "test"}`)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		info, err := queryTargetInfo(server.URL, "/health", time.Second, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "mockshop", info.Name)
		assert.Equal(t, "1.2.1", info.Version)
		assert.Equal(t, "test", info.Environment)
		assert.Contains(t, string(info.FullData), `"mockshop"`)
	})
}

func TestQueryTargetInfoToleratesMissingHealthResource(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(404), func(server *httptest.Server) {
		info, err := queryTargetInfo(server.URL, "/health", time.Second, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "", info.Name)
		assert.Nil(t, info.FullData)
	})
}

func TestQueryTargetInfoRetriesServerErrorsUntilDeadline(t *testing.T) {
	handler := httphelpers.SequentialHandler(
		httphelpers.HandlerWithStatus(503),
		jsonResponseHandler(`{"name": "mockshop"}`),
	)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		info, err := queryTargetInfo(server.URL, "/health", time.Second*5, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, "mockshop", info.Name)
	})
}

func TestQueryTargetInfoTimesOutWhenTargetUnreachable(t *testing.T) {
	// this port is assumed to have no listener
	_, err := queryTargetInfo("http://localhost:9", "/health", time.Millisecond*300, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestQueryTargetInfoRejectsMalformedMetadata(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithResponse(200, nil, []byte("not json")),
		func(server *httptest.Server) {
			_, err := queryTargetInfo(server.URL, "/health", time.Second, io.Discard)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "malformed health response")
		})
}
