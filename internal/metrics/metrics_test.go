package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetricsEndpointServesCollectors(t *testing.T) {
	Init()
	ObserveRun("no_match_yet", 250*time.Millisecond)
	ObserveEntries(4)
	SetNotified(false)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSetNotifiedTransitions(t *testing.T) {
	Init()
	SetNotified(true)
	SetNotified(false)
}
