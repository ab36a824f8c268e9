package fetch

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestToNetworkHeaders(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("Accept", "text/html")
	h.Add("X-Multi", "one")
	h.Add("X-Multi", "two")

	headers := toNetworkHeaders(h)

	require.Equal(t, "text/html", headers["Accept"])
	require.Equal(t, []string{"one", "two"}, headers["X-Multi"])
}

func TestNewHeadlessCloseReleasesAllocator(t *testing.T) {
	t.Parallel()

	// The allocator context is lazy; constructing and closing must not
	// require a browser binary.
	f := NewHeadless(Config{}, zap.NewNop())
	require.NotNil(t, f)
	f.Close()
}
