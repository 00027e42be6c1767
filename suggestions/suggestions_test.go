package suggestions_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/suggestions"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, now *time.Time) (*suggestions.Service, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, suggestions.Path, r.URL.Path)
		hits.Add(1)
		_ = json.NewEncoder(w).Encode([]string{"Gaming", "GeForce", "gpu", "Office", "Ryzen"})
	}))
	t.Cleanup(ts.Close)

	queries := cache.NewQueryClient(cache.WithNowFunc(func() time.Time { return *now }))
	return suggestions.NewService(httpclient.New(ts.URL), queries, time.Hour), &hits
}

func TestWords_CachedForTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	svc, hits := newService(t, &now)
	ctx := context.Background()

	require.Empty(t, svc.Cached(ctx))
	require.NotNil(t, svc.Cached(ctx))

	words, err := svc.Words(ctx)
	require.NoError(t, err)
	require.Len(t, words, 5)

	now = now.Add(59 * time.Minute)
	_, err = svc.Words(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(1), hits.Load())
	require.Equal(t, words, svc.Cached(ctx))

	now = now.Add(2 * time.Minute)
	_, err = svc.Words(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(2), hits.Load())
}

func TestComplete(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	svc, _ := newService(t, &now)
	ctx := context.Background()

	got, err := svc.Complete(ctx, "g", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"Gaming", "GeForce", "gpu"}, got)

	got, err = svc.Complete(ctx, "G", 2)
	require.NoError(t, err)
	require.Equal(t, []string{"Gaming", "GeForce"}, got)

	got, err = svc.Complete(ctx, "zz", 5)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestWords_ErrorIsNeverNil(t *testing.T) {
	queries := cache.NewQueryClient()
	svc := suggestions.NewService(httpclient.New("http://127.0.0.1:1"), queries, 0)

	words, err := svc.Words(context.Background())
	require.True(t, httpclient.IsNetwork(err))
	require.NotNil(t, words)
}
