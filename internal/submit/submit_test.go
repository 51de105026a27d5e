package submit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/utils"
)

func newSubmitter(t *testing.T) *Submitter {
	t.Helper()
	client := httpx.New(5 * time.Second).WithMaxRetries(1)
	return NewSubmitter(client, utils.NewDiscardLogger())
}

func TestSubmitSucceedsAfterOneRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "https://example.com/sitemap.xml", r.URL.Query().Get("sitemap"))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	summary := newSubmitter(t).Submit(context.Background(),
		"https://example.com/sitemap.xml",
		[]Engine{{Name: "flaky", Endpoint: srv.URL, Method: http.MethodGet}})

	require.Equal(t, 1, summary.Succeeded)
	require.Equal(t, 0, summary.Failed)
	require.True(t, summary.AllSucceeded())
	require.True(t, summary.Results[0].Retried)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestSubmitIsolatesEngineFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	summary := newSubmitter(t).Submit(context.Background(),
		"https://example.com/sitemap.xml",
		[]Engine{
			{Name: "good", Endpoint: good.URL, Method: http.MethodGet},
			{Name: "bad", Endpoint: bad.URL, Method: http.MethodGet},
		})

	require.Equal(t, 1, summary.Succeeded)
	require.Equal(t, 1, summary.Failed)
	require.False(t, summary.AllSucceeded())
	require.Len(t, summary.Results, 2)

	for _, rec := range summary.Results {
		switch rec.Engine {
		case "good":
			require.True(t, rec.Success)
		case "bad":
			require.False(t, rec.Success)
			require.NotEmpty(t, rec.Error)
		default:
			t.Fatalf("unexpected engine %q", rec.Engine)
		}
	}
}

func TestSubmitPostsJSONWithAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "secret", r.URL.Query().Get("apikey"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	summary := newSubmitter(t).Submit(context.Background(),
		"https://example.com/sitemap.xml",
		[]Engine{{Name: "keyed", Endpoint: srv.URL, Method: http.MethodPost, APIKey: "secret"}})

	require.True(t, summary.AllSucceeded())
}
