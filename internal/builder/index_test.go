package builder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/utils"
)

func TestBuildIndexKeepsConfiguredOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	main := srv.URL + "/sitemap.xml"
	projects := []string{srv.URL + "/p1/sitemap.xml", srv.URL + "/p2/sitemap.xml"}

	client := httpx.New(5 * time.Second)
	index := BuildIndex(context.Background(), main, projects, client, utils.NewDiscardLogger())

	require.Len(t, index.Sitemaps, 3)
	require.Equal(t, main, index.Sitemaps[0].Loc)
	require.Equal(t, projects[0], index.Sitemaps[1].Loc)
	require.Equal(t, projects[1], index.Sitemaps[2].Loc)
}

func TestBuildIndexIncludesUnreachableReferences(t *testing.T) {
	// Closed server: connection refused, still included as a best-effort entry.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := srv.URL + "/gone/sitemap.xml"
	srv.Close()

	client := httpx.New(2 * time.Second)
	index := BuildIndex(context.Background(), "", []string{dead}, client, utils.NewDiscardLogger())

	require.Len(t, index.Sitemaps, 1)
	require.Equal(t, dead, index.Sitemaps[0].Loc)
	require.NotEmpty(t, index.Sitemaps[0].LastMod)
}
