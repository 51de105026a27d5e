package console

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/studiofoks/siteops/internal/utils"
)

func TestListSites(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/sites", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"siteEntry":[
			{"siteUrl":"https://example.com/","permissionLevel":"siteOwner"},
			{"siteUrl":"https://other.example/","permissionLevel":"siteFullUser"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), utils.NewDiscardLogger())
	sites, err := client.ListSites(context.Background())

	require.NoError(t, err)
	require.Len(t, sites, 2)
	require.Equal(t, "https://example.com/", sites[0].SiteURL)
	require.Equal(t, "siteOwner", sites[0].PermissionLevel)
}

func TestListSitesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), utils.NewDiscardLogger())
	sites, err := client.ListSites(context.Background())

	require.NoError(t, err)
	require.Empty(t, sites)
}

func TestSubmitSitemapSendsPut(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), utils.NewDiscardLogger())
	err := client.SubmitSitemap(context.Background(), "https://example.com", "https://example.com/sitemap.xml")

	require.NoError(t, err)
	require.Equal(t, http.MethodPut, gotMethod)
	require.Contains(t, gotPath, url.PathEscape("https://example.com"))
	require.Contains(t, gotPath, url.PathEscape("https://example.com/sitemap.xml"))
}

func TestDeleteSitemapSendsDelete(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), utils.NewDiscardLogger())
	err := client.DeleteSitemap(context.Background(), "https://example.com", "https://example.com/sitemap.xml")

	require.NoError(t, err)
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Contains(t, gotPath, url.PathEscape("https://example.com/sitemap.xml"))
}

func TestDeleteSitemapReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), utils.NewDiscardLogger())
	err := client.DeleteSitemap(context.Background(), "https://example.com", "https://example.com/sitemap.xml")

	require.Error(t, err)
	require.Contains(t, err.Error(), "HTTP 404")
}
