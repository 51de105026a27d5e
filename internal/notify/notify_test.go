package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/models"
	"github.com/studiofoks/siteops/internal/utils"
)

func snapshotWithErrors(n int) *models.StatusSnapshot {
	s := models.NewStatusSnapshot("https://example.com")
	s.CrawledCount = 10
	s.IndexedCount = 8
	s.CrawlErrors = n
	s.PerURLStatus["https://example.com/sitemap.xml"] = "errors:2"
	return s
}

func TestBuildReportTitleReflectsErrors(t *testing.T) {
	report, err := BuildReport(snapshotWithErrors(2))
	require.NoError(t, err)
	require.Contains(t, report.Title, "indexing errors detected")
	require.Contains(t, report.Title, "https://example.com")
	require.Contains(t, report.Body, "Crawl errors:  2")
	require.Contains(t, report.Body, "https://example.com/sitemap.xml: errors:2")

	clean, err := BuildReport(snapshotWithErrors(0))
	require.NoError(t, err)
	require.Contains(t, clean.Title, "all clear")
}

func TestBuildReportIncludesRunMetadata(t *testing.T) {
	t.Setenv("GITHUB_RUN_ID", "424242")
	report, err := BuildReport(snapshotWithErrors(1))
	require.NoError(t, err)
	require.Contains(t, report.Body, "CI run 424242")
}

func TestShouldNotify(t *testing.T) {
	require.True(t, ShouldNotify(snapshotWithErrors(2), false))
	require.False(t, ShouldNotify(snapshotWithErrors(0), false))
	require.True(t, ShouldNotify(snapshotWithErrors(0), true))
}

func TestNotifyCreatesExactlyOneIssue(t *testing.T) {
	var issues int32
	var gotTitle string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/repos/studiofoks/site/issues", r.URL.Path)
		require.Equal(t, "Bearer token123", r.Header.Get("Authorization"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gotTitle = payload["title"]

		atomic.AddInt32(&issues, 1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	t.Setenv("GITHUB_TOKEN", "token123")
	t.Setenv("GITHUB_REPOSITORY", "studiofoks/site")

	n := NewNotifier(httpx.New(5*time.Second), utils.NewDiscardLogger())
	n.issueAPIBase = srv.URL

	require.NoError(t, n.Notify(context.Background(), snapshotWithErrors(2), ChannelIssue))
	require.EqualValues(t, 1, atomic.LoadInt32(&issues))
	require.Contains(t, gotTitle, "indexing errors detected")
}

func TestNotifySendsEmail(t *testing.T) {
	t.Setenv("SMTP_SERVER", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("EMAIL_FROM", "bot@example.com")
	t.Setenv("EMAIL_PASSWORD", "hunter2")
	t.Setenv("NOTIFICATION_EMAIL", "ops@example.com")

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	n := NewNotifier(httpx.New(5*time.Second), utils.NewDiscardLogger())
	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, n.Notify(context.Background(), snapshotWithErrors(2), ChannelEmail))
	require.Equal(t, "smtp.example.com:2525", gotAddr)
	require.Equal(t, "bot@example.com", gotFrom)
	require.Equal(t, []string{"ops@example.com"}, gotTo)
	require.Contains(t, string(gotMsg), "Subject: indexing errors detected")
}

func TestNotifyEmailFailsWithoutSettings(t *testing.T) {
	t.Setenv("SMTP_SERVER", "")

	n := NewNotifier(httpx.New(5*time.Second), utils.NewDiscardLogger())
	err := n.Notify(context.Background(), snapshotWithErrors(1), ChannelEmail)
	require.Error(t, err)
}

func TestNotifyRejectsUnknownChannel(t *testing.T) {
	n := NewNotifier(httpx.New(5*time.Second), utils.NewDiscardLogger())
	err := n.Notify(context.Background(), snapshotWithErrors(1), "pager")
	require.Error(t, err)
}
