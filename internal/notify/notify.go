// Package notify turns a status snapshot into a human-readable report and
// dispatches it as an email or a tracker issue.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"os"
	"sort"
	"text/template"

	"github.com/studiofoks/siteops/config"
	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/models"
	"github.com/studiofoks/siteops/internal/utils"
)

const (
	ChannelEmail = "email"
	ChannelIssue = "issue"
)

var reportTemplate = template.Must(template.New("report").Parse(`Indexing status report for {{.Snapshot.Site}}
Generated: {{.Snapshot.Timestamp.Format "2006-01-02 15:04:05 UTC"}}

Crawled URLs:  {{.Snapshot.CrawledCount}}
Indexed URLs:  {{.Snapshot.IndexedCount}}
Crawl errors:  {{.Snapshot.CrawlErrors}}
Warnings:      {{.Snapshot.Warnings}}
{{if .Statuses}}
Per-sitemap status:
{{- range .Statuses}}
  - {{.URL}}: {{.Status}}
{{- end}}
{{end}}{{if .RunID}}
Triggered by CI run {{.RunID}}.
{{end}}`))

type urlStatus struct {
	URL    string
	Status string
}

type reportData struct {
	Snapshot *models.StatusSnapshot
	Statuses []urlStatus
	RunID    string
}

// Report is the rendered notification, ready for any channel.
type Report struct {
	Title string
	Body  string
}

// BuildReport renders the textual report for a snapshot. The title calls out
// indexing errors when there are any.
func BuildReport(snapshot *models.StatusSnapshot) (*Report, error) {
	data := reportData{
		Snapshot: snapshot,
		RunID:    os.Getenv("GITHUB_RUN_ID"),
	}
	for url, status := range snapshot.PerURLStatus {
		data.Statuses = append(data.Statuses, urlStatus{URL: url, Status: status})
	}
	sort.Slice(data.Statuses, func(i, j int) bool {
		return data.Statuses[i].URL < data.Statuses[j].URL
	})

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("error rendering report: %w", err)
	}

	title := fmt.Sprintf("Indexing status for %s: all clear", snapshot.Site)
	if snapshot.CrawlErrors > 0 {
		title = fmt.Sprintf("indexing errors detected for %s (%d errors)", snapshot.Site, snapshot.CrawlErrors)
	}

	return &Report{Title: title, Body: buf.String()}, nil
}

// ShouldNotify applies the trigger policy: always, or only when the snapshot
// carries crawl errors.
func ShouldNotify(snapshot *models.StatusSnapshot, always bool) bool {
	return always || snapshot.CrawlErrors > 0
}

type Notifier struct {
	client *httpx.Client
	logger *utils.RunLogger

	// recipient overrides NOTIFICATION_EMAIL when set from the command line.
	recipient string

	// issueAPIBase and sendMail exist so tests can stub the outbound side.
	issueAPIBase string
	sendMail     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewNotifier(client *httpx.Client, logger *utils.RunLogger) *Notifier {
	return &Notifier{
		client:       client,
		logger:       logger,
		issueAPIBase: "https://api.github.com",
		sendMail:     smtp.SendMail,
	}
}

// SetRecipient overrides the configured notification address for emails.
func (n *Notifier) SetRecipient(addr string) {
	n.recipient = addr
}

// Notify renders and dispatches the report on the given channel. Duplicate
// notifications across retried runs are accepted; there is no dedup state.
func (n *Notifier) Notify(ctx context.Context, snapshot *models.StatusSnapshot, channel string) error {
	report, err := BuildReport(snapshot)
	if err != nil {
		return err
	}

	switch channel {
	case ChannelEmail:
		return n.sendEmail(report)
	case ChannelIssue:
		return n.createIssue(ctx, report)
	default:
		return fmt.Errorf("%w: unknown notification channel %q", config.ErrConfig, channel)
	}
}

func (n *Notifier) sendEmail(report *Report) error {
	server, err := config.RequireEnv("SMTP_SERVER")
	if err != nil {
		return err
	}
	port := config.GetEnv("SMTP_PORT", "587")
	from, err := config.RequireEnv("EMAIL_FROM")
	if err != nil {
		return err
	}
	password, err := config.RequireEnv("EMAIL_PASSWORD")
	if err != nil {
		return err
	}
	to := n.recipient
	if to == "" {
		if to, err = config.RequireEnv("NOTIFICATION_EMAIL"); err != nil {
			return err
		}
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		from, to, report.Title, report.Body)

	auth := smtp.PlainAuth("", from, password, server)
	addr := fmt.Sprintf("%s:%s", server, port)

	if err := n.sendMail(addr, auth, from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("error sending notification email via %s: %w", addr, err)
	}

	n.logger.LogInfo("notification email sent to %s", to)
	return nil
}

func (n *Notifier) createIssue(ctx context.Context, report *Report) error {
	token, err := config.RequireEnv("GITHUB_TOKEN")
	if err != nil {
		return err
	}
	repo, err := config.RequireEnv("GITHUB_REPOSITORY")
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{
		"title": report.Title,
		"body":  report.Body,
	})
	if err != nil {
		return fmt.Errorf("error encoding issue payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/repos/%s/issues", n.issueAPIBase, repo)
	res, err := n.client.DoWithHeaders(ctx, http.MethodPost, endpoint, payload, map[string]string{
		"Authorization": "Bearer " + token,
		"Accept":        "application/vnd.github+json",
		"Content-Type":  "application/json",
	})
	if err != nil {
		return fmt.Errorf("error creating issue on %s: %w", repo, err)
	}

	n.logger.LogInfo("issue created on %s (HTTP %d): %s", repo, res.StatusCode, report.Title)
	return nil
}
