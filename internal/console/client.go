package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/studiofoks/siteops/internal/utils"
)

// FlexInt tolerates numeric fields the API sometimes returns as JSON strings.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid numeric field %q: %w", s, err)
	}
	*f = FlexInt(n)
	return nil
}

// SitemapContents is the per-content-type crawl breakdown of one sitemap.
type SitemapContents struct {
	Type      string  `json:"type"`
	Submitted FlexInt `json:"submitted"`
	Indexed   FlexInt `json:"indexed"`
}

// SitemapStatus is one registered sitemap as the console reports it.
type SitemapStatus struct {
	Path            string            `json:"path"`
	IsPending       bool              `json:"isPending"`
	IsSitemapsIndex bool              `json:"isSitemapsIndex"`
	LastSubmitted   string            `json:"lastSubmitted"`
	LastDownloaded  string            `json:"lastDownloaded"`
	Warnings        FlexInt           `json:"warnings"`
	Errors          FlexInt           `json:"errors"`
	Contents        []SitemapContents `json:"contents"`
}

type sitemapListResponse struct {
	Sitemap []SitemapStatus `json:"sitemap"`
}

// SiteEntry is one verified site the credential can access.
type SiteEntry struct {
	SiteURL         string `json:"siteUrl"`
	PermissionLevel string `json:"permissionLevel"`
}

type siteListResponse struct {
	SiteEntry []SiteEntry `json:"siteEntry"`
}

// Client is a thin wrapper over the webmasters v3 sitemaps API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *utils.RunLogger
}

// NewClient builds a client against baseURL using an already-authenticated
// HTTP client. Tests point baseURL at a stub server.
func NewClient(baseURL string, httpClient *http.Client, logger *utils.RunLogger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// ListSitemaps fetches the status of every sitemap registered for site.
func (c *Client) ListSitemaps(ctx context.Context, site string) ([]SitemapStatus, error) {
	endpoint := fmt.Sprintf("%s/sites/%s/sitemaps", c.baseURL, url.PathEscape(site))

	body, err := c.getJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var parsed sitemapListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing sitemap list for %s: %w", site, err)
	}

	for i, st := range parsed.Sitemap {
		if st.Path == "" {
			return nil, fmt.Errorf("sitemap list entry %d for %s is missing path", i, site)
		}
	}

	c.logger.LogDebug("console reports %d sitemaps for %s", len(parsed.Sitemap), site)
	return parsed.Sitemap, nil
}

// ListSites fetches every site verified for the authenticated account.
func (c *Client) ListSites(ctx context.Context) ([]SiteEntry, error) {
	body, err := c.getJSON(ctx, c.baseURL+"/sites")
	if err != nil {
		return nil, err
	}

	var parsed siteListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing site list: %w", err)
	}

	c.logger.LogDebug("console reports %d verified sites", len(parsed.SiteEntry))
	return parsed.SiteEntry, nil
}

// SubmitSitemap registers feedpath with the console for site.
func (c *Client) SubmitSitemap(ctx context.Context, site, feedpath string) error {
	if err := c.sitemapRequest(ctx, http.MethodPut, site, feedpath); err != nil {
		return fmt.Errorf("console submission of %s failed: %w", feedpath, err)
	}
	c.logger.LogInfo("console accepted sitemap %s for %s", feedpath, site)
	return nil
}

// DeleteSitemap removes feedpath's registration from the console for site.
func (c *Client) DeleteSitemap(ctx context.Context, site, feedpath string) error {
	if err := c.sitemapRequest(ctx, http.MethodDelete, site, feedpath); err != nil {
		return fmt.Errorf("console removal of %s failed: %w", feedpath, err)
	}
	c.logger.LogInfo("console removed sitemap %s for %s", feedpath, site)
	return nil
}

func (c *Client) sitemapRequest(ctx context.Context, method, site, feedpath string) error {
	endpoint := fmt.Sprintf("%s/sites/%s/sitemaps/%s",
		c.baseURL, url.PathEscape(site), url.PathEscape(feedpath))

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("error building %s request: %w", method, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request for %s: %w", endpoint, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("console request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("error reading console response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("console returned HTTP %d for %s: %s",
			resp.StatusCode, endpoint, strings.TrimSpace(string(body)))
	}
	return body, nil
}
