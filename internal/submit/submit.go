// Package submit pushes sitemap URLs to search-engine endpoints and
// pre-flights sitemap contents.
package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studiofoks/siteops/config"
	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/models"
	"github.com/studiofoks/siteops/internal/utils"
)

// Engine is one search-engine submission endpoint with its resolved API key.
type Engine struct {
	Name     string
	Endpoint string
	Method   string
	APIKey   string
}

// EnginesFromConfig resolves configured engines, reading API keys from the
// environment. An engine whose key variable is set but empty is still usable
// as a plain ping endpoint.
func EnginesFromConfig(cfgs []config.EngineConfig) []Engine {
	engines := make([]Engine, 0, len(cfgs))
	for _, c := range cfgs {
		e := Engine{Name: c.Name, Endpoint: c.Endpoint, Method: c.Method}
		if e.Method == "" {
			e.Method = http.MethodGet
		}
		if c.APIKeyEnv != "" {
			e.APIKey = os.Getenv(c.APIKeyEnv)
		}
		engines = append(engines, e)
	}
	return engines
}

// Summary aggregates per-engine outcomes of one submission run.
type Summary struct {
	SitemapURL string
	Results    []models.SubmissionRecord
	Succeeded  int
	Failed     int
}

// AllSucceeded reports whether every engine accepted the submission.
func (s *Summary) AllSucceeded() bool {
	return s.Failed == 0
}

type Submitter struct {
	client *httpx.Client
	logger *utils.RunLogger
}

func NewSubmitter(client *httpx.Client, logger *utils.RunLogger) *Submitter {
	return &Submitter{client: client, logger: logger}
}

// Submit pushes sitemapURL to every engine concurrently. A failing engine
// never aborts the others; results accumulate under a mutex.
func (s *Submitter) Submit(ctx context.Context, sitemapURL string, engines []Engine) *Summary {
	summary := &Summary{SitemapURL: sitemapURL}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, engine := range engines {
		wg.Add(1)
		go func(e Engine) {
			defer wg.Done()

			record := s.submitOne(ctx, sitemapURL, e)

			mu.Lock()
			defer mu.Unlock()
			summary.Results = append(summary.Results, record)
			if record.Success {
				summary.Succeeded++
			} else {
				summary.Failed++
			}
		}(engine)
	}
	wg.Wait()

	s.logger.LogInfo("submission of %s done: %d succeeded, %d failed",
		sitemapURL, summary.Succeeded, summary.Failed)
	return summary
}

func (s *Submitter) submitOne(ctx context.Context, sitemapURL string, e Engine) models.SubmissionRecord {
	record := models.SubmissionRecord{
		ID:          uuid.New(),
		SitemapURL:  sitemapURL,
		Engine:      e.Name,
		SubmittedAt: time.Now().UTC(),
	}

	var res *httpx.Result
	var err error

	switch e.Method {
	case http.MethodPost:
		res, err = s.postSubmission(ctx, sitemapURL, e)
	default:
		res, err = s.pingSubmission(ctx, sitemapURL, e)
	}

	if err != nil {
		record.Error = err.Error()
		s.logger.LogWarn("engine %s rejected %s: %v", e.Name, sitemapURL, err)
		return record
	}

	record.Success = true
	record.StatusCode = res.StatusCode
	record.Retried = res.Attempts > 1
	s.logger.LogInfo("engine %s accepted %s (HTTP %d, attempts %d)",
		e.Name, sitemapURL, res.StatusCode, res.Attempts)
	return record
}

// pingSubmission is the classic GET ping: endpoint?sitemap=<url>.
func (s *Submitter) pingSubmission(ctx context.Context, sitemapURL string, e Engine) (*httpx.Result, error) {
	endpoint, err := url.Parse(e.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint for engine %s: %w", e.Name, err)
	}
	q := endpoint.Query()
	q.Set("sitemap", sitemapURL)
	if e.APIKey != "" {
		q.Set("apikey", e.APIKey)
	}
	endpoint.RawQuery = q.Encode()

	return s.client.Get(ctx, endpoint.String())
}

// postSubmission is the API-style JSON POST used by keyed endpoints.
func (s *Submitter) postSubmission(ctx context.Context, sitemapURL string, e Engine) (*httpx.Result, error) {
	endpoint, err := url.Parse(e.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint for engine %s: %w", e.Name, err)
	}
	if e.APIKey != "" {
		q := endpoint.Query()
		q.Set("apikey", e.APIKey)
		endpoint.RawQuery = q.Encode()
	}

	body, err := json.Marshal(map[string]string{"sitemapUrl": sitemapURL})
	if err != nil {
		return nil, fmt.Errorf("error encoding submission body: %w", err)
	}

	return s.client.Do(ctx, http.MethodPost, endpoint.String(), body, "application/json")
}
