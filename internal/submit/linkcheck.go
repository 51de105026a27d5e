package submit

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/models"
	"github.com/studiofoks/siteops/internal/utils"
)

// LinkProblem is one sitemap URL that failed its reachability pre-flight.
type LinkProblem struct {
	URL    string `json:"url"`
	Status int    `json:"status,omitempty"`
	Reason string `json:"reason"`
}

type LinkChecker struct {
	client  *httpx.Client
	limiter *rate.Limiter
	logger  *utils.RunLogger
}

// NewLinkChecker builds a checker that paces requests at maxPerSecond so a
// pre-flight over a large sitemap does not hammer the site.
func NewLinkChecker(client *httpx.Client, maxPerSecond float64, logger *utils.RunLogger) *LinkChecker {
	if maxPerSecond <= 0 {
		maxPerSecond = 10
	}
	return &LinkChecker{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(maxPerSecond), 1),
		logger:  logger,
	}
}

// ValidateLinks HEAD-checks every URL in the sitemap. Broken links come back
// as problems; they are warnings, never an abort.
func (lc *LinkChecker) ValidateLinks(ctx context.Context, sm *models.Sitemap) []LinkProblem {
	var problems []LinkProblem

	for _, entry := range sm.URLs {
		if err := lc.limiter.Wait(ctx); err != nil {
			lc.logger.LogWarn("link validation stopped early: %v", err)
			problems = append(problems, LinkProblem{URL: entry.Loc, Reason: err.Error()})
			return problems
		}

		if problem := lc.checkOne(ctx, entry.Loc); problem != nil {
			lc.logger.LogWarn("broken link %s: %s", problem.URL, problem.Reason)
			problems = append(problems, *problem)
		}
	}

	lc.logger.LogInfo("validated %d links, %d broken", len(sm.URLs), len(problems))
	return problems
}

func (lc *LinkChecker) checkOne(ctx context.Context, loc string) *LinkProblem {
	status, err := lc.client.Head(ctx, loc)
	if err != nil {
		return &LinkProblem{URL: loc, Reason: err.Error()}
	}

	// Some static hosts refuse HEAD; fall back to GET before flagging.
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		res, getErr := lc.client.Get(ctx, loc)
		if getErr != nil {
			return &LinkProblem{URL: loc, Status: status, Reason: getErr.Error()}
		}
		status = res.StatusCode
	}

	if status < 200 || status > 299 {
		return &LinkProblem{URL: loc, Status: status, Reason: fmt.Sprintf("HTTP %d", status)}
	}
	return nil
}
