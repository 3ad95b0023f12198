package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errs"

	"github.com/valyala/fasthttp"
)

type CodeforcesClient struct {
	client *fasthttp.Client
}

func NewCodeforcesClient() *CodeforcesClient {
	return &CodeforcesClient{client: newHTTPClient()}
}

type cfRatingResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  []struct {
		ContestID int `json:"contestId"`
		OldRating int `json:"oldRating"`
		NewRating int `json:"newRating"`
	} `json:"result"`
}

type cfStatusResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  []struct {
		Verdict string `json:"verdict"`
		Problem struct {
			ContestID int    `json:"contestId"`
			Index     string `json:"index"`
		} `json:"problem"`
	} `json:"result"`
}

// FetchStats resolves a Codeforces handle to its current standing. A nil
// result means Codeforces knows nothing about the handle, which callers must
// not treat as a failure.
func (c *CodeforcesClient) FetchStats(ctx context.Context, handle string) (*domain.PlatformStats, error) {
	ratingBody, err := c.get(ctx, fmt.Sprintf("https://codeforces.com/api/user.rating?handle=%s", url.QueryEscape(handle)))
	if err != nil {
		return nil, err
	}

	rating, notFound, err := parseCodeforcesRating(ratingBody)
	if err != nil {
		return nil, errs.ExternalLookup(err, "codeforces")
	}
	if notFound || rating == nil {
		return nil, nil
	}

	statusBody, err := c.get(ctx, fmt.Sprintf("https://codeforces.com/api/user.status?handle=%s&from=1&count=1000", url.QueryEscape(handle)))
	if err != nil {
		return nil, err
	}
	solved, err := parseCodeforcesSolved(statusBody)
	if err != nil {
		return nil, errs.ExternalLookup(err, "codeforces")
	}

	rating.ProblemsSolved = solved
	return rating, nil
}

func (c *CodeforcesClient) get(ctx context.Context, u string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(u)
	req.Header.SetMethod(fasthttp.MethodGet)

	status, body, err := do(ctx, c.client, req)
	if err != nil {
		return nil, errs.ExternalLookup(err, "codeforces")
	}
	// Codeforces reports handle errors as 400 with a FAILED JSON body,
	// which the parsers distinguish from transport failures.
	if status != fasthttp.StatusOK && status != fasthttp.StatusBadRequest {
		return nil, errs.ExternalLookup(fmt.Errorf("unexpected status %d", status), "codeforces")
	}
	return body, nil
}

// parseCodeforcesRating extracts the latest rating from a user.rating
// response. notFound reports a FAILED status naming an unknown handle; a nil
// stats with nil error means the handle exists but is unrated.
func parseCodeforcesRating(body []byte) (stats *domain.PlatformStats, notFound bool, err error) {
	var resp cfRatingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false, err
	}
	if resp.Status != "OK" {
		if strings.Contains(strings.ToLower(resp.Comment), "not found") {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("codeforces status %q: %s", resp.Status, resp.Comment)
	}
	if len(resp.Result) == 0 {
		return nil, false, nil
	}

	s := &domain.PlatformStats{
		Rating:   resp.Result[len(resp.Result)-1].NewRating,
		Contests: len(resp.Result),
	}
	for _, entry := range resp.Result {
		if entry.NewRating > s.MaxRating {
			s.MaxRating = entry.NewRating
		}
	}
	return s, false, nil
}

func parseCodeforcesSolved(body []byte) (int, error) {
	var resp cfStatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, err
	}
	if resp.Status != "OK" {
		return 0, fmt.Errorf("codeforces status %q: %s", resp.Status, resp.Comment)
	}

	seen := make(map[string]struct{})
	for _, sub := range resp.Result {
		if sub.Verdict != "OK" {
			continue
		}
		key := fmt.Sprintf("%d-%s", sub.Problem.ContestID, sub.Problem.Index)
		seen[key] = struct{}{}
	}
	return len(seen), nil
}
