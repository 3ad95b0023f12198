package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"attendance-tracker/internal/domain"
	"attendance-tracker/internal/errs"

	"github.com/valyala/fasthttp"
)

type LeetCodeClient struct {
	client *fasthttp.Client
}

func NewLeetCodeClient() *LeetCodeClient {
	return &LeetCodeClient{client: newHTTPClient()}
}

const leetcodeQuery = `query userProfile($username: String!) {
  matchedUser(username: $username) {
    profile { ranking }
    submitStatsGlobal {
      acSubmissionNum { difficulty count }
    }
  }
}`

type lcRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type lcResponse struct {
	Data struct {
		MatchedUser *struct {
			Profile struct {
				Ranking int `json:"ranking"`
			} `json:"profile"`
			SubmitStatsGlobal struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStatsGlobal"`
		} `json:"matchedUser"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchStats resolves a LeetCode username through the public GraphQL
// endpoint. A nil result means no such user, which is not a failure.
func (c *LeetCodeClient) FetchStats(ctx context.Context, username string) (*domain.PlatformStats, error) {
	payload, err := json.Marshal(lcRequest{
		Query:     leetcodeQuery,
		Variables: map[string]string{"username": username},
	})
	if err != nil {
		return nil, errs.ExternalLookup(err, "leetcode")
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI("https://leetcode.com/graphql")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	status, body, err := do(ctx, c.client, req)
	if err != nil {
		return nil, errs.ExternalLookup(err, "leetcode")
	}
	if status != fasthttp.StatusOK {
		return nil, errs.ExternalLookup(fmt.Errorf("unexpected status %d", status), "leetcode")
	}

	stats, err := parseLeetCodeProfile(body)
	if err != nil {
		return nil, errs.ExternalLookup(err, "leetcode")
	}
	return stats, nil
}

// parseLeetCodeProfile returns nil stats when matchedUser is null, the
// GraphQL way of saying the username does not exist.
func parseLeetCodeProfile(body []byte) (*domain.PlatformStats, error) {
	var resp lcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Data.MatchedUser == nil {
		// "That user does not exist." arrives as an error with a null user;
		// any other error (throttling, schema change) is a lookup failure.
		for _, e := range resp.Errors {
			if !strings.Contains(strings.ToLower(e.Message), "does not exist") {
				return nil, fmt.Errorf("graphql error: %s", e.Message)
			}
		}
		return nil, nil
	}

	user := resp.Data.MatchedUser
	s := &domain.PlatformStats{
		Ranking: user.Profile.Ranking,
		Rating:  user.Profile.Ranking,
	}
	for _, bucket := range user.SubmitStatsGlobal.AcSubmissionNum {
		switch bucket.Difficulty {
		case "All":
			s.ProblemsSolved = bucket.Count
		case "Easy":
			s.EasySolved = bucket.Count
		case "Medium":
			s.MediumSolved = bucket.Count
		case "Hard":
			s.HardSolved = bucket.Count
		}
	}
	return s, nil
}
