package tvmaze

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"bingers/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

var (
	ErrShowNotFound = errors.New("show not found on TVmaze")
	ErrEmptyQuery   = errors.New("search query is empty")
)

type Client struct {
	resty  *resty.Client
	logger zerolog.Logger
}

func NewClient(cfg config.Config, logger zerolog.Logger) *Client {
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.TVMaze.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "bingers (+https://www.tvmaze.com/api)").
		SetTimeout(time.Duration(cfg.TVMaze.TimeoutSeconds) * time.Second).
		SetRetryCount(cfg.TVMaze.RetryCount).
		SetRetryWaitTime(time.Duration(cfg.TVMaze.RetryWaitSeconds) * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// TVmaze answers 429 when the per-IP rate limit is hit.
			return r != nil && (r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError)
		}).
		OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
			logger.Debug().
				Str("method", r.Request.Method).
				Str("url", r.Request.URL).
				Int("status", r.StatusCode()).
				Dur("took", r.Time()).
				Msg("[TVMAZE] response")
			return nil
		}).
		OnError(func(req *resty.Request, err error) {
			event := logger.Error().Err(err).Str("method", req.Method).Str("url", req.URL)
			var respErr *resty.ResponseError
			if errors.As(err, &respErr) && respErr.Response != nil {
				if body := respErr.Response.Body(); len(body) > 0 && len(body) < 500 {
					event = event.Str("body", string(body))
				}
			}
			event.Msg("[TVMAZE] request failed")
		})
	return &Client{resty: restyClient, logger: logger}
}

// SearchShows runs a free-text show search. Results keep TVmaze's
// relevance order.
func (c *Client) SearchShows(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	var results []SearchResult
	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetResult(&results).
		ForceContentType("application/json").
		Get("/search/shows")
	if err != nil {
		return nil, fmt.Errorf("failed to search shows for '%s': %w", query, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("TVmaze API error searching shows '%s'. Status: %s, Body: %s", query, resp.Status(), resp.String())
	}

	c.logger.Debug().Str("query", query).Int("results", len(results)).Msg("[TVMAZE] search")
	return results, nil
}

func (c *Client) Show(ctx context.Context, id int) (Show, error) {
	var show Show
	resp, err := c.resty.R().
		SetContext(ctx).
		SetPathParam("id", strconv.Itoa(id)).
		SetResult(&show).
		ForceContentType("application/json").
		Get("/shows/{id}")
	if err != nil {
		return Show{}, fmt.Errorf("failed to request show %d: %w", id, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return Show{}, fmt.Errorf("%w: id %d", ErrShowNotFound, id)
	}
	if !resp.IsSuccess() {
		return Show{}, fmt.Errorf("TVmaze API error fetching show %d. Status: %s, Body: %s", id, resp.Status(), resp.String())
	}
	return show, nil
}

// Episodes returns the numbered episodes of a show ordered by season and
// number. Specials are dropped.
func (c *Client) Episodes(ctx context.Context, showID int) ([]Episode, error) {
	var raw []episodeJSON
	resp, err := c.resty.R().
		SetContext(ctx).
		SetPathParam("id", strconv.Itoa(showID)).
		SetResult(&raw).
		ForceContentType("application/json").
		Get("/shows/{id}/episodes")
	if err != nil {
		return nil, fmt.Errorf("failed to request episodes for show %d: %w", showID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: id %d", ErrShowNotFound, showID)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("TVmaze API error fetching episodes for show %d. Status: %s, Body: %s", showID, resp.Status(), resp.String())
	}

	episodes := make([]Episode, 0, len(raw))
	for _, r := range raw {
		if ep, ok := r.toEpisode(); ok {
			episodes = append(episodes, ep)
		}
	}
	sort.SliceStable(episodes, func(i, j int) bool {
		if episodes[i].Season != episodes[j].Season {
			return episodes[i].Season < episodes[j].Season
		}
		return episodes[i].Number < episodes[j].Number
	})
	return episodes, nil
}

// ShowUpdates returns the last-updated timestamp of every show TVmaze
// knows, keyed by show id. since may be "", "day", "week" or "month".
func (c *Client) ShowUpdates(ctx context.Context, since string) (map[int]int64, error) {
	var raw map[string]int64
	req := c.resty.R().
		SetContext(ctx).
		SetResult(&raw).
		ForceContentType("application/json")
	if since != "" {
		req.SetQueryParam("since", since)
	}
	resp, err := req.Get("/updates/shows")
	if err != nil {
		return nil, fmt.Errorf("failed to request show updates: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("TVmaze API error fetching show updates. Status: %s, Body: %s", resp.Status(), resp.String())
	}

	updates := make(map[int]int64, len(raw))
	for key, ts := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			c.logger.Warn().Str("key", key).Msg("[TVMAZE] skipping malformed update entry")
			continue
		}
		updates[id] = ts
	}
	return updates, nil
}
