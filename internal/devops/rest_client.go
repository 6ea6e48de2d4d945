package devops

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// updatesPageSize is the largest page the updates endpoint returns.
const updatesPageSize = 200

type restClient struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	pageSize   int

	// Identical in-flight requests share one round trip.
	inflight singleflight.Group
}

// NewRESTClient returns a Client talking to the Azure DevOps REST API.
func NewRESTClient(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &restClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		pageSize: updatesPageSize,
	}
}

func (c *restClient) authenticateRequest(req *http.Request) {
	if c.cfg.Token != "" {
		token := base64.StdEncoding.EncodeToString([]byte(":" + c.cfg.Token))
		req.Header.Set("Authorization", "Basic "+token)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *restClient) projectURL(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api-version", APIVersion)
	return fmt.Sprintf("%s/%s/%s/_apis/%s?%s",
		c.cfg.BaseURL,
		url.PathEscape(c.cfg.Organization),
		url.PathEscape(c.cfg.Project),
		path,
		params.Encode(),
	)
}

// getJSON performs a paced, authenticated GET and decodes the body into a new T.
// The shared round trip is detached from any single caller's cancellation and
// bounded by the client timeout; each caller stops waiting when its own ctx ends.
func getJSON[T any](ctx context.Context, c *restClient, what, reqURL string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shared := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(reqURL, func() (any, error) {
		return fetchJSON[T](shared, c, what, reqURL)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Trace().Str("url", reqURL).Msg("Shared in-flight request")
		}
		return res.Val.(*T), nil
	}
}

func fetchJSON[T any](ctx context.Context, c *restClient, what, reqURL string) (*T, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	log.Debug().Str("url", reqURL).Msg("Azure DevOps request")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	c.authenticateRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, what, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp, what); err != nil {
		return nil, err
	}

	var result T
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", what, err)
	}
	return &result, nil
}

func statusError(resp *http.Response, what string) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (%d) for %s: check AZDO_PAT", ErrUnauthorized, resp.StatusCode, what)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case http.StatusTooManyRequests:
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			return fmt.Errorf("%w for %s, retry after %s seconds", ErrRateLimited, what, retryAfter)
		}
		return fmt.Errorf("%w for %s", ErrRateLimited, what)
	default:
		return fmt.Errorf("%w: status %d for %s", ErrUnavailable, resp.StatusCode, what)
	}
}

// GetWorkItemUpdates pages through the full revision history until a short page comes back.
func (c *restClient) GetWorkItemUpdates(ctx context.Context, id int) ([]UpdateDTO, error) {
	var all []UpdateDTO
	for skip := 0; ; skip += c.pageSize {
		params := url.Values{}
		params.Set("$top", strconv.Itoa(c.pageSize))
		params.Set("$skip", strconv.Itoa(skip))
		reqURL := c.projectURL(fmt.Sprintf("wit/workItems/%d/updates", id), params)
		what := fmt.Sprintf("work item %d updates", id)

		resp, err := getJSON[UpdatesResponse](ctx, c, what, reqURL)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Value...)
		if len(resp.Value) < c.pageSize {
			break
		}
	}
	log.Debug().Int("id", id).Int("updates", len(all)).Msg("Fetched updates")
	return all, nil
}

func (c *restClient) GetWorkItem(ctx context.Context, id int) (*WorkItemDTO, error) {
	params := url.Values{}
	params.Set("$expand", "fields")
	reqURL := c.projectURL(fmt.Sprintf("wit/workItems/%d", id), params)

	return getJSON[WorkItemDTO](ctx, c, fmt.Sprintf("work item %d", id), reqURL)
}

func (c *restClient) QueryWorkItemIDs(ctx context.Context, queryID string) ([]int, error) {
	if queryID == "" {
		return nil, fmt.Errorf("no query id configured")
	}
	reqURL := c.projectURL("wit/wiql/"+url.PathEscape(queryID), nil)

	resp, err := getJSON[WiqlResponse](ctx, c, "query "+queryID, reqURL)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(resp.WorkItems))
	for _, ref := range resp.WorkItems {
		ids = append(ids, ref.ID)
	}
	log.Info().Str("query", queryID).Int("count", len(ids)).Msg("Resolved work items from query")
	return ids, nil
}
