// Package lookup implements the recipe-lookup capability against an
// Edamam-style recipe search API, plus a fixture-backed source for offline
// runs. Failures map onto the two conditions the session understands: no
// results, and service unavailable.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"mealplanner/recipe"
)

var (
	ErrNoResults          = errors.New("no recipes matched the search")
	ErrServiceUnavailable = errors.New("recipe lookup service unavailable")
)

type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the recipe search API. Transient failures retry with
// exponential backoff; requests are rate limited to stay inside the API's
// free-tier quota.
type Client struct {
	baseURL    string
	appID      string
	appKey     string
	userID     string
	maxResults int
	maxTries   uint
	httpClient doer
	limiter    *rate.Limiter
}

type ClientOpts struct {
	BaseURL    string
	AppID      string
	AppKey     string
	UserID     string
	MaxResults int
	MaxTries   uint
	HTTPClient doer
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = 3
	}

	return &Client{
		baseURL:    opts.BaseURL,
		appID:      opts.AppID,
		appKey:     opts.AppKey,
		userID:     opts.UserID,
		maxResults: opts.MaxResults,
		maxTries:   opts.MaxTries,
		httpClient: opts.HTTPClient,
		// 10 req/min with a small burst, matching the API's developer tier.
		limiter: rate.NewLimiter(rate.Limit(10.0/60.0), 3),
	}, nil
}

// wire types for the search API response
type wireHit struct {
	Recipe wireRecipe `json:"recipe"`
}

type wireRecipe struct {
	URI             string   `json:"uri"`
	Label           string   `json:"label"`
	URL             string   `json:"url"`
	Image           string   `json:"image"`
	CuisineType     []string `json:"cuisineType"`
	IngredientLines []string `json:"ingredientLines"`
	Yield           float64  `json:"yield"`
	TotalTime       float64  `json:"totalTime"`
}

type wireResponse struct {
	Hits []wireHit `json:"hits"`
}

// Search looks up recipes matching the query, filtered by dietary labels and
// cuisine types. Returns ErrNoResults when nothing matches and
// ErrServiceUnavailable when the API keeps failing after retries.
func (c *Client) Search(ctx context.Context, query string, dietary, cuisines []string) ([]recipe.Recipe, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	operation := func() (*wireResponse, error) {
		return c.search(ctx, query, dietary, cuisines)
	}

	wr, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
	if err != nil {
		if errors.Is(err, ErrNoResults) {
			return nil, ErrNoResults
		}
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	recipes := make([]recipe.Recipe, 0, min(len(wr.Hits), c.maxResults))
	for _, hit := range wr.Hits {
		if len(recipes) == c.maxResults {
			break
		}
		r := hit.Recipe
		servings := int(math.Round(r.Yield))
		if servings <= 0 {
			servings = 1
		}
		recipes = append(recipes, recipe.Recipe{
			ID:              idFromURI(r.URI),
			Title:           r.Label,
			SourceServings:  servings,
			IngredientLines: r.IngredientLines,
			URL:             r.URL,
			Image:           r.Image,
			CuisineTypes:    r.CuisineType,
			TotalTime:       int(r.TotalTime),
		})
	}

	if len(recipes) == 0 {
		return nil, ErrNoResults
	}
	return recipes, nil
}

func (c *Client) search(ctx context.Context, query string, dietary, cuisines []string) (*wireResponse, error) {
	params := url.Values{}
	params.Set("type", "public")
	params.Set("q", query)
	params.Set("app_id", c.appID)
	params.Set("app_key", c.appKey)
	for _, d := range dietary {
		params.Add("health", d)
	}
	for _, cu := range cuisines {
		params.Add("cuisineType", cu)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if c.userID != "" {
		req.Header.Set("Edamam-Account-User", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err // network error, retryable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(ErrNoResults)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("lookup: %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("lookup: %s: %s", resp.Status, string(body)))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("lookup: decode response: %w", err))
	}
	return &wr, nil
}

func idFromURI(uri string) string {
	for i := len(uri) - 1; i >= 0; i-- {
		if uri[i] == '#' {
			return uri[i+1:]
		}
	}
	return uri
}
