package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"spilcafe-catalog/internal/config"
	"spilcafe-catalog/internal/constants"
	"spilcafe-catalog/internal/domain"

	"github.com/valyala/fasthttp"
)

var ErrUnexpectedStatus = errors.New("unexpected catalog response status")

// CatalogClient fetches the game feed. It makes exactly one GET per call and
// never retries.
type CatalogClient struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client
}

func NewCatalogClient(cfg *config.Config) *CatalogClient {
	return &CatalogClient{
		url:     cfg.CatalogURL,
		timeout: cfg.FetchTimeout,
		client: &fasthttp.Client{
			Name:                "spilcafe-catalog",
			MaxConnsPerHost:     4,
			ReadTimeout:         cfg.FetchTimeout,
			WriteTimeout:        cfg.FetchTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
			MaxResponseBodySize: constants.MaxCatalogBodySize,
		},
	}
}

func (c *CatalogClient) FetchGames(ctx context.Context) ([]domain.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	games, err := doRequest[[]domain.Game](ctx, c, c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog from %s: %w", c.url, err)
	}
	return *games, nil
}

func doRequest[T any](ctx context.Context, client *CatalogClient, url string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &result, nil
}
