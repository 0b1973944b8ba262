package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"whaleScope/internal/model"
)

// DefaultURL is the portfolio snapshot endpoint.
const DefaultURL = "https://portfolio-api.sonar.watch/v1/portfolio/fetch"

// Client fetches wallet portfolio snapshots.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{baseURL: baseURL, httpClient: &http.Client{Timeout: timeout}}
}

// Fetch returns the current portfolio of a Solana wallet.
func (c *Client) Fetch(ctx context.Context, owner string) (model.Portfolio, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("parse portfolio url: %w", err)
	}
	query := endpoint.Query()
	query.Set("owner", owner)
	query.Set("addressSystem", "solana")
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return model.Portfolio{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("fetch portfolio %s: %w", owner, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Portfolio{}, fmt.Errorf("portfolio %s status %d: %s", owner, resp.StatusCode, body)
	}

	var snapshot model.Portfolio
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return model.Portfolio{}, fmt.Errorf("decode portfolio %s: %w", owner, err)
	}
	if snapshot.Owner == "" {
		snapshot.Owner = owner
	}
	return snapshot, nil
}
