package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultJupiterURL is the Jupiter price endpoint; the token mint is appended.
const DefaultJupiterURL = "https://price.jup.ag/v4/price?ids="

// JupiterSource queries the Jupiter price API.
type JupiterSource struct {
	baseURL    string
	httpClient *http.Client
}

func NewJupiterSource(baseURL string, timeout time.Duration) *JupiterSource {
	if baseURL == "" {
		baseURL = DefaultJupiterURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &JupiterSource{baseURL: baseURL, httpClient: &http.Client{Timeout: timeout}}
}

type jupiterResponse struct {
	Data map[string]struct {
		Price decimal.Decimal `json:"price"`
	} `json:"data"`
}

// SpotPrice returns zero without error when the API has no entry for token.
func (s *JupiterSource) SpotPrice(ctx context.Context, token string) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+url.QueryEscape(token), nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("jupiter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("jupiter status %d: %s", resp.StatusCode, body)
	}

	var payload jupiterResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode jupiter response: %w", err)
	}
	entry, ok := payload.Data[token]
	if !ok {
		return decimal.Zero, nil
	}
	return entry.Price, nil
}
