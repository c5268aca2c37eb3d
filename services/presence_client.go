package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// httpPresenceProvider asks the presence backend whether a user is online.
type httpPresenceProvider struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPPresenceProvider(baseURL string) PresenceProvider {
	return &httpPresenceProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (p *httpPresenceProvider) IsOnline(ctx context.Context, userID int) (bool, error) {
	url := fmt.Sprintf("%s/presence/%d", p.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build presence request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("presence lookup for user %d failed: %w", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("presence backend returned status %d for user %d", resp.StatusCode, userID)
	}

	var body struct {
		Online bool `json:"online"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode presence response for user %d: %w", userID, err)
	}
	return body.Online, nil
}
