package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// httpGameAllocator asks the game engine for a fresh playable game. The
// engine owns boards, clocks and move legality; this service only needs
// the id to attach to the match.
type httpGameAllocator struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPGameAllocator(baseURL string) GameAllocator {
	return &httpGameAllocator{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (a *httpGameAllocator) AllocateGame(ctx context.Context, matchID int) (int, error) {
	payload, err := json.Marshal(map[string]int{"match_id": matchID})
	if err != nil {
		return 0, fmt.Errorf("failed to encode game allocation request: %w", err)
	}

	url := fmt.Sprintf("%s/games", a.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build game allocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("game allocation for match %d failed: %w", matchID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("game engine returned status %d for match %d", resp.StatusCode, matchID)
	}

	var body struct {
		GameID int `json:"game_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode game allocation response for match %d: %w", matchID, err)
	}
	return body.GameID, nil
}
