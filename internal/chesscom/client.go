// Package chesscom downloads a player's monthly game archives from the
// Chess.com public API.
package chesscom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vytor/pgnarchive/internal/logger"
)

const defaultBaseURL = "https://api.chess.com/pub"

type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		log:        logger.Default().WithPrefix("chesscom"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type archivesResp struct {
	Archives []string `json:"archives"`
}

type MonthlyGame struct {
	URL       string `json:"url"`
	PGN       string `json:"pgn"`
	TimeClass string `json:"time_class"`
	Rules     string `json:"rules"`
	EndTime   int64  `json:"end_time"`
	White     Player `json:"white"`
	Black     Player `json:"black"`
}

type Player struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Result   string `json:"result"`
}

// FetchArchives lists the monthly archive URLs of username, oldest first.
func (c *Client) FetchArchives(ctx context.Context, username string) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("chesscom").WithField("username", username)
	archivesURL := fmt.Sprintf("%s/player/%s/games/archives", c.baseURL, url.PathEscape(strings.ToLower(username)))

	log.Debug("fetching archives from: %s", archivesURL)
	var out archivesResp
	if err := c.getJSON(ctx, log, archivesURL, &out); err != nil {
		return nil, fmt.Errorf("archives: %w", err)
	}

	log.Info("fetched %d archives for user %s", len(out.Archives), username)
	return out.Archives, nil
}

// FetchMonthly loads every game of one archive.
func (c *Client) FetchMonthly(ctx context.Context, archiveURL string) ([]MonthlyGame, error) {
	log := logger.FromContext(ctx).WithPrefix("chesscom").WithField("archive_url", archiveURL)

	log.Debug("fetching monthly games")
	var payload struct {
		Games []MonthlyGame `json:"games"`
	}
	if err := c.getJSON(ctx, log, archiveURL, &payload); err != nil {
		return nil, fmt.Errorf("monthly: %w", err)
	}

	log.Info("fetched %d games from archive", len(payload.Games))
	return payload.Games, nil
}

func (c *Client) getJSON(ctx context.Context, log *logger.Logger, target string, out any) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("request failed: status=%d, body=%s", resp.StatusCode, string(body))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return err
	}
	return nil
}

// StatusError reports a non-200 answer from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}
