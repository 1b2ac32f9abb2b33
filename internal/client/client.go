// Package client talks to the game server over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/game"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/search"
)

const (
	clientTimeout = 30 * time.Second
	pollInterval  = 50 * time.Millisecond
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is a StatusError with the given status.
func IsStatus(err error, status int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Status == status
}

type Client struct {
	// config contains details on how to connect to the server
	config *config.ClientConfig

	http *http.Client
}

func NewClient(config *config.ClientConfig) *Client {
	client := &Client{
		config: config,
		http:   &http.Client{Timeout: clientTimeout},
	}

	slog.Debug("New API client created", "server_url", config.ServerURL)

	return client
}

func (c *Client) logRequestAsCurl(req *http.Request) {
	// Do not build string if we're not logging it
	if !slog.Default().Enabled(req.Context(), slog.LevelDebug) {
		return
	}

	var builder strings.Builder
	builder.WriteString("curl -X ")
	builder.WriteString(req.Method)
	builder.WriteString(" '")
	builder.WriteString(req.URL.String())
	builder.WriteString("'")

	for key, values := range req.Header {
		for _, value := range values {
			builder.WriteString(" -H '")
			builder.WriteString(strings.ToLower(key))
			builder.WriteString(": ")
			builder.WriteString(value)
			builder.WriteString("'")
		}
	}

	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			slog.Error("Failed to read request body", "error", err)
		}

		if len(body) > 0 {
			builder.WriteString(" -d '")
			builder.WriteString(strings.ReplaceAll(string(body), "'", "'\\''"))
			builder.WriteString("'")
		}

		// Restore the original body
		req.Body = io.NopCloser(bytes.NewBuffer(body))
	}

	slog.Debug("Sending request", "command", builder.String())
}

// request sends a JSON request and decodes the JSON response into result, if result is not nil.
func (c *Client) request(ctx context.Context, method string, path string, payload any, result any) error {
	var body io.Reader = http.NoBody

	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.ServerURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("X-Token", c.config.Token)

	c.logRequestAsCurl(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	slog.Debug("Response", "status", resp.Status, "body", string(raw))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var parsed models.ErrorResponse
		_ = json.Unmarshal(raw, &parsed)
		return &StatusError{Status: resp.StatusCode, Message: parsed.Error}
	}

	if result == nil {
		return nil
	}

	if err = json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any, result any) error {
	return c.request(ctx, http.MethodPost, path, payload, result)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.request(ctx, http.MethodGet, path, nil, result)
}

func gamePath(id string) string {
	return "/api/games/" + id
}

// CreateGame starts a new game on the server.
func (c *Client) CreateGame(ctx context.Context, request models.NewGameRequest) (game.State, error) {
	var state game.State
	if err := c.post(ctx, "/api/games", request, &state); err != nil {
		return game.State{}, fmt.Errorf("failed to create game: %w", err)
	}
	return state, nil
}

// GetGame fetches the current state of a game.
func (c *Client) GetGame(ctx context.Context, id string) (game.State, error) {
	var state game.State
	if err := c.get(ctx, gamePath(id), &state); err != nil {
		return game.State{}, fmt.Errorf("failed to get game: %w", err)
	}
	return state, nil
}

// DeleteGame stops a game on the server.
func (c *Client) DeleteGame(ctx context.Context, id string) error {
	if err := c.request(ctx, http.MethodDelete, gamePath(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// PlayMove plays a human move.
func (c *Client) PlayMove(ctx context.Context, id string, row, col int) (game.State, error) {
	var state game.State
	payload := models.MoveRequest{Row: &row, Col: &col}
	if err := c.post(ctx, gamePath(id)+"/moves", payload, &state); err != nil {
		return game.State{}, fmt.Errorf("failed to play move: %w", err)
	}
	return state, nil
}

// PlayAIMove asks the server to move for the side to move.
func (c *Client) PlayAIMove(ctx context.Context, id string) (game.State, error) {
	var state game.State
	if err := c.post(ctx, gamePath(id)+"/ai-move", nil, &state); err != nil {
		return game.State{}, fmt.Errorf("failed to request computer move: %w", err)
	}
	return state, nil
}

func (c *Client) Undo(ctx context.Context, id string) (game.State, error) {
	var state game.State
	if err := c.post(ctx, gamePath(id)+"/undo", nil, &state); err != nil {
		return game.State{}, fmt.Errorf("failed to undo: %w", err)
	}
	return state, nil
}

func (c *Client) Redo(ctx context.Context, id string) (game.State, error) {
	var state game.State
	if err := c.post(ctx, gamePath(id)+"/redo", nil, &state); err != nil {
		return game.State{}, fmt.Errorf("failed to redo: %w", err)
	}
	return state, nil
}

// Analyze scores every legal move. A level of zero uses the level of the game.
func (c *Client) Analyze(ctx context.Context, id string, level int) ([]search.MoveScore, error) {
	path := gamePath(id) + "/analysis"
	if level != 0 {
		path += "?level=" + strconv.Itoa(level)
	}

	var scores []search.MoveScore
	if err := c.get(ctx, path, &scores); err != nil {
		return nil, fmt.Errorf("failed to analyze: %w", err)
	}
	return scores, nil
}

// WaitForTurn polls the game until the computer is no longer thinking.
func (c *Client) WaitForTurn(ctx context.Context, id string) (game.State, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		state, err := c.GetGame(ctx, id)
		if err != nil {
			return game.State{}, err
		}

		if state.Phase != "ai_thinking" {
			return state, nil
		}

		select {
		case <-ctx.Done():
			return game.State{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
