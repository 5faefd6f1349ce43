package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai2048/experiments/metrics"
	"ai2048/game"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
)

const (
	requestAttempts = 3
	retryDelay      = 50 * time.Millisecond
)

// RemoteAgent asks an agent server for moves over HTTP.
type RemoteAgent struct {
	URL    string
	Client *http.Client
}

func NewRemoteAgent(url string) *RemoteAgent {
	return &RemoteAgent{
		URL:    url,
		Client: &http.Client{Timeout: time.Minute},
	}
}

type remoteMove struct {
	Direction   *game.Direction `json:"direction"`
	Found       bool            `json:"found"`
	Nodes       int             `json:"nodes"`
	Evaluations int             `json:"evaluations"`
	Duration    string          `json:"duration"`
}

// FindMove posts the grid to /findmove, retrying transient failures. A failed
// request counts as no move so the game ends instead of stalling; the error is
// logged.
func (a *RemoteAgent) FindMove(board game.Board) (game.Direction, bool, metrics.SearchMetric) {
	var move *remoteMove
	err := retry.Do(
		func() error {
			var err error
			move, err = a.requestMove(board)
			return err
		},
		retry.Attempts(requestAttempts),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Uint("n", n).Msg("retrying remote agent request")
		}),
	)
	if err != nil {
		log.Err(err).Str("url", a.URL).Msg("remote agent request failed")
		return 0, false, metrics.SearchMetric{}
	}
	if !move.Found || move.Direction == nil {
		return 0, false, metrics.SearchMetric{}
	}

	// Duration is informational, an unparsable value leaves it zero
	duration, _ := time.ParseDuration(move.Duration)
	return *move.Direction, true, metrics.SearchMetric{
		Duration:    duration,
		Nodes:       move.Nodes,
		Evaluations: move.Evaluations,
	}
}

func (a *RemoteAgent) requestMove(board game.Board) (*remoteMove, error) {
	payload := struct {
		Grid [game.Size][game.Size]int `json:"grid"`
	}{Grid: board.Grid()}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode board: %w", err)
	}

	resp, err := a.Client.Post(a.URL+"/findmove", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to post board: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("agent returned status %d: %s", resp.StatusCode, out)
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, retry.Unrecoverable(err) // The same board fails again
		}
		return nil, err
	}

	var move remoteMove
	if err := json.NewDecoder(resp.Body).Decode(&move); err != nil {
		return nil, fmt.Errorf("failed to decode move: %w", err)
	}
	return &move, nil
}
