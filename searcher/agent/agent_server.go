package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ai2048/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

type findMoveRequest struct {
	Grid [game.Size][game.Size]int `json:"grid"`
}

type findMoveResponse struct {
	Direction   *game.Direction `json:"direction,omitempty"`
	Found       bool            `json:"found"`
	Nodes       int             `json:"nodes"`
	Evaluations int             `json:"evaluations"`
	Duration    string          `json:"duration"`
	Error       string          `json:"error,omitempty"`
}

type server struct {
	sync.Mutex // One search at a time per agent
	agent      Agent
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// NewServer returns a handler answering POST /findmove with the agent's move
// for the posted grid. GET /ws upgrades to a websocket that answers every grid
// message with a move message.
func NewServer(agent Agent) http.Handler {
	s := &server{agent: agent}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/findmove", s.handleFindMove)
	r.Get("/ws", s.handleStream)
	return r
}

// StartAgentServer serves the agent on addr until ctx is cancelled.
func StartAgentServer(ctx context.Context, addr string, agent Agent) error {
	srv := &http.Server{Addr: addr, Handler: NewServer(agent)}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Err(err).Msg("agent server shutdown")
		}
	}()

	log.Info().Msgf("starting agent server on %s ...", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("agent server failed: %w", err)
	}
	return nil
}

func (s *server) handleFindMove(w http.ResponseWriter, r *http.Request) {
	var payload findMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, findMoveResponse{Error: "invalid payload"})
		return
	}
	board := game.NewBoardFromGrid(payload.Grid)
	if err := board.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, findMoveResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.findMove(board))
}

func (s *server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade already replied
	}
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("move stream closed")
			}
			return
		}

		var payload findMoveRequest
		if err := json.Unmarshal(message, &payload); err != nil {
			if err := conn.WriteJSON(findMoveResponse{Error: "invalid payload"}); err != nil {
				return
			}
			continue
		}

		resp := findMoveResponse{}
		board := game.NewBoardFromGrid(payload.Grid)
		if err := board.Validate(); err != nil {
			resp.Error = err.Error()
		} else {
			resp = s.findMove(board)
		}
		if err := conn.WriteJSON(resp); err != nil {
			log.Debug().Err(err).Msg("move stream write failed")
			return
		}
	}
}

func (s *server) findMove(board game.Board) findMoveResponse {
	s.Lock()
	move, found, metric := s.agent.FindMove(board)
	s.Unlock()

	resp := findMoveResponse{
		Found:       found,
		Nodes:       metric.Nodes,
		Evaluations: metric.Evaluations,
		Duration:    metric.Duration.String(),
	}
	if found {
		resp.Direction = &move
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
