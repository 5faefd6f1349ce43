package engine

import (
	"time"

	"ai2048/experiments/metrics"
	"ai2048/game"
	"ai2048/searcher/agent"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
)

type Option func(e *Engine)

// Engine owns the real board of one game and drives an agent through it.
type Engine struct {
	Board    game.Board
	agent    agent.Agent
	rng      *rand.Rand
	observer Observer
	maxMoves int
}

func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		e.observer = observer
	}
}

func WithMaxMoves(moves int) Option {
	return func(e *Engine) {
		if moves > 0 {
			e.maxMoves = moves
		}
	}
}

// LocalEngine starts a game with two random tiles.
func LocalEngine(a agent.Agent, rng *rand.Rand, options ...Option) *Engine {
	e := &Engine{
		Board:    game.NewBoard(),
		agent:    a,
		rng:      rng,
		maxMoves: MaxMoves,
	}
	for _, option := range options {
		option(e)
	}

	game.InsertRandomTile(&e.Board, rng)
	game.InsertRandomTile(&e.Board, rng)
	return e
}

// Run plays until no move is left: the agent's move is applied to the real
// board, then a random tile is spawned.
func (e *Engine) Run() (metrics.GameMetric, []metrics.MoveMetric) {
	start := time.Now()
	var moveMetrics []metrics.MoveMetric

	available := e.Board.AvailableMoves()
	step := 0
	for len(available) > 0 && step < e.maxMoves {
		move, found, search := e.agent.FindMove(e.Board)
		if !found {
			log.Info().Msg("agent found no valid move, game over")
			break
		}
		if !lo.Contains(available, move) {
			log.Warn().Msgf("agent returned unavailable move %s, playing %s instead", move, available[0])
			move = available[0]
		}

		e.Board.Move(move)
		game.InsertRandomTile(&e.Board, e.rng)
		step++

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Direction:    move.String(),
			MaxTile:      e.Board.MaxTile(),
			SearchMetric: search,
		})
		if e.observer != nil {
			e.observer(step, move, e.Board.Clone())
		}

		available = e.Board.AvailableMoves()
	}

	end := time.Now()
	gameMetric := metrics.GameMetric{
		StartTime:  start,
		EndTime:    end,
		Duration:   end.Sub(start),
		TotalMoves: step,
		MaxTile:    e.Board.MaxTile(),
	}

	log.Info().Msgf("game over after %d moves (max tile %d)", step, gameMetric.MaxTile)
	return gameMetric, moveMetrics
}
