package searcher

import (
	"ai2048/experiments/metrics"
	"ai2048/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Option func(e *Expectimax)

// Candidate is a root move with its expected utility.
type Candidate struct {
	Move    game.Direction `json:"move"`
	Utility game.Utility   `json:"utility"`
}

type Result struct {
	Move       game.Direction `json:"move"`
	Found      bool           `json:"found"`
	Utility    game.Utility   `json:"utility"`
	Candidates []Candidate    `json:"candidates"`
}

// Expectimax searches one board at a time; run concurrent searches on
// separate instances.
type Expectimax struct {
	goroutines int
	evaluate   game.Evaluate
	metrics    metrics.Collector
}

// WithGoroutines evaluates the root moves on up to n goroutines.
func WithGoroutines(goroutines int) Option {
	return func(e *Expectimax) {
		if goroutines > 0 {
			e.goroutines = goroutines
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(e *Expectimax) {
		if evaluate != nil {
			e.evaluate = evaluate
		}
	}
}

func WithMetrics() Option {
	return func(e *Expectimax) {
		e.metrics = metrics.NewCollector()
	}
}

func NewExpectimax(options ...Option) *Expectimax {
	e := &Expectimax{ // Default values
		goroutines: 1,
		evaluate:   game.EvaluateBoard,
		metrics:    metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// GetMove returns the best move for board, or false when the game is over.
func (e *Expectimax) GetMove(board game.Board) (game.Direction, bool) {
	result, _ := e.Search(board)
	return result.Move, result.Found
}

// Search runs the player layer at the root and reports every candidate.
func (e *Expectimax) Search(board game.Board) (Result, metrics.SearchMetric) {
	e.metrics.Start(e.goroutines)
	e.metrics.AddNode()

	moves := board.AvailableMoves()
	candidates := make([]Candidate, len(moves))
	if e.goroutines > 1 && len(moves) > 1 {
		e.expandParallel(board, moves, candidates)
	} else {
		for i, move := range moves {
			candidates[i] = e.expand(board, move)
		}
	}

	result := pick(candidates)
	metric := e.metrics.Complete()

	if result.Found {
		log.Debug().
			Str("move", result.Move.String()).
			Float64("utility", result.Utility.Total).
			Int("nodes", metric.Nodes).
			Msg("search complete")
	}
	return result, metric
}

func (e *Expectimax) expand(board game.Board, move game.Direction) Candidate {
	child := board.Clone()
	child.Move(move)
	return Candidate{Move: move, Utility: e.chance(child, 1)}
}

// Sibling subtrees share nothing; each goroutine writes its own slot so the
// candidates keep enumeration order.
func (e *Expectimax) expandParallel(board game.Board, moves []game.Direction, candidates []Candidate) {
	g := errgroup.Group{}
	g.SetLimit(e.goroutines)
	for i, move := range moves {
		i, move := i, move
		g.Go(func() error {
			candidates[i] = e.expand(board, move)
			return nil
		})
	}
	_ = g.Wait()
}

// pick applies the player layer's rule: the highest total, a later candidate
// winning a tie.
func pick(candidates []Candidate) Result {
	result := Result{Utility: lossUtility, Candidates: candidates}
	for _, c := range candidates {
		if c.Utility.Total >= result.Utility.Total {
			result.Move = c.Move
			result.Utility = c.Utility
			result.Found = true
		}
	}
	return result
}
