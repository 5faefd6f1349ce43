package agent

import (
	"ai2048/experiments/metrics"
	"ai2048/game"
)

type Agent interface {
	// FindMove returns the move to play and the search metrics (if collected);
	// found is false when the board has no legal move
	FindMove(board game.Board) (move game.Direction, found bool, metric metrics.SearchMetric)
}
