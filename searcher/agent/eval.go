package agent

import (
	"ai2048/experiments/metrics"
	"ai2048/game"
	"ai2048/searcher"
)

type evaluationAgent struct {
	expectimax *searcher.Expectimax
}

// NewEvaluationAgent returns an agent that plays the searcher's best move.
func NewEvaluationAgent(expectimax *searcher.Expectimax) Agent {
	return evaluationAgent{expectimax: expectimax}
}

func (a evaluationAgent) FindMove(board game.Board) (game.Direction, bool, metrics.SearchMetric) {
	result, metric := a.expectimax.Search(board)
	return result.Move, result.Found, metric
}
