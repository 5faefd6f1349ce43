package searcher

import "ai2048/game"

// maximize is the player layer: it plays every available move on its own
// clone and keeps the one with the best expected utility. A later move wins a
// tie. Without moves the board is lost and the loss utility is returned.
func (e *Expectimax) maximize(board game.Board, depth int) (game.Direction, bool, game.Utility) {
	e.metrics.AddNode()

	best := lossUtility
	var bestMove game.Direction
	found := false

	for _, move := range board.AvailableMoves() {
		child := board.Clone()
		child.Move(move)
		utility := e.chance(child, depth+1)

		if utility.Total >= best.Total {
			best = utility
			bestMove = move
			found = true
		}
	}
	return bestMove, found, best
}
