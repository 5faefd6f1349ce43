package searcher

import "ai2048/game"

type outcome struct {
	pos         game.Position
	value       int
	probability float64
}

// chance is the spawn layer: the probability weighted sum of the player's best
// utility over every tile the game could insert next.
func (e *Expectimax) chance(board game.Board, depth int) game.Utility {
	cells := board.AvailableCells()
	n := len(cells)

	if n >= SparseEmptyCells && depth >= SparseCutoff {
		return e.evaluateLeaf(board, n)
	}
	if depth >= MaxCutoff {
		return e.evaluateLeaf(board, n)
	}
	if n == 0 { // Nothing can spawn on a full board
		_, _, utility := e.maximize(board, depth+1)
		return utility
	}

	e.metrics.AddExpansion()

	var sum game.Utility
	for _, o := range outcomes(cells) {
		child := board.Clone()
		child.InsertTile(o.pos, o.value)
		_, _, utility := e.maximize(child, depth+1)
		sum = sum.Add(utility, o.probability)
	}
	return sum
}

func (e *Expectimax) evaluateLeaf(board game.Board, nEmpty int) game.Utility {
	e.metrics.AddEvaluation()
	return e.evaluate(board, nEmpty)
}

// outcomes lists a 2 then a 4 for every empty cell.
func outcomes(cells []game.Position) []outcome {
	two, four := spawnProbabilities(len(cells))
	result := make([]outcome, 0, 2*len(cells))
	for _, pos := range cells {
		result = append(result,
			outcome{pos: pos, value: 2, probability: two},
			outcome{pos: pos, value: 4, probability: four},
		)
	}
	return result
}
