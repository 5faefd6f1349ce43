package searcher

import (
	"math"

	"ai2048/game"
)

// Cutoffs for the chance layer, checked in this order
const (
	SparseEmptyCells = 6 // A board this empty...
	SparseCutoff     = 3 // ...is evaluated from this depth on
	MaxCutoff        = 5 // Every board is evaluated from this depth on
)

// Terminal (no move) utility; any real evaluation beats it
var lossUtility = game.Utility{Total: math.Inf(-1)}

// spawnProbabilities returns the chance of a 2 and of a 4 landing on one
// particular cell among n empty ones.
func spawnProbabilities(n int) (two, four float64) {
	share := 1 / float64(n)
	return game.SpawnTwoProbability * share, game.SpawnFourProbability * share
}
