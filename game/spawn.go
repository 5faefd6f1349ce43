package game

import "golang.org/x/exp/rand"

// Spawn distribution shared by the real game and the search's chance layer.
const (
	SpawnTwoProbability  = 0.9
	SpawnFourProbability = 1 - SpawnTwoProbability
)

// InsertRandomTile places a 2 (90%) or a 4 (10%) on a uniformly chosen empty
// cell. It returns false when the board is full.
func InsertRandomTile(b *Board, rng *rand.Rand) (Position, bool) {
	value := 4
	if rng.Intn(100) < int(SpawnTwoProbability*100) {
		value = 2
	}

	cells := b.AvailableCells()
	if len(cells) == 0 {
		return Position{}, false
	}

	pos := cells[rng.Intn(len(cells))]
	b.InsertTile(pos, value)
	return pos, true
}
