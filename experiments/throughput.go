package experiments

import (
	"time"

	"ai2048/experiments/metrics"
	"ai2048/game"
	"ai2048/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type ThroughputResult struct {
	Goroutines  int
	Searches    int
	Duration    time.Duration
	Nodes       int
	NodesPerSec float64
}

// RunThroughputExperiment searches the same boards with every goroutine count
// to measure the speedup of the parallel root.
func RunThroughputExperiment(boards []game.Board, goroutines []int) []ThroughputResult {
	results := make([]ThroughputResult, 0, len(goroutines))

	log.Info().Msg("starting throughput experiment...")
	for _, n := range goroutines {
		expectimax := searcher.NewExpectimax(searcher.WithGoroutines(n), searcher.WithMetrics())

		total := metrics.SearchMetric{Goroutines: n}
		for _, board := range boards {
			_, metric := expectimax.Search(board)
			total.Duration += metric.Duration
			total.Nodes += metric.Nodes
		}

		result := ThroughputResult{
			Goroutines: n,
			Searches:   len(boards),
			Duration:   total.Duration,
			Nodes:      total.Nodes,
		}
		if total.Duration > 0 {
			result.NodesPerSec = float64(total.Nodes) / total.Duration.Seconds()
		}
		results = append(results, result)

		log.Info().Msgf("goroutines=%d searches=%d duration=%v nodes/s=%.0f", n, result.Searches, result.Duration, result.NodesPerSec)
	}
	log.Info().Msg("completed throughput experiment")

	return results
}

// SampleBoards plays n games of random moves for the given number of plies
// and returns the positions reached.
func SampleBoards(rng *rand.Rand, n, plies int) []game.Board {
	boards := make([]game.Board, 0, n)
	for i := 0; i < n; i++ {
		board := game.NewBoard()
		game.InsertRandomTile(&board, rng)
		game.InsertRandomTile(&board, rng)
		for p := 0; p < plies; p++ {
			moves := board.AvailableMoves()
			if len(moves) == 0 {
				break
			}
			board.Move(moves[rng.Intn(len(moves))])
			game.InsertRandomTile(&board, rng)
		}
		boards = append(boards, board)
	}
	return boards
}
