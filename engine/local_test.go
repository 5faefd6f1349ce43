package engine

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ai2048/experiments/metrics"
	"ai2048/game"
	"ai2048/searcher"
	"ai2048/searcher/agent"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// firstMoveAgent plays the first available move.
type firstMoveAgent struct {
	calls int
}

func (a *firstMoveAgent) FindMove(board game.Board) (game.Direction, bool, metrics.SearchMetric) {
	a.calls++
	moves := board.AvailableMoves()
	if len(moves) == 0 {
		return 0, false, metrics.SearchMetric{}
	}
	return moves[0], true, metrics.SearchMetric{Nodes: 1}
}

// fixedAgent always plays the same move.
type fixedAgent struct {
	move game.Direction
}

func (a fixedAgent) FindMove(game.Board) (game.Direction, bool, metrics.SearchMetric) {
	return a.move, true, metrics.SearchMetric{}
}

type noMoveAgent struct{}

func (noMoveAgent) FindMove(game.Board) (game.Direction, bool, metrics.SearchMetric) {
	return 0, false, metrics.SearchMetric{}
}

func TestLocalEngine(t *testing.T) {
	t.Run("starts with two tiles", func(t *testing.T) {
		e := LocalEngine(&firstMoveAgent{}, rand.New(rand.NewSource(1)))
		require.Equal(t, game.Size*game.Size-2, e.Board.EmptyCount())
	})

	t.Run("plays until no move is left", func(t *testing.T) {
		a := &firstMoveAgent{}
		steps := 0
		e := LocalEngine(a, rand.New(rand.NewSource(1)), WithObserver(func(step int, _ game.Direction, board game.Board) {
			steps++
			require.Equal(t, steps, step)
			require.NoError(t, board.Validate())
		}))

		gameMetric, moveMetrics := e.Run()
		require.Empty(t, e.Board.AvailableMoves(), "Game should end on a board without moves")
		require.Equal(t, gameMetric.TotalMoves, len(moveMetrics))
		require.Equal(t, gameMetric.TotalMoves, steps, "Observer should see every move")
		require.Equal(t, gameMetric.TotalMoves, a.calls)
		require.Equal(t, e.Board.MaxTile(), gameMetric.MaxTile)
		require.Equal(t, gameMetric.MaxTile, moveMetrics[len(moveMetrics)-1].MaxTile)
		require.Equal(t, 1, moveMetrics[0].Nodes, "Search metrics should be recorded per move")
		require.False(t, gameMetric.EndTime.Before(gameMetric.StartTime))
	})

	t.Run("same seed replays the same game", func(t *testing.T) {
		play := func() (game.Board, int) {
			e := LocalEngine(&firstMoveAgent{}, rand.New(rand.NewSource(7)))
			m, _ := e.Run()
			return e.Board, m.TotalMoves
		}
		b1, n1 := play()
		b2, n2 := play()
		require.True(t, b1.Equal(b2))
		require.Equal(t, n1, n2)
	})

	t.Run("unavailable move falls back to the first legal one", func(t *testing.T) {
		e := LocalEngine(fixedAgent{move: game.Up}, rand.New(rand.NewSource(1)), WithMaxMoves(1))
		e.Board = game.NewBoard()
		e.Board.InsertTile(game.Position{Row: 0, Col: 0}, 2)

		_, moveMetrics := e.Run()
		require.Len(t, moveMetrics, 1)
		require.Equal(t, game.Down.String(), moveMetrics[0].Direction)
	})

	t.Run("agent without a move ends the game", func(t *testing.T) {
		e := LocalEngine(noMoveAgent{}, rand.New(rand.NewSource(1)))
		gameMetric, moveMetrics := e.Run()
		require.Zero(t, gameMetric.TotalMoves)
		require.Empty(t, moveMetrics)
	})

	t.Run("move limit", func(t *testing.T) {
		e := LocalEngine(&firstMoveAgent{}, rand.New(rand.NewSource(1)), WithMaxMoves(3))
		gameMetric, _ := e.Run()
		require.Equal(t, 3, gameMetric.TotalMoves)
	})
}

func TestRemoteAgent(t *testing.T) {
	server := httptest.NewServer(agent.NewServer(agent.NewEvaluationAgent(searcher.NewExpectimax(searcher.WithMetrics()))))
	defer server.Close()

	t.Run("finds a legal move", func(t *testing.T) {
		board := game.NewBoard()
		board.InsertTile(game.Position{Row: 0, Col: 0}, 2)
		board.InsertTile(game.Position{Row: 0, Col: 1}, 2)

		move, found, metric := NewRemoteAgent(server.URL).FindMove(board)
		require.True(t, found)
		require.Contains(t, board.AvailableMoves(), move)
		require.Positive(t, metric.Nodes)
	})

	t.Run("terminal board", func(t *testing.T) {
		board := game.NewBoardFromGrid([game.Size][game.Size]int{
			{2, 4, 2, 4},
			{4, 2, 4, 2},
			{2, 4, 2, 4},
			{4, 2, 4, 2},
		})
		_, found, _ := NewRemoteAgent(server.URL).FindMove(board)
		require.False(t, found)
	})

	t.Run("unreachable server counts as no move", func(t *testing.T) {
		down := httptest.NewServer(nil)
		url := down.URL
		down.Close()

		_, found, _ := NewRemoteAgent(url).FindMove(game.NewBoard())
		require.False(t, found)
	})

	t.Run("retries server errors", func(t *testing.T) {
		calls := 0
		handler := agent.NewServer(agent.NewEvaluationAgent(searcher.NewExpectimax()))
		flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			handler.ServeHTTP(w, r)
		}))
		defer flaky.Close()

		board := game.NewBoard()
		board.InsertTile(game.Position{Row: 3, Col: 3}, 4)
		_, found, _ := NewRemoteAgent(flaky.URL).FindMove(board)
		require.True(t, found)
		require.Equal(t, 2, calls)
	})

	t.Run("does not retry a rejected board", func(t *testing.T) {
		calls := 0
		rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			http.Error(w, "invalid tile", http.StatusBadRequest)
		}))
		defer rejecting.Close()

		_, found, _ := NewRemoteAgent(rejecting.URL).FindMove(game.NewBoard())
		require.False(t, found)
		require.Equal(t, 1, calls)
	})

	t.Run("plays a full game", func(t *testing.T) {
		e := LocalEngine(NewRemoteAgent(server.URL), rand.New(rand.NewSource(3)), WithMaxMoves(5))
		gameMetric, moveMetrics := e.Run()
		require.Equal(t, 5, gameMetric.TotalMoves)
		require.Len(t, moveMetrics, 5)
	})
}
