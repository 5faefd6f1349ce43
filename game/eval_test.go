package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateBoard(t *testing.T) {
	t.Run("empty board scores only its empty cells", func(t *testing.T) {
		u := EvaluateBoard(NewBoard(), 16)
		require.Equal(t, 1600000.0, u.Total)
		require.Equal(t, 1600000.0, u.Empty)
		require.Zero(t, u.Energy)
		require.Zero(t, u.Smoothness)
	})

	t.Run("single corner tile", func(t *testing.T) {
		b := NewBoard()
		b.InsertTile(Position{Row: 0, Col: 0}, 2)

		u := EvaluateBoard(b, 15)
		// One horizontal and one vertical neighbour differ by sqrt(2)
		wantSmooth := math.Pow(-2*math.Sqrt2, 3)
		require.Equal(t, 4.0, u.Energy)
		require.Equal(t, 1500000.0, u.Empty)
		require.InDelta(t, -16*math.Sqrt2, u.Smoothness, 1e-9)
		require.InDelta(t, 4+1500000+wantSmooth, u.Total, 1e-9)
	})

	t.Run("empty count is taken as given", func(t *testing.T) {
		b := NewBoard()
		require.Equal(t, 300000.0, EvaluateBoard(b, 3).Empty)
	})

	t.Run("uniform full board is perfectly smooth", func(t *testing.T) {
		var g [Size][Size]int
		for r := range g {
			for c := range g[r] {
				g[r][c] = 8
			}
		}
		u := EvaluateBoard(NewBoardFromGrid(g), 0)
		require.Equal(t, 16*64.0, u.Total)
		require.Zero(t, u.Smoothness)
	})

	t.Run("rough boards score lower", func(t *testing.T) {
		smooth := NewBoardFromGrid([Size][Size]int{{16, 16, 0, 0}})
		rough := NewBoardFromGrid([Size][Size]int{{16, 0, 16, 0}})
		require.Greater(t, EvaluateBoard(smooth, 14).Total, EvaluateBoard(rough, 14).Total)
	})
}

func TestUtilityAdd(t *testing.T) {
	sum := Utility{Total: 1, Empty: 2, Smoothness: 3, Energy: 4}.
		Add(Utility{Total: 10, Empty: 20, Smoothness: -30, Energy: 40}, 0.5)
	require.Equal(t, Utility{Total: 6, Empty: 12, Smoothness: -12, Energy: 24}, sum)
}
