package game

import "math"

const (
	EmptyWeight     = 100000.0
	SmoothnessPower = 3.0
)

// Utility is a heuristic score. Only Total ranks boards; the components are
// carried along for diagnostics.
type Utility struct {
	Total      float64 `json:"total"`
	Empty      float64 `json:"empty"`
	Smoothness float64 `json:"smoothness"`
	Energy     float64 `json:"energy"`
}

// Add returns the component-wise sum of u and other scaled by weight.
func (u Utility) Add(other Utility, weight float64) Utility {
	return Utility{
		Total:      u.Total + other.Total*weight,
		Empty:      u.Empty + other.Empty*weight,
		Smoothness: u.Smoothness + other.Smoothness*weight,
		Energy:     u.Energy + other.Energy*weight,
	}
}

// Evaluate scores a board given its precomputed empty cell count.
type Evaluate func(b Board, nEmpty int) Utility

// EvaluateBoard rewards empty cells, large tiles (sum of squares) and smooth
// neighbourhoods (cubed negative sum of square root differences).
func EvaluateBoard(b Board, nEmpty int) Utility {
	energy := 0.0
	var roots [Size][Size]float64
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			v := float64(b.grid[r][c])
			energy += v * v
			roots[r][c] = math.Sqrt(v)
		}
	}

	smoothness := 0.0
	for c := 0; c < Size-1; c++ {
		for r := 0; r < Size; r++ {
			smoothness -= math.Abs(roots[r][c] - roots[r][c+1])
		}
	}
	for r := 0; r < Size-1; r++ {
		for c := 0; c < Size; c++ {
			smoothness -= math.Abs(roots[r][c] - roots[r+1][c])
		}
	}

	empty := float64(nEmpty) * EmptyWeight
	smooth := math.Pow(smoothness, SmoothnessPower)

	total := 0.0
	total += energy
	total += empty
	total += smooth

	return Utility{
		Total:      total,
		Empty:      empty,
		Smoothness: smooth,
		Energy:     energy,
	}
}
