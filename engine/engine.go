package engine

import "ai2048/game"

// MaxMoves stops a game whose agent never lets it end
const MaxMoves = 100000

// Observer is notified after every ply with a snapshot of the real board.
type Observer func(step int, move game.Direction, board game.Board)
