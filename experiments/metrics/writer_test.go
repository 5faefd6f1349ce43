package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGameLog(t *testing.T) {
	t.Run("numbers games and writes the header once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "game_log.csv")
		gameLog := NewGameLog(path)
		require.Equal(t, path, gameLog.Path())

		start := time.Unix(1700000000, 250000000)
		for i, maxTile := range []int{512, 2048, 1024} {
			m, err := gameLog.Append(GameMetric{
				StartTime: start,
				EndTime:   start.Add(1500 * time.Millisecond),
				Duration:  1500 * time.Millisecond,
				MaxTile:   maxTile,
			})
			require.NoError(t, err)
			require.Equal(t, i+1, m.ID, "Games should be numbered after the last logged one")
		}

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, 1, strings.Count(string(content), "Game Count"))

		records, err := ReadGameLog(path)
		require.NoError(t, err)
		require.Len(t, records, 3)
		require.Equal(t, 3, records[2].ID)
		require.Equal(t, 1024, records[2].MaxTile)
		require.WithinDuration(t, start, records[0].StartTime, time.Microsecond)
		require.WithinDuration(t, start.Add(1500*time.Millisecond), records[0].EndTime, time.Microsecond)
		require.InDelta(t, 1.5, records[0].Duration.Seconds(), 1e-6)
	})

	t.Run("continues an existing log", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "game_log.csv")
		now := time.Now()
		_, err := NewGameLog(path).Append(GameMetric{StartTime: now, EndTime: now, MaxTile: 256})
		require.NoError(t, err)

		m, err := NewGameLog(path).Append(GameMetric{StartTime: now, EndTime: now, MaxTile: 128})
		require.NoError(t, err)
		require.Equal(t, 2, m.ID)
	})

	t.Run("missing log", func(t *testing.T) {
		_, err := ReadGameLog(filepath.Join(t.TempDir(), "missing.csv"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty log", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		require.NoError(t, os.WriteFile(path, nil, 0644))
		records, err := ReadGameLog(path)
		require.NoError(t, err)
		require.Empty(t, records)
	})

	t.Run("corrupt row", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "corrupt.csv")
		content := "Game Count,Max Tile,Start Time,End Time,Game Duration\n1,abc,0,0,0\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		_, err := ReadGameLog(path)
		require.ErrorContains(t, err, "Max Tile")
	})
}

func TestWriteMoveRecords(t *testing.T) {
	writer, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	records := []MoveRecord{
		{Game: 1, MoveMetric: MoveMetric{Step: 1, Direction: "LEFT", MaxTile: 4,
			SearchMetric: SearchMetric{Goroutines: 2, Duration: time.Millisecond, Nodes: 10, Expansions: 3, Evaluations: 20}}},
		{Game: 1, MoveMetric: MoveMetric{Step: 2, Direction: "UP", MaxTile: 8}},
	}
	require.NoError(t, writer.WriteMoveRecords(records))

	f, err := os.Open(filepath.Join(writer.Dir(), "move_records.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "game", rows[0][0])
	require.Equal(t, []string{"1", "1", "LEFT", "4", "2", "1ms", "10", "3", "20"}, rows[1])
	require.Equal(t, "UP", rows[2][2])
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Start(4)
	c.AddNode()
	c.AddNode()
	c.AddExpansion()
	c.AddEvaluation()
	m := c.Complete()
	require.Equal(t, SearchMetric{Goroutines: 4, Duration: m.Duration, Nodes: 2, Expansions: 1, Evaluations: 1}, m)

	c.Start(1)
	require.Zero(t, c.Complete().Nodes, "Start should reset the counters")

	d := NewDummyCollector()
	d.Start(4)
	d.AddNode()
	require.Equal(t, SearchMetric{}, d.Complete())
}
