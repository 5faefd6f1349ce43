package metrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var gameLogHeader = []string{"Game Count", "Max Tile", "Start Time", "End Time", "Game Duration"}

type MoveRecord struct {
	Game int // GameMetric.ID
	MoveMetric
}

// GameLog is an append-only CSV of finished games. Times are Unix seconds and
// durations are seconds.
type GameLog struct {
	path string
}

func NewGameLog(path string) *GameLog {
	return &GameLog{path: path}
}

func (l *GameLog) Path() string {
	return l.path
}

// Append numbers the game after the last logged one and writes it, adding the
// header to an empty file.
func (l *GameLog) Append(metric GameMetric) (GameMetric, error) {
	records, err := ReadGameLog(l.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return metric, err
	}
	metric.ID = 1
	if len(records) > 0 {
		metric.ID = records[len(records)-1].ID + 1
	}

	if dir := filepath.Dir(l.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return metric, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return metric, fmt.Errorf("failed to open game log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return metric, fmt.Errorf("failed to stat game log: %w", err)
	}

	writer := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := writer.Write(gameLogHeader); err != nil {
			return metric, fmt.Errorf("failed to write game log header: %w", err)
		}
	}

	row := []string{
		strconv.Itoa(metric.ID),
		strconv.Itoa(metric.MaxTile),
		formatSeconds(float64(metric.StartTime.UnixNano()) / 1e9),
		formatSeconds(float64(metric.EndTime.UnixNano()) / 1e9),
		formatSeconds(metric.Duration.Seconds()),
	}
	if err := writer.Write(row); err != nil {
		return metric, fmt.Errorf("failed to write game log row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return metric, fmt.Errorf("failed to flush game log: %w", err)
	}
	return metric, nil
}

// ReadGameLog parses every game of a log written by GameLog.
func ReadGameLog(path string) ([]GameMetric, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open game log: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(gameLogHeader)

	if _, err := reader.Read(); err != nil { // Header
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read game log header: %w", err)
	}

	var records []GameMetric
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read game log row: %w", err)
		}
		record, err := parseGameRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func parseGameRow(row []string) (GameMetric, error) {
	values := make([]float64, len(row))
	for i, field := range row {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return GameMetric{}, fmt.Errorf("failed to parse %q: %w", gameLogHeader[i], err)
		}
		values[i] = v
	}

	return GameMetric{
		ID:        int(values[0]),
		MaxTile:   int(values[1]),
		StartTime: fromSeconds(values[2]),
		EndTime:   fromSeconds(values[3]),
		Duration:  time.Duration(values[4] * float64(time.Second)),
	}, nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 6, 64)
}

func fromSeconds(s float64) time.Time {
	sec, frac := math.Modf(s)
	return time.Unix(int64(sec), int64(frac*1e9))
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of dir named by the current timestamp.
func NewWriter(dir string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(dir, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	path := filepath.Join(w.baseDir, "move_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create move records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"game", "step", "direction", "max_tile", "goroutines", "duration", "nodes", "expansions", "evaluations"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write move records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			record.Direction,
			strconv.Itoa(record.MaxTile),
			strconv.Itoa(record.Goroutines),
			record.Duration.String(),
			strconv.Itoa(record.Nodes),
			strconv.Itoa(record.Expansions),
			strconv.Itoa(record.Evaluations),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write move record row: %w", err)
		}
	}

	return nil
}
