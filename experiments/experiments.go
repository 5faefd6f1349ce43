package experiments

import (
	"context"
	"fmt"
	"math"
	"time"

	"ai2048/engine"
	"ai2048/experiments/metrics"
	"ai2048/searcher/agent"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// Milestones are the tiles whose reach rate is summarised.
var Milestones = []int{128, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768}

type Config struct {
	Duration    time.Duration // Time budget, checked after each game
	GameLogPath string
	RecordsDir  string // Per-move records are written here when set
	Observer    engine.Observer
}

type Summary struct {
	Games          int
	MeanDuration   time.Duration
	StdDevDuration time.Duration
	MeanMaxTile    float64
	Reached        map[int]float64     // Milestone -> percentage of games
	TileHistogram  histogram.Histogram // log2 of the max tiles; empty unless they differ
}

// RunForDuration plays games back to back until the time budget is spent or
// ctx is cancelled, logs every finished game and summarises the whole log.
func RunForDuration(ctx context.Context, a agent.Agent, rng *rand.Rand, cfg Config) (Summary, error) {
	gameLog := metrics.NewGameLog(cfg.GameLogPath)
	var moveRecords []metrics.MoveRecord

	log.Info().Msgf("playing games for %v...", cfg.Duration)
	start := time.Now()
	for {
		e := engine.LocalEngine(a, rng, engine.WithObserver(cfg.Observer))
		gameMetric, moveMetrics := e.Run()

		gameMetric, err := gameLog.Append(gameMetric)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to log game: %w", err)
		}
		for _, mm := range moveMetrics {
			moveRecords = append(moveRecords, metrics.MoveRecord{Game: gameMetric.ID, MoveMetric: mm})
		}
		log.Info().Msgf("completed game %d with max tile %d in %v", gameMetric.ID, gameMetric.MaxTile, gameMetric.Duration)

		if time.Since(start) > cfg.Duration || ctx.Err() != nil {
			break
		}
	}

	if cfg.RecordsDir != "" {
		writer, err := metrics.NewWriter(cfg.RecordsDir)
		if err != nil {
			return Summary{}, err
		}
		if err := writer.WriteMoveRecords(moveRecords); err != nil {
			return Summary{}, err
		}
		log.Info().Msgf("stored move records in %s", writer.Dir())
	}

	records, err := metrics.ReadGameLog(cfg.GameLogPath)
	if err != nil {
		return Summary{}, err
	}
	summary := Summarize(records)
	logSummary(summary)
	return summary, nil
}

func Summarize(records []metrics.GameMetric) Summary {
	summary := Summary{
		Games:   len(records),
		Reached: make(map[int]float64, len(Milestones)),
	}
	if len(records) == 0 {
		for _, m := range Milestones {
			summary.Reached[m] = 0
		}
		return summary
	}

	durations := lo.Map(records, func(r metrics.GameMetric, _ int) float64 { return r.Duration.Seconds() })
	maxTiles := lo.Map(records, func(r metrics.GameMetric, _ int) float64 { return float64(r.MaxTile) })

	mean := stat.Mean(durations, nil)
	summary.MeanDuration = seconds(mean)
	if len(records) > 1 {
		summary.StdDevDuration = seconds(stat.StdDev(durations, nil))
	}
	summary.MeanMaxTile = stat.Mean(maxTiles, nil)

	exponents := lo.Map(maxTiles, func(v float64, _ int) float64 { return math.Log2(v) })
	if lo.Min(exponents) < lo.Max(exponents) {
		summary.TileHistogram = histogram.Hist(int(lo.Max(exponents)-lo.Min(exponents))+1, exponents)
	}

	for _, m := range Milestones {
		reached := lo.CountBy(records, func(r metrics.GameMetric) bool { return r.MaxTile >= m })
		summary.Reached[m] = float64(reached) / float64(len(records)) * 100
	}
	return summary
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func logSummary(s Summary) {
	log.Info().Msgf("average time per game: %v over %d games", s.MeanDuration, s.Games)
	for _, m := range Milestones {
		log.Info().Msgf("percentage of games reaching %d: %.1f%%", m, s.Reached[m])
	}
}
