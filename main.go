package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ai2048/config"
	"ai2048/engine"
	"ai2048/experiments"
	"ai2048/game"
	"ai2048/searcher"
	"ai2048/searcher/agent"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ai2048 [flags] [command]")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  play                     play games until --duration is spent (default)")
	fmt.Fprintln(os.Stderr, "  serve                    serve POST /findmove on --addr")
	fmt.Fprintln(os.Stderr, "  analyze <16 cell values> print the utility of every move for a board")
	fmt.Fprintln(os.Stderr, "  bench                    compare search throughput across goroutine counts")
}

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}
	setupLogging(cfg.GetBool(config.ConfigDebug))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := "play"
	args := cfg.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	var err error
	switch command {
	case "play":
		err = runPlay(ctx, cfg)
	case "serve":
		err = agent.StartAgentServer(ctx, cfg.GetString(config.ConfigAddr), agent.NewEvaluationAgent(newExpectimax(cfg)))
	case "analyze":
		err = runAnalyze(cfg, args)
	case "bench":
		runBench(cfg)
	default:
		usage()
		err = fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", command)
	}
}

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	log.Debug().Msg("debug logging is on")
}

func newExpectimax(cfg *config.Config) *searcher.Expectimax {
	return searcher.NewExpectimax(
		searcher.WithGoroutines(cfg.GetInt(config.ConfigGoroutines)),
		searcher.WithMetrics(),
	)
}

func newRand(cfg *config.Config) *rand.Rand {
	seed := cfg.GetUint64(config.ConfigSeed)
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64) + 1
	}
	log.Info().Uint64("seed", seed).Msg("seeding tile spawns")
	return rand.New(rand.NewSource(seed))
}

func runPlay(ctx context.Context, cfg *config.Config) error {
	var a agent.Agent
	if url := cfg.GetString(config.ConfigAgentURL); url != "" {
		a = engine.NewRemoteAgent(url)
	} else {
		a = agent.NewEvaluationAgent(newExpectimax(cfg))
	}

	var observer engine.Observer
	if cfg.GetBool(config.ConfigVerbose) {
		observer = func(step int, move game.Direction, board game.Board) {
			fmt.Printf("%d: %s\n%s\n", step, move, board)
		}
	}

	summary, err := experiments.RunForDuration(ctx, a, newRand(cfg), experiments.Config{
		Duration:    cfg.GetDuration(config.ConfigDuration),
		GameLogPath: cfg.GetString(config.ConfigGameLogPath),
		RecordsDir:  cfg.GetString(config.ConfigRecordsDir),
		Observer:    observer,
	})
	if err != nil {
		return err
	}

	if len(summary.TileHistogram.Buckets) > 0 {
		fmt.Println("log2(max tile) over all logged games:")
		return histogram.Fprint(os.Stdout, summary.TileHistogram, histogram.Linear(40))
	}
	return nil
}

func runAnalyze(cfg *config.Config, args []string) error {
	board, err := game.ParseBoard(strings.Join(args, " "))
	if err != nil {
		return err
	}

	result, metric := newExpectimax(cfg).Search(board)
	fmt.Println(board)
	if !result.Found {
		fmt.Println("no valid moves left")
		return nil
	}

	for _, c := range result.Candidates {
		marker := ""
		if c.Move == result.Move {
			marker = " <- BEST"
		}
		fmt.Printf("  %-5s total=%.2f empty=%.0f smoothness=%.2f energy=%.0f%s\n",
			c.Move, c.Utility.Total, c.Utility.Empty, c.Utility.Smoothness, c.Utility.Energy, marker)
	}
	fmt.Printf("searched %d nodes, %d evaluations in %v\n", metric.Nodes, metric.Evaluations, metric.Duration)
	return nil
}

func runBench(cfg *config.Config) {
	if dir := cfg.GetString(config.ConfigProfileDir); dir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir)).Stop()
	}
	boards := experiments.SampleBoards(newRand(cfg), 20, 50)
	experiments.RunThroughputExperiment(boards, []int{1, 2, 4})
}
