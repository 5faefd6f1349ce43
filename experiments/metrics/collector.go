package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines  int
	Duration    time.Duration
	Nodes       int // Maximize layers visited
	Expansions  int // Chance layers that enumerated spawns
	Evaluations int // Heuristic leaf evaluations
}

type MoveMetric struct {
	Step      int
	Direction string
	MaxTile   int
	SearchMetric
}

type GameMetric struct {
	ID         int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalMoves int
	MaxTile    int
}

type Collector interface {
	Start(goroutines int)
	AddNode()
	AddExpansion()
	AddEvaluation()
	Complete() SearchMetric
}

type collector struct {
	goroutines  int
	startTime   time.Time
	nodes       atomic.Int64
	expansions  atomic.Int64
	evaluations atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters for a new search.
func (m *collector) Start(goroutines int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.nodes.Store(0)
	m.expansions.Store(0)
	m.evaluations.Store(0)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddExpansion() {
	m.expansions.Add(1)
}

func (m *collector) AddEvaluation() {
	m.evaluations.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:  m.goroutines,
		Duration:    time.Since(m.startTime),
		Nodes:       int(m.nodes.Load()),
		Expansions:  int(m.expansions.Load()),
		Evaluations: int(m.evaluations.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines int)   {}
func (m *dummyCollector) AddNode()               {}
func (m *dummyCollector) AddExpansion()          {}
func (m *dummyCollector) AddEvaluation()         {}
func (m *dummyCollector) Complete() SearchMetric { return SearchMetric{} }
