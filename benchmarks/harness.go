// Package benchmarks provides decoding-latency benchmark infrastructure
// for the Micro Blossom model. Each scenario loads syndrome defects into
// the accelerator, lets the primal-offloading loop grow the matching
// until an obstacle is found, and reports cycle-level statistics.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/microblossom/dual"
	"github.com/sarchlab/microblossom/graph"
	"github.com/sarchlab/microblossom/machine"
)

// Result holds the timing results for a single scenario run.
type Result struct {
	// Name identifies the scenario
	Name string `json:"name"`

	// Description explains what the scenario measures
	Description string `json:"description"`

	// VertexNum is the size of the decoding graph
	VertexNum int `json:"vertex_num"`

	// Rounds is the number of decoding rounds executed
	Rounds int `json:"rounds"`

	// SimulatedCycles is the total register-interface cycle count
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsIssued counts broadcast instructions, including
	// hardware-issued Grow instructions
	InstructionsIssued uint64 `json:"instructions_issued"`

	// OffloadedGrows counts Grow instructions the hardware issued on
	// its own under the growth budget
	OffloadedGrows uint64 `json:"offloaded_grows"`

	// StalledWrites counts bus writes answered with backpressure
	StalledWrites uint64 `json:"stalled_writes"`

	// ConflictsFound counts rounds that ended on a reported obstacle
	ConflictsFound uint64 `json:"conflicts_found"`

	// CyclesPerRound is the average decoding-round latency
	CyclesPerRound float64 `json:"cycles_per_round"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Scenario defines a single decoding workload.
type Scenario struct {
	// Name identifies the scenario
	Name string

	// Description explains what the scenario measures
	Description string

	// Graph builds the decoding graph
	Graph func() (*graph.Graph, error)

	// Rounds lists the defect vertices loaded in each decoding round
	Rounds [][]int
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// SupportOffloading enables the hardware primal-offloading loop
	SupportOffloading bool

	// BroadcastDelay is the instruction fan-out stage count
	BroadcastDelay int

	// ConvergecastDelay is the response fan-in stage count
	ConvergecastDelay int

	// ConflictChannels is the conflict report capacity per readout
	ConflictChannels int

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables per-round output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		SupportOffloading: true,
		BroadcastDelay:    1,
		ConvergecastDelay: 1,
		ConflictChannels:  1,
		Output:            os.Stdout,
	}
}

// Harness runs decoding scenarios and reports results.
type Harness struct {
	config    HarnessConfig
	scenarios []Scenario
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{config: config}
}

// AddScenario adds a scenario to the harness.
func (h *Harness) AddScenario(s Scenario) {
	h.scenarios = append(h.scenarios, s)
}

// AddScenarios adds multiple scenarios to the harness.
func (h *Harness) AddScenarios(scenarios []Scenario) {
	h.scenarios = append(h.scenarios, scenarios...)
}

// RunAll executes all scenarios and returns results.
func (h *Harness) RunAll() ([]Result, error) {
	results := make([]Result, 0, len(h.scenarios))
	for _, s := range h.scenarios {
		result, err := h.runScenario(s)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// runScenario executes every round of a scenario on a fresh machine.
func (h *Harness) runScenario(s Scenario) (Result, error) {
	g, err := s.Graph()
	if err != nil {
		return Result{}, err
	}

	config := graph.DefaultHardwareConfig()
	config.SupportOffloading = h.config.SupportOffloading
	config.BroadcastDelay = h.config.BroadcastDelay
	config.ConvergecastDelay = h.config.ConvergecastDelay
	config.ConflictChannels = h.config.ConflictChannels

	m, err := machine.New(g, config)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Name:        s.Name,
		Description: s.Description,
		VertexNum:   g.VertexNum,
		Rounds:      len(s.Rounds),
	}

	start := time.Now()
	for i, defects := range s.Rounds {
		roundStart := m.CycleCount()
		conflict := h.runRound(m, defects)
		if conflict {
			result.ConflictsFound++
		}
		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output,
				"%s round %d: %d defects, %d cycles, conflict=%v\n",
				s.Name, i, len(defects), m.CycleCount()-roundStart,
				conflict)
		}
	}
	result.WallTime = time.Since(start)

	stats := m.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsIssued = stats.InstructionsIssued
	result.OffloadedGrows = stats.OffloadedGrows
	result.StalledWrites = stats.StalledWrites
	if result.Rounds > 0 {
		result.CyclesPerRound =
			float64(stats.Cycles) / float64(result.Rounds)
	}
	return result, nil
}

// runRound loads one syndrome into context 0 and lets the offloading
// loop run to its obstacle. Reports whether a conflict was found.
func (h *Harness) runRound(m *machine.Machine, defects []int) bool {
	write := func(inst dual.Instruction) {
		for !m.WriteInstruction(0, inst) {
			m.Tick()
		}
	}
	drain := func() {
		for m.Busy() {
			m.Tick()
		}
	}

	// budget zero while loading so landings cannot trigger growth
	m.Write(machine.ReadoutBase+machine.OffMaximumGrowth, 0)
	m.Write(machine.ReadoutBase+machine.OffAccumulatedGrown, 0)
	write(dual.Reset())
	for i, v := range defects {
		write(dual.AddDefect(v, dual.NodeIndex(i)))
	}
	drain()

	if h.config.SupportOffloading {
		m.Write(machine.ReadoutBase+machine.OffMaximumGrowth, 0xFFFF)
		write(dual.FindObstacle())
		drain()
		return h.readReg(m,
			machine.ReadoutBase+machine.OffConflictBase+
				machine.OffConflictValid) != 0
	}

	// without offloading, run the software driver loop: probe, read the
	// growth bound, grow by it, and probe again until an obstacle is
	// reported
	for {
		write(dual.FindObstacle())
		drain()
		if h.readReg(m,
			machine.ReadoutBase+machine.OffConflictBase+
				machine.OffConflictValid) != 0 {
			return true
		}
		growable := h.readReg(m,
			machine.ReadoutBase+machine.OffGrowable)
		if growable == 0 {
			return false
		}
		write(dual.GrowBy(int(growable)))
		drain()
	}
}

func (h *Harness) readReg(m *machine.Machine, addr uint64) uint64 {
	for {
		if value, ok := m.Read(addr); ok {
			return value
		}
		m.Tick()
	}
}

// PrintResults outputs scenario results in a human-readable format.
func (h *Harness) PrintResults(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Micro Blossom Decoding Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Scenario: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Graph Vertices: %d\n", r.VertexNum)
		_, _ = fmt.Fprintf(h.config.Output, "  Rounds: %d\n", r.Rounds)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:    %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Issued: %d\n", r.InstructionsIssued)
		_, _ = fmt.Fprintf(h.config.Output, "  Offloaded Grows:     %d\n", r.OffloadedGrows)
		_, _ = fmt.Fprintf(h.config.Output, "  Stalled Writes:      %d\n", r.StalledWrites)
		_, _ = fmt.Fprintf(h.config.Output, "  Conflicts Found:     %d\n", r.ConflictsFound)
		_, _ = fmt.Fprintf(h.config.Output, "  Cycles/Round:        %.1f\n", r.CyclesPerRound)
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs scenario results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,vertices,rounds,cycles,instructions,offloaded_grows,stalled_writes,conflicts,cycles_per_round")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%d,%d,%d,%.1f\n",
			r.Name,
			r.VertexNum,
			r.Rounds,
			r.SimulatedCycles,
			r.InstructionsIssued,
			r.OffloadedGrows,
			r.StalledWrites,
			r.ConflictsFound,
			r.CyclesPerRound,
		)
	}
}

// PrintJSON outputs scenario results as indented JSON.
func (h *Harness) PrintJSON(results []Result) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
