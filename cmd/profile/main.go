// Package main provides a profiling wrapper for the Micro Blossom model
// to identify simulation performance bottlenecks.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/sarchlab/microblossom/benchmarks"
	"github.com/sarchlab/microblossom/graph"
)

var (
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	distance   = flag.Int("distance", 100, "chain length of the decoding graph")
	rounds     = flag.Int("rounds", 1000, "number of decoding rounds")
	defectRate = flag.Float64("defect-rate", 0.05, "per-vertex defect probability")
	seed       = flag.Int64("seed", 1, "random seed for defect placement")
)

func main() {
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	config := benchmarks.DefaultConfig()
	harness := benchmarks.NewHarness(config)
	harness.AddScenario(randomScenario(*distance, *rounds, *defectRate, *seed))

	results, err := harness.RunAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	harness.PrintResults(results)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
			os.Exit(1)
		}
	}
}

// randomScenario samples independent defects on a repetition-code chain.
// Rounds that come up empty are re-sampled with at least one defect so
// every round exercises the growth loop.
func randomScenario(distance, rounds int, rate float64, seed int64) benchmarks.Scenario {
	rng := rand.New(rand.NewSource(seed))

	defectRounds := make([][]int, rounds)
	for i := range defectRounds {
		var defects []int
		for v := 1; v < distance; v++ {
			if rng.Float64() < rate {
				defects = append(defects, v)
			}
		}
		if len(defects) == 0 {
			defects = []int{1 + rng.Intn(distance-1)}
		}
		defectRounds[i] = defects
	}

	return benchmarks.Scenario{
		Name: "random_chain",
		Description: fmt.Sprintf(
			"%d rounds of random defects on a distance-%d chain", rounds, distance),
		Graph: func() (*graph.Graph, error) {
			config := graph.Config{
				VertexNum:       distance + 1,
				VirtualVertices: []int{0, distance},
			}
			for i := 0; i < distance; i++ {
				config.WeightedEdges = append(config.WeightedEdges,
					graph.WeightedEdge{Left: i, Right: i + 1, Weight: 2})
			}
			return graph.New(config)
		},
		Rounds: defectRounds,
	}
}
