// Package main provides the entry point for the Micro Blossom
// accelerator model: it loads a decoding graph, drives one decoding
// round through the register interface, and reports the convergecast
// results.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/microblossom/dual"
	"github.com/sarchlab/microblossom/graph"
	"github.com/sarchlab/microblossom/machine"
)

var (
	configPath = flag.String("config", "", "Path to hardware configuration JSON file")
	defectList = flag.String("defects", "", "Comma-separated defect vertex indices")
	maxGrowth  = flag.Uint("max-growth", 0, "Growth budget for primal offloading")
	context    = flag.Int("context", 0, "Context id to decode in")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: microblossom [options] <graph.json>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	g, err := graph.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading graph: %v\n", err)
		os.Exit(1)
	}

	config := graph.DefaultHardwareConfig()
	if *configPath != "" {
		config, err = graph.LoadHardwareConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading hardware config: %v\n", err)
			os.Exit(1)
		}
	}

	defects, err := parseDefects(*defectList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing defects: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", flag.Arg(0))
		fmt.Printf("Vertices: %d, edges: %d, virtual: %d\n",
			g.VertexNum, g.EdgeNum(), len(g.VirtualVertices))
		fmt.Printf("Field widths: vertex %db, weight %db\n",
			g.VertexBits, g.WeightBits)
	}

	os.Exit(run(g, config, defects))
}

// run drives one decoding round and prints the readout. Returns the
// process exit code.
func run(g *graph.Graph, config *graph.HardwareConfig, defects []int) int {
	engine := sim.NewSerialEngine()

	comp, err := machine.NewBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithGraph(g).
		WithHardwareConfig(config).
		Build("MicroBlossom")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building machine: %v\n", err)
		return 1
	}

	ctx := *context
	codec := comp.Machine().Codec()
	instrAddr := uint64(machine.ContextWindowBase + 4*ctx)
	readoutBase := uint64(machine.ReadoutBase + machine.ReadoutStride*ctx)

	ops := []dual.Instruction{dual.Reset()}
	for i, v := range defects {
		ops = append(ops, dual.AddDefect(v, dual.NodeIndex(i)))
	}
	ops = append(ops, dual.FindObstacle())

	comp.EnqueueWrite(readoutBase+machine.OffMaximumGrowth, uint64(*maxGrowth))
	for _, inst := range ops {
		word, err := codec.Encode(inst)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding %v: %v\n", inst, err)
			return 1
		}
		comp.EnqueueWrite(instrAddr, uint64(word))
	}

	if err := engine.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running simulation: %v\n", err)
		return 1
	}

	var growable, grown, conflictValid, node1, node2 uint64
	comp.EnqueueRead(readoutBase+machine.OffGrowable, func(v uint64) { growable = v })
	comp.EnqueueRead(readoutBase+machine.OffAccumulatedGrown, func(v uint64) { grown = v })
	comp.EnqueueRead(readoutBase+machine.OffConflictBase+machine.OffConflictValid,
		func(v uint64) { conflictValid = v })
	comp.EnqueueRead(readoutBase+machine.OffConflictBase+machine.OffConflictNode1,
		func(v uint64) { node1 = v })
	comp.EnqueueRead(readoutBase+machine.OffConflictBase+machine.OffConflictNode2,
		func(v uint64) { node2 = v })

	if err := engine.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running simulation: %v\n", err)
		return 1
	}

	fmt.Printf("Growable: %d\n", growable)
	fmt.Printf("Accumulated grown: %d\n", grown)
	if conflictValid != 0 {
		fmt.Printf("Conflict: node %s vs node %s\n",
			nodeString(node1), nodeString(node2))
	} else {
		fmt.Printf("Conflict: none\n")
	}

	if *verbose {
		stats := comp.Machine().Stats()
		fmt.Printf("\nCycles: %d\n", stats.Cycles)
		fmt.Printf("Instructions issued: %d\n", stats.InstructionsIssued)
		fmt.Printf("Offloaded grows: %d\n", stats.OffloadedGrows)
		fmt.Printf("Stalled writes: %d, stalled reads: %d\n",
			stats.StalledWrites, stats.StalledReads)
	}

	return 0
}

func parseDefects(list string) ([]int, error) {
	if list == "" {
		return nil, nil
	}
	var defects []int
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid defect vertex %q", field)
		}
		defects = append(defects, v)
	}
	return defects, nil
}

func nodeString(field uint64) string {
	if field == machine.NodeNone {
		return "virtual"
	}
	return strconv.FormatUint(field, 10)
}
