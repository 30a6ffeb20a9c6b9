// Command benchmark runs the Micro Blossom decoding benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv         Output results in CSV format (default: human-readable)
//	-json        Output results in JSON format
//	-core        Run only the core scenario set
//	-no-offload  Disable hardware primal offloading
//	-v           Per-round output
//
// Example:
//
//	# Run all scenarios with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
//
// The cycle counts can be compared across hardware configurations to
// evaluate latency trade-offs, for example the cost of disabling the
// offloading loop.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/microblossom/benchmarks"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	core := flag.Bool("core", false, "Run only the core scenario set")
	noOffload := flag.Bool("no-offload", false, "Disable hardware primal offloading")
	verbose := flag.Bool("v", false, "Per-round output")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.SupportOffloading = !*noOffload
	config.Verbose = *verbose
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	if *core {
		harness.AddScenarios(benchmarks.GetCoreScenarios())
	} else {
		harness.AddScenarios(benchmarks.GetScenarios())
	}

	if !*csvOutput && !*jsonOutput {
		fmt.Println("Micro Blossom Decoding Benchmark Harness")
		fmt.Println("========================================")
		fmt.Printf("Offloading: %v\n", config.SupportOffloading)
		fmt.Println("")
	}

	results, err := harness.RunAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *csvOutput:
		harness.PrintCSV(results)
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		harness.PrintResults(results)
	}
}
