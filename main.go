// Micro Blossom models a distributed Minimum-Weight-Perfect-Matching
// decoder accelerator, cycle by cycle, on the Akita simulation
// framework. The actual drivers live under cmd/; this root binary only
// points there.
package main

import "fmt"

func main() {
	fmt.Println("microblossom model - see the cmd/ binaries:")
	fmt.Println("  go run ./cmd/microblossom -h   simulation driver")
	fmt.Println("  go run ./cmd/benchmark -h      decoding benchmark harness")
	fmt.Println("  go run ./cmd/profile -h        profiling wrapper")
}
