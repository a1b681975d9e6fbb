// Package main provides the entry point for MemSim.
// MemSim is a multi-level memory-hierarchy simulator driven by a toy
// instruction-set emulator.
//
// For the full CLI, use: go run ./cmd/memsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("MemSim - Memory Hierarchy Simulator")
	fmt.Println("")
	fmt.Println("Usage: memsim [options] <program.asm>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to hierarchy configuration JSON file")
	fmt.Println("  -data      Path to initial memory data file")
	fmt.Println("  -trace     Print one line per cache access")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/memsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/memsim' instead.")
	}
}
