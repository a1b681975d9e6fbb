// Package main provides the entry point for MemSim.
// MemSim simulates a multi-level memory hierarchy driven by a toy
// instruction-set emulator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/memsim/emu"
	"github.com/sarchlab/memsim/loader"
	"github.com/sarchlab/memsim/mem"
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/mem/hierarchy"
)

var (
	configPath = flag.String("config", "", "Path to hierarchy configuration JSON file")
	dataPath   = flag.String("data", "", "Path to initial memory data file")
	trace      = flag.Bool("trace", false, "Print one line per cache access")
	verbose    = flag.Bool("v", false, "Verbose output")
	maxInsts   = flag.Uint64("max-insts", 1_000_000, "Instruction limit (0 = unlimited)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: memsim [options] <program.asm>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	config := hierarchy.DefaultConfig()
	if *configPath != "" {
		loaded, err := hierarchy.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading hierarchy config: %v\n", err)
			os.Exit(1)
		}
		config = *loaded
	}

	var opts []cache.Option
	if *trace {
		opts = append(opts, cache.WithObserver(mem.ObserverFunc(printEvent)))
	}

	h, err := hierarchy.New(config, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building hierarchy: %v\n", err)
		os.Exit(1)
	}

	if *dataPath != "" {
		if err := loader.LoadData(*dataPath, h.Memory()); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
			os.Exit(1)
		}
		h.Memory().ResetStats()
	}

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Instructions: %d\n", len(prog.Instructions))
		fmt.Printf("Labels: %d\n", len(prog.Labels))
	}

	emulator := emu.NewEmulator(h.Top(), emu.WithMaxInstructions(*maxInsts))
	emulator.LoadProgram(prog)

	if err := emulator.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		os.Exit(1)
	}

	if err := h.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Flush error: %v\n", err)
		os.Exit(1)
	}

	printReport(h, emulator)
}

// printEvent renders one cache event for the -trace flag.
func printEvent(e mem.Event) {
	outcome := "MISS"
	if e.Hit {
		outcome = "HIT"
	}
	fmt.Printf("%-4s %-5s %-4s addr=%-6d value=%d\n",
		e.Level, e.Op, outcome, e.Addr, e.Value)
}

// printReport prints per-level statistics and run totals.
func printReport(h *hierarchy.Hierarchy, emulator *emu.Emulator) {
	fmt.Printf("\nInstructions executed: %d\n", emulator.InstructionCount())

	fmt.Println("\nMemory hierarchy statistics:")
	for _, level := range h.StatsByLevel() {
		s := level.Stats
		fmt.Printf("  %s:\n", level.Name)
		fmt.Printf("    Reads:       %d\n", s.Reads)
		fmt.Printf("    Writes:      %d\n", s.Writes)
		if s.Hits+s.Misses > 0 {
			fmt.Printf("    Hits:        %d\n", s.Hits)
			fmt.Printf("    Misses:      %d\n", s.Misses)
			fmt.Printf("    Hit rate:    %.2f%%\n", s.HitRate()*100)
			fmt.Printf("    Evictions:   %d\n", s.Evictions)
			fmt.Printf("    Writebacks:  %d\n", s.Writebacks)
		}
		fmt.Printf("    Access time: %d\n", s.AccessTime)
	}

	fmt.Printf("\nTotal execution time: %d\n", h.TotalExecTime())
}
