// cmd/llace/main.go
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"llace/internal/arena"
	"llace/internal/config"
	"llace/internal/debugger"
	"llace/internal/interp"
	"llace/internal/logx"
)

const version = "0.1.0"

// commandAliases mirrors the teacher's single-letter shortcuts.
var commandAliases = map[string]string{
	"r": "run",
	"d": "debug",
	"s": "stats",
	"c": "check",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		showVersion()
	case "check":
		runCheck()
	case "run":
		runFunction(args[1:])
	case "stats":
		runStats(args[1:])
	case "debug":
		runDebugger()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

// runCheck builds the demo module (the C@int type plus add/fact) and
// reports what was registered, without executing
// anything — the nearest equivalent this library has to "check syntax"
// given it has no textual source language of its own.
func runCheck() {
	demo, err := buildDemoModule()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("module %q: %d types, %d globals, %d functions\n",
		"llace-cli-demo", demo.builder.Module.TypeCount(), demo.builder.Module.GlobalCount(), demo.builder.Module.FunctionCount())
}

// runFunction executes one of the demo module's functions against CLI
// arguments and prints its result.
func runFunction(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: llace run <add|fact> <args...>")
		os.Exit(1)
	}

	demo, err := buildDemoModule()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	verbose := false
	rest := args[1:]
	for i, a := range rest {
		if a == "--verbose" {
			verbose = true
			rest = append(rest[:i:i], rest[i+1:]...)
			break
		}
	}

	cfg := config.Default()
	cfg.Verbose = verbose
	logger := logx.Default
	if verbose {
		logger = logx.New(os.Stderr, logx.Trace)
	}
	ctx := interp.New(demo.builder.Module, cfg, logger)
	ctx.SetTrace(verbose)

	var fref arena.Ref
	var fnArgs []interp.RTVal
	switch args[0] {
	case "add":
		if len(rest) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: llace run add <a> <b>")
			os.Exit(1)
		}
		a, errA := strconv.Atoi(rest[0])
		bv, errB := strconv.Atoi(rest[1])
		if errA != nil || errB != nil {
			fmt.Fprintln(os.Stderr, "add requires two integer arguments")
			os.Exit(1)
		}
		fref = demo.add
		fnArgs = []interp.RTVal{interp.IntRT(demo.intType, int64(a)), interp.IntRT(demo.intType, int64(bv))}
	case "fact":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: llace run fact <n>")
			os.Exit(1)
		}
		n, errN := strconv.Atoi(rest[0])
		if errN != nil {
			fmt.Fprintln(os.Stderr, "fact requires one integer argument")
			os.Exit(1)
		}
		fref = demo.fact
		fnArgs = []interp.RTVal{interp.IntRT(demo.intType, int64(n))}
	default:
		fmt.Fprintf(os.Stderr, "Unknown demo function %q (try add or fact)\n", args[0])
		os.Exit(1)
	}

	result, err := ctx.ExecuteFunction(fref, fnArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(result.String())

	if verbose {
		ctx.PrintStats()
	}
}

// runStats runs fact(n) (n defaults to 10) purely to populate
// interp.Stats, then prints them with go-humanize's comma formatting.
func runStats(args []string) {
	n := 10
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil {
			n = v
		}
	}

	demo, err := buildDemoModule()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := interp.New(demo.builder.Module, config.Default(), nil)
	result, err := ctx.ExecuteFunction(demo.fact, []interp.RTVal{interp.IntRT(demo.intType, int64(n))})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}

	stats := ctx.GetStats()
	fmt.Printf("fact(%d) = %s\n", n, result.String())
	fmt.Printf("run id:        %s\n", ctx.RunID)
	fmt.Printf("instructions:  %s\n", humanize.Comma(int64(stats.InstructionCount)))
	fmt.Printf("function calls: %s\n", humanize.Comma(int64(stats.FunctionCalls)))
	fmt.Printf("max call depth: %d\n", stats.MaxCallStackDepth)
}

// runDebugger drops into the interactive debugger on the demo module,
// reading commands from stdin.
func runDebugger() {
	demo, err := buildDemoModule()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := interp.New(demo.builder.Module, config.Default(), nil)
	d := debugger.NewDebugger(ctx, os.Stdin, os.Stdout)
	fmt.Printf("debugging demo module (run id %s) — try 'break 0 1' then 'continue'\n", uuid.New())
	d.Run()
}

func showUsage() {
	fmt.Println("llace - arena-based IR and interpreter toolkit")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  llace check                 Build the demo module and report its contents    (alias: c)")
	fmt.Println("  llace run <add|fact> <n...> Execute a demo function and print its result     (alias: r)")
	fmt.Println("  llace stats [n]             Run fact(n) and print interpreter statistics      (alias: s)")
	fmt.Println("  llace debug                 Start the interactive debugger on the demo module (alias: d)")
	fmt.Println("  llace version                Show version information")
	fmt.Println("  llace help                  Show this message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  llace run add 2 40")
	fmt.Println("  llace run fact 10 --verbose")
	fmt.Println("  llace stats 12")
	fmt.Println("  llace debug")
}

func showVersion() {
	fmt.Printf("llace %s\n", version)
	fmt.Printf("target: %s\n", config.HostTarget())
}
