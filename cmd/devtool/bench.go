package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

const (
	benchResultsDir  = "benchmarks/results"
	benchProfileDir  = "benchmarks/profiles"
	benchBaseline    = benchResultsDir + "/baseline.txt"
	benchCurrent     = benchResultsDir + "/current.txt"
	benchTime        = "-benchtime=2s"
	benchstatPackage = "golang.org/x/perf/cmd/benchstat"
)

// hotPaths are the packages on the item event path, in feed order.
var hotPaths = []string{
	"./internal/domain",
	"./internal/store",
	"./internal/sse",
	"./benchmarks/...",
}

type BenchCommand struct{}

func (c *BenchCommand) Name() string {
	return "bench"
}

func (c *BenchCommand) Description() string {
	return "Run and compare benchmarks (run, hot, baseline, compare, profile)"
}

func (c *BenchCommand) Run(args []string) error {
	if len(args) == 0 {
		return c.runAll()
	}

	switch args[0] {
	case "run":
		return c.runAll()
	case "hot":
		return c.runHot()
	case "baseline":
		return c.runAndSave(benchBaseline)
	case "save":
		return c.runAndSave(fmt.Sprintf("%s/%s.txt", benchResultsDir, time.Now().Format("20060102-150405")))
	case "compare":
		return c.compare()
	case "profile":
		return c.profile()
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func (c *BenchCommand) runAll() error {
	PrintHeader("Running all benchmarks...")
	return runCommandVerbose("go", "test", "-run=^$", "-bench=.", "-benchmem", benchTime, "./...")
}

func (c *BenchCommand) runHot() error {
	PrintHeader("Running item path benchmarks...")
	args := append([]string{"test", "-run=^$", "-bench=.", "-benchmem", benchTime}, hotPaths...)
	return runCommandVerbose("go", args...)
}

func (c *BenchCommand) runAndSave(path string) error {
	PrintHeader("Running benchmarks and saving results...")
	if err := os.MkdirAll(benchResultsDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	mw := io.MultiWriter(os.Stdout, f)
	args := append([]string{"test", "-run=^$", "-bench=.", "-benchmem", "-count=5", benchTime}, hotPaths...)
	cmd := exec.Command("go", args...)
	cmd.Stdout = mw
	cmd.Stderr = mw

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("benchmark execution failed: %w", err)
	}

	PrintSuccess("Results saved to %s", path)
	return nil
}

func (c *BenchCommand) compare() error {
	if _, err := os.Stat(benchBaseline); os.IsNotExist(err) {
		return fmt.Errorf("no baseline found. Run 'devtool bench baseline' first")
	}

	if err := c.runAndSave(benchCurrent); err != nil {
		return err
	}

	PrintHeader("Comparing to baseline...")
	// benchstat is pinned in tools.go, so go run resolves the module version.
	return runCommandVerbose("go", "run", benchstatPackage, benchBaseline, benchCurrent)
}

func (c *BenchCommand) profile() error {
	PrintHeader("Profiling the item store...")
	if err := os.MkdirAll(benchProfileDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := runCommandVerbose("go", "test", "-run=^$", "-bench=.", "-benchmem",
		"-cpuprofile="+benchProfileDir+"/cpu.prof",
		"-memprofile="+benchProfileDir+"/mem.prof",
		"./benchmarks/store"); err != nil {
		return err
	}

	PrintSuccess("Profiles saved to %s/", benchProfileDir)
	fmt.Println("")
	fmt.Println("View CPU profile with:")
	fmt.Printf("  go tool pprof -http=:8081 %s/cpu.prof\n", benchProfileDir)
	fmt.Println("View memory profile with:")
	fmt.Printf("  go tool pprof -http=:8081 %s/mem.prof\n", benchProfileDir)
	return nil
}
