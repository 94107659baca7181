// Package main provides a performance benchmarking tool for the timemachine CLI.
// It measures how long a full index takes on repositories of different sizes,
// how long an incremental re-index takes once the store is warm,
// and how long keyword questions take to answer, writing CSV output for analysis.
//
// Prerequisites:
// - timemachine binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BenchmarkResult holds the timings for one repository.
type BenchmarkResult struct {
	Repository string
	Commits    int
	ColdIndex  string
	WarmIndex  string
	QueryAvg   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase   string
	Timeout    time.Duration
	WarmRuns   int
	TestRepos  []string
	Questions  []string
	Complexity bool
}

// indexSummary is the subset of the JSON index summary the benchmark reads.
type indexSummary struct {
	Commits int `json:"commits"`
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:  os.Args[1],
		Timeout:   30 * time.Minute,
		WarmRuns:  3,
		TestRepos: []string{"csv-parser", "fd", "git", "kubernetes"},
		Questions: []string{
			"how did authentication evolve",
			"why was the cache introduced",
			"parser error handling",
		},
		Complexity: true,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	dbDir, err := os.MkdirTemp("", "timemachine-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create store dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(dbDir) }()

	results := runBenchmarks(config, dbDir)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the timemachine binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("timemachine"); err != nil {
		return fmt.Errorf("timemachine binary not found in PATH")
	}

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}

	return nil
}

// runBenchmarks indexes each repository into its own SQLite file and times the phases.
func runBenchmarks(config BenchmarkConfig, dbDir string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d warm runs, complexity: %t\n",
		len(config.TestRepos), config.Timeout, config.WarmRuns, config.Complexity)

	for _, repo := range config.TestRepos {
		fmt.Printf("Benchmarking %s\n", repo)
		repoPath := filepath.Join(config.RepoBase, repo)
		dbPath := filepath.Join(dbDir, repo+".db")
		common := []string{"--db-connect", dbPath, fmt.Sprintf("--complexity=%t", config.Complexity)}

		result := BenchmarkResult{Repository: repo, ColdIndex: "TIMEOUT", WarmIndex: "TIMEOUT", QueryAvg: "TIMEOUT"}

		// Phase 1: full index into an empty store
		fmt.Printf("  Cold index\n")
		output, elapsed, ok := runTimed(config, repoPath, append([]string{"index", "--output", "json"}, common...))
		if !ok {
			results = append(results, result)
			continue
		}
		var summary indexSummary
		if err := json.Unmarshal(output, &summary); err == nil {
			result.Commits = summary.Commits
		}
		result.ColdIndex = fmt.Sprintf("%.3fs", elapsed)

		// Phase 2: incremental re-index with nothing new
		fmt.Printf("  Warm index (%d runs)\n", config.WarmRuns)
		result.WarmIndex = averageOf(config, repoPath, config.WarmRuns, func(int) []string {
			return append([]string{"index"}, common...)
		})

		// Phase 3: questions against the populated store
		fmt.Printf("  Queries (%d questions)\n", len(config.Questions))
		result.QueryAvg = averageOf(config, repoPath, len(config.Questions), func(i int) []string {
			return []string{"query", config.Questions[i], "--db-connect", dbPath}
		})

		fmt.Printf("  Cold: %s, Warm average: %s, Query average: %s\n", result.ColdIndex, result.WarmIndex, result.QueryAvg)
		results = append(results, result)
	}

	return results
}

// averageOf runs n commands and formats the mean of the successful ones.
func averageOf(config BenchmarkConfig, repoPath string, n int, argsFor func(int) []string) string {
	var times []float64
	for i := range n {
		if _, elapsed, ok := runTimed(config, repoPath, argsFor(i)); ok {
			times = append(times, elapsed)
		}
	}
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// runTimed executes one timemachine command and reports its stdout and wall time.
func runTimed(config BenchmarkConfig, repoPath string, args []string) ([]byte, float64, bool) {
	start := time.Now()

	cmd := exec.Command("timemachine", args...)
	cmd.Dir = repoPath

	type outcome struct {
		output []byte
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		output, err := cmd.Output()
		done <- outcome{output, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			fmt.Printf("    %v failed: %v\n", args, res.err)
			return nil, 0, false
		}
		return res.output, time.Since(start).Seconds(), true
	case <-time.After(config.Timeout):
		_ = cmd.Process.Kill()
		return nil, 0, false
	}
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/timemachine_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "commits", "cold_index", "warm_index_avg", "query_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		if err := writer.Write([]string{r.Repository, fmt.Sprint(r.Commits), r.ColdIndex, r.WarmIndex, r.QueryAvg}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %-12s: %7d commits, Cold: %s, Warm: %s, Query: %s\n",
			r.Repository, r.Commits, r.ColdIndex, r.WarmIndex, r.QueryAvg)
	}
}
