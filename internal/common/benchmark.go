package common

import (
	"fmt"
	"runtime"
	"time"
)

// BenchmarkResult holds the outcome of a throughput measurement run.
type BenchmarkResult struct {
	Name       string
	Iterations int
	Duration   time.Duration
	AllocBytes uint64
	Err        error
}

// OpsPerSecond returns the measured operation rate.
func (br BenchmarkResult) OpsPerSecond() float64 {
	if br.Duration <= 0 {
		return 0
	}
	return float64(br.Iterations) / br.Duration.Seconds()
}

// String returns a formatted representation of the benchmark result.
func (br BenchmarkResult) String() string {
	if br.Err != nil {
		return fmt.Sprintf("%s: ERROR - %v", br.Name, br.Err)
	}
	return fmt.Sprintf("%s: %d iterations in %v (%.0f ops/s, +%d KB)",
		br.Name, br.Iterations, br.Duration.Round(time.Millisecond),
		br.OpsPerSecond(), br.AllocBytes/1024)
}

// RunBenchmark executes fn the given number of iterations and measures
// wall time and heap growth. The run stops at the first error.
func RunBenchmark(name string, iterations int, fn func(i int) error) BenchmarkResult {
	result := BenchmarkResult{Name: name, Iterations: iterations}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)

	timer := NewNamedTimer(name)
	for i := 0; i < iterations; i++ {
		if err := fn(i); err != nil {
			result.Err = err
			result.Iterations = i
			break
		}
	}
	result.Duration = timer.Stop()

	runtime.ReadMemStats(&after)
	if after.TotalAlloc > before.TotalAlloc {
		result.AllocBytes = after.TotalAlloc - before.TotalAlloc
	}
	return result
}
