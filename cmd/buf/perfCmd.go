package buf

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/dMem/cmd/util"
	"github.com/ValentinKolb/dMem/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for dMem servers",
		Long:    "Runs benchmarks against a dMem server. All buffers created by the benchmarks are freed afterwards.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfNamePrefix  = "__perf"
	perfLargeSizeKB = 100
	perfSmallSize   = 64
	perfBufferCount = 10
	perfSkip        = make([]string, 0)
)

// benchmark is a single named benchmark of the perf command
type benchmark struct {
	name string
	fn   func(b *testing.B)
}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. alloc-free,list)"))
	key = "large-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("Size of the buffers for the *-large benchmarks (in KB)"))
	key = "buffers"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("How many different buffers to use for the benchmarks"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfLargeSizeKB = viper.GetInt("large-size")
	perfBufferCount = viper.GetInt("buffers")
	if skip := viper.GetString("skip"); skip != "" {
		perfSkip = strings.Split(skip, ",")
	}

	if perfLargeSizeKB <= 0 || perfBufferCount <= 0 {
		return fmt.Errorf("large-size and buffers must be positive")
	}
	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for dMem servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Buffers: %d, Large Size: %d KB\n", perfBufferCount, perfLargeSizeKB)
	fmt.Println()

	fmt.Println("starting tests...")

	small := make([]byte, perfSmallSize)
	large := make([]byte, perfLargeSizeKB*1024)

	benchmarks := []benchmark{
		{"alloc-free", benchAllocFree},
		{"write", benchWrite(small)},
		{"write-large", benchWrite(large)},
		{"read", benchRead(len(small))},
		{"read-large", benchRead(len(large))},
		{"list", benchList},
	}

	results := make(map[string]testing.BenchmarkResult)
	for _, bm := range benchmarks {
		var result testing.BenchmarkResult
		if !shouldSkip(bm.name) {
			result = testing.Benchmark(bm.fn)
		}
		results[bm.name] = result
		printResult(bm.name, result)
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return err
		}
		fmt.Printf("results written to %s\n", csvPath)
	}

	return nil
}

// --------------------------------------------------------------------------
// Benchmarks
// --------------------------------------------------------------------------

func benchAllocFree(b *testing.B) {
	name := fmt.Sprintf("%s-alloc", perfNamePrefix)
	for i := 0; i < b.N; i++ {
		if err := rpcClient.Alloc(name, uint64(perfSmallSize)); err != nil {
			log.Printf("(alloc-free) - error allocating buffer: %v\n", err)
			continue
		}
		if err := rpcClient.Free(name); err != nil {
			log.Printf("(alloc-free) - error freeing buffer: %v\n", err)
		}
	}
}

func benchWrite(data []byte) func(b *testing.B) {
	return func(b *testing.B) {
		getName := prepareBuffers(b, "write", len(data))
		b.SetBytes(int64(len(data)))
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			if err := rpcClient.Write(getName(i), 0, data); err != nil {
				log.Printf("(write) - error writing buffer: %v\n", err)
			}
		}
	}
}

func benchRead(size int) func(b *testing.B) {
	return func(b *testing.B) {
		getName := prepareBuffers(b, "read", size)
		b.SetBytes(int64(size))
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			if _, err := rpcClient.Read(getName(i), 0, uint64(size)); err != nil {
				log.Printf("(read) - error reading buffer: %v\n", err)
			}
		}
	}
}

func benchList(b *testing.B) {
	prepareBuffers(b, "list", perfSmallSize)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := rpcClient.List(); err != nil {
			log.Printf("(list) - error listing buffers: %v\n", err)
		}
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// prepareBuffers allocates the benchmark buffers and frees them when b is done.
// The returned function maps an iteration to a buffer name (with wraparound).
func prepareBuffers(b *testing.B, prefix string, size int) func(int) string {
	names := make([]string, perfBufferCount)
	for i := range names {
		names[i] = fmt.Sprintf("%s-%s-%d", perfNamePrefix, prefix, i)
		if err := rpcClient.Alloc(names[i], uint64(size)); err != nil {
			log.Printf("(%s) - error allocating buffer: %v\n", prefix, err)
		}
	}

	b.Cleanup(func() {
		for _, name := range names {
			if err := rpcClient.Free(name); err != nil {
				log.Printf("(%s) - error freeing buffer: %v\n", prefix, err)
			}
		}
	})

	return func(i int) string {
		return names[i%len(names)]
	}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Endpoint", "TimeoutSec", "RetryCount", "Transport",
		"Buffers", "LargeSizeKB",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for test, result := range results {
		nsPerOp, opsPerSec, skipped := 0.0, 0.0, "true"
		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			config.Transport.Endpoint,
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.Transport.RetryCount),
			viper.GetString("transport"),
			strconv.Itoa(perfBufferCount),
			strconv.Itoa(perfLargeSizeKB),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
