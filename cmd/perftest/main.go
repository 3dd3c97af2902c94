// Command perftest runs the whiteboard benchmark against the thread pool.
//
// Every task increments one slot of a shared board, identified by a unique
// ID handed out in shuffled order. A run passes when each slot ends at
// exactly 1, i.e. every task ran once and only once.
//
//	perftest -count 1000000 -workers 8 -method both -iterations 3
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	"github.com/utkarsh5026/threadpool/pool"
)

var (
	bold  = color.New(color.Bold)
	red   = color.New(color.FgRed)
	green = color.New(color.FgGreen)
)

func main() {
	// Enable ANSI escape sequences on Windows for progress bar support
	enableWindowsANSI()

	os.Exit(run())
}

func run() int {
	countFlag := flag.Int("count", 1_000_000, "Number of tasks (whiteboard slots)")
	workersFlag := flag.Int("workers", runtime.NumCPU(), "Number of worker threads")
	methodFlag := flag.String("method", "both", "Execution discipline: eager, deferred or both")
	pinFlag := flag.Bool("pin", false, "Pin worker i to core i mod NumCPU")
	iterationsFlag := flag.Int("iterations", 1, "Runs per discipline; the median is reported")
	seedFlag := flag.Int64("seed", time.Now().UnixNano(), "Seed for the task ID shuffle")
	metricsAddrFlag := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	verboseFlag := flag.Bool("v", false, "Log pool lifecycle events to stderr")
	flag.Parse()

	if *countFlag <= 0 || *iterationsFlag <= 0 {
		_, _ = red.Println("Error: -count and -iterations must be positive")
		return 2
	}

	methods, err := methodsFor(*methodFlag)
	if err != nil {
		_, _ = red.Printf("Error: %v\n", err)
		return 2
	}

	var opts []pool.Option
	if *pinFlag {
		opts = append(opts, pool.WithPinToCPU(true))
	}
	if *verboseFlag {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, pool.WithLogger(logger))
	}

	if *metricsAddrFlag != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, pool.WithMetrics(reg, "perftest"))

		srv := serveMetrics(*metricsAddrFlag, reg)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	printConfiguration(*countFlag, *workersFlag, *methodFlag, *pinFlag, *iterationsFlag, *seedFlag)

	r := newRunner(*countFlag, *workersFlag, *seedFlag, opts...)
	bar := makeProgressBar(len(methods) * *iterationsFlag)

	var (
		summary []RunResult
		failed  []RunResult
	)
	for _, m := range methods {
		runs := make([]RunResult, 0, *iterationsFlag)
		for i := range *iterationsFlag {
			bar.Describe(fmt.Sprintf("Testing: %s #%d", m, i+1))

			res := r.Run(m, i+1)
			_ = bar.Add(1)

			if !res.Passed() {
				failed = append(failed, res)
				continue
			}
			runs = append(runs, res)

			if i < *iterationsFlag-1 {
				runtime.GC()
			}
		}
		if len(runs) > 0 {
			summary = append(summary, median(runs))
		}
	}
	_ = bar.Finish()

	fmt.Println()
	if len(summary) > 0 {
		printResults(summary)
	}

	if len(failed) > 0 {
		printFailures(failed)
		_, _ = red.Println("FAIL")
		return 1
	}

	_, _ = green.Println("PASS")
	return 0
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			_, _ = red.Printf("Error serving metrics: %v\n", err)
		}
	}()
	fmt.Printf("Serving metrics on http://%s/metrics\n", addr)
	return srv
}

func printConfiguration(count, workers int, method string, pin bool, iterations int, seed int64) {
	_, _ = bold.Println("⚙️  Configuration:")
	fmt.Printf("  Tasks:        %s\n", formatNumber(count))
	fmt.Printf("  Workers:      %d (using %d CPU cores)\n", workers, runtime.NumCPU())
	fmt.Printf("  Method:       %s\n", method)
	fmt.Printf("  Pinned:       %v\n", pin)
	fmt.Printf("  Iterations:   %d\n", iterations)
	fmt.Printf("  Seed:         %d\n", seed)
	fmt.Println()
}

func makeProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Running"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func printResults(results []RunResult) {
	_, _ = bold.Println("📊 WHITEBOARD RESULTS")
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Method", "Tasks", "Submit", "Total", "Tasks/sec", "Result")

	for _, r := range results {
		verdict := "PASS"
		if !r.Passed() {
			verdict = "FAIL"
		}
		_ = table.Append(
			r.Method.String(),
			formatNumber(r.Tasks),
			r.SubmitTime.Round(time.Microsecond).String(),
			r.TotalTime.Round(time.Microsecond).String(),
			formatNumber(int(r.TasksPerSec())),
			verdict,
		)
	}

	if err := table.Render(); err != nil {
		_, _ = red.Printf("Error rendering results: %v\n", err)
	}
	fmt.Println()
}

func printFailures(results []RunResult) {
	_, _ = red.Println("⚠️  Failed runs:")
	for _, r := range results {
		if r.Err != nil {
			_, _ = red.Printf("  • %s #%d: %v\n", r.Method, r.Iteration, r.Err)
			continue
		}
		shown := r.Bad
		if len(shown) > 10 {
			shown = shown[:10]
		}
		_, _ = red.Printf("  • %s #%d: %d slots not written exactly once, first %v\n",
			r.Method, r.Iteration, len(r.Bad), shown)
	}
	fmt.Println()
}

func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	result := ""
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
