package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/VanDung-dev/hierachain-frame/api"
	arrowipc "github.com/VanDung-dev/hierachain-frame/arrow"
	"github.com/VanDung-dev/hierachain-frame/logging"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// StressTestConfig holds configuration for the stress test.
type StressTestConfig struct {
	Address     string
	Transport   string
	Concurrency int
	Rows        int
	Duration    time.Duration
	AuthToken   string
	ReportFile  string
}

// StressTestResult holds the results of a stress test.
type StressTestResult struct {
	TotalRequests  int64
	SuccessfulReqs int64
	FailedReqs     int64
	RowsConverted  int64
	TotalDuration  time.Duration
	AvgLatency     time.Duration
	MinLatency     time.Duration
	MaxLatency     time.Duration
	RequestsPerSec float64
}

type counters struct {
	total, success, failed, rows atomic.Int64
	latencySum, minLat, maxLat   atomic.Int64
}

func (c *counters) observe(lat time.Duration) {
	l := int64(lat)
	c.latencySum.Add(l)
	for {
		old := c.minLat.Load()
		if l >= old || c.minLat.CompareAndSwap(old, l) {
			break
		}
	}
	for {
		old := c.maxLat.Load()
		if l <= old || c.maxLat.CompareAndSwap(old, l) {
			break
		}
	}
}

func main() {
	config := parseFlags()
	logger := logging.NewLogger("info", true)

	payload, err := buildPayload(config.Rows)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build payload")
	}

	fmt.Println("=== Arrow Frame Server Stress Test ===")
	fmt.Printf("Target: %s (%s)\n", config.Address, config.Transport)
	fmt.Printf("Concurrency: %d workers\n", config.Concurrency)
	fmt.Printf("Duration: %v\n", config.Duration)
	fmt.Printf("Rows per request: %d (%d bytes)\n", config.Rows, len(payload))
	fmt.Printf("Auth: %v\n", config.AuthToken != "")
	fmt.Println()

	result := runStressTest(config, payload, logger)

	printResults(result)

	if config.ReportFile != "" {
		saveReport(config, result, logger)
	}
}

func parseFlags() StressTestConfig {
	config := StressTestConfig{}

	flag.StringVar(&config.Address, "addr", "127.0.0.1:50051", "Arrow server address")
	flag.StringVar(&config.Transport, "transport", "tcp", "Endpoint type: tcp, grpc")
	flag.IntVar(&config.Concurrency, "c", 10, "Number of concurrent workers")
	flag.IntVar(&config.Rows, "rows", 1000, "Rows in each request batch")
	flag.DurationVar(&config.Duration, "d", 30*time.Second, "Duration of test")
	flag.StringVar(&config.AuthToken, "token", "", "Authentication token (enables the auth handshake)")
	flag.StringVar(&config.ReportFile, "o", "", "Output report file (JSON)")

	flag.Parse()

	return config
}

// buildPayload encodes one batch mixing the common column types.
func buildPayload(rows int) ([]byte, error) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "entity", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "ok", Type: arrow.FixedWidthTypes.Boolean},
		{Name: "at", Type: &arrow.TimestampType{Unit: arrow.Microsecond}},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMicro()
	for i := 0; i < rows; i++ {
		b.Field(0).(*array.Int64Builder).Append(int64(i))
		if i%10 == 0 {
			b.Field(1).AppendNull()
			b.Field(2).AppendNull()
		} else {
			b.Field(1).(*array.StringBuilder).Append(fmt.Sprintf("entity_%d", i))
			b.Field(2).(*array.Float64Builder).Append(float64(i) / 3)
		}
		b.Field(3).(*array.BooleanBuilder).Append(i%2 == 0)
		b.Field(4).(*array.TimestampBuilder).Append(arrow.Timestamp(base + int64(i)*1000))
	}

	rec := b.NewRecord()
	defer rec.Release()

	return arrowipc.NewCodecWithAllocator(mem).Serialize(rec)
}

func runStressTest(config StressTestConfig, payload []byte, logger zerolog.Logger) StressTestResult {
	var (
		c    counters
		wg   sync.WaitGroup
		stop = make(chan struct{})
	)
	c.minLat.Store(math.MaxInt64)

	startTime := time.Now()

	for i := 0; i < config.Concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			runWorker(workerID, config, payload, stop, &c, logger)
		}(i)
	}

	time.Sleep(config.Duration)
	close(stop)
	wg.Wait()

	duration := time.Since(startTime)
	total := c.total.Load()
	success := c.success.Load()

	var avgLatency time.Duration
	if success > 0 {
		avgLatency = time.Duration(c.latencySum.Load() / success)
	}
	minLat := c.minLat.Load()
	if minLat == math.MaxInt64 {
		minLat = 0
	}

	return StressTestResult{
		TotalRequests:  total,
		SuccessfulReqs: success,
		FailedReqs:     c.failed.Load(),
		RowsConverted:  c.rows.Load(),
		TotalDuration:  duration,
		AvgLatency:     avgLatency,
		MinLatency:     time.Duration(minLat),
		MaxLatency:     time.Duration(c.maxLat.Load()),
		RequestsPerSec: float64(total) / duration.Seconds(),
	}
}

// runWorker keeps one connection open and reconnects after a failure.
func runWorker(id int, config StressTestConfig, payload []byte, stop chan struct{}, c *counters, logger zerolog.Logger) {
	var client converter
	defer func() {
		if client != nil {
			_ = client.Close()
		}
	}()

	for {
		select {
		case <-stop:
			return
		default:
		}

		if client == nil {
			var err error
			client, err = connect(config)
			if err != nil {
				c.total.Add(1)
				c.failed.Add(1)
				logger.Debug().Err(err).Int("worker", id).Msg("connect failed")
				time.Sleep(10 * time.Millisecond)
				continue
			}
		}

		start := time.Now()
		resp, err := client.Convert(payload)
		latency := time.Since(start)
		c.total.Add(1)

		if err != nil {
			c.failed.Add(1)
			logger.Debug().Err(err).Int("worker", id).Msg("request failed")
			if resp == nil {
				_ = client.Close()
				client = nil
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}

		c.success.Add(1)
		c.rows.Add(int64(resp.RowCount))
		c.observe(latency)
	}
}

// converter is the part of the TCP and gRPC clients a worker needs.
type converter interface {
	Convert(payload []byte) (*api.FrameResponse, error)
	Close() error
}

type grpcConverter struct {
	*api.GRPCClient
}

func (c grpcConverter) Convert(payload []byte) (*api.FrameResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return c.GRPCClient.Convert(ctx, payload)
}

func connect(config StressTestConfig) (converter, error) {
	if config.Transport == "grpc" {
		client, err := api.DialGRPC(config.Address, config.AuthToken)
		if err != nil {
			return nil, err
		}
		return grpcConverter{client}, nil
	}

	client, err := api.Dial(config.Address, 5*time.Second)
	if err != nil {
		return nil, err
	}
	if config.AuthToken != "" {
		if err := client.Authenticate(config.AuthToken); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

func printResults(result StressTestResult) {
	pct := func(n int64) float64 {
		if result.TotalRequests == 0 {
			return 0
		}
		return float64(n) / float64(result.TotalRequests) * 100
	}

	fmt.Println("=== Results ===")
	fmt.Printf("Duration:        %v\n", result.TotalDuration.Round(time.Millisecond))
	fmt.Printf("Total Requests:  %d\n", result.TotalRequests)
	fmt.Printf("Successful:      %d (%.2f%%)\n", result.SuccessfulReqs, pct(result.SuccessfulReqs))
	fmt.Printf("Failed:          %d (%.2f%%)\n", result.FailedReqs, pct(result.FailedReqs))
	fmt.Printf("Rows converted:  %d\n", result.RowsConverted)
	fmt.Printf("Requests/sec:    %.2f\n", result.RequestsPerSec)
	fmt.Printf("Avg Latency:     %v\n", result.AvgLatency.Round(time.Microsecond))
	fmt.Printf("Min Latency:     %v\n", result.MinLatency.Round(time.Microsecond))
	fmt.Printf("Max Latency:     %v\n", result.MaxLatency.Round(time.Microsecond))
}

func saveReport(config StressTestConfig, result StressTestResult, logger zerolog.Logger) {
	report := map[string]any{
		"config": map[string]any{
			"address":     config.Address,
			"transport":   config.Transport,
			"concurrency": config.Concurrency,
			"rows":        config.Rows,
			"duration":    config.Duration.String(),
		},
		"results": map[string]any{
			"total_requests":   result.TotalRequests,
			"successful":       result.SuccessfulReqs,
			"failed":           result.FailedReqs,
			"rows_converted":   result.RowsConverted,
			"requests_per_sec": result.RequestsPerSec,
			"avg_latency_ms":   float64(result.AvgLatency.Microseconds()) / 1000,
			"min_latency_ms":   float64(result.MinLatency.Microseconds()) / 1000,
			"max_latency_ms":   float64(result.MaxLatency.Microseconds()) / 1000,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode report")
		return
	}
	if err := os.WriteFile(config.ReportFile, data, 0o644); err != nil {
		logger.Error().Err(err).Msg("failed to write report")
		return
	}
	fmt.Printf("Report saved to: %s\n", config.ReportFile)
}
