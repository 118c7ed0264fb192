package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("go.perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var liveObjectsGauge, _ = meter.Int64Gauge("live_objects")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

// InstrumentPerfStats periodically records process resource gauges
// until ctx is canceled. Long scrape fan-outs are where goroutine and
// heap growth shows up.
func InstrumentPerfStats(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second * 30)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				recordPerfStats(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func recordPerfStats(ctx context.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	usage, err := cpu.Percent(time.Minute, false)
	if err == nil && len(usage) > 0 {
		cpuGauge.Record(ctx, usage[0])
	} else if err != nil {
		slog.Warn("failed to read cpu usage", "err", err)
	}

	memoryGauge.Record(ctx, int64(memStats.Alloc/1_000_000))
	liveObjectsGauge.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
	goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))
}
