package main

import (
	"context"
	"log"
	"time"

	"elbimport/internal/config"
	"elbimport/internal/metrics"
	"elbimport/internal/metrics/datadog"
)

// setupMetrics installs the configured metrics backend and returns the
// function that flushes and closes it.
func setupMetrics(cfg config.Config, runID string, logger *log.Logger) func() {
	switch cfg.MetricsBackend {
	case "datadog":
		tags := append(datadog.ParseTagsCSV(cfg.MetricsTags), "table:"+cfg.Table, "storage:"+cfg.Storage)

		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName:    "elbimport",
			Tags:       tags,
			FlushEvery: 60 * time.Second,
		})
		if err != nil {
			logger.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return func() {}
		}
		logger.Printf("metrics: backend=datadog run_id=%s tags=%v", runID, tags)
		metrics.SetBackend(b)

		// Close stops the periodic flush loop and performs a final Flush.
		return func() {
			if err := b.Close(); err != nil {
				logger.Printf("metrics: datadog close/flush error: %v", err)
			}
			metrics.SetBackend(nil)
		}

	default:
		logger.Printf("metrics: disabled (backend=%q)", cfg.MetricsBackend)
		return func() {}
	}
}
