// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics collects Prometheus metrics for analysis runs and writes
// them in the text exposition format, suitable for a node-exporter textfile
// collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/paper-analysis/pkg/types"
)

// Pipeline stages observed by ObserveStage.
const (
	StageExtract  = "extract"
	StageComplete = "complete"
	StageWrite    = "write"
)

// Collector holds the run metrics in a private registry.
type Collector struct {
	runsTotal     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	pages         prometheus.Gauge
	promptChars   prometheus.Gauge
	tokensTotal   *prometheus.CounterVec
	registry      *prometheus.Registry
}

// NewCollector creates a Collector with all metrics registered.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paper_analysis_runs_total",
			Help: "Analysis runs by outcome",
		},
		[]string{"status"},
	)

	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paper_analysis_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	pages := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "paper_analysis_pages",
		Help: "Page count of the most recently extracted document",
	})

	promptChars := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "paper_analysis_prompt_chars",
		Help: "Characters in the most recent formatted prompt, instruction template included",
	})

	tokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paper_analysis_tokens_total",
			Help: "Tokens reported by the completion endpoint",
		},
		[]string{"kind"},
	)

	registry.MustRegister(runsTotal, stageDuration, pages, promptChars, tokensTotal)

	return &Collector{
		runsTotal:     runsTotal,
		stageDuration: stageDuration,
		pages:         pages,
		promptChars:   promptChars,
		tokensTotal:   tokensTotal,
		registry:      registry,
	}
}

// ObserveStage records how long a pipeline stage took.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun counts a finished run and its size and token figures.
func (c *Collector) RecordRun(a types.Analysis) {
	c.runsTotal.WithLabelValues(string(a.Status)).Inc()
	if a.Pages > 0 {
		c.pages.Set(float64(a.Pages))
	}
	if a.PromptChars > 0 {
		c.promptChars.Set(float64(a.PromptChars))
	}
	c.tokensTotal.WithLabelValues("prompt").Add(float64(a.PromptTokens))
	c.tokensTotal.WithLabelValues("completion").Add(float64(a.CompletionTokens))
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Flush writes all metrics to path atomically. An empty path is a no-op.
func (c *Collector) Flush(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
