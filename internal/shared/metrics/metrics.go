package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	classifyTotal        atomic.Uint64
	classifyFailedTotal  atomic.Uint64
	analyzeTotal         atomic.Uint64
	analyzeFailedTotal   atomic.Uint64
	analyzeDegradedTotal atomic.Uint64
	cleanupFailedTotal   atomic.Uint64

	pipelineDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncClassify counts a classification run.
func IncClassify() { classifyTotal.Add(1) }

// IncClassifyFailed counts a failed classification run.
func IncClassifyFailed() { classifyFailedTotal.Add(1) }

// IncAnalyze counts an analysis run.
func IncAnalyze() { analyzeTotal.Add(1) }

// IncAnalyzeFailed counts a failed analysis run.
func IncAnalyzeFailed() { analyzeFailedTotal.Add(1) }

// IncAnalyzeDegraded counts an analysis answered by fallback extraction.
func IncAnalyzeDegraded() { analyzeDegradedTotal.Add(1) }

// IncCleanupFailed counts a staged key that could not be deleted.
func IncCleanupFailed() { cleanupFailedTotal.Add(1) }

// ObservePipelineDurationMs records a pipeline duration in milliseconds.
func ObservePipelineDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	pipelineDuration.Observe(value)
}

// CleanupFailedCount returns the staged cleanup failure counter.
func CleanupFailedCount() uint64 { return cleanupFailedTotal.Load() }

// AnalyzeDegradedCount returns the degraded analysis counter.
func AnalyzeDegradedCount() uint64 { return analyzeDegradedTotal.Load() }

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "contract_classify_total", "Total contract type detections", classifyTotal.Load())
	writeCounter(&buf, "contract_classify_failed_total", "Total failed contract type detections", classifyFailedTotal.Load())
	writeCounter(&buf, "contract_analyze_total", "Total contract analyses", analyzeTotal.Load())
	writeCounter(&buf, "contract_analyze_failed_total", "Total failed contract analyses", analyzeFailedTotal.Load())
	writeCounter(&buf, "contract_analyze_degraded_total", "Total analyses built by fallback extraction", analyzeDegradedTotal.Load())
	writeCounter(&buf, "staging_cleanup_failed_total", "Total staged files that could not be deleted", cleanupFailedTotal.Load())
	writeHistogram(&buf, "contract_pipeline_duration_ms", "Pipeline duration in milliseconds", pipelineDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe assigns value to the first bucket whose bound it fits; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
