package evaluator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ahrav/ragmark/internal/domain"
)

// SaveReport writes the report as indented JSON, creating parent directories
// as needed. Multilingual content is written verbatim rather than escaped.
func SaveReport(report *domain.EvaluationReport, path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return domain.NewPersistenceError(path, err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.NewPersistenceError(path, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return domain.NewPersistenceError(path, err)
	}
	return nil
}

// PrintSummary writes a human-readable digest of the corpus-level metrics.
// Retrieval metrics are grouped per metric family and ordered by cutoff.
func PrintSummary(w io.Writer, report *domain.EvaluationReport) {
	fmt.Fprintln(w, "Evaluation summary")
	fmt.Fprintf(w, "  samples evaluated: %d\n", report.SampleCount)
	if report.DroppedSamples > 0 {
		fmt.Fprintf(w, "  samples dropped:   %d\n", report.DroppedSamples)
	}

	fmt.Fprintln(w, "  retrieval:")
	for _, key := range sortedMetricKeys(report.RetrievalMetrics) {
		fmt.Fprintf(w, "    %-22s %.4f\n", key, report.RetrievalMetrics[key])
	}

	fmt.Fprintln(w, "  generation:")
	fmt.Fprintf(w, "    %-22s %.4f\n", domain.MetricCorrectness, report.GenerationMetrics.Correctness)
	fmt.Fprintf(w, "    %-22s %.4f\n", domain.MetricCompleteness, report.GenerationMetrics.Completeness)
	fmt.Fprintf(w, "    %-22s %.4f\n", domain.MetricFaithfulness, report.GenerationMetrics.Faithfulness)
}

// sortedMetricKeys orders flattened retrieval metric names by family first,
// then numerically by cutoff, so recall_at_10 follows recall_at_5.
func sortedMetricKeys(metrics map[string]float64) []string {
	keys := make([]string, 0, len(metrics))
	for key := range metrics {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		fi, ki := splitMetricKey(keys[i])
		fj, kj := splitMetricKey(keys[j])
		if fi != fj {
			return fi < fj
		}
		return ki < kj
	})
	return keys
}

func splitMetricKey(key string) (family string, k int) {
	idx := strings.LastIndex(key, "_at_")
	if idx == -1 {
		return key, 0
	}
	k, _ = strconv.Atoi(key[idx+len("_at_"):])
	return key[:idx], k
}
