package domain

import "fmt"

// SampleDetail is the per-sample record of an evaluation report. It carries
// the full aligned sample, its retrieval scores flattened per cutoff, the
// automated generation verdict, and the optional human review block.
type SampleDetail struct {
	ID                 string        `json:"id"`
	Query              string        `json:"query"`
	Answer             string        `json:"answer"`
	GoldenAnswer       string        `json:"golden_answer"`
	RetrievedDocuments []DocumentRef `json:"retrieved_documents"`
	RelatedDocuments   []DocumentRef `json:"related_documents"`

	// RetrievalMetrics maps flattened metric names such as "page_recall_at_5"
	// to the sample's score at that cutoff.
	RetrievalMetrics map[string]float64 `json:"retrieval_metrics"`

	// GenerationMetrics is the automated judge's verdict. It is never mutated
	// after judging; human corrections go into ManualJudgment.
	GenerationMetrics GenerationVerdict `json:"generation_metrics"`

	// ManualJudgment is appended by the downstream review tool. Absence means
	// the sample is unreviewed; the engine never requires it.
	ManualJudgment *ManualJudgment `json:"manual_judgment,omitempty"`
}

// EvaluationReport is the immutable result of grading one RAG run against one
// benchmark. Re-runs produce a new report rather than patching an old one.
type EvaluationReport struct {
	SampleCount int `json:"sample_count"`

	// DroppedSamples counts questions or answers discarded during alignment
	// because their counterpart was missing.
	DroppedSamples int `json:"dropped_samples,omitempty"`

	// RetrievalMetrics maps flattened metric names to corpus-level means.
	RetrievalMetrics map[string]float64 `json:"retrieval_metrics"`

	// GenerationMetrics holds corpus-level means of the judge verdicts.
	GenerationMetrics GenerationMetrics `json:"generation_metrics"`

	// DetailedResults preserves the original question order regardless of
	// worker completion order. Downstream consumers depend on this ordering.
	DetailedResults []SampleDetail `json:"detailed_results,omitempty"`
}

// Flattened retrieval metric name constructors. These define the report's
// wire names for each cutoff.
func PageRecallKey(k int) string    { return fmt.Sprintf("page_recall_at_%d", k) }
func PageMRRKey(k int) string       { return fmt.Sprintf("page_mrr_at_%d", k) }
func ContentRecallKey(k int) string { return fmt.Sprintf("content_recall_at_%d", k) }
func ContentMRRKey(k int) string    { return fmt.Sprintf("content_mrr_at_%d", k) }

// FlattenRetrievalMetrics converts per-K aggregates to the report's flat
// key form.
func FlattenRetrievalMetrics(m RetrievalMetrics) map[string]float64 {
	flat := make(map[string]float64, 4*len(m.PageRecall))
	for k, v := range m.PageRecall {
		flat[PageRecallKey(k)] = v
	}
	for k, v := range m.PageMRR {
		flat[PageMRRKey(k)] = v
	}
	for k, v := range m.ContentRecall {
		flat[ContentRecallKey(k)] = v
	}
	for k, v := range m.ContentMRR {
		flat[ContentMRRKey(k)] = v
	}
	return flat
}
