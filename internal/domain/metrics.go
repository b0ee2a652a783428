package domain

// SampleRetrievalMetrics holds the four retrieval scores of a single sample at
// a single cutoff K.
type SampleRetrievalMetrics struct {
	// PageRecall is exact-match Recall@K over page keys.
	PageRecall float64 `json:"page_recall"`

	// PageMRR is exact-match MRR@K over page keys.
	PageMRR float64 `json:"page_mrr"`

	// ContentRecall is similarity-based Recall@K over passage contents.
	ContentRecall float64 `json:"content_recall"`

	// ContentMRR is similarity-based MRR@K over passage contents.
	ContentMRR float64 `json:"content_mrr"`
}

// RetrievalMetrics aggregates retrieval scores across a corpus, keyed by
// cutoff K. Each value is the arithmetic mean over all samples of that
// sample's per-K score. K values are independent cutoffs, not cumulative.
type RetrievalMetrics struct {
	PageRecall    map[int]float64
	PageMRR       map[int]float64
	ContentRecall map[int]float64
	ContentMRR    map[int]float64
}

// NewRetrievalMetrics returns a RetrievalMetrics with every configured cutoff
// initialized to zero, so absent data reads as 0.0 rather than a missing key.
func NewRetrievalMetrics(kValues []int) RetrievalMetrics {
	m := RetrievalMetrics{
		PageRecall:    make(map[int]float64, len(kValues)),
		PageMRR:       make(map[int]float64, len(kValues)),
		ContentRecall: make(map[int]float64, len(kValues)),
		ContentMRR:    make(map[int]float64, len(kValues)),
	}
	for _, k := range kValues {
		m.PageRecall[k] = 0.0
		m.PageMRR[k] = 0.0
		m.ContentRecall[k] = 0.0
		m.ContentMRR[k] = 0.0
	}
	return m
}

// GenerationMetrics holds corpus-level means of the three boolean judge
// verdicts, each in [0,1].
type GenerationMetrics struct {
	Correctness  float64 `json:"correctness"`
	Completeness float64 `json:"completeness"`
	Faithfulness float64 `json:"faithfulness"`
}
