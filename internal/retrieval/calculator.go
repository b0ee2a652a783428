// Package retrieval computes ranked-retrieval quality metrics for one RAG run
// against a golden benchmark: Recall@K and MRR@K at each configured cutoff,
// under both exact page identity and approximate content matching.
package retrieval

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/ragmark/internal/domain"
	"github.com/ahrav/ragmark/internal/similarity"
)

// DefaultKValues are the cutoff depths evaluated when none are configured.
var DefaultKValues = []int{1, 3, 5, 10}

// DefaultContentThreshold is the similarity level at which two passages are
// considered content-equal.
const DefaultContentThreshold = 0.7

var validate = validator.New()

// Config defines the calculator's cutoffs and the content-equality threshold.
type Config struct {
	// KValues are the cutoff depths. Each K truncates the full ranked list
	// independently; cutoffs are not cumulative.
	KValues []int `yaml:"k_values" json:"k_values" validate:"required,min=1,dive,min=1"`

	// ContentThreshold is the minimum similarity score for two passage
	// contents to count as a match.
	ContentThreshold float64 `yaml:"content_similarity_threshold" json:"content_similarity_threshold" validate:"gt=0,lte=1"`
}

// DefaultConfig returns the calculator configuration matching the benchmark's
// published defaults.
func DefaultConfig() Config {
	return Config{
		KValues:          append([]int(nil), DefaultKValues...),
		ContentThreshold: DefaultContentThreshold,
	}
}

// Calculator scores the retrieval side of evaluation samples. All computation
// is pure and non-blocking; the calculator is safe for concurrent use.
type Calculator struct {
	config Config
	scorer *similarity.Scorer
}

// NewCalculator creates a Calculator using the given similarity scorer for
// content matching.
func NewCalculator(config Config, scorer *similarity.Scorer) (*Calculator, error) {
	if scorer == nil {
		return nil, fmt.Errorf("similarity scorer cannot be nil")
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("retrieval configuration invalid: %w", err)
	}
	return &Calculator{config: config, scorer: scorer}, nil
}

// KValues returns the configured cutoff depths.
func (c *Calculator) KValues() []int { return c.config.KValues }

// Score computes the sample's four metrics at every configured cutoff.
//
// A sample with no ground-truth relevant documents scores 0.0 across the
// board rather than NaN, and still counts toward corpus means: absence of
// ground truth is scored as a total miss. Callers wanting skip semantics must
// filter samples before aggregation.
func (c *Calculator) Score(sample *domain.Sample) map[int]domain.SampleRetrievalMetrics {
	retrievedKeys := sample.RetrievedPageKeys()
	relatedKeys := sample.RelatedPageKeys()

	retrievedContents := make([]string, len(sample.RetrievedDocuments))
	for i, doc := range sample.RetrievedDocuments {
		retrievedContents[i] = doc.Content
	}
	relatedContents := make([]string, len(sample.RelatedDocuments))
	for i, doc := range sample.RelatedDocuments {
		relatedContents[i] = doc.Content
	}

	perK := make(map[int]domain.SampleRetrievalMetrics, len(c.config.KValues))
	for _, k := range c.config.KValues {
		perK[k] = domain.SampleRetrievalMetrics{
			PageRecall:    RecallAtK(retrievedKeys, relatedKeys, k),
			PageMRR:       MRRAtK(retrievedKeys, relatedKeys, k),
			ContentRecall: c.ContentRecallAtK(retrievedContents, relatedContents, k),
			ContentMRR:    c.ContentMRRAtK(retrievedContents, relatedContents, k),
		}
	}
	return perK
}

// RecallAtK computes exact-match Recall@K: the fraction of relevant items
// present among the first K retrieved items. An empty relevant set scores 0.
func RecallAtK(retrieved, relevant []string, k int) float64 {
	if len(relevant) == 0 {
		return 0.0
	}

	topK := truncate(retrieved, k)
	seen := make(map[string]struct{}, len(topK))
	for _, item := range topK {
		seen[item] = struct{}{}
	}

	relevantSet := make(map[string]struct{}, len(relevant))
	for _, item := range relevant {
		relevantSet[item] = struct{}{}
	}

	hits := 0
	for item := range relevantSet {
		if _, ok := seen[item]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(relevantSet))
}

// MRRAtK computes exact-match MRR@K: the reciprocal of the 1-indexed rank of
// the first retrieved item found in the relevant set, scanning only the first
// K positions. Returns 0 when no relevant item appears.
func MRRAtK(retrieved, relevant []string, k int) float64 {
	if len(relevant) == 0 {
		return 0.0
	}

	relevantSet := make(map[string]struct{}, len(relevant))
	for _, item := range relevant {
		relevantSet[item] = struct{}{}
	}

	for i, item := range truncate(retrieved, k) {
		if _, ok := relevantSet[item]; ok {
			return 1.0 / float64(i+1)
		}
	}
	return 0.0
}

// ContentRecallAtK computes similarity-based Recall@K. A relevant passage
// counts as matched when any of the first K retrieved contents reaches the
// configured threshold against it; each relevant passage contributes at most
// once, even if several retrieved passages match it.
func (c *Calculator) ContentRecallAtK(retrievedContents, relevantContents []string, k int) float64 {
	if len(relevantContents) == 0 {
		return 0.0
	}

	topK := truncate(retrievedContents, k)
	matched := 0
	for _, relevant := range relevantContents {
		for _, retrieved := range topK {
			if c.scorer.Score(relevant, retrieved) >= c.config.ContentThreshold {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(relevantContents))
}

// ContentMRRAtK computes similarity-based MRR@K. It scans retrieved contents
// in rank order and returns the reciprocal rank of the first one matching any
// relevant content at the threshold. Unlike recall this is keyed on retrieved
// positions, measuring how early a usable match first appears.
func (c *Calculator) ContentMRRAtK(retrievedContents, relevantContents []string, k int) float64 {
	if len(relevantContents) == 0 {
		return 0.0
	}

	for i, retrieved := range truncate(retrievedContents, k) {
		for _, relevant := range relevantContents {
			if c.scorer.Score(relevant, retrieved) >= c.config.ContentThreshold {
				return 1.0 / float64(i+1)
			}
		}
	}
	return 0.0
}

// truncate returns the first k elements, fresh per call so cutoffs stay
// independent.
func truncate(items []string, k int) []string {
	if k < len(items) {
		return items[:k]
	}
	return items
}
