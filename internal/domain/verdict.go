package domain

// GenerationVerdict holds the three independent boolean judgments the
// automated judge renders for one sample. Each criterion is assessed by its
// own oracle call so the criteria cannot leak into each other's context.
type GenerationVerdict struct {
	// Correctness is true when the produced answer factually agrees with the
	// golden answer, paraphrase allowed.
	Correctness bool `json:"correctness"`

	// Completeness is true when no key information point of the golden answer
	// is omitted. Extra information is tolerated.
	Completeness bool `json:"completeness"`

	// Faithfulness is true when the answer contains no hallucinated facts.
	// Declining to answer counts as faithful.
	Faithfulness bool `json:"faithfulness"`
}

// Set assigns the verdict for the named metric. Unknown metrics are ignored;
// callers validate metric names at the boundary.
func (v *GenerationVerdict) Set(metric string, value bool) {
	switch metric {
	case MetricCorrectness:
		v.Correctness = value
	case MetricCompleteness:
		v.Completeness = value
	case MetricFaithfulness:
		v.Faithfulness = value
	}
}

// Generation metric names. These are the judge task identifiers and the JSON
// field names in the report.
const (
	MetricCorrectness  = "correctness"
	MetricCompleteness = "completeness"
	MetricFaithfulness = "faithfulness"
)

// GenerationMetricNames lists the judge criteria in report order.
var GenerationMetricNames = []string{
	MetricCorrectness,
	MetricCompleteness,
	MetricFaithfulness,
}

// ManualJudgment records a human reviewer's correction of an automated
// verdict. It lives beside the automated GenerationVerdict rather than
// replacing it, so both remain recoverable for agreement analysis.
//
// All fields are nil until a reviewer fills them in; a nil or absent block
// means the sample is unreviewed. The evaluation engine only carries this
// structure through; it is written by the downstream review tool.
type ManualJudgment struct {
	Correctness  *bool `json:"correctness"`
	Completeness *bool `json:"completeness"`
	Faithfulness *bool `json:"faithfulness"`

	// JudgeTime is an RFC 3339 timestamp marking when the reviewer recorded
	// the judgment.
	JudgeTime *string `json:"judge_time"`

	// Notes holds the reviewer's free-text remarks.
	Notes *string `json:"notes"`
}

// Reviewed reports whether a human has recorded at least one field.
func (m *ManualJudgment) Reviewed() bool {
	if m == nil {
		return false
	}
	return m.Correctness != nil || m.Completeness != nil || m.Faithfulness != nil
}
