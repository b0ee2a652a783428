package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/ragmark/internal/domain"
	"github.com/ahrav/ragmark/internal/similarity"
)

func newTestCalculator(t *testing.T, config Config) *Calculator {
	t.Helper()
	calc, err := NewCalculator(config, similarity.MustNewScorer(similarity.DefaultConfig()))
	require.NoError(t, err)
	return calc
}

func TestNewCalculator(t *testing.T) {
	scorer := similarity.MustNewScorer(similarity.DefaultConfig())

	tests := []struct {
		name      string
		config    Config
		scorer    *similarity.Scorer
		wantError bool
	}{
		{
			name:   "default configuration",
			config: DefaultConfig(),
			scorer: scorer,
		},
		{
			name:      "nil scorer",
			config:    DefaultConfig(),
			scorer:    nil,
			wantError: true,
		},
		{
			name:      "empty k values",
			config:    Config{KValues: nil, ContentThreshold: 0.7},
			scorer:    scorer,
			wantError: true,
		},
		{
			name:      "non positive k",
			config:    Config{KValues: []int{0}, ContentThreshold: 0.7},
			scorer:    scorer,
			wantError: true,
		},
		{
			name:      "threshold above one",
			config:    Config{KValues: []int{1}, ContentThreshold: 1.5},
			scorer:    scorer,
			wantError: true,
		},
		{
			name:      "zero threshold",
			config:    Config{KValues: []int{1}, ContentThreshold: 0},
			scorer:    scorer,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := NewCalculator(tt.config, tt.scorer)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, calc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, calc)
			}
		})
	}
}

func TestRecallAtK(t *testing.T) {
	tests := []struct {
		name      string
		retrieved []string
		relevant  []string
		k         int
		expected  float64
	}{
		{
			name:      "relevant item inside cutoff",
			retrieved: []string{"a", "b", "c"},
			relevant:  []string{"b"},
			k:         2,
			expected:  1.0,
		},
		{
			name:      "relevant item outside cutoff",
			retrieved: []string{"a", "b", "c"},
			relevant:  []string{"b"},
			k:         1,
			expected:  0.0,
		},
		{
			name:      "partial coverage",
			retrieved: []string{"a", "b", "c", "d"},
			relevant:  []string{"a", "d", "z"},
			k:         4,
			expected:  2.0 / 3.0,
		},
		{
			name:      "empty relevant set scores zero",
			retrieved: []string{"a", "b"},
			relevant:  nil,
			k:         5,
			expected:  0.0,
		},
		{
			name:      "duplicate retrievals count once",
			retrieved: []string{"a", "a", "a"},
			relevant:  []string{"a", "b"},
			k:         3,
			expected:  0.5,
		},
		{
			name:      "k larger than list",
			retrieved: []string{"a"},
			relevant:  []string{"a"},
			k:         100,
			expected:  1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, RecallAtK(tt.retrieved, tt.relevant, tt.k), 1e-9)
		})
	}
}

func TestRecallAtK_MonotonicInCutoff(t *testing.T) {
	retrieved := []string{"p1", "p2", "p3", "p4", "p5"}
	relevant := []string{"p2", "p5"}

	prev := 0.0
	for _, k := range []int{1, 2, 3, 4, 5} {
		recall := RecallAtK(retrieved, relevant, k)
		assert.GreaterOrEqual(t, recall, prev, "recall@%d regressed", k)
		prev = recall
	}
}

func TestMRRAtK(t *testing.T) {
	tests := []struct {
		name      string
		retrieved []string
		relevant  []string
		k         int
		expected  float64
	}{
		{
			name:      "first hit at rank three",
			retrieved: []string{"a", "b", "c"},
			relevant:  []string{"c"},
			k:         3,
			expected:  1.0 / 3.0,
		},
		{
			name:      "no hit",
			retrieved: []string{"a", "b", "c"},
			relevant:  []string{"z"},
			k:         3,
			expected:  0.0,
		},
		{
			name:      "hit beyond cutoff",
			retrieved: []string{"a", "b", "c"},
			relevant:  []string{"c"},
			k:         2,
			expected:  0.0,
		},
		{
			name:      "first of several hits wins",
			retrieved: []string{"x", "a", "b"},
			relevant:  []string{"a", "b"},
			k:         3,
			expected:  0.5,
		},
		{
			name:      "empty relevant set scores zero",
			retrieved: []string{"a"},
			relevant:  nil,
			k:         1,
			expected:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, MRRAtK(tt.retrieved, tt.relevant, tt.k), 1e-9)
		})
	}
}

func TestCalculator_ContentRecallAtK(t *testing.T) {
	calc := newTestCalculator(t, Config{KValues: []int{3}, ContentThreshold: 0.7})

	tests := []struct {
		name      string
		retrieved []string
		relevant  []string
		k         int
		expected  float64
	}{
		{
			name:      "containment match",
			retrieved: []string{"the registered capital is 150 million yuan in total"},
			relevant:  []string{"capital is 150 million"},
			k:         1,
			expected:  1.0,
		},
		{
			name:      "no match below threshold",
			retrieved: []string{"unrelated passage about weather"},
			relevant:  []string{"registered capital figures"},
			k:         1,
			expected:  0.0,
		},
		{
			name:      "relevant item matched once despite multiple hits",
			retrieved: []string{"capital is 150 million", "capital is 150 million again"},
			relevant:  []string{"capital is 150 million"},
			k:         2,
			expected:  1.0,
		},
		{
			name:      "match outside cutoff ignored",
			retrieved: []string{"noise one", "noise two", "capital is 150 million"},
			relevant:  []string{"capital is 150 million"},
			k:         2,
			expected:  0.0,
		},
		{
			name:      "empty relevant contents",
			retrieved: []string{"anything"},
			relevant:  nil,
			k:         1,
			expected:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.ContentRecallAtK(tt.retrieved, tt.relevant, tt.k)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestCalculator_ContentMRRAtK(t *testing.T) {
	calc := newTestCalculator(t, Config{KValues: []int{3}, ContentThreshold: 0.7})

	// First usable match sits at rank 2.
	got := calc.ContentMRRAtK(
		[]string{"totally unrelated", "the capital is 150 million yuan"},
		[]string{"capital is 150 million"},
		3,
	)
	assert.InDelta(t, 0.5, got, 1e-9)

	// Nothing matches.
	got = calc.ContentMRRAtK([]string{"x", "y"}, []string{"capital figures"}, 2)
	assert.InDelta(t, 0.0, got, 1e-9)

	// Empty relevant set.
	got = calc.ContentMRRAtK([]string{"x"}, nil, 1)
	assert.InDelta(t, 0.0, got, 1e-9)
}

func TestCalculator_Score(t *testing.T) {
	calc := newTestCalculator(t, Config{KValues: []int{1, 2}, ContentThreshold: 0.7})

	sample := &domain.Sample{
		ID:    "q1",
		Query: "what is the registered capital",
		RetrievedDocuments: []domain.DocumentRef{
			{SourceFile: "report.pdf", PageNo: 9, Content: "irrelevant preface"},
			{SourceFile: "report.pdf", PageNo: 12, Content: "the registered capital is 150 million yuan"},
		},
		RelatedDocuments: []domain.DocumentRef{
			{SourceFile: "report.pdf", PageNo: 12, Content: "registered capital is 150 million"},
		},
	}

	perK := calc.Score(sample)
	require.Len(t, perK, 2)

	// At K=1 the relevant page sits at rank 2, out of reach.
	assert.InDelta(t, 0.0, perK[1].PageRecall, 1e-9)
	assert.InDelta(t, 0.0, perK[1].PageMRR, 1e-9)
	assert.InDelta(t, 0.0, perK[1].ContentRecall, 1e-9)
	assert.InDelta(t, 0.0, perK[1].ContentMRR, 1e-9)

	// At K=2 both exact and content matching find it at rank 2.
	assert.InDelta(t, 1.0, perK[2].PageRecall, 1e-9)
	assert.InDelta(t, 0.5, perK[2].PageMRR, 1e-9)
	assert.InDelta(t, 1.0, perK[2].ContentRecall, 1e-9)
	assert.InDelta(t, 0.5, perK[2].ContentMRR, 1e-9)
}

func TestCalculator_Score_NoRelevantDocuments(t *testing.T) {
	calc := newTestCalculator(t, DefaultConfig())

	sample := &domain.Sample{
		ID: "q2",
		RetrievedDocuments: []domain.DocumentRef{
			{SourceFile: "a.pdf", PageNo: 1, Content: "text"},
		},
	}

	for k, m := range calc.Score(sample) {
		assert.Zerof(t, m.PageRecall, "page recall at %d", k)
		assert.Zerof(t, m.PageMRR, "page mrr at %d", k)
		assert.Zerof(t, m.ContentRecall, "content recall at %d", k)
		assert.Zerof(t, m.ContentMRR, "content mrr at %d", k)
	}
}

func TestDocumentRefPageKey(t *testing.T) {
	doc := domain.DocumentRef{SourceFile: "prospectus.pdf", PageNo: 37}
	assert.Equal(t, "prospectus.pdf_page_37", doc.PageKey())
}
