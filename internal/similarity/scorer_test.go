package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScorer(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantError bool
	}{
		{
			name:   "default configuration",
			config: DefaultConfig(),
		},
		{
			name:   "levenshtein algorithm",
			config: Config{Algorithm: AlgorithmLevenshtein},
		},
		{
			name:      "missing algorithm",
			config:    Config{},
			wantError: true,
		},
		{
			name:      "unknown algorithm",
			config:    Config{Algorithm: "jaccard"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer, err := NewScorer(tt.config)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, scorer)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, scorer)
			}
		})
	}
}

func TestScorer_Score(t *testing.T) {
	scorer := MustNewScorer(DefaultConfig())

	tests := []struct {
		name      string
		golden    string
		candidate string
		expected  float64
	}{
		{
			name:      "empty golden",
			golden:    "",
			candidate: "anything",
			expected:  0.0,
		},
		{
			name:      "empty candidate",
			golden:    "anything",
			candidate: "",
			expected:  0.0,
		},
		{
			name:      "both empty",
			golden:    "",
			candidate: "",
			expected:  0.0,
		},
		{
			name:      "identical strings",
			golden:    "the registered capital is 150 million",
			candidate: "the registered capital is 150 million",
			expected:  1.0,
		},
		{
			name:      "identical after stripping",
			golden:    "  hello world  ",
			candidate: "hello world",
			expected:  1.0,
		},
		{
			name:      "golden contained in candidate",
			golden:    "150 million",
			candidate: "the registered capital is 150 million yuan",
			expected:  1.0,
		},
		{
			name:      "cjk golden contained in candidate",
			golden:    "注册资本15000万元",
			candidate: "公司注册资本15000万元人民币",
			expected:  1.0,
		},
		{
			name:      "no overlap",
			golden:    "alpha beta",
			candidate: "gamma delta",
			expected:  0.0,
		},
		{
			name:      "whitespace only candidate",
			golden:    "text",
			candidate: "   ",
			expected:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, scorer.Score(tt.golden, tt.candidate), 1e-9)
		})
	}
}

func TestScorer_Score_PartialOverlap(t *testing.T) {
	scorer := MustNewScorer(DefaultConfig())

	// Golden tokens: [the capital is 150]; candidate covers 3 of 4 in order.
	score := scorer.Score("the capital is 150", "the capital was 150")
	assert.InDelta(t, 0.75, score, 1e-9)

	// CJK partial: golden 注册资本 (4 char tokens), candidate shares 3.
	score = scorer.Score("注册资本", "注册资金")
	assert.InDelta(t, 0.75, score, 1e-9)
}

func TestScorer_Score_Bounded(t *testing.T) {
	scorer := MustNewScorer(DefaultConfig())

	inputs := []struct{ golden, candidate string }{
		{"a", "b"},
		{"one two three", "three two one"},
		{"注册资本为15000万元", "资本15000"},
		{"mixed 中文 and English 123.45", "English 123.45 text 中"},
		{"!!!", "???"},
	}

	for _, in := range inputs {
		score := scorer.Score(in.golden, in.candidate)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

// LCS recall is directional: the golden side is the reference. Symmetry must
// not be assumed for partial matches.
func TestScorer_Score_Asymmetric(t *testing.T) {
	scorer := MustNewScorer(DefaultConfig())

	golden := "capital"
	candidate := "the registered capital of the company"

	// Containment fires one way only.
	assert.InDelta(t, 1.0, scorer.Score(golden, candidate), 1e-9)
	assert.Less(t, scorer.Score(candidate, golden), 1.0)
}

func TestScorer_Score_CaseFold(t *testing.T) {
	folded := MustNewScorer(Config{Algorithm: AlgorithmRougeL, CaseFold: true})
	strict := MustNewScorer(DefaultConfig())

	assert.InDelta(t, 1.0, folded.Score("Hello World", "hello world"), 1e-9)
	assert.Less(t, strict.Score("Hello World", "hello world"), 1.0)
}

func TestScorer_Score_Levenshtein(t *testing.T) {
	scorer := MustNewScorer(Config{Algorithm: AlgorithmLevenshtein})

	// Equality and containment rules still short-circuit.
	assert.InDelta(t, 1.0, scorer.Score("abc", "abc"), 1e-9)
	assert.InDelta(t, 1.0, scorer.Score("abc", "xxabcxx"), 1e-9)

	// One edit across five runes.
	assert.InDelta(t, 0.8, scorer.Score("abcde", "abcdx"), 1e-9)

	assert.InDelta(t, 0.0, scorer.Score("", "abc"), 1e-9)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "english words",
			input:    "hello world",
			expected: []string{"hello", "world"},
		},
		{
			name:     "cjk characters split individually",
			input:    "注册资本",
			expected: []string{"注", "册", "资", "本"},
		},
		{
			name:     "mixed scripts",
			input:    "注册资本15000万元",
			expected: []string{"注", "册", "资", "本", "15000", "万", "元"},
		},
		{
			name:     "decimal number kept whole",
			input:    "rate 3.14 percent",
			expected: []string{"rate", "3.14", "percent"},
		},
		{
			name:     "trailing dot is punctuation",
			input:    "42.",
			expected: []string{"42", "."},
		},
		{
			name:     "punctuation standalone",
			input:    "a,b!c",
			expected: []string{"a", ",", "b", "!", "c"},
		},
		{
			name:     "whitespace collapsed",
			input:    "  a \t b\n c ",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}
