// Package judge renders boolean generation-quality verdicts by delegating to
// a judging oracle through fixed, criterion-specific prompts. Each of the
// three criteria (correctness, completeness, faithfulness) is assessed by an
// independent oracle call so the criteria cannot contaminate each other's
// context.
package judge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"

	"github.com/ahrav/ragmark/internal/domain"
	"github.com/ahrav/ragmark/internal/ports"
)

// Generation metric identifiers, re-exported from domain for callers that
// only import the judge.
const (
	MetricCorrectness  = domain.MetricCorrectness
	MetricCompleteness = domain.MetricCompleteness
	MetricFaithfulness = domain.MetricFaithfulness
)

// Default oracle invocation parameters.
const (
	// DefaultMaxAttempts bounds how many times a failing oracle call is tried.
	DefaultMaxAttempts = 3
	// DefaultRetryBackoff is the fixed pause between attempts.
	DefaultRetryBackoff = 1 * time.Second
	// DefaultTemperature keeps judgments near-deterministic.
	DefaultTemperature = 0.001
	// DefaultMaxTokens leaves room for the oracle's reasoning plus the tag.
	DefaultMaxTokens = 512
)

var validate = validator.New()

// foldCaser lower-folds oracle output before token matching so verdict
// extraction is case-insensitive across scripts.
var foldCaser = cases.Fold()

// Config defines the judge's oracle invocation parameters.
type Config struct {
	// Temperature for oracle sampling. Kept near zero so repeated runs
	// produce stable verdicts.
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"min=0,max=1"`

	// MaxTokens caps the oracle response length.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens" validate:"required,min=16,max=4096"`

	// MaxAttempts bounds transport retries per judgment call.
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" validate:"required,min=1,max=10"`

	// RetryBackoff is the fixed interval between attempts.
	RetryBackoff time.Duration `yaml:"retry_backoff" json:"retry_backoff" validate:"min=0"`
}

// DefaultConfig returns the judge configuration used unless overridden.
func DefaultConfig() Config {
	return Config{
		Temperature:  DefaultTemperature,
		MaxTokens:    DefaultMaxTokens,
		MaxAttempts:  DefaultMaxAttempts,
		RetryBackoff: DefaultRetryBackoff,
	}
}

// Judge issues yes/no generation-quality judgments through an injected
// oracle. It is stateless apart from its configuration and safe for
// concurrent use; callers typically fan (sample × metric) tasks across a
// bounded worker pool.
type Judge struct {
	config    Config
	client    ports.LLMClient
	templates map[string]*template.Template
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewJudge creates a Judge delegating to the given oracle client.
func NewJudge(client ports.LLMClient, config Config, logger *slog.Logger) (*Judge, error) {
	if client == nil {
		return nil, fmt.Errorf("oracle client cannot be nil")
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("judge configuration invalid: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := parsePromptTemplates()
	if err != nil {
		return nil, err
	}

	return &Judge{
		config:    config,
		client:    client,
		templates: templates,
		logger:    logger,
		tracer:    otel.Tracer("generation-judge"),
	}, nil
}

// Model returns the oracle model identifier this judge delegates to.
func (j *Judge) Model() string { return j.client.GetModel() }

// Evaluate renders the boolean verdict for one metric on one sample.
//
// A non-nil error reports that the oracle transport failed on every attempt;
// the returned verdict is then false. Callers must treat such errors as
// degradations to record, never as reasons to abort sibling judgments.
func (j *Judge) Evaluate(ctx context.Context, metric string, sample *domain.Sample) (bool, error) {
	tmpl, ok := j.templates[metric]
	if !ok {
		return false, fmt.Errorf("unknown generation metric %q", metric)
	}

	ctx, span := j.tracer.Start(ctx, "Judge.Evaluate",
		trace.WithAttributes(
			attribute.String("judge.metric", metric),
			attribute.String("judge.sample_id", sample.ID),
			attribute.String("judge.model", j.client.GetModel()),
		),
	)
	defer span.End()

	prompt, err := renderPrompt(tmpl, sample.Query, sample.Answer, sample.GoldenAnswer)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	response, err := j.invokeWithRetry(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		j.logger.Warn("judgment degraded to negative verdict after transport failure",
			"metric", metric, "sample_id", sample.ID, "error", err)
		return false, fmt.Errorf("judging %s for sample %s: %w", metric, sample.ID, err)
	}

	verdict := parseVerdict(response, metric)
	span.SetAttributes(attribute.Bool("judge.verdict", verdict))
	return verdict, nil
}

// invokeWithRetry calls the oracle up to MaxAttempts times with a fixed
// backoff between attempts. Only transport failures are retried; a response
// that merely ignores formatting instructions is handled by the parser.
func (j *Judge) invokeWithRetry(ctx context.Context, prompt string) (string, error) {
	options := map[string]any{
		"temperature": j.config.Temperature,
		"max_tokens":  j.config.MaxTokens,
	}

	var lastErr error
	for attempt := 1; attempt <= j.config.MaxAttempts; attempt++ {
		response, err := j.client.Complete(ctx, prompt, options)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if attempt == j.config.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(j.config.RetryBackoff):
		}
	}

	return "", fmt.Errorf("oracle call failed after %d attempts: %w", j.config.MaxAttempts, lastErr)
}

// parseVerdict extracts the boolean verdict from a raw oracle response.
//
// The first <result>...</result> payload decides, case-insensitively: the
// verdict is positive iff the payload contains the affirmative token. When no
// tag is present the raw response is scanned for the metric's affirmative
// keyword synonyms, defending against oracles that ignore formatting
// instructions. Anything else is negative.
func parseVerdict(response, metric string) bool {
	folded := foldCaser.String(response)

	if payload, ok := extractResultPayload(folded); ok {
		return strings.Contains(payload, affirmative)
	}

	for _, keyword := range fallbackKeywords[metric] {
		if strings.Contains(folded, foldCaser.String(keyword)) {
			return true
		}
	}
	return false
}

// extractResultPayload returns the content of the first result tag pair in
// the already case-folded response.
func extractResultPayload(folded string) (string, bool) {
	start := strings.Index(folded, resultOpenTag)
	if start == -1 {
		return "", false
	}
	start += len(resultOpenTag)

	end := strings.Index(folded[start:], resultCloseTag)
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(folded[start : start+end]), true
}
