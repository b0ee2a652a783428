// Package evaluator orchestrates a full evaluation run: loading the benchmark
// and produced answers, aligning them into samples, scoring retrieval and
// generation quality, and assembling the final report.
package evaluator

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/ragmark/internal/domain"
	"github.com/ahrav/ragmark/internal/judge"
	"github.com/ahrav/ragmark/internal/ports"
	"github.com/ahrav/ragmark/internal/retrieval"
	"github.com/ahrav/ragmark/internal/similarity"
)

// Evaluator runs the evaluation pipeline end to end. It is safe for a single
// Run at a time; construct one per run.
type Evaluator struct {
	config     Config
	calculator *retrieval.Calculator
	judge      *judge.Judge
	logger     *slog.Logger
	metrics    ports.MetricsCollector
	tracer     trace.Tracer
}

// Option customizes an Evaluator beyond its required collaborators.
type Option func(*Evaluator)

// WithMetricsCollector attaches a metrics sink for stage timings and
// degraded-judgment counts.
func WithMetricsCollector(collector ports.MetricsCollector) Option {
	return func(e *Evaluator) { e.metrics = collector }
}

// New builds an Evaluator from the composed configuration. The oracle client
// may be nil only when config.OnlyRetrieval is set.
func New(config Config, oracle ports.LLMClient, logger *slog.Logger, opts ...Option) (*Evaluator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	scorer, err := similarity.NewScorer(config.Similarity)
	if err != nil {
		return nil, err
	}
	calculator, err := retrieval.NewCalculator(config.Retrieval, scorer)
	if err != nil {
		return nil, err
	}

	e := &Evaluator{
		config:     config,
		calculator: calculator,
		logger:     logger,
		tracer:     otel.Tracer("evaluation-run"),
	}

	if !config.OnlyRetrieval {
		if oracle == nil {
			return nil, domain.NewStructuralError("oracle", domain.ErrInvalidConfiguration)
		}
		j, err := judge.NewJudge(oracle, config.Judge, logger)
		if err != nil {
			return nil, err
		}
		e.judge = j
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run loads the question and answer files, aligns them, scores every sample,
// and returns the aggregated report. Oracle transport failures degrade the
// affected verdict to negative; they never abort the run or shrink the
// report. Structural problems with the input files do abort.
func (e *Evaluator) Run(ctx context.Context, questionsPath, answersPath string) (*domain.EvaluationReport, error) {
	questions, err := LoadQuestions(questionsPath)
	if err != nil {
		return nil, err
	}
	answers, err := LoadAnswers(answersPath)
	if err != nil {
		return nil, err
	}

	samples, dropped := AlignSamples(questions, answers, e.logger)
	if dropped > 0 {
		e.logger.Warn("dropped samples during alignment", "count", dropped)
	}
	if len(samples) == 0 {
		return nil, domain.NewStructuralError(answersPath, domain.ErrNoAlignedSamples)
	}

	ctx, span := e.tracer.Start(ctx, "Evaluator.Run",
		trace.WithAttributes(
			attribute.Int("eval.samples", len(samples)),
			attribute.Int("eval.dropped", dropped),
			attribute.Bool("eval.only_retrieval", e.config.OnlyRetrieval),
		),
	)
	defer span.End()

	e.logger.Info("starting evaluation",
		"samples", len(samples),
		"k_values", e.calculator.KValues(),
		"only_retrieval", e.config.OnlyRetrieval)

	perSample := e.scoreRetrieval(ctx, samples)

	verdicts := make([]domain.GenerationVerdict, len(samples))
	if e.judge != nil {
		if err := e.scoreGeneration(ctx, samples, verdicts); err != nil {
			return nil, err
		}
	}

	report := e.buildReport(samples, dropped, perSample, verdicts)
	return report, nil
}

// scoreRetrieval computes the per-sample retrieval metrics. Scoring is pure
// computation, so samples fan out without a concurrency cap.
func (e *Evaluator) scoreRetrieval(ctx context.Context, samples []*domain.Sample) []map[int]domain.SampleRetrievalMetrics {
	_, span := e.tracer.Start(ctx, "Evaluator.scoreRetrieval")
	defer span.End()

	start := time.Now()
	perSample := make([]map[int]domain.SampleRetrievalMetrics, len(samples))

	var g errgroup.Group
	for i, sample := range samples {
		g.Go(func() error {
			perSample[i] = e.calculator.Score(sample)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	e.recordLatency("retrieval_stage", time.Since(start))
	return perSample
}

// scoreGeneration fans every (sample, metric) judgment out over a worker pool
// capped at BatchSize. Each worker writes only its own verdict field, so no
// locking is needed. Worker failures are absorbed as negative verdicts; the
// only error returned is context cancellation.
func (e *Evaluator) scoreGeneration(ctx context.Context, samples []*domain.Sample, verdicts []domain.GenerationVerdict) error {
	ctx, span := e.tracer.Start(ctx, "Evaluator.scoreGeneration",
		trace.WithAttributes(attribute.Int("eval.batch_size", e.config.BatchSize)))
	defer span.End()

	start := time.Now()
	var degraded atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.BatchSize)

	for i, sample := range samples {
		for _, metric := range domain.GenerationMetricNames {
			g.Go(func() error {
				verdict, err := e.judge.Evaluate(gctx, metric, sample)
				if err != nil {
					degraded.Add(1)
					e.logger.Warn("judgment degraded to negative",
						"sample_id", sample.ID, "metric", metric, "error", err)
				}
				verdicts[i].Set(metric, verdict)
				return nil
			})
		}
	}
	g.Wait() //nolint:errcheck // workers never return errors

	e.recordLatency("generation_stage", time.Since(start))
	if n := degraded.Load(); n > 0 {
		e.logger.Warn("some judgments failed at the transport level", "count", n)
		if e.metrics != nil {
			e.metrics.RecordCounter("degraded_judgments", float64(n),
				map[string]string{"model": e.judge.Model()})
		}
	}
	return ctx.Err()
}

// buildReport aggregates per-sample scores into corpus means and assembles
// the detailed results in original question order.
func (e *Evaluator) buildReport(
	samples []*domain.Sample,
	dropped int,
	perSample []map[int]domain.SampleRetrievalMetrics,
	verdicts []domain.GenerationVerdict,
) *domain.EvaluationReport {
	n := len(samples)
	kValues := e.calculator.KValues()
	corpus := domain.NewRetrievalMetrics(kValues)

	details := make([]domain.SampleDetail, n)
	var correct, complete, faithful int

	for i, sample := range samples {
		for _, k := range kValues {
			m := perSample[i][k]
			corpus.PageRecall[k] += m.PageRecall / float64(n)
			corpus.PageMRR[k] += m.PageMRR / float64(n)
			corpus.ContentRecall[k] += m.ContentRecall / float64(n)
			corpus.ContentMRR[k] += m.ContentMRR / float64(n)
		}

		if verdicts[i].Correctness {
			correct++
		}
		if verdicts[i].Completeness {
			complete++
		}
		if verdicts[i].Faithfulness {
			faithful++
		}

		details[i] = domain.SampleDetail{
			ID:                 sample.ID,
			Query:              sample.Query,
			Answer:             sample.Answer,
			GoldenAnswer:       sample.GoldenAnswer,
			RetrievedDocuments: sample.RetrievedDocuments,
			RelatedDocuments:   sample.RelatedDocuments,
			RetrievalMetrics:   flattenSampleMetrics(perSample[i], kValues),
			GenerationMetrics:  verdicts[i],
		}
	}

	return &domain.EvaluationReport{
		SampleCount:      n,
		DroppedSamples:   dropped,
		RetrievalMetrics: domain.FlattenRetrievalMetrics(corpus),
		GenerationMetrics: domain.GenerationMetrics{
			Correctness:  float64(correct) / float64(n),
			Completeness: float64(complete) / float64(n),
			Faithfulness: float64(faithful) / float64(n),
		},
		DetailedResults: details,
	}
}

// flattenSampleMetrics converts one sample's per-K scores to the report's
// flat key form.
func flattenSampleMetrics(m map[int]domain.SampleRetrievalMetrics, kValues []int) map[string]float64 {
	flat := make(map[string]float64, 4*len(kValues))
	for _, k := range kValues {
		flat[domain.PageRecallKey(k)] = m[k].PageRecall
		flat[domain.PageMRRKey(k)] = m[k].PageMRR
		flat[domain.ContentRecallKey(k)] = m[k].ContentRecall
		flat[domain.ContentMRRKey(k)] = m[k].ContentMRR
	}
	return flat
}

func (e *Evaluator) recordLatency(stage string, d time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordLatency(stage, d, nil)
}
