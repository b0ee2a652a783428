// Command ragmark grades a RAG pipeline run against a benchmark question set
// and writes a JSON evaluation report.
//
// Typical usage:
//
//	ragmark --input_file questions.json --answer_file answers.json \
//	    --eval_results_file results/eval.json --provider openai --model qwen3-14b
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/ahrav/ragmark/infrastructure/llm"
	"github.com/ahrav/ragmark/infrastructure/middleware"
	"github.com/ahrav/ragmark/internal/evaluator"
	"github.com/ahrav/ragmark/internal/ports"
)

// apiKeyEnvVars maps provider names to the environment variable holding
// their credential.
var apiKeyEnvVars = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"google":    "GEMINI_API_KEY",
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ragmark: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		inputFile   = flag.String("input_file", "", "Benchmark question file (.json, .jsonl, .yaml)")
		answerFile  = flag.String("answer_file", "", "Produced answer file (.json, .jsonl, .yaml)")
		resultsFile = flag.String("eval_results_file", "", "Output report path")
		configFile  = flag.String("config", "", "Optional YAML configuration file")

		kValues   = flag.String("k_values", "", "Comma-separated retrieval cutoffs (default 1,3,5,10)")
		threshold = flag.Float64("content_similarity_threshold", 0, "Content match threshold in (0,1]")

		onlyRetrieval = flag.Bool("only_retrieval", false, "Skip generation judging")
		batchSize     = flag.Int("batch_size", 0, "Concurrent oracle judgments")

		provider  = flag.String("provider", "openai", "Oracle provider: "+strings.Join(llm.Providers(), ", "))
		model     = flag.String("model", "", "Oracle model (empty uses provider default)")
		baseURL   = flag.String("base_url", "", "Provider endpoint override")
		rateLimit = flag.Float64("rate_limit", 0, "Oracle requests per second, 0 disables")
		useCache  = flag.Bool("cache", false, "Memoize oracle responses in memory")

		verbose = flag.Bool("verbose", false, "Debug logging")
	)
	flag.Parse()

	logger := newLogger(*verbose)
	slog.SetDefault(logger)

	if *inputFile == "" || *answerFile == "" || *resultsFile == "" {
		flag.Usage()
		return fmt.Errorf("--input_file, --answer_file, and --eval_results_file are required")
	}

	config, err := buildConfig(*configFile, *kValues, *threshold, *onlyRetrieval, *batchSize)
	if err != nil {
		return err
	}

	metrics := middleware.NewPrometheusMetrics(nil)

	var oracle ports.LLMClient
	if !config.OnlyRetrieval {
		oracle, err = buildOracle(*provider, *model, *baseURL, *rateLimit, *useCache, metrics)
		if err != nil {
			return err
		}
	}

	eval, err := evaluator.New(config, oracle, logger,
		evaluator.WithMetricsCollector(metrics))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := eval.Run(ctx, *inputFile, *answerFile)
	if err != nil {
		return err
	}

	if err := evaluator.SaveReport(report, *resultsFile); err != nil {
		return err
	}
	logger.Info("report written", "path", *resultsFile)

	evaluator.PrintSummary(os.Stdout, report)
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildConfig layers flag overrides on top of the optional configuration
// file and the built-in defaults.
func buildConfig(configFile, kValues string, threshold float64, onlyRetrieval bool, batchSize int) (evaluator.Config, error) {
	config := evaluator.DefaultConfig()
	if configFile != "" {
		loaded, err := evaluator.LoadConfig(configFile)
		if err != nil {
			return evaluator.Config{}, err
		}
		config = loaded
	}

	if kValues != "" {
		parsed, err := parseKValues(kValues)
		if err != nil {
			return evaluator.Config{}, err
		}
		config.Retrieval.KValues = parsed
	}
	if threshold > 0 {
		config.Retrieval.ContentThreshold = threshold
	}
	if onlyRetrieval {
		config.OnlyRetrieval = true
	}
	if batchSize > 0 {
		config.BatchSize = batchSize
	}

	return config, nil
}

func parseKValues(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	ks := make([]int, 0, len(parts))
	for _, part := range parts {
		k, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || k < 1 {
			return nil, fmt.Errorf("invalid k value %q in --k_values", part)
		}
		ks = append(ks, k)
	}
	return ks, nil
}

// buildOracle assembles the provider client with the requested middleware
// chain. Rate limiting stays outermost so cached hits never consume quota.
func buildOracle(provider, model, baseURL string, rateLimit float64, useCache bool, metrics ports.MetricsCollector) (ports.LLMClient, error) {
	envVar, ok := apiKeyEnvVars[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (registered: %v)", provider, llm.Providers())
	}
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s must be set for provider %q", envVar, provider)
	}

	var chain []llm.Middleware
	if rateLimit > 0 {
		burst := max(1, int(rateLimit))
		chain = append(chain, llm.RateLimitMiddleware(rate.Limit(rateLimit), burst))
	}
	if useCache {
		chain = append(chain, llm.CacheMiddleware(llm.NewMemoryCache(), 0))
	}
	chain = append(chain, llm.MetricsMiddleware(metrics))

	return llm.NewClient(provider, llm.ClientConfig{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    baseURL,
		Middleware: chain,
	})
}
