package evaluator

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/ragmark/internal/domain"
	"github.com/ahrav/ragmark/internal/judge"
	"github.com/ahrav/ragmark/internal/retrieval"
	"github.com/ahrav/ragmark/internal/similarity"
)

var validate = validator.New()

// DefaultBatchSize bounds concurrent oracle judgments during the generation
// stage.
const DefaultBatchSize = 3

// Config assembles the full evaluation run: retrieval cutoffs, similarity
// scoring, oracle judging, and worker-pool sizing.
type Config struct {
	Retrieval  retrieval.Config  `yaml:"retrieval" json:"retrieval"`
	Similarity similarity.Config `yaml:"similarity" json:"similarity"`
	Judge      judge.Config      `yaml:"judge" json:"judge"`

	// OnlyRetrieval skips the generation stage entirely. No oracle calls
	// are made and generation metrics stay zero.
	OnlyRetrieval bool `yaml:"only_retrieval" json:"only_retrieval"`

	// BatchSize is the maximum number of in-flight oracle judgments.
	BatchSize int `yaml:"batch_size" json:"batch_size" validate:"required,min=1,max=64"`
}

// DefaultConfig returns a runnable configuration with the benchmark's
// published defaults.
func DefaultConfig() Config {
	return Config{
		Retrieval:  retrieval.DefaultConfig(),
		Similarity: similarity.DefaultConfig(),
		Judge:      judge.DefaultConfig(),
		BatchSize:  DefaultBatchSize,
	}
}

// Validate checks the composed configuration. Nested sections are checked
// again by their constructors; this catches problems before any component
// is built.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	return nil
}

// LoadConfig reads a YAML configuration file over the defaults. Unknown
// keys are rejected so typos surface instead of silently reverting a field
// to its default.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, domain.NewStructuralError(path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return Config{}, domain.NewStructuralError(path, fmt.Errorf("malformed configuration: %w", err))
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
