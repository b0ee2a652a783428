// Command generate_benchmark_dataset emits a synthetic question file and a
// matching answer file for exercising the evaluation pipeline without a real
// RAG system. Retrieval quality is tunable so the resulting metrics land in a
// predictable range.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/ahrav/ragmark/internal/evaluator"
)

func main() {
	var (
		size      = flag.Int("size", 50, "Number of question/answer pairs to generate")
		outputDir = flag.String("output", "testdata/benchmark", "Output directory")
		hitRate   = flag.Float64("hit_rate", 0.6, "Fraction of questions whose relevant page is retrieved")
		docsPerQ  = flag.Int("docs_per_question", 5, "Retrieved documents per question")
		seed      = flag.Int64("seed", 42, "Random seed for reproducible datasets")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	questions := make([]evaluator.QuestionRecord, *size)
	answers := make([]evaluator.AnswerRecord, *size)

	for i := range *size {
		id := fmt.Sprintf("q%04d", i)
		source := fmt.Sprintf("document_%02d.pdf", i%10)
		relevantPage := 1 + rng.Intn(40)
		passage := fmt.Sprintf("Reference passage %d describing fact %d in detail.", relevantPage, i)

		questions[i] = evaluator.QuestionRecord{
			ID:           id,
			Query:        fmt.Sprintf("What does fact %d state?", i),
			GoldenAnswer: fmt.Sprintf("Fact %d states the reference value.", i),
			RelatedDocuments: []evaluator.DocumentRecord{
				{SourceFile: source, PageNo: relevantPage, Content: passage},
			},
		}

		docs := make([]evaluator.DocumentRecord, *docsPerQ)
		hit := rng.Float64() < *hitRate
		hitRank := rng.Intn(*docsPerQ)
		for rank := range *docsPerQ {
			if hit && rank == hitRank {
				docs[rank] = evaluator.DocumentRecord{
					SourceFile: source,
					PageNo:     relevantPage,
					Content:    passage,
					Score:      1.0 - float64(rank)*0.1,
				}
				continue
			}
			docs[rank] = evaluator.DocumentRecord{
				SourceFile: source,
				PageNo:     100 + rng.Intn(100),
				Content:    fmt.Sprintf("Unrelated passage %d.", rng.Intn(1000)),
				Score:      0.9 - float64(rank)*0.1,
			}
		}

		answers[i] = evaluator.AnswerRecord{
			ID:        id,
			Query:     questions[i].Query,
			Answer:    fmt.Sprintf("Fact %d states the reference value.", i),
			Documents: docs,
		}
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	questionsPath := filepath.Join(*outputDir, "questions.json")
	answersPath := filepath.Join(*outputDir, "answers.json")

	if err := writeJSON(questionsPath, questions); err != nil {
		log.Fatalf("Failed to write questions: %v", err)
	}
	if err := writeJSON(answersPath, answers); err != nil {
		log.Fatalf("Failed to write answers: %v", err)
	}

	fmt.Printf("Generated benchmark dataset:\n")
	fmt.Printf("- Questions: %s\n", questionsPath)
	fmt.Printf("- Answers: %s\n", answersPath)
	fmt.Printf("- Pairs: %d, retrieval hit rate: %.0f%%\n", *size, *hitRate*100)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
