package evaluator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/ragmark/internal/domain"
)

// QuestionRecord is one benchmark question as stored in the questions file.
// File order is significant: it defines the report's sample order.
type QuestionRecord struct {
	ID               string           `json:"id" yaml:"id"`
	Query            string           `json:"query" yaml:"query"`
	GoldenAnswer     string           `json:"golden_answer" yaml:"golden_answer"`
	RelatedDocuments []DocumentRecord `json:"related_documents" yaml:"related_documents"`
}

// AnswerRecord is one produced answer as stored in the answers file. Records
// are keyed by ID; their file order carries no meaning.
type AnswerRecord struct {
	ID        string           `json:"id" yaml:"id"`
	Query     string           `json:"query" yaml:"query"`
	Answer    string           `json:"answer" yaml:"answer"`
	Documents []DocumentRecord `json:"documents" yaml:"documents"`
}

// DocumentRecord mirrors domain.DocumentRef at the file boundary.
type DocumentRecord struct {
	SourceFile string  `json:"source_file" yaml:"source_file"`
	PageNo     int     `json:"page_no" yaml:"page_no"`
	Content    string  `json:"content" yaml:"content"`
	Score      float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

func (r DocumentRecord) toDomain() domain.DocumentRef {
	return domain.DocumentRef{
		SourceFile: r.SourceFile,
		PageNo:     r.PageNo,
		Content:    strings.TrimSpace(r.Content),
		Score:      r.Score,
	}
}

func toDomainDocs(records []DocumentRecord) []domain.DocumentRef {
	docs := make([]domain.DocumentRef, len(records))
	for i, r := range records {
		docs[i] = r.toDomain()
	}
	return docs
}

// LoadQuestions reads the ordered question set. Format is chosen by file
// extension: .json, .jsonl, or .yaml/.yml. Any read, parse, or format
// problem, and an empty question set, is a structural error.
func LoadQuestions(path string) ([]QuestionRecord, error) {
	var questions []QuestionRecord
	if err := loadRecords(path, &questions); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.NewStructuralError(path, domain.ErrEmptyQuestionSet)
	}
	return questions, nil
}

// LoadAnswers reads the produced-answer collection from the same formats as
// LoadQuestions. An empty answer file is tolerated here; alignment decides
// what that means for the run.
func LoadAnswers(path string) ([]AnswerRecord, error) {
	var answers []AnswerRecord
	if err := loadRecords(path, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// loadRecords decodes a record list from path into out, dispatching on the
// file extension.
func loadRecords(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.NewStructuralError(path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, out); err != nil {
			return domain.NewStructuralError(path, fmt.Errorf("malformed JSON: %w", err))
		}
	case ".jsonl":
		if err := unmarshalJSONLines(data, out); err != nil {
			return domain.NewStructuralError(path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return domain.NewStructuralError(path, fmt.Errorf("malformed YAML: %w", err))
		}
	default:
		return domain.NewStructuralError(path,
			fmt.Errorf("unsupported file format %q (expected .json, .jsonl, .yaml, or .yml)", filepath.Ext(path)))
	}
	return nil
}

// unmarshalJSONLines decodes one JSON object per non-empty line. It funnels
// through a JSON array so both record types share one decode path.
func unmarshalJSONLines(data []byte, out any) error {
	var rawLines []json.RawMessage
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !json.Valid([]byte(line)) {
			return fmt.Errorf("malformed JSON on line %d", lineNo)
		}
		rawLines = append(rawLines, json.RawMessage(line))
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	combined, err := json.Marshal(rawLines)
	if err != nil {
		return err
	}
	return json.Unmarshal(combined, out)
}

// AlignSamples pairs each question, in question-file order, with its answer
// by ID. Questions without an answer and answers without a question are
// dropped with a warning; they are never fabricated. The returned dropped
// count covers both directions.
func AlignSamples(questions []QuestionRecord, answers []AnswerRecord, logger *slog.Logger) ([]*domain.Sample, int) {
	answersByID := make(map[string]AnswerRecord, len(answers))
	for _, answer := range answers {
		answersByID[answer.ID] = answer
	}

	samples := make([]*domain.Sample, 0, len(questions))
	matched := make(map[string]struct{}, len(questions))
	dropped := 0

	for _, question := range questions {
		answer, ok := answersByID[question.ID]
		if !ok {
			dropped++
			logger.Warn("no answer found for question, dropping sample", "id", question.ID)
			continue
		}
		matched[question.ID] = struct{}{}

		samples = append(samples, &domain.Sample{
			ID:                 question.ID,
			Query:              answer.Query,
			Answer:             answer.Answer,
			GoldenAnswer:       question.GoldenAnswer,
			RetrievedDocuments: toDomainDocs(answer.Documents),
			RelatedDocuments:   toDomainDocs(question.RelatedDocuments),
		})
	}

	for _, answer := range answers {
		if _, ok := matched[answer.ID]; !ok {
			dropped++
			logger.Warn("no question found for answer, dropping sample", "id", answer.ID)
		}
	}

	return samples, dropped
}
