// Package domain defines the core data types of the RAG evaluation engine:
// samples, document references, retrieval and generation metrics, verdicts,
// and the final evaluation report.
package domain

import "fmt"

// DocumentRef identifies a passage of source material, typically one page of
// an ingested document. Content may be empty when only the location is known.
type DocumentRef struct {
	// SourceFile is the originating file name.
	SourceFile string `json:"source_file"`

	// PageNo is the page number within the source file.
	PageNo int `json:"page_no"`

	// Content is the extracted text of the passage.
	Content string `json:"content,omitempty"`

	// Score is the retriever-assigned relevance score. It is carried through
	// for reporting but never consulted by the metric calculator.
	Score float64 `json:"score,omitempty"`
}

// PageKey returns the derived identity key used for exact page matching.
// Two DocumentRefs are exact-equal iff their page keys are equal.
func (d DocumentRef) PageKey() string {
	return fmt.Sprintf("%s_page_%d", d.SourceFile, d.PageNo)
}

// Sample is one evaluation unit: a benchmark question aligned with the answer
// a RAG pipeline produced for it.
//
// Samples are read-only once constructed. Workers scoring a sample must write
// results into their own slot keyed by the sample ID, never into the Sample.
type Sample struct {
	// ID uniquely identifies this sample within a run. It must exist in both
	// the question source and the answer source.
	ID string `json:"id"`

	// Query is the benchmark question.
	Query string `json:"query"`

	// Answer is the answer produced by the system under evaluation.
	Answer string `json:"answer"`

	// GoldenAnswer is the ground-truth answer from the benchmark.
	GoldenAnswer string `json:"golden_answer"`

	// RetrievedDocuments is the relevance-ranked list the retriever returned.
	// Duplicates are permitted.
	RetrievedDocuments []DocumentRef `json:"retrieved_documents"`

	// RelatedDocuments is the unranked set of ground-truth relevant passages.
	RelatedDocuments []DocumentRef `json:"related_documents"`
}

// RetrievedPageKeys returns the page keys of the retrieved documents in rank
// order.
func (s *Sample) RetrievedPageKeys() []string {
	keys := make([]string, len(s.RetrievedDocuments))
	for i, doc := range s.RetrievedDocuments {
		keys[i] = doc.PageKey()
	}
	return keys
}

// RelatedPageKeys returns the page keys of the ground-truth relevant documents.
func (s *Sample) RelatedPageKeys() []string {
	keys := make([]string, len(s.RelatedDocuments))
	for i, doc := range s.RelatedDocuments {
		keys[i] = doc.PageKey()
	}
	return keys
}
