package judge

import (
	"bytes"
	"fmt"
	"text/template"
)

// promptData is the substitution payload for judgment prompt templates.
type promptData struct {
	Query        string
	Answer       string
	GoldenAnswer string
}

// Verdict markers the oracle is instructed to emit. Parsing tolerates case
// variation and surrounding prose.
const (
	resultOpenTag  = "<result>"
	resultCloseTag = "</result>"
	affirmative    = "yes"
	negative       = "no"
)

const correctnessPrompt = `You are a professional evaluation expert assessing the correctness of an AI system's answer.

<task_description>
Carefully compare the AI answer with the golden answer and decide whether the AI answer factually agrees with it.
Focus on:
1. Factual accuracy - are the core facts correct?
2. Logical consistency - is the reasoning sound?
3. Key information - are the important information points correct?
Differences in wording are acceptable as long as the facts fully agree.
</task_description>

<question>
{{.Query}}
</question>

<ai_answer>
{{.Answer}}
</ai_answer>

<golden_answer>
{{.GoldenAnswer}}
</golden_answer>

<examples>
- "100 dollars" and "100-200 dollars" do NOT agree.
</examples>

<instructions>
If the AI answer factually agrees with the golden answer, output: <result>yes</result>
If the AI answer disagrees with or contradicts the golden answer, output: <result>no</result>
</instructions>

Give your judgment (<result>yes</result> or <result>no</result>):`

const completenessPrompt = `You are a professional evaluation expert assessing the completeness of an AI system's answer.

<task_description>
Decide whether the AI answer covers every key information point of the golden answer.
Focus on:
1. Information coverage - are all key points present?
2. Structural completeness - does it address every aspect of the question?
3. Detail sufficiency - are important details missing?
The AI answer may include additional reasonable information, but it must not omit core content of the golden answer.
</task_description>

<question>
{{.Query}}
</question>

<ai_answer>
{{.Answer}}
</ai_answer>

<golden_answer>
{{.GoldenAnswer}}
</golden_answer>

<instructions>
If the AI answer contains all the main information points of the golden answer, output: <result>yes</result>
If the AI answer is missing important information points of the golden answer, output: <result>no</result>
</instructions>

Give your judgment (<result>yes</result> or <result>no</result>):`

const faithfulnessPrompt = `You are a professional evaluation expert assessing the faithfulness of an AI system's answer.

<task_description>
Decide whether the AI answer contains hallucinated facts.

Examples:
- The AI answer is "I don't know" and the golden answer is "1500 yuan": faithful, output yes.
- The AI answer is "1000 yuan" and the golden answer is "1500 yuan": not faithful, output no.
- The AI answer is "1500 yuan" and the golden answer is "1500 yuan": faithful, output yes.
</task_description>

<question>
{{.Query}}
</question>

<ai_answer>
{{.Answer}}
</ai_answer>

<golden_answer>
{{.GoldenAnswer}}
</golden_answer>

Give your judgment (<result>yes</result> or <result>no</result>):`

// fallbackKeywords are scanned in the raw oracle response when no result tag
// is found, as a defense against oracles that ignore formatting instructions.
// Keywords are metric-specific because each prompt elicits different
// affirmative phrasing.
var fallbackKeywords = map[string][]string{
	MetricCorrectness:  {affirmative, "correct", "consistent", "agrees"},
	MetricCompleteness: {affirmative, "complete", "comprehensive"},
	MetricFaithfulness: {affirmative, "faithful", "grounded"},
}

// parsePromptTemplates compiles the per-metric templates once at judge
// construction.
func parsePromptTemplates() (map[string]*template.Template, error) {
	sources := map[string]string{
		MetricCorrectness:  correctnessPrompt,
		MetricCompleteness: completenessPrompt,
		MetricFaithfulness: faithfulnessPrompt,
	}

	templates := make(map[string]*template.Template, len(sources))
	for metric, src := range sources {
		tmpl, err := template.New(metric).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s prompt template: %w", metric, err)
		}
		templates[metric] = tmpl
	}
	return templates, nil
}

// renderPrompt fills the metric's template with the sample triple.
func renderPrompt(tmpl *template.Template, query, answer, golden string) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, promptData{Query: query, Answer: answer, GoldenAnswer: golden})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}
