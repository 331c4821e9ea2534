// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pdiddy/entity-engine/internal/llm"
	"github.com/pdiddy/entity-engine/pkg/types"
)

// maxSourceChars caps how much of one source feeds the prompt.
const maxSourceChars = 5000

// maxContextChars caps the combined source context in the prompt.
const maxContextChars = 30000

// sourceDoc is one source's content as handed to the summarizer.
type sourceDoc struct {
	url     string
	title   string
	content string
}

// summarizeResult is the summarizer's parsed answer. Sections come back
// only when focus areas were requested and the model followed the format.
type summarizeResult struct {
	Summary   string                 `json:"summary"`
	KeyPoints []string               `json:"key_points"`
	Sections  []types.ProfileSection `json:"sections"`
}

var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are an expert research analyst. Create a comprehensive professional summary of a person from multiple web sources.
{{if .Name}}
The person: "{{.Name}}"
{{end}}{{if .FocusAreas}}
Focus particularly on: {{.FocusAreas}}
{{end}}
Information from sources:
{{.Context}}

Provide:
1. A comprehensive summary (3-4 paragraphs) that synthesizes all sources
2. A list of 5-7 key points
{{if .FocusAreas}}3. One section per focus area with the relevant details
{{end}}
Format as JSON:
{
  "summary": "Your comprehensive summary...",
  "key_points": ["Point 1", "Point 2", ...]{{if .FocusAreas}},
  "sections": [{"title": "Focus area", "content": "What the sources say about it"}]{{end}}
}

Write naturally without citations in the text.`))

// summarize asks the LLM for a summary of the docs. It never fails: a
// completion error degrades to stitched source excerpts, a malformed
// answer is used verbatim as the summary.
func (a *Assembler) summarize(ctx context.Context, docs []sourceDoc, req Request, w io.Writer) summarizeResult {
	prompt, err := renderSummaryPrompt(docs, req)
	if err != nil {
		fmt.Fprintf(w, "warning: summary prompt failed: %v; using source excerpts\n", err)
		return stitched(docs)
	}

	text, err := a.LLM.Complete(ctx, prompt)
	if err != nil {
		fmt.Fprintf(w, "warning: summarization failed: %v; using source excerpts\n", err)
		return stitched(docs)
	}

	jsonText, ok := llm.ExtractJSON(text)
	if !ok {
		return summarizeResult{Summary: text}
	}
	var res summarizeResult
	if err := json.Unmarshal([]byte(jsonText), &res); err != nil {
		return summarizeResult{Summary: text}
	}
	if res.Summary == "" {
		res.Summary = text
	}
	return res
}

// renderSummaryPrompt builds the summarization prompt from the source docs.
func renderSummaryPrompt(docs []sourceDoc, req Request) (string, error) {
	var parts []string
	for i, d := range docs {
		content := d.content
		if len(content) > maxSourceChars {
			content = content[:maxSourceChars]
		}
		parts = append(parts,
			fmt.Sprintf("Source %d: %s", i+1, d.title),
			"URL: "+d.url,
			"Content: "+content,
			"---",
		)
	}
	context := strings.Join(parts, "\n\n")
	if len(context) > maxContextChars {
		context = context[:maxContextChars]
	}

	data := struct {
		Name       string
		FocusAreas string
		Context    string
	}{
		Name:       req.Name,
		FocusAreas: strings.Join(req.FocusAreas, ", "),
		Context:    context,
	}

	var buf bytes.Buffer
	if err := summaryPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stitched is the summary of last resort: the sources' own text, stitched
// together and truncated.
func stitched(docs []sourceDoc) summarizeResult {
	var parts []string
	for _, d := range docs {
		c := d.content
		if len(c) > 500 {
			c = c[:500]
		}
		parts = append(parts, fmt.Sprintf("%s: %s...", d.title, c))
	}
	s := strings.Join(parts, "\n\n")
	if len(s) > 2000 {
		s = s[:2000]
	}
	return summarizeResult{Summary: s}
}
