package profile

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSummarizeParsesSections(t *testing.T) {
	model := &mockLLM{response: `{
		"summary": "Jane Doe is a fintech engineer in Accra.",
		"key_points": ["Hubtel", "Accra"],
		"sections": [
			{"title": "Career", "content": "Payments platform lead at Hubtel."},
			{"title": "Education", "content": "Studied CS in Kumasi."}
		]
	}`}
	a := &Assembler{LLM: model}

	var buf bytes.Buffer
	res := a.summarize(context.Background(), []sourceDoc{{url: "https://a.com", title: "A", content: longText}},
		Request{Name: "Jane Doe", FocusAreas: []string{"career", "education"}}, &buf)

	if res.Summary != "Jane Doe is a fintech engineer in Accra." {
		t.Errorf("Summary = %q", res.Summary)
	}
	if len(res.Sections) != 2 || res.Sections[0].Title != "Career" {
		t.Errorf("Sections = %+v", res.Sections)
	}
	if len(res.KeyPoints) != 2 {
		t.Errorf("KeyPoints = %v", res.KeyPoints)
	}

	// Focus areas steer the prompt and request the sections block.
	for _, want := range []string{
		"Focus particularly on: career, education",
		`"sections"`,
		`The person: "Jane Doe"`,
		"Source 1: A",
		"URL: https://a.com",
	} {
		if !strings.Contains(model.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSummarizeWithoutFocusAreasOmitsSections(t *testing.T) {
	model := &mockLLM{response: `{"summary": "s", "key_points": []}`}
	a := &Assembler{LLM: model}

	var buf bytes.Buffer
	a.summarize(context.Background(), []sourceDoc{{url: "u", title: "T", content: "c"}}, Request{Name: "Jane Doe"}, &buf)

	if strings.Contains(model.prompt, `"sections"`) {
		t.Error("prompt requests sections without focus areas")
	}
	if strings.Contains(model.prompt, "Focus particularly") {
		t.Error("prompt mentions focus areas without any")
	}
}

func TestSummarizeNonJSONAnswer(t *testing.T) {
	model := &mockLLM{response: "Jane Doe appears to be a software engineer at Hubtel."}
	a := &Assembler{LLM: model}

	var buf bytes.Buffer
	res := a.summarize(context.Background(), []sourceDoc{{url: "u", title: "T", content: "c"}}, Request{}, &buf)

	if res.Summary != model.response {
		t.Errorf("Summary = %q, want verbatim answer", res.Summary)
	}
	if len(res.KeyPoints) != 0 || len(res.Sections) != 0 {
		t.Errorf("res = %+v, want no structure from a plain answer", res)
	}
}

func TestSummarizeMalformedJSONAnswer(t *testing.T) {
	model := &mockLLM{response: `{"summary": 42}`}
	a := &Assembler{LLM: model}

	var buf bytes.Buffer
	res := a.summarize(context.Background(), []sourceDoc{{url: "u", title: "T", content: "c"}}, Request{}, &buf)

	if res.Summary != `{"summary": 42}` {
		t.Errorf("Summary = %q, want raw answer on parse failure", res.Summary)
	}
}

func TestSummarizeCompletionErrorStitchesExcerpts(t *testing.T) {
	model := &mockLLM{err: errors.New("overloaded")}
	a := &Assembler{LLM: model}

	var buf bytes.Buffer
	res := a.summarize(context.Background(), []sourceDoc{
		{url: "https://a.com", title: "About Jane", content: longText},
	}, Request{}, &buf)

	if !strings.HasPrefix(res.Summary, "About Jane: Jane Doe built") {
		t.Errorf("Summary = %q, want stitched excerpt", res.Summary)
	}
	if !strings.Contains(buf.String(), "summarization failed") {
		t.Errorf("warnings = %q", buf.String())
	}
}

func TestRenderSummaryPromptTruncatesSources(t *testing.T) {
	big := strings.Repeat("a", maxSourceChars+1000)
	prompt, err := renderSummaryPrompt([]sourceDoc{{url: "u", title: "T", content: big}}, Request{})
	if err != nil {
		t.Fatalf("renderSummaryPrompt: %v", err)
	}
	if strings.Contains(prompt, strings.Repeat("a", maxSourceChars+1)) {
		t.Error("prompt contains more than maxSourceChars from one source")
	}
	if !strings.Contains(prompt, strings.Repeat("a", maxSourceChars)) {
		t.Error("prompt truncated below maxSourceChars")
	}
}

func TestStitchedTruncates(t *testing.T) {
	long := strings.Repeat("b", 600)
	res := stitched([]sourceDoc{
		{title: "One", content: long},
		{title: "Two", content: long},
		{title: "Three", content: long},
		{title: "Four", content: long},
	})
	if len(res.Summary) > 2000 {
		t.Errorf("len(Summary) = %d, want <= 2000", len(res.Summary))
	}
	if !strings.HasPrefix(res.Summary, "One: ") {
		t.Errorf("Summary = %q", res.Summary[:20])
	}
}
