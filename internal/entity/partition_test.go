package entity

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/entity-engine/pkg/types"
)

// mockCompleter returns a canned response or error for any prompt. It keeps
// the last prompt for assertions.
type mockCompleter struct {
	response string
	err      error
	prompt   string
	calls    int
}

func (m *mockCompleter) Complete(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.prompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// --- ClaudePartitioner ---

func TestPartitionParsesGroups(t *testing.T) {
	m := &mockCompleter{response: `{"groups": [
		{"result_ids": ["a", "b"], "description": "Engineer at Hubtel", "key_facts": ["Hubtel"], "confidence": "high"},
		{"result_ids": ["c"], "description": "Painter in Lagos", "key_facts": ["Painter"], "confidence": "low"}
	]}`}
	p := &ClaudePartitioner{LLM: m}

	results := []types.SearchResult{
		result("a", "Jane Doe", "linkedin.com"),
		result("b", "Jane Doe", "hubtel.com"),
		result("c", "Jane Doe", "art.com"),
	}
	groups, err := p.Partition(context.Background(), results)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].Description != "Engineer at Hubtel" {
		t.Errorf("groups[0].Description = %q", groups[0].Description)
	}
	if groups[0].strength() != types.StrengthLLMHigh {
		t.Errorf("groups[0].strength() = %s, want llm_high", groups[0].strength())
	}
	if groups[1].strength() != types.StrengthLLMLow {
		t.Errorf("groups[1].strength() = %s, want llm_low", groups[1].strength())
	}
}

func TestPartitionToleratesSurroundingProse(t *testing.T) {
	// Models sometimes wrap the JSON in commentary despite instructions.
	m := &mockCompleter{response: `Here are the groups:
{"groups": [{"result_ids": ["a"], "description": "d", "key_facts": [], "confidence": "medium"}]}
Hope this helps!`}
	p := &ClaudePartitioner{LLM: m}

	groups, err := p.Partition(context.Background(), []types.SearchResult{result("a", "Jane Doe", "x.com")})
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if len(groups) != 1 || len(groups[0].ResultIDs) != 1 {
		t.Errorf("groups = %+v", groups)
	}
}

func TestPartitionNoJSON(t *testing.T) {
	m := &mockCompleter{response: "I cannot partition these results."}
	p := &ClaudePartitioner{LLM: m}

	_, err := p.Partition(context.Background(), []types.SearchResult{result("a", "Jane Doe", "x.com")})
	if err == nil || !strings.Contains(err.Error(), "no JSON object") {
		t.Errorf("err = %v, want no-JSON error", err)
	}
}

func TestPartitionMalformedJSON(t *testing.T) {
	m := &mockCompleter{response: `{"groups": [{"result_ids": "not-an-array"}]}`}
	p := &ClaudePartitioner{LLM: m}

	_, err := p.Partition(context.Background(), []types.SearchResult{result("a", "Jane Doe", "x.com")})
	if err == nil || !strings.Contains(err.Error(), "parsing partition response") {
		t.Errorf("err = %v, want parse error", err)
	}
}

func TestPartitionCompleterError(t *testing.T) {
	m := &mockCompleter{err: errors.New("api unavailable")}
	p := &ClaudePartitioner{LLM: m}

	_, err := p.Partition(context.Background(), []types.SearchResult{result("a", "Jane Doe", "x.com")})
	if err == nil || !strings.Contains(err.Error(), "partition call") {
		t.Errorf("err = %v, want wrapped call error", err)
	}
}

func TestPartitionPromptContents(t *testing.T) {
	m := &mockCompleter{response: `{"groups": [{"result_ids": ["a"], "description": "d", "key_facts": [], "confidence": "high"}]}`}
	p := &ClaudePartitioner{LLM: m}

	results := []types.SearchResult{{
		ID:         "a",
		Title:      "Jane Doe - CTO",
		URL:        "https://hubtel.com/about",
		Domain:     "hubtel.com",
		Highlights: []string{"leads the payments platform"},
	}}
	if _, err := p.Partition(context.Background(), results); err != nil {
		t.Fatalf("Partition: %v", err)
	}

	for _, want := range []string{
		"one group per distinct person",
		`"result_ids"`,
		"Jane Doe - CTO",
		"hubtel.com",
		"leads the payments platform",
	} {
		if !strings.Contains(m.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(m.prompt, "https://hubtel.com/about") {
		t.Error("prompt should carry domains, not full URLs")
	}
}

// --- Builder integration: delegated partitions ---

// staticPartitioner returns a fixed partition or error.
type staticPartitioner struct {
	groups []PartitionGroup
	err    error
}

func (s *staticPartitioner) Partition(context.Context, []types.SearchResult) ([]PartitionGroup, error) {
	return s.groups, s.err
}

func TestBuildDelegatedPartition(t *testing.T) {
	results := []types.SearchResult{
		result("a", "Jane Doe", "linkedin.com"),
		result("b", "Jane Doe", "hubtel.com"),
		result("c", "Jane Doe", "art.com"),
		result("d", "Jane Doe", "gallery.com"),
	}
	b := &Builder{Partitioner: &staticPartitioner{groups: []PartitionGroup{
		{ResultIDs: []string{"a", "b", "d"}, Description: "Engineer at Hubtel", KeyFacts: []string{"Hubtel"}, Confidence: "high"},
		{ResultIDs: []string{"c"}, Description: "Painter", KeyFacts: []string{"Painter"}, Confidence: "low"},
	}}}

	var buf bytes.Buffer
	clusters := b.Build(context.Background(), results, "Jane Doe", types.AnchorFacts{}, &buf)

	if buf.Len() != 0 {
		t.Errorf("unexpected warnings: %s", buf.String())
	}
	if len(clusters) != 2 {
		t.Fatalf("len(clusters) = %d, want 2", len(clusters))
	}
	// count 3 with llm_high outranks count 1 with llm_low.
	if clusters[0].Confidence != types.ConfidenceHigh {
		t.Errorf("clusters[0].Confidence = %s, want high", clusters[0].Confidence)
	}
	if clusters[0].Description != "Engineer at Hubtel" {
		t.Errorf("clusters[0].Description = %q", clusters[0].Description)
	}
	if clusters[1].Confidence != types.ConfidenceLow {
		t.Errorf("clusters[1].Confidence = %s, want low", clusters[1].Confidence)
	}
	// Members keep provider relevance order regardless of id order in the
	// partition.
	ids := []string{}
	for _, cand := range clusters[0].Candidates {
		ids = append(ids, cand.ID)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "d" {
		t.Errorf("clusters[0] member ids = %v, want [a b d]", ids)
	}
}

func TestBuildDelegatedPartitionDroppedID(t *testing.T) {
	// A partition that loses a result is rejected and the heuristic runs
	// instead; every id must still be clustered.
	results := []types.SearchResult{
		result("a", "Jane Doe", "linkedin.com"),
		result("b", "Jane Doe", "hubtel.com"),
		result("c", "Jane Doe", "art.com"),
	}
	b := &Builder{Partitioner: &staticPartitioner{groups: []PartitionGroup{
		{ResultIDs: []string{"a", "b"}, Confidence: "high"},
	}}}

	var buf bytes.Buffer
	clusters := b.Build(context.Background(), results, "Jane Doe", types.AnchorFacts{}, &buf)

	warning := buf.String()
	if !strings.Contains(warning, "falling back to domain grouping") {
		t.Errorf("warning = %q, want fallback notice", warning)
	}
	if !strings.Contains(warning, `"c" missing`) {
		t.Errorf("warning = %q, want missing id named", warning)
	}

	seen := map[string]bool{}
	for _, c := range clusters {
		if c.Confidence == types.ConfidenceHigh {
			t.Errorf("cluster %s has high confidence from a rejected partition", c.ClusterID)
		}
		for _, cand := range c.Candidates {
			seen[cand.ID] = true
		}
	}
	if len(seen) != 3 {
		t.Errorf("clustered ids = %v, want all 3", seen)
	}
}

func TestBuildDelegatedPartitionUnknownID(t *testing.T) {
	results := []types.SearchResult{result("a", "Jane Doe", "x.com")}
	b := &Builder{Partitioner: &staticPartitioner{groups: []PartitionGroup{
		{ResultIDs: []string{"a", "ghost"}, Confidence: "high"},
	}}}

	var buf bytes.Buffer
	clusters := b.Build(context.Background(), results, "Jane Doe", types.AnchorFacts{}, &buf)

	if !strings.Contains(buf.String(), `unknown result id "ghost"`) {
		t.Errorf("warning = %q, want unknown id named", buf.String())
	}
	if len(clusters) != 1 {
		t.Errorf("len(clusters) = %d, want 1 from fallback", len(clusters))
	}
}

func TestBuildDelegatedPartitionDuplicateID(t *testing.T) {
	results := []types.SearchResult{
		result("a", "Jane Doe", "x.com"),
		result("b", "Jane Doe", "y.com"),
	}
	b := &Builder{Partitioner: &staticPartitioner{groups: []PartitionGroup{
		{ResultIDs: []string{"a", "b"}, Confidence: "high"},
		{ResultIDs: []string{"a"}, Confidence: "low"},
	}}}

	var buf bytes.Buffer
	b.Build(context.Background(), results, "Jane Doe", types.AnchorFacts{}, &buf)

	if !strings.Contains(buf.String(), `"a" assigned twice`) {
		t.Errorf("warning = %q, want duplicate id named", buf.String())
	}
}

func TestBuildDelegatedPartitionEmpty(t *testing.T) {
	results := []types.SearchResult{result("a", "Jane Doe", "x.com")}
	b := &Builder{Partitioner: &staticPartitioner{groups: nil}}

	var buf bytes.Buffer
	clusters := b.Build(context.Background(), results, "Jane Doe", types.AnchorFacts{}, &buf)

	if !strings.Contains(buf.String(), "no groups returned") {
		t.Errorf("warning = %q, want empty partition named", buf.String())
	}
	if len(clusters) != 1 {
		t.Errorf("len(clusters) = %d, want 1 from fallback", len(clusters))
	}
}

func TestBuildDelegatedPartitionCallError(t *testing.T) {
	results := []types.SearchResult{result("a", "Jane Doe", "x.com")}
	b := &Builder{Partitioner: &staticPartitioner{err: errors.New("model overloaded")}}

	var buf bytes.Buffer
	clusters := b.Build(context.Background(), results, "Jane Doe", types.AnchorFacts{}, &buf)

	warning := buf.String()
	if !strings.Contains(warning, "delegated partition failed") || !strings.Contains(warning, "model overloaded") {
		t.Errorf("warning = %q", warning)
	}
	if len(clusters) != 1 {
		t.Errorf("len(clusters) = %d, want 1 from fallback", len(clusters))
	}
}

func TestBuildAnchorSkipsPartitioner(t *testing.T) {
	// Anchor mode never consults the partitioner.
	m := &mockCompleter{response: `{"groups": []}`}
	b := &Builder{Partitioner: &ClaudePartitioner{LLM: m}}

	results := []types.SearchResult{result("a", "Jane Doe - Hubtel", "x.com")}
	var buf bytes.Buffer
	b.Build(context.Background(), results, "Jane Doe", types.AnchorFacts{Company: "Hubtel"}, &buf)

	if m.calls != 0 {
		t.Errorf("partitioner called %d times in anchor mode, want 0", m.calls)
	}
}
