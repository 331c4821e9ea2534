// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/pdiddy/entity-engine/internal/llm"
	"github.com/pdiddy/entity-engine/pkg/types"
)

// Partitioner splits search results into identity groups. Implementations
// may call out to an LLM; the builder validates whatever comes back and
// falls back to domain grouping on any violation.
type Partitioner interface {
	Partition(ctx context.Context, results []types.SearchResult) ([]PartitionGroup, error)
}

// Completer produces a completion for a prompt. *llm.Client implements it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PartitionGroup is one identity group as reported by a partitioner.
type PartitionGroup struct {
	ResultIDs   []string `json:"result_ids"`
	Description string   `json:"description"`
	KeyFacts    []string `json:"key_facts"`
	Confidence  string   `json:"confidence"`
}

// strength maps the partitioner's self-reported confidence onto a match
// strength. Unknown labels land on medium rather than rejecting the group.
func (p PartitionGroup) strength() types.MatchStrength {
	switch p.Confidence {
	case "high":
		return types.StrengthLLMHigh
	case "low":
		return types.StrengthLLMLow
	default:
		return types.StrengthLLMMedium
	}
}

// partitionItem is the view of a result handed to the model: enough to
// tell people apart, small enough to keep the prompt bounded.
type partitionItem struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Domain     string   `json:"domain"`
	Highlights []string `json:"highlights,omitempty"`
}

// partitionPromptTmpl instructs the model to split results into one group
// per distinct person and report its own confidence per group.
var partitionPromptTmpl = template.Must(template.New("partition").Parse(`You are an identity disambiguation system. The following web search results came back for a search about a person. Results may refer to different real-world people who share the same name.

Partition the results into groups, one group per distinct person. Use the domains, titles, and highlight text to decide which results belong together.

Respond with a JSON object containing a "groups" array. Each group must have:
- "result_ids": the ids of the results in this group. Every input id must appear in exactly one group.
- "description": one sentence describing who this person appears to be
- "key_facts": 1-5 short facts that distinguish this person (role, employer, location)
- "confidence": "high", "medium", or "low" indicating how certain you are that these results refer to a single person

Do not include any text outside the JSON object.

Example response:
{"groups": [{"result_ids": ["a", "b"], "description": "Software engineer at Acme in Berlin", "key_facts": ["Engineer at Acme", "Based in Berlin"], "confidence": "high"}]}

Search results:
{{.Items}}
`))

// ClaudePartitioner delegates partitioning to the Claude API.
type ClaudePartitioner struct {
	LLM Completer
}

// Partition renders the partition prompt over the result set and parses the
// model's JSON answer. Structural validation is the builder's job; this only
// gets the response into PartitionGroup form.
func (p *ClaudePartitioner) Partition(ctx context.Context, results []types.SearchResult) ([]PartitionGroup, error) {
	items := make([]partitionItem, 0, len(results))
	for _, r := range results {
		items = append(items, partitionItem{
			ID:         r.ID,
			Title:      r.Title,
			Domain:     r.Domain,
			Highlights: r.Highlights,
		})
	}

	prompt, err := renderPartitionPrompt(items)
	if err != nil {
		return nil, fmt.Errorf("rendering partition prompt: %w", err)
	}

	text, err := p.LLM.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("partition call: %w", err)
	}

	jsonText, ok := llm.ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("partition response contains no JSON object")
	}

	var resp partitionResponse
	if err := json.Unmarshal([]byte(jsonText), &resp); err != nil {
		return nil, fmt.Errorf("parsing partition response: %w", err)
	}
	return resp.Groups, nil
}

type partitionResponse struct {
	Groups []PartitionGroup `json:"groups"`
}

// renderPartitionPrompt executes the partition template with the items
// serialized as indented JSON.
func renderPartitionPrompt(items []partitionItem) (string, error) {
	itemJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := partitionPromptTmpl.Execute(&buf, struct{ Items string }{Items: string(itemJSON)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
