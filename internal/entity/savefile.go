// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entity

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/entity-engine/pkg/types"
)

// SaveFile is the on-disk representation of an entity search and its
// clusters. A search can be saved to a file and re-rendered later without
// hitting the provider again.
type SaveFile struct {
	Query    SaveQuery             `yaml:"query"`
	Clusters []types.EntityCluster `yaml:"clusters"`
	Summary  SaveSummary           `yaml:"summary"`
}

// SaveQuery stores the search parameters in a serializable form.
type SaveQuery struct {
	Name       string `yaml:"name"`
	Role       string `yaml:"role,omitempty"`
	Company    string `yaml:"company,omitempty"`
	Location   string `yaml:"location,omitempty"`
	NumResults int    `yaml:"num_results"`
}

// SaveSummary stores cluster statistics and a timestamp.
type SaveSummary struct {
	Clusters        int       `yaml:"clusters"`
	TotalCandidates int       `yaml:"total_candidates"`
	AutoSelected    string    `yaml:"auto_selected,omitempty"`
	Timestamp       time.Time `yaml:"timestamp"`
}

// WriteSaveFile saves an entity search outcome to a YAML file.
func WriteSaveFile(path string, anchor types.AnchorFacts, numResults int, out Outcome) error {
	sf := SaveFile{
		Query: SaveQuery{
			Name:       out.Name,
			Role:       anchor.Role,
			Company:    anchor.Company,
			Location:   anchor.Location,
			NumResults: numResults,
		},
		Clusters: out.Clusters,
		Summary: SaveSummary{
			Clusters:        len(out.Clusters),
			TotalCandidates: out.TotalCandidates,
			AutoSelected:    out.AutoSelected,
			Timestamp:       time.Now(),
		},
	}

	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("marshaling save file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSaveFile loads a previously saved entity search from disk.
func ReadSaveFile(path string) (*SaveFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading save file: %w", err)
	}
	var sf SaveFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing save file: %w", err)
	}
	return &sf, nil
}

// Outcome reconstructs the search outcome stored in the file.
func (sf *SaveFile) Outcome() Outcome {
	clusters := sf.Clusters
	if clusters == nil {
		clusters = []types.EntityCluster{}
	}
	return Outcome{
		Name:            sf.Query.Name,
		Clusters:        clusters,
		TotalCandidates: sf.Summary.TotalCandidates,
		AutoSelected:    sf.Summary.AutoSelected,
	}
}
