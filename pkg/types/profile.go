// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Profile is the structured summary assembled for a selected entity cluster.
// Profiles are derived on demand from the cluster's sources and never cached.
type Profile struct {
	// Name is the person's name as supplied by the caller.
	Name string `json:"name" yaml:"name"`

	// Headline is a one-line description (e.g. role and employer).
	Headline string `json:"headline" yaml:"headline"`

	// Summary is the full narrative summary.
	Summary string `json:"summary" yaml:"summary"`

	// Sections holds the summary split by focus area when the summarization
	// tier supports section hints, otherwise a single "Professional Summary"
	// section.
	Sections []ProfileSection `json:"sections" yaml:"sections"`

	// Links lists the source pages that informed the profile, deduplicated
	// by URL.
	Links []ProfileLink `json:"links" yaml:"links"`

	// Metadata carries auxiliary values, including "generated_by" naming the
	// summarization tier that produced the content.
	Metadata map[string]string `json:"metadata" yaml:"metadata"`

	// GeneratedAt is the assembly timestamp.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// ProfileSection is one titled portion of a profile.
type ProfileSection struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// ProfileLink is one source citation.
type ProfileLink struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}
