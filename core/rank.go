package core

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// RankClauses orders candidates by relevance (highest first) and keeps at
// most k of them. Ties keep their input order. k <= 0 means MaxRankedClauses.
// The input slice is not modified.
func RankClauses(candidates []Clause, k int) []Clause {
	if k <= 0 || k > MaxRankedClauses {
		k = MaxRankedClauses
	}
	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b Clause) int {
		switch {
		case a.Relevance > b.Relevance:
			return -1
		case a.Relevance < b.Relevance:
			return 1
		}
		return 0
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// NewEvidence builds evidence from the kept clauses, preserving their order.
func NewEvidence(kept []Clause, verdicts []Verdict) *Evidence {
	lines := make([]string, len(kept))
	for i, c := range kept {
		lines[i] = "- " + c.Text
	}
	return &Evidence{
		Clauses:  slices.Clone(kept),
		Verdicts: slices.Clone(verdicts),
		Text:     strings.Join(lines, "\n"),
	}
}

// MarshalSections encodes sections as the indented JSON list stored in
// section artifacts.
func MarshalSections(sections []Section) ([]byte, error) {
	if sections == nil {
		sections = []Section{}
	}
	return json.MarshalIndent(sections, "", "  ")
}

// UnmarshalSections decodes a section artifact.
func UnmarshalSections(data []byte) ([]Section, error) {
	var sections []Section
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("decoding sections: %w", err)
	}
	return sections, nil
}

// MarshalClauses encodes a ranked clause set.
func MarshalClauses(clauses []Clause) ([]byte, error) {
	if clauses == nil {
		clauses = []Clause{}
	}
	return json.MarshalIndent(clauses, "", "  ")
}

// UnmarshalClauses decodes a ranked clause set.
func UnmarshalClauses(data []byte) ([]Clause, error) {
	var clauses []Clause
	if err := json.Unmarshal(data, &clauses); err != nil {
		return nil, fmt.Errorf("decoding clauses: %w", err)
	}
	return clauses, nil
}
