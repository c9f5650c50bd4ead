package model

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// MatchMode selects the lexical strategy of a keyword rule.
type MatchMode string

const (
	// MatchExact matches when the term is a literal substring of the text.
	MatchExact MatchMode = "exact_in_text"
	// MatchNearby matches when all words of the term fall inside a sliding window.
	MatchNearby MatchMode = "nearby_words"
	// MatchAnyEnding matches the term with its last character stripped.
	MatchAnyEnding MatchMode = "any_ending"
)

// DefaultNearbyDistance is used when a rule omits its distance.
const DefaultNearbyDistance = 1

var modeAliases = map[string]MatchMode{
	"exact":         MatchExact,
	"exact_in_text": MatchExact,
	"nearby":        MatchNearby,
	"nearby_words":  MatchNearby,
	"any_ending":    MatchAnyEnding,
	// Editor display labels.
	"точное совпадение": MatchExact,
	"слова рядом":       MatchNearby,
	"любые окончания":   MatchAnyEnding,
}

// ParseMatchMode translates canonical names and legacy aliases into a
// MatchMode. Unrecognized values fall back to MatchExact.
func ParseMatchMode(s string) MatchMode {
	if m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m
	}
	return MatchExact
}

// KeywordRule is a mode-qualified search term.
type KeywordRule struct {
	Term     string    `json:"term" yaml:"term" validate:"required"`
	Mode     MatchMode `json:"mode" yaml:"mode"`
	Distance int       `json:"distance" yaml:"distance" validate:"gte=0"`
}

// UnmarshalJSON accepts legacy mode aliases and a missing distance.
func (r *KeywordRule) UnmarshalJSON(data []byte) error {
	var raw struct {
		Term     string `json:"term"`
		Mode     string `json:"mode"`
		Distance *int   `json:"distance"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "keyword rule: decode")
	}
	r.Term = raw.Term
	r.Mode = ParseMatchMode(raw.Mode)
	r.Distance = DefaultNearbyDistance
	if raw.Distance != nil {
		r.Distance = *raw.Distance
	}
	return nil
}

// SearchParameters is an organization's search configuration. An empty
// allow-list places no restriction on its dimension.
type SearchParameters struct {
	Terms      []string      `json:"tools_and_terms" yaml:"tools_and_terms"`
	Rules      []KeywordRule `json:"search_modes" yaml:"search_modes" validate:"dive"`
	Regions    []string      `json:"regions" yaml:"regions"`
	Categories []string      `json:"categories" yaml:"categories"`
	Stages     []string      `json:"stages" yaml:"stages"`
	Platforms  []string      `json:"platforms" yaml:"platforms"`
}

// DefaultSearchParameters returns all-empty parameters with non-nil slices,
// so they serialize as empty JSON arrays.
func DefaultSearchParameters() SearchParameters {
	return SearchParameters{
		Terms:      []string{},
		Rules:      []KeywordRule{},
		Regions:    []string{},
		Categories: []string{},
		Stages:     []string{},
		Platforms:  []string{},
	}
}

// OrganizationClassifiers carries the profile data folded into search terms.
type OrganizationClassifiers struct {
	TaxID         string   `json:"inn"`
	IndustryCodes []string `json:"okved"`
}
