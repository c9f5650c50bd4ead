// Package search loads, saves and merges an organization's search
// configuration: persisted parameters, keyword rules kept by the editor and
// industry classifiers from the organization profile.
package search

import (
	"bytes"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/tender-cli/internal/model"
	"github.com/sells-group/tender-cli/internal/store"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Store persists search parameters under the organization directory.
type Store struct {
	layout *store.Layout
}

// NewStore creates a Store over layout.
func NewStore(layout *store.Layout) *Store {
	return &Store{layout: layout}
}

// Load returns the persisted parameters of inn, creating and persisting
// all-empty defaults when none exist.
func (s *Store) Load(inn string) (model.SearchParameters, error) {
	path, err := s.layout.SearchParametersPath(inn)
	if err != nil {
		return model.SearchParameters{}, err
	}

	params := model.DefaultSearchParameters()
	found, err := store.ReadJSON(path, &params)
	if err != nil {
		return model.SearchParameters{}, eris.Wrap(err, "search: load parameters")
	}
	if !found {
		zap.L().Info("search: creating default parameters", zap.String("inn", inn))
		if err := store.WriteJSON(path, params); err != nil {
			return model.SearchParameters{}, eris.Wrap(err, "search: save default parameters")
		}
		return params, nil
	}
	return normalize(params), nil
}

// Save validates and rewrites the parameters of inn.
func (s *Store) Save(inn string, params model.SearchParameters) error {
	if err := validate.Struct(params); err != nil {
		return eris.Wrap(err, "search: invalid parameters")
	}
	path, err := s.layout.SearchParametersPath(inn)
	if err != nil {
		return err
	}
	return eris.Wrap(store.WriteJSON(path, normalize(params)), "search: save parameters")
}

// KeywordRules reads the editor's keyword file. Accepted shapes are
// {"terms": [...]}, {"keywords": [...]} and a bare list; items are either
// rule objects or plain strings, which mean exact matching. A missing file
// yields no rules.
func (s *Store) KeywordRules(inn string) ([]model.KeywordRule, error) {
	path, err := s.layout.KeywordsPath(inn)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	found, err := store.ReadJSON(path, &raw)
	if err != nil {
		return nil, eris.Wrap(err, "search: load keyword rules")
	}
	if !found {
		return nil, nil
	}
	rules, err := decodeKeywordRules(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "search: decode %s", path)
	}
	return rules, nil
}

// Classifiers reads the tax id and industry codes of the organization
// profile. A missing profile yields empty classifiers.
func (s *Store) Classifiers(inn string) (model.OrganizationClassifiers, error) {
	path, err := s.layout.ProfilePath(inn)
	if err != nil {
		return model.OrganizationClassifiers{}, err
	}

	var profile struct {
		BasicInfo struct {
			INN string `json:"inn"`
		} `json:"basic_info"`
		Classifiers struct {
			OKVED stringList `json:"okved"`
		} `json:"classifiers"`
	}
	if _, err := store.ReadJSON(path, &profile); err != nil {
		return model.OrganizationClassifiers{}, eris.Wrap(err, "search: load profile")
	}
	return model.OrganizationClassifiers{
		TaxID:         profile.BasicInfo.INN,
		IndustryCodes: profile.Classifiers.OKVED,
	}, nil
}

// Effective loads the persisted parameters, keyword rules and classifiers
// of inn and merges them. Nothing is written back except the defaults Load
// may create.
func (s *Store) Effective(inn string) (model.SearchParameters, error) {
	params, err := s.Load(inn)
	if err != nil {
		return model.SearchParameters{}, err
	}
	rules, err := s.KeywordRules(inn)
	if err != nil {
		return model.SearchParameters{}, err
	}
	classifiers, err := s.Classifiers(inn)
	if err != nil {
		return model.SearchParameters{}, err
	}
	return Merge(params, classifiers, rules), nil
}

func decodeKeywordRules(raw json.RawMessage) ([]model.KeywordRule, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var items []json.RawMessage
	if raw[0] == '{' {
		var wrapper struct {
			Terms    []json.RawMessage `json:"terms"`
			Keywords []json.RawMessage `json:"keywords"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, err
		}
		items = append(items, wrapper.Terms...)
		items = append(items, wrapper.Keywords...)
	} else if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	rules := make([]model.KeywordRule, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		var rule model.KeywordRule
		if len(item) > 0 && item[0] == '"' {
			if err := json.Unmarshal(item, &rule.Term); err != nil {
				return nil, err
			}
			rule.Mode = model.MatchExact
			rule.Distance = model.DefaultNearbyDistance
		} else if err := json.Unmarshal(item, &rule); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// normalize replaces nil lists with empty ones so files always carry arrays.
func normalize(p model.SearchParameters) model.SearchParameters {
	d := model.DefaultSearchParameters()
	if p.Terms == nil {
		p.Terms = d.Terms
	}
	if p.Rules == nil {
		p.Rules = d.Rules
	}
	if p.Regions == nil {
		p.Regions = d.Regions
	}
	if p.Categories == nil {
		p.Categories = d.Categories
	}
	if p.Stages == nil {
		p.Stages = d.Stages
	}
	if p.Platforms == nil {
		p.Platforms = d.Platforms
	}
	return p
}

// stringList decodes either a JSON list or a single scalar into strings.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			if s := scalarString(it); s != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if s := scalarString(v); s != "" {
		*l = []string{s}
	} else {
		*l = nil
	}
	return nil
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool, nil:
		return ""
	default:
		b, _ := json.Marshal(val)
		return string(b)
	}
}
