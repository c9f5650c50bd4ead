package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/tender-cli/internal/config"
	"github.com/sells-group/tender-cli/internal/model"
	"github.com/sells-group/tender-cli/internal/store"
)

const testINN = "1234567890"

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "organizations")
	return NewStore(store.NewLayout(config.StorageConfig{Dir: root})), filepath.Join(root, testINN)
}

func writeOrgFile(t *testing.T, orgDir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(orgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(orgDir, name), []byte(content), 0o644))
}

func TestLoad_CreatesDefaults(t *testing.T) {
	s, orgDir := newTestStore(t)

	params, err := s.Load(testINN)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSearchParameters(), params)

	raw, err := os.ReadFile(filepath.Join(orgDir, "search_parameters.json"))
	require.NoError(t, err)
	for _, key := range []string{"tools_and_terms", "search_modes", "regions", "categories", "stages", "platforms"} {
		assert.Contains(t, string(raw), `"`+key+`": []`)
	}
}

func TestLoad_ExistingFile(t *testing.T) {
	s, orgDir := newTestStore(t)
	writeOrgFile(t, orgDir, "search_parameters.json", `{
		"tools_and_terms": ["картридж"],
		"search_modes": [{"term": "wide printer", "mode": "nearby", "distance": 2}],
		"regions": ["Москва"],
		"platforms": null
	}`)

	params, err := s.Load(testINN)
	require.NoError(t, err)
	assert.Equal(t, []string{"картридж"}, params.Terms)
	assert.Equal(t, []model.KeywordRule{{Term: "wide printer", Mode: model.MatchNearby, Distance: 2}}, params.Rules)
	assert.Equal(t, []string{"Москва"}, params.Regions)
	assert.NotNil(t, params.Categories)
	assert.NotNil(t, params.Platforms)
}

func TestLoad_Corrupt(t *testing.T) {
	s, orgDir := newTestStore(t)
	writeOrgFile(t, orgDir, "search_parameters.json", `{"tools_and_terms": [`)

	_, err := s.Load(testINN)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search: load parameters")
}

func TestSave_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	params := model.SearchParameters{
		Terms: []string{"бумага"},
		Rules: []model.KeywordRule{{Term: "принтеры", Mode: model.MatchAnyEnding, Distance: 1}},
	}

	require.NoError(t, s.Save(testINN, params))

	got, err := s.Load(testINN)
	require.NoError(t, err)
	assert.Equal(t, []string{"бумага"}, got.Terms)
	assert.Equal(t, params.Rules, got.Rules)
	assert.Equal(t, []string{}, got.Stages)
}

func TestSave_Invalid(t *testing.T) {
	s, orgDir := newTestStore(t)

	err := s.Save(testINN, model.SearchParameters{
		Rules: []model.KeywordRule{{Term: "", Mode: model.MatchExact}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid parameters")

	err = s.Save(testINN, model.SearchParameters{
		Rules: []model.KeywordRule{{Term: "x", Mode: model.MatchNearby, Distance: -1}},
	})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(orgDir, "search_parameters.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestKeywordRules_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []model.KeywordRule
	}{
		{
			name:    "terms objects",
			content: `{"terms": [{"term": "принтер", "mode": "exact"}, {"term": "wide printer", "mode": "nearby", "distance": 3}, {"term": "картриджи", "mode": "any_ending"}]}`,
			want: []model.KeywordRule{
				{Term: "принтер", Mode: model.MatchExact, Distance: 1},
				{Term: "wide printer", Mode: model.MatchNearby, Distance: 3},
				{Term: "картриджи", Mode: model.MatchAnyEnding, Distance: 1},
			},
		},
		{
			name:    "legacy string terms",
			content: `{"terms": ["бумага", "тонер"]}`,
			want: []model.KeywordRule{
				{Term: "бумага", Mode: model.MatchExact, Distance: 1},
				{Term: "тонер", Mode: model.MatchExact, Distance: 1},
			},
		},
		{
			name:    "keywords key",
			content: `{"keywords": ["бумага"]}`,
			want:    []model.KeywordRule{{Term: "бумага", Mode: model.MatchExact, Distance: 1}},
		},
		{
			name:    "bare list",
			content: `["бумага", {"term": "тонер", "mode": "unknown"}]`,
			want: []model.KeywordRule{
				{Term: "бумага", Mode: model.MatchExact, Distance: 1},
				{Term: "тонер", Mode: model.MatchExact, Distance: 1},
			},
		},
		{
			name:    "empty object",
			content: `{}`,
			want:    []model.KeywordRule{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, orgDir := newTestStore(t)
			writeOrgFile(t, orgDir, "search_keywords.json", tt.content)

			rules, err := s.KeywordRules(testINN)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rules)
		})
	}
}

func TestKeywordRules_Missing(t *testing.T) {
	s, _ := newTestStore(t)
	rules, err := s.KeywordRules(testINN)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestKeywordRules_Malformed(t *testing.T) {
	s, orgDir := newTestStore(t)
	writeOrgFile(t, orgDir, "search_keywords.json", `{"terms": [42]}`)

	_, err := s.KeywordRules(testINN)
	require.Error(t, err)
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    model.OrganizationClassifiers
	}{
		{
			name:    "list",
			content: `{"basic_info": {"inn": "1234567890"}, "classifiers": {"okved": ["62.01", "46.51"]}}`,
			want:    model.OrganizationClassifiers{TaxID: "1234567890", IndustryCodes: []string{"62.01", "46.51"}},
		},
		{
			name:    "scalar string",
			content: `{"classifiers": {"okved": "62.01"}}`,
			want:    model.OrganizationClassifiers{IndustryCodes: []string{"62.01"}},
		},
		{
			name:    "scalar number",
			content: `{"classifiers": {"okved": 62}}`,
			want:    model.OrganizationClassifiers{IndustryCodes: []string{"62"}},
		},
		{
			name:    "empty scalar",
			content: `{"classifiers": {"okved": ""}}`,
			want:    model.OrganizationClassifiers{},
		},
		{
			name:    "no classifiers",
			content: `{"basic_info": {"inn": "1234567890"}}`,
			want:    model.OrganizationClassifiers{TaxID: "1234567890"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, orgDir := newTestStore(t)
			writeOrgFile(t, orgDir, "profile.json", tt.content)

			got, err := s.Classifiers(testINN)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifiers_MissingProfile(t *testing.T) {
	s, _ := newTestStore(t)
	got, err := s.Classifiers(testINN)
	require.NoError(t, err)
	assert.Equal(t, model.OrganizationClassifiers{}, got)
}

func TestEffective_NeverWritesMergedTerms(t *testing.T) {
	s, orgDir := newTestStore(t)
	writeOrgFile(t, orgDir, "search_parameters.json", `{"tools_and_terms": ["бумага"]}`)
	writeOrgFile(t, orgDir, "profile.json", `{"classifiers": {"okved": ["62.01"]}}`)
	writeOrgFile(t, orgDir, "search_keywords.json", `{"terms": [{"term": "тонер", "mode": "exact"}]}`)

	eff, err := s.Effective(testINN)
	require.NoError(t, err)
	assert.Equal(t, []string{"бумага", "62.01"}, eff.Terms)
	require.Len(t, eff.Rules, 1)
	assert.Equal(t, "тонер", eff.Rules[0].Term)

	persisted, err := s.Load(testINN)
	require.NoError(t, err)
	assert.Equal(t, []string{"бумага"}, persisted.Terms)
	assert.Empty(t, persisted.Rules)
}
