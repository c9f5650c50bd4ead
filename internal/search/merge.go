package search

import (
	"strings"

	"github.com/sells-group/tender-cli/internal/model"
)

// Merge returns the effective parameters for one query: free terms are the
// union of params.Terms and the classifier industry codes (first occurrence
// order), and rules are params.Rules followed by the external rules. Rules
// with a blank term are dropped. The inputs are not modified.
func Merge(params model.SearchParameters, classifiers model.OrganizationClassifiers, rules []model.KeywordRule) model.SearchParameters {
	out := normalize(params)

	seen := make(map[string]bool, len(out.Terms)+len(classifiers.IndustryCodes))
	terms := make([]string, 0, len(out.Terms)+len(classifiers.IndustryCodes))
	for _, list := range [][]string{out.Terms, classifiers.IndustryCodes} {
		for _, term := range list {
			if strings.TrimSpace(term) == "" || seen[term] {
				continue
			}
			seen[term] = true
			terms = append(terms, term)
		}
	}
	out.Terms = terms

	merged := make([]model.KeywordRule, 0, len(out.Rules)+len(rules))
	for _, list := range [][]model.KeywordRule{out.Rules, rules} {
		for _, r := range list {
			if strings.TrimSpace(r.Term) == "" {
				continue
			}
			if r.Mode == "" {
				r.Mode = model.MatchExact
			}
			merged = append(merged, r)
		}
	}
	out.Rules = merged
	return out
}
