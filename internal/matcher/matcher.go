// Package matcher decides which incoming candidate tenders satisfy an
// organization's effective search parameters.
package matcher

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/sells-group/tender-cli/internal/model"
	"github.com/sells-group/tender-cli/internal/tender"
)

// wordRe matches runs of letters, digits and underscores.
var wordRe = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

// Reason names the check that rejected a candidate.
type Reason string

const (
	Accepted         Reason = ""
	RejectedExpired  Reason = "expired"
	RejectedRegion   Reason = "region"
	RejectedCategory Reason = "category"
	RejectedStage    Reason = "stage"
	RejectedPlatform Reason = "platform"
	RejectedText     Reason = "text"
)

// Evaluate runs the checks in order (expiry, region, category, stage,
// platform, text) and returns the first failing one, or Accepted.
func Evaluate(c model.CandidateTender, params model.SearchParameters, now time.Time) Reason {
	switch {
	case tender.CandidateExpired(c.Deadline, now):
		return RejectedExpired
	case !allowed(params.Regions, c.Region):
		return RejectedRegion
	case !allowed(params.Categories, c.Category):
		return RejectedCategory
	case !allowed(params.Stages, c.Stage):
		return RejectedStage
	case !allowed(params.Platforms, c.Platform):
		return RejectedPlatform
	case !TextMatches(c.Description, params.Terms, params.Rules):
		return RejectedText
	}
	return Accepted
}

// Match reports whether c passes every check.
func Match(c model.CandidateTender, params model.SearchParameters, now time.Time) bool {
	return Evaluate(c, params, now) == Accepted
}

// Filter returns the candidates that pass every check, in input order.
func Filter(candidates []model.CandidateTender, params model.SearchParameters, now time.Time) []model.CandidateTender {
	var out []model.CandidateTender
	for _, c := range candidates {
		if Match(c, params, now) {
			out = append(out, c)
		}
	}
	return out
}

// allowed passes everything when the allow-list is empty.
func allowed(list []string, value string) bool {
	return len(list) == 0 || slices.Contains(list, value)
}

// TextMatches reports whether description satisfies any free term or rule,
// case-insensitively. With no terms and no rules every description matches.
func TextMatches(description string, terms []string, rules []model.KeywordRule) bool {
	if len(terms) == 0 && len(rules) == 0 {
		return true
	}

	text := strings.ToLower(description)
	for _, term := range terms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}

	var words []string
	for _, r := range rules {
		switch r.Mode {
		case model.MatchNearby:
			if words == nil {
				words = wordRe.FindAllString(text, -1)
			}
			if nearbyWords(words, r.Term, r.Distance) {
				return true
			}
		case model.MatchAnyEnding:
			if anyEnding(text, r.Term) {
				return true
			}
		default:
			if r.Term != "" && strings.Contains(text, strings.ToLower(r.Term)) {
				return true
			}
		}
	}
	return false
}

// nearbyWords reports whether every word of term occurs inside some window
// of distance+len(target) consecutive words.
func nearbyWords(words []string, term string, distance int) bool {
	target := wordRe.FindAllString(strings.ToLower(term), -1)
	if len(target) == 0 || len(words) == 0 {
		return false
	}
	if distance < 0 {
		distance = 0
	}

	size := distance + len(target)
	for i := range words {
		window := words[i:min(i+size, len(words))]
		if containsAll(window, target) {
			return true
		}
	}
	return false
}

func containsAll(window, target []string) bool {
	for _, w := range target {
		if !slices.Contains(window, w) {
			return false
		}
	}
	return true
}

// anyEnding matches term with its last character removed as a substring.
func anyEnding(text, term string) bool {
	runes := []rune(strings.ToLower(term))
	if len(runes) == 0 {
		return false
	}
	return strings.Contains(text, string(runes[:len(runes)-1]))
}
