package fields

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sells-group/tender-cli/internal/model"
)

// productRe matches an article label, its code, and the first number after
// it on the same line as the price. The price never spans a line break.
var productRe = regexp.MustCompile(`(?i)(?:артикул|арт\.?)` + sep +
	`(?P<code>[\p{L}\p{N}_]+).*?(?P<price>\d+[ \t\x{00A0}\d.,]*)`)

var (
	codeIdx  = productRe.SubexpIndex("code")
	priceIdx = productRe.SubexpIndex("price")
)

// ProductCandidates returns one candidate per non-overlapping match, in scan
// order. Duplicates are kept.
func ProductCandidates(text string) []model.ProductCandidate {
	matches := productRe.FindAllStringSubmatch(text, -1)
	candidates := make([]model.ProductCandidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, model.ProductCandidate{
			Code:  m[codeIdx],
			Price: stripSpace(m[priceIdx]),
		})
	}
	return candidates
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
