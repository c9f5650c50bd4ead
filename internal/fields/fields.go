// Package fields pulls structured tender fields and catalog item mentions
// out of extracted document text.
package fields

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sells-group/tender-cli/internal/model"
)

// sep tolerates colons, ordinary and non-breaking spaces between a label and its value.
const sep = `[\s\x{00A0}:]+`

var (
	customerTaxIDRe = regexp.MustCompile(`(?i)ИНН[\s\x{00A0}]+заказчика` + sep + `(\d{10,12})`)
	deadlineRe      = regexp.MustCompile(`(?i)Срок[\s\x{00A0}]+(?:исполнения|подачи(?:[\s\x{00A0}]+заявок)?)` + sep +
		`(\d{2}\.\d{2}\.\d{4}[\s\x{00A0}]\d{2}:\d{2})`)
)

// Extract returns the fields found in text. Fields without a match are left nil.
func Extract(text string) model.TenderFields {
	var f model.TenderFields
	if m := customerTaxIDRe.FindStringSubmatch(text); m != nil {
		inn := m[1]
		f.CustomerTaxID = &inn
	}
	if m := deadlineRe.FindStringSubmatch(text); m != nil {
		deadline := normalizeSpace(m[1])
		f.SubmissionDeadline = &deadline
	}
	return f
}

// normalizeSpace turns the separator between date and time (tab, newline,
// non-breaking space) into a plain space so the deadline parses with the
// manual layout.
func normalizeSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}
