// Package tender assembles canonical registry records from fields found in
// uploaded documents and evaluates deadline-derived status.
package tender

import (
	"strings"
	"time"

	"github.com/sells-group/tender-cli/internal/model"
)

// Build assembles a manually ingested tender. Missing fields fall back to
// defaults: the number is the customer tax id or "manual", and the deadline
// is now. Status is derived from the deadline at now.
func Build(fields model.TenderFields, now time.Time) model.TenderRecord {
	number := model.ManualTenderNumber
	if fields.CustomerTaxID != nil && strings.TrimSpace(*fields.CustomerTaxID) != "" {
		number = strings.TrimSpace(*fields.CustomerTaxID)
	}

	deadline := now.Format(model.ManualDeadlineLayout)
	if fields.SubmissionDeadline != nil && strings.TrimSpace(*fields.SubmissionDeadline) != "" {
		deadline = strings.TrimSpace(*fields.SubmissionDeadline)
	}

	return model.TenderRecord{
		Number:   number,
		Title:    model.ManualTenderTitle,
		Price:    0,
		Deadline: deadline,
		URL:      number,
		Platform: model.ManualTenderPlatform,
		Status:   EvaluateStatus(deadline, now),
	}
}

// EvaluateStatus parses a DD.MM.YYYY HH:MM deadline in now's location.
// A deadline at or before now is expired. An unparsable deadline is active.
func EvaluateStatus(deadline string, now time.Time) model.TenderStatus {
	t, err := time.ParseInLocation(model.ManualDeadlineLayout, strings.TrimSpace(deadline), now.Location())
	if err != nil {
		return model.TenderStatusActive
	}
	if !t.After(now) {
		return model.TenderStatusExpired
	}
	return model.TenderStatusActive
}

// CandidateExpired reports whether a scraped candidate's YYYY-MM-DD deadline
// (midnight in now's location) is at or before now. Missing or unparsable
// deadlines never expire.
func CandidateExpired(deadline string, now time.Time) bool {
	deadline = strings.TrimSpace(deadline)
	if deadline == "" {
		return false
	}
	t, err := time.ParseInLocation(model.CandidateDeadlineLayout, deadline, now.Location())
	if err != nil {
		return false
	}
	return !t.After(now)
}
