package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// TenderStatus is the lifecycle state of a registry record.
type TenderStatus string

const (
	TenderStatusActive  TenderStatus = "active"
	TenderStatusExpired TenderStatus = "expired"
	TenderStatusNew     TenderStatus = "new"
)

// Date layouts used by tender deadlines.
const (
	// ManualDeadlineLayout is DD.MM.YYYY HH:MM, used for manually ingested tenders.
	ManualDeadlineLayout = "02.01.2006 15:04"
	// CandidateDeadlineLayout is YYYY-MM-DD, used by scraped candidates.
	CandidateDeadlineLayout = "2006-01-02"
)

// Defaults applied to manually ingested tenders.
const (
	ManualTenderTitle    = "Ручная закупка"
	ManualTenderPlatform = "manual"
	ManualTenderNumber   = "manual"
)

// legacyStatuses maps status labels written by older registry files.
var legacyStatuses = map[string]TenderStatus{
	"актуальна":  TenderStatusActive,
	"просрочена": TenderStatusExpired,
	"новый":      TenderStatusNew,
}

// NormalizeStatus maps a stored status label to a TenderStatus. Unknown
// labels are kept as-is so that out-of-band edits survive a round trip.
func NormalizeStatus(s string) TenderStatus {
	if st, ok := legacyStatuses[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st
	}
	if s == "" {
		return TenderStatusNew
	}
	return TenderStatus(s)
}

// TenderFields holds the structured fields found in extracted text.
// Nil pointers mean the field was not found.
type TenderFields struct {
	CustomerTaxID      *string `json:"customer_inn,omitempty"`
	SubmissionDeadline *string `json:"submission_deadline,omitempty"`
}

// TenderRecord is the canonical registry entry. Number is unique within an
// organization's registry.
type TenderRecord struct {
	Number   string       `json:"number" validate:"required"`
	Title    string       `json:"title"`
	Price    Amount       `json:"price"`
	Deadline string       `json:"deadline"`
	URL      string       `json:"url"`
	Platform string       `json:"platform"`
	Status   TenderStatus `json:"status" validate:"required"`
}

// CandidateTender is an incoming tender awaiting matching.
type CandidateTender struct {
	Number      string       `json:"number"`
	Title       string       `json:"title"`
	Price       Amount       `json:"price"`
	Deadline    string       `json:"deadline"`
	URL         string       `json:"url"`
	Platform    string       `json:"platform"`
	Status      TenderStatus `json:"status,omitempty"`
	Region      string       `json:"region,omitempty"`
	Category    string       `json:"category,omitempty"`
	Stage       string       `json:"stage,omitempty"`
	Description string       `json:"description,omitempty"`
}

// Record converts a matched candidate into a registry record. Candidates
// without a status are stored as new.
func (c CandidateTender) Record() TenderRecord {
	status := c.Status
	if status == "" {
		status = TenderStatusNew
	}
	return TenderRecord{
		Number:   c.Number,
		Title:    c.Title,
		Price:    c.Price,
		Deadline: c.Deadline,
		URL:      c.URL,
		Platform: c.Platform,
		Status:   status,
	}
}

// Amount is a procurement price (NMCK). It decodes JSON numbers, numeric
// strings with spaces or a decimal comma, and null. Anything else, such as
// "договорная", decodes as 0.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return eris.Wrap(err, "amount: decode string")
		}
		v, err := ParseAmount(s)
		if err != nil {
			zap.L().Debug("amount: non-numeric price, using 0", zap.String("price", s))
			return nil
		}
		*a = v
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		zap.L().Debug("amount: unexpected price value, using 0", zap.ByteString("price", data))
		return nil
	}
	*a = Amount(f)
	return nil
}

// ParseAmount parses a human-entered price such as "1 500,50".
func ParseAmount(s string) (Amount, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', '\t':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "amount: parse %q", s)
	}
	return Amount(f), nil
}
