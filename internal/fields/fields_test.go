package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_BothFields(t *testing.T) {
	text := "Извещение\nИНН заказчика: 7701234567\nСрок исполнения: 01.01.2099 10:00\n"

	f := Extract(text)
	require.NotNil(t, f.CustomerTaxID)
	require.NotNil(t, f.SubmissionDeadline)
	assert.Equal(t, "7701234567", *f.CustomerTaxID)
	assert.Equal(t, "01.01.2099 10:00", *f.SubmissionDeadline)
}

func TestExtract_LabelVariants(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		inn      string
		deadline string
	}{
		{"lower case, no colon", "инн заказчика 123456789012 срок исполнения 15.03.2030 09:30", "123456789012", "15.03.2030 09:30"},
		{"extra whitespace", "ИНН   заказчика :  7701234567\nСрок\tисполнения:\t01.02.2031 18:00", "7701234567", "01.02.2031 18:00"},
		{"non-breaking spaces", "ИНН заказчика: 7701234567 Срок подачи заявок: 01.02.2031 18:00", "7701234567", "01.02.2031 18:00"},
		{"submission label", "Срок подачи: 20.12.2029 12:00", "", "20.12.2029 12:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Extract(tt.text)
			if tt.inn == "" {
				assert.Nil(t, f.CustomerTaxID)
			} else {
				require.NotNil(t, f.CustomerTaxID)
				assert.Equal(t, tt.inn, *f.CustomerTaxID)
			}
			require.NotNil(t, f.SubmissionDeadline)
			assert.Equal(t, tt.deadline, *f.SubmissionDeadline)
		})
	}
}

func TestExtract_TaxIDLength(t *testing.T) {
	assert.Nil(t, Extract("ИНН заказчика: 123456789").CustomerTaxID)
	f := Extract("ИНН заказчика: 1234567890123")
	require.NotNil(t, f.CustomerTaxID)
	assert.Equal(t, "123456789012", *f.CustomerTaxID)
}

func TestExtract_NoMatches(t *testing.T) {
	f := Extract("Просто текст без реквизитов. Срок исполнения: до конца года")
	assert.Nil(t, f.CustomerTaxID)
	assert.Nil(t, f.SubmissionDeadline)
}

func TestExtract_FirstMatchWins(t *testing.T) {
	f := Extract("Срок исполнения: 01.01.2099 10:00\nСрок исполнения: 02.02.2099 11:00")
	require.NotNil(t, f.SubmissionDeadline)
	assert.Equal(t, "01.01.2099 10:00", *f.SubmissionDeadline)
}

func TestExtract_DeadlineSeparatorNormalized(t *testing.T) {
	for name, text := range map[string]string{
		"tab":     "Срок исполнения: 01.01.2000\t10:00",
		"newline": "Срок исполнения: 01.01.2000\n10:00",
		"nbsp":    "Срок исполнения: 01.01.2000\u00a010:00",
	} {
		t.Run(name, func(t *testing.T) {
			f := Extract(text)
			require.NotNil(t, f.SubmissionDeadline)
			assert.Equal(t, "01.01.2000 10:00", *f.SubmissionDeadline)
		})
	}
}
