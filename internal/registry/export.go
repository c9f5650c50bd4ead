package registry

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/tender-cli/internal/model"
)

// ExportSheet is the sheet name used by ExportXLSX.
const ExportSheet = "Реестр"

var exportHeader = []string{"number", "title", "price", "deadline", "url", "platform", "status"}

// ExportXLSX writes records to a single-sheet workbook at path, one row per
// record after a header row.
func ExportXLSX(records []model.TenderRecord, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(ExportSheet)
	if err != nil {
		return eris.Wrap(err, "registry: add export sheet")
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetString(h)
	}

	for _, rec := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.Number)
		row.AddCell().SetString(rec.Title)
		row.AddCell().SetFloat(float64(rec.Price))
		row.AddCell().SetString(rec.Deadline)
		row.AddCell().SetString(rec.URL)
		row.AddCell().SetString(rec.Platform)
		row.AddCell().SetString(string(rec.Status))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "registry: save export %s", path)
	}
	return nil
}
