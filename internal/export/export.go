// Package export renders cleaned transaction datasets to CSV and XLSX.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/insider-sync/internal/model"
)

// WriteCSV writes rows as CSV with a header row in dataset column order.
func WriteCSV(w io.Writer, rows []model.CleanRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Columns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return eris.Wrap(err, "export: write record")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteXLSX writes rows to a single-sheet workbook at path.
func WriteXLSX(path string, rows []model.CleanRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("transactions")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range model.Columns {
		header.AddCell().SetString(col)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Date.Format("2006-01-02"))
		row.AddCell().SetString(r.StockTicker)
		row.AddCell().SetFloat(r.Price)
		row.AddCell().SetString(r.InsiderName)
		row.AddCell().SetString(r.Relationship)
		row.AddCell().SetString(r.TransactionType)
		row.AddCell().SetFloat(r.Shares)
		setOptionalFloat(row.AddCell(), r.Value)
		setOptionalFloat(row.AddCell(), r.SharesTotal)
		row.AddCell().SetString(r.XMLLink)
		row.AddCell().SetString(r.IssuerSymbol)
		row.AddCell().SetString(r.InsiderCIK)
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

// record renders one row in model.Columns order. Absent optional values
// become empty fields.
func record(r model.CleanRow) []string {
	return []string{
		r.Date.Format("2006-01-02"),
		r.StockTicker,
		formatFloat(r.Price),
		r.InsiderName,
		r.Relationship,
		r.TransactionType,
		formatFloat(r.Shares),
		formatOptionalFloat(r.Value),
		formatOptionalFloat(r.SharesTotal),
		r.XMLLink,
		r.IssuerSymbol,
		r.InsiderCIK,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func setOptionalFloat(c *xlsx.Cell, v *float64) {
	if v != nil {
		c.SetFloat(*v)
	}
}
