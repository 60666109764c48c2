// Package dataset turns parsed filings into tabular rows and scrubs them
// into a typed dataset ready for storage and export.
package dataset

import (
	"github.com/sells-group/insider-sync/internal/model"
)

// Flatten expands each filing into one row per transaction, carrying the
// filing-level fields onto every row. Order follows the filings slice and,
// within a filing, the document order of its transactions.
func Flatten(filings []model.Filing, ticker string) []model.Row {
	var rows []model.Row
	for _, f := range filings {
		for _, tx := range f.Transactions {
			rows = append(rows, model.Row{
				Date:            tx.Date,
				StockTicker:     ticker,
				Price:           tx.Cost,
				InsiderName:     f.InsiderName,
				Relationship:    f.Relationship,
				TransactionType: tx.Type,
				Shares:          tx.Shares,
				Value:           tx.Value,
				SharesTotal:     tx.SharesTotal,
				XMLLink:         f.XMLLink,
				IssuerSymbol:    f.IssuerSymbol,
				InsiderCIK:      f.InsiderCIK,
			})
		}
	}
	return rows
}
