package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/insider-sync/internal/model"
)

// dateLayouts are the accepted transaction date forms, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
}

// Clean scrubs flattened rows into typed records. Passes run in order: gift
// and exercise transactions go first, then rows whose price is missing,
// non-numeric, or not positive, then rows missing a date, type, or share
// count, and finally the survivors are coerced into their storage types.
// Feeding the survivors back through drops nothing further.
func Clean(rows []model.Row) []model.CleanRow {
	priced := coercePrices(dropNonMarket(rows))
	return coerceRemaining(dropIncomplete(priced))
}

func dropNonMarket(rows []model.Row) []model.Row {
	kept := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if r.TransactionType == model.TypeGift || r.TransactionType == model.TypeExercise {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// pricedRow carries the parsed price alongside the raw row so later passes
// do not reparse it.
type pricedRow struct {
	model.Row
	price float64
}

func coercePrices(rows []model.Row) []pricedRow {
	kept := make([]pricedRow, 0, len(rows))
	for _, r := range rows {
		price, ok := parseNumber(r.Price)
		if !ok || price <= 0 {
			zap.L().Debug("dropping row without a usable price",
				zap.String("ticker", r.StockTicker),
				zap.String("price", r.Price))
			continue
		}
		kept = append(kept, pricedRow{Row: r, price: price})
	}
	return kept
}

func dropIncomplete(rows []pricedRow) []pricedRow {
	kept := make([]pricedRow, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Date) == "" ||
			strings.TrimSpace(r.TransactionType) == "" ||
			strings.TrimSpace(r.Shares) == "" {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func coerceRemaining(rows []pricedRow) []model.CleanRow {
	out := make([]model.CleanRow, 0, len(rows))
	for _, r := range rows {
		date, ok := parseDate(r.Date)
		if !ok {
			zap.L().Warn("dropping row with unparseable date",
				zap.String("ticker", r.StockTicker),
				zap.String("date", r.Date))
			continue
		}
		shares, ok := parseNumber(r.Shares)
		if !ok {
			zap.L().Warn("dropping row with unparseable share count",
				zap.String("ticker", r.StockTicker),
				zap.String("shares", r.Shares))
			continue
		}
		var sharesTotal *float64
		if v, ok := parseNumber(r.SharesTotal); ok {
			sharesTotal = &v
		}
		out = append(out, model.CleanRow{
			Date:            date,
			StockTicker:     r.StockTicker,
			Price:           r.price,
			InsiderName:     r.InsiderName,
			Relationship:    r.Relationship,
			TransactionType: r.TransactionType,
			Shares:          shares,
			Value:           r.Value,
			SharesTotal:     sharesTotal,
			XMLLink:         r.XMLLink,
			IssuerSymbol:    r.IssuerSymbol,
			InsiderCIK:      r.InsiderCIK,
		})
	}
	return out
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
