package dataset

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/insider-sync/internal/model"
)

func baseRow() model.Row {
	value := 1500.0
	return model.Row{
		Date:            "2024-02-14",
		StockTicker:     "AAPL",
		Price:           "150.00",
		InsiderName:     "DOE JANE",
		Relationship:    "Officer (Chief Financial Officer)",
		TransactionType: model.TypeSale,
		Shares:          "10",
		Value:           &value,
		SharesTotal:     "2500",
		XMLLink:         "https://www.sec.gov/Archives/a.xml",
		IssuerSymbol:    "AAPL",
		InsiderCIK:      "0001214156",
	}
}

// rawFromClean renders cleaned rows back into raw form so they can be fed
// through Clean a second time.
func rawFromClean(rows []model.CleanRow) []model.Row {
	raw := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		sharesTotal := ""
		if r.SharesTotal != nil {
			sharesTotal = strconv.FormatFloat(*r.SharesTotal, 'f', -1, 64)
		}
		raw = append(raw, model.Row{
			Date:            r.Date.Format("2006-01-02"),
			StockTicker:     r.StockTicker,
			Price:           strconv.FormatFloat(r.Price, 'f', -1, 64),
			InsiderName:     r.InsiderName,
			Relationship:    r.Relationship,
			TransactionType: r.TransactionType,
			Shares:          strconv.FormatFloat(r.Shares, 'f', -1, 64),
			Value:           r.Value,
			SharesTotal:     sharesTotal,
			XMLLink:         r.XMLLink,
			IssuerSymbol:    r.IssuerSymbol,
			InsiderCIK:      r.InsiderCIK,
		})
	}
	return raw
}

func TestClean(t *testing.T) {
	rows := Clean([]model.Row{baseRow()})
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), r.Date)
	assert.Equal(t, "AAPL", r.StockTicker)
	assert.Equal(t, 150.0, r.Price)
	assert.Equal(t, "DOE JANE", r.InsiderName)
	assert.Equal(t, model.TypeSale, r.TransactionType)
	assert.Equal(t, 10.0, r.Shares)
	require.NotNil(t, r.Value)
	assert.Equal(t, 1500.0, *r.Value)
	require.NotNil(t, r.SharesTotal)
	assert.Equal(t, 2500.0, *r.SharesTotal)
	assert.Equal(t, "0001214156", r.InsiderCIK)
}

func TestClean_DropsGiftAndExercise(t *testing.T) {
	gift := baseRow()
	gift.TransactionType = model.TypeGift
	exercise := baseRow()
	exercise.TransactionType = model.TypeExercise
	sale := baseRow()

	rows := Clean([]model.Row{gift, exercise, sale})
	require.Len(t, rows, 1)
	assert.Equal(t, model.TypeSale, rows[0].TransactionType)
}

func TestClean_PriceRules(t *testing.T) {
	tests := []struct {
		name  string
		price string
		kept  bool
	}{
		{"positive", "150.00", true},
		{"positive integer", "3", true},
		{"missing", "", false},
		{"whitespace", "   ", false},
		{"non-numeric", "n/a", false},
		{"zero", "0", false},
		{"negative", "-5.25", false},
		{"nan", "NaN", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := baseRow()
			row.Price = tt.price
			rows := Clean([]model.Row{row})
			if tt.kept {
				assert.Len(t, rows, 1)
			} else {
				assert.Empty(t, rows)
			}
		})
	}
}

func TestClean_DropsMissingRequiredFields(t *testing.T) {
	noDate := baseRow()
	noDate.Date = ""
	noType := baseRow()
	noType.TransactionType = "  "
	noShares := baseRow()
	noShares.Shares = ""

	assert.Empty(t, Clean([]model.Row{noDate, noType, noShares}))
}

func TestClean_DateCoercion(t *testing.T) {
	tests := []struct {
		name string
		date string
		kept bool
		want time.Time
	}{
		{"iso", "2024-02-14", true, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)},
		{"us slashes", "02/14/2024", true, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2024-02-14T00:00:00Z", true, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)},
		{"padded", " 2024-02-14 ", true, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)},
		{"prose", "14 Feb 2024", false, time.Time{}},
		{"garbage", "not a date", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := baseRow()
			row.Date = tt.date
			rows := Clean([]model.Row{row})
			if !tt.kept {
				assert.Empty(t, rows)
				return
			}
			require.Len(t, rows, 1)
			assert.True(t, rows[0].Date.Equal(tt.want), "got %s", rows[0].Date)
		})
	}
}

func TestClean_DropsUnparseableShares(t *testing.T) {
	row := baseRow()
	row.Shares = "ten"
	assert.Empty(t, Clean([]model.Row{row}))
}

func TestClean_SharesTotalOptional(t *testing.T) {
	missing := baseRow()
	missing.SharesTotal = ""
	garbage := baseRow()
	garbage.SharesTotal = "unknown"

	rows := Clean([]model.Row{missing, garbage})
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].SharesTotal)
	assert.Nil(t, rows[1].SharesTotal)
}

func TestClean_ValueCarriedNotRecomputed(t *testing.T) {
	// A stale value survives untouched; cleaning never recomputes it.
	value := 999.99
	row := baseRow()
	row.Value = &value

	rows := Clean([]model.Row{row})
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Value)
	assert.Equal(t, 999.99, *rows[0].Value)

	row.Value = nil
	rows = Clean([]model.Row{row})
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Value)
}

func TestClean_UnknownTypeSurvives(t *testing.T) {
	row := baseRow()
	row.TransactionType = "X"

	rows := Clean([]model.Row{row})
	require.Len(t, rows, 1)
	assert.Equal(t, "X", rows[0].TransactionType)
}

func TestClean_Idempotent(t *testing.T) {
	noTotal := baseRow()
	noTotal.SharesTotal = ""
	noValue := baseRow()
	noValue.Value = nil
	noValue.Date = "02/15/2024"

	first := Clean([]model.Row{baseRow(), noTotal, noValue})
	require.Len(t, first, 3)

	second := Clean(rawFromClean(first))
	assert.Equal(t, first, second)
}

func TestClean_OrderPreserved(t *testing.T) {
	a := baseRow()
	a.InsiderName = "A"
	b := baseRow()
	b.InsiderName = "B"
	b.TransactionType = model.TypeGift
	c := baseRow()
	c.InsiderName = "C"

	rows := Clean([]model.Row{a, b, c})
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].InsiderName)
	assert.Equal(t, "C", rows[1].InsiderName)
}
