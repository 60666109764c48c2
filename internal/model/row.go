package model

import "time"

// Columns is the flattened dataset column order. The first ten columns are
// the extraction set consumed by the graph loader; issuer_symbol and
// insider_cik are provenance columns appended after them.
var Columns = []string{
	"date",
	"stock_ticker",
	"price",
	"insider_name",
	"relationship",
	"transaction_type",
	"shares",
	"value",
	"shares_total",
	"xml_link",
	"issuer_symbol",
	"insider_cik",
}

// Row is one flattened dataset row before cleaning. Document-sourced fields
// are raw strings; an absent value is the empty string.
type Row struct {
	Date            string   `json:"date"`
	StockTicker     string   `json:"stock_ticker"`
	Price           string   `json:"price"`
	InsiderName     string   `json:"insider_name"`
	Relationship    string   `json:"relationship"`
	TransactionType string   `json:"transaction_type"`
	Shares          string   `json:"shares"`
	Value           *float64 `json:"value"`
	SharesTotal     string   `json:"shares_total"`
	XMLLink         string   `json:"xml_link"`
	IssuerSymbol    string   `json:"issuer_symbol"`
	InsiderCIK      string   `json:"insider_cik"`
}

// CleanRow is a dataset row after the cleaning passes: required fields are
// coerced to native types, optional numerics are nil when absent.
type CleanRow struct {
	Date            time.Time `json:"date"`
	StockTicker     string    `json:"stock_ticker"`
	Price           float64   `json:"price"`
	InsiderName     string    `json:"insider_name"`
	Relationship    string    `json:"relationship"`
	TransactionType string    `json:"transaction_type"`
	Shares          float64   `json:"shares"`
	Value           *float64  `json:"value"`
	SharesTotal     *float64  `json:"shares_total"`
	XMLLink         string    `json:"xml_link"`
	IssuerSymbol    string    `json:"issuer_symbol"`
	InsiderCIK      string    `json:"insider_cik"`
}
