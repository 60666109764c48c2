package model

// Transaction type labels produced by the Form 4 code mapping. Codes
// outside the mapping flow through downstream as their raw value.
const (
	TypePurchase = "Purchase"
	TypeSale     = "Sale"
	TypeGift     = "Gift"
	TypeExercise = "Exercise"
)

// Transaction is a single non-derivative entry from a Form 4 ownership
// document. String fields hold the raw document text and are empty when
// the element is absent; Value is computed at parse time and nil when
// either operand is missing or non-numeric.
type Transaction struct {
	Date        string   `json:"date"`
	Type        string   `json:"transaction_type"`
	Cost        string   `json:"cost"`
	Shares      string   `json:"shares"`
	SharesTotal string   `json:"shares_total"`
	Value       *float64 `json:"value"`
}

// Filing is one processed Form 4 filing: the reporting insider, where the
// document came from, and its transaction entries.
type Filing struct {
	DetailURL    string        `json:"detail_url"`
	XMLLink      string        `json:"xml_link"`
	IssuerSymbol string        `json:"issuer_symbol"`
	InsiderName  string        `json:"insider_name"`
	InsiderCIK   string        `json:"insider_cik"`
	Relationship string        `json:"relationship"`
	Transactions []Transaction `json:"transactions"`
}
