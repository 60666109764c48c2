package edgar

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/insider-sync/internal/fetcher"
	"github.com/sells-group/insider-sync/internal/model"
)

// transactionCodeLabels maps Form 4 transaction codes to the labels used in
// the dataset. Codes outside the table flow through verbatim.
var transactionCodeLabels = map[string]string{
	"P": model.TypePurchase,
	"S": model.TypeSale,
	"F": model.TypeGift,
	"M": model.TypeExercise,
}

// ownershipDocument mirrors the subset of the Form 4 schema consumed here.
type ownershipDocument struct {
	Issuer          issuer             `xml:"issuer"`
	ReportingOwners []reportingOwner   `xml:"reportingOwner"`
	NonDerivative   nonDerivativeTable `xml:"nonDerivativeTable"`
}

type issuer struct {
	TradingSymbol string `xml:"issuerTradingSymbol"`
}

type reportingOwner struct {
	CIK          string             `xml:"reportingOwnerId>rptOwnerCik"`
	Name         string             `xml:"reportingOwnerId>rptOwnerName"`
	Relationship *ownerRelationship `xml:"reportingOwnerRelationship"`
}

type ownerRelationship struct {
	IsDirector        string `xml:"isDirector"`
	IsOfficer         string `xml:"isOfficer"`
	IsTenPercentOwner string `xml:"isTenPercentOwner"`
	IsOther           string `xml:"isOther"`
	OfficerTitle      string `xml:"officerTitle"`
}

type nonDerivativeTable struct {
	Transactions []nonDerivativeTransaction `xml:"nonDerivativeTransaction"`
}

type nonDerivativeTransaction struct {
	Date        xmlValue               `xml:"transactionDate"`
	Coding      transactionCoding      `xml:"transactionCoding"`
	Amounts     transactionAmounts     `xml:"transactionAmounts"`
	PostAmounts postTransactionAmounts `xml:"postTransactionAmounts"`
}

type transactionCoding struct {
	Code string `xml:"transactionCode"`
}

type transactionAmounts struct {
	Shares        xmlValue `xml:"transactionShares"`
	PricePerShare xmlValue `xml:"transactionPricePerShare"`
}

type postTransactionAmounts struct {
	SharesOwned xmlValue `xml:"sharesOwnedFollowingTransaction"`
}

// xmlValue is the value-wrapper element the schema nests most leaf fields in.
type xmlValue struct {
	Value string `xml:"value"`
}

func (v xmlValue) text() string { return strings.TrimSpace(v.Value) }

// ParseForm4 extracts the reporting owner and the non-derivative
// transactions from a Form 4 ownership document. A document that fails to
// parse is reported absent, never fatal. Fields missing from the document
// stay empty.
func (c *Client) ParseForm4(content []byte, detailURL, xmlLink string) (*model.Filing, bool) {
	var doc ownershipDocument
	if err := fetcher.DecodeXML(bytes.NewReader(content), &doc); err != nil {
		zap.L().Warn("form4 parse failed",
			zap.String("xml_link", xmlLink),
			zap.Error(err),
		)
		return nil, false
	}

	filing := &model.Filing{
		DetailURL:    detailURL,
		XMLLink:      xmlLink,
		IssuerSymbol: strings.TrimSpace(doc.Issuer.TradingSymbol),
	}

	// Multi-owner filings report the primary owner first; only that one is
	// carried into the dataset.
	if len(doc.ReportingOwners) > 0 {
		owner := doc.ReportingOwners[0]
		filing.InsiderName = strings.TrimSpace(owner.Name)
		filing.InsiderCIK = strings.TrimSpace(owner.CIK)
		filing.Relationship = relationshipString(owner.Relationship)
	}

	for _, txn := range doc.NonDerivative.Transactions {
		code := strings.TrimSpace(txn.Coding.Code)
		label, ok := transactionCodeLabels[code]
		if !ok {
			label = code
			if code != "" {
				zap.L().Debug("unmapped transaction code",
					zap.String("code", code),
					zap.String("xml_link", xmlLink),
				)
			}
		}

		cost := txn.Amounts.PricePerShare.text()
		shares := txn.Amounts.Shares.text()

		filing.Transactions = append(filing.Transactions, model.Transaction{
			Date:        txn.Date.text(),
			Type:        label,
			Cost:        cost,
			Shares:      shares,
			SharesTotal: txn.PostAmounts.SharesOwned.text(),
			Value:       transactionValue(cost, shares),
		})
	}

	return filing, true
}

// relationshipString renders the owner's relationship flags in their fixed
// order. A flag counts as set only when the field is exactly "1".
func relationshipString(rel *ownerRelationship) string {
	if rel == nil {
		return ""
	}

	var parts []string
	if flagSet(rel.IsDirector) {
		parts = append(parts, "Director")
	}
	if flagSet(rel.IsOfficer) {
		if title := strings.TrimSpace(rel.OfficerTitle); title != "" {
			parts = append(parts, fmt.Sprintf("Officer (%s)", title))
		} else {
			parts = append(parts, "Officer")
		}
	}
	if flagSet(rel.IsTenPercentOwner) {
		parts = append(parts, "10% Owner")
	}
	if flagSet(rel.IsOther) {
		parts = append(parts, "Other")
	}
	return strings.Join(parts, ", ")
}

func flagSet(s string) bool { return strings.TrimSpace(s) == "1" }

// transactionValue computes price times shares rounded to cents, or nil
// when either operand is missing or non-numeric.
func transactionValue(cost, shares string) *float64 {
	c, errC := strconv.ParseFloat(cost, 64)
	s, errS := strconv.ParseFloat(shares, 64)
	if errC != nil || errS != nil {
		return nil
	}
	v := math.Round(c*s*100) / 100
	return &v
}
