// Package pending holds unconfirmed, extraction-derived transactions while
// the sender reviews, edits, confirms or discards them.
package pending

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction is an unconfirmed transaction awaiting review. It only becomes
// a ledger entry once the sender confirms it.
type Transaction struct {
	Type        string
	Amount      decimal.Decimal
	Currency    string
	Merchant    string
	Category    string
	Date        string
	Description string
	Confidence  string
}

// ErrInvalidAmount is returned for edits that do not produce a positive
// number.
var ErrInvalidAmount = errors.New("Amount must be a valid positive number.")

// ApplyEdit returns a copy of the transaction with one field updated.
// Unknown fields and invalid amounts leave the transaction untouched and
// return an error the caller can surface verbatim.
//
// The literal value "null" clears the optional merchant and date fields.
func (t Transaction) ApplyEdit(field, value string) (Transaction, error) {
	value = strings.TrimSpace(value)

	switch strings.ToLower(field) {
	case "amount":
		amount, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
		if err != nil || !amount.IsPositive() {
			return t, ErrInvalidAmount
		}
		t.Amount = amount
	case "merchant":
		t.Merchant = clearable(value)
	case "date":
		t.Date = clearable(value)
	case "type":
		t.Type = value
	case "currency":
		t.Currency = value
	case "category":
		t.Category = value
	case "description":
		t.Description = value
	case "confidence":
		t.Confidence = value
	default:
		return t, fmt.Errorf("Unknown field: %s", field)
	}

	return t, nil
}

func clearable(value string) string {
	if value == "null" {
		return ""
	}
	return value
}
