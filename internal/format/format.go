// Package format renders monetary amounts for chat replies.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Amount renders a monetary amount with its currency symbol and grouped
// digits, without decimal places: chat replies quote whole amounts, the
// exact value stays in the ledger.
func Amount(amount decimal.Decimal, code string) string {
	symbol := code + " "
	if unit, err := currency.ParseISO(code); err == nil {
		symbol = printer.Sprint(currency.Symbol(unit))
	}

	return symbol + printer.Sprint(number.Decimal(amount.Round(0).IntPart()))
}
