// Package intent classifies raw user text into typed commands.
package intent

import (
	"github.com/shopspring/decimal"
)

// Kind enumerates the supported command types.
type Kind string

const (
	AddExpense Kind = "ADD_EXPENSE"
	AddIncome  Kind = "ADD_INCOME"
	SetBudget  Kind = "SET_BUDGET"
	GetBudgets Kind = "GET_BUDGETS"
	GetBalance Kind = "GET_BALANCE"
	GetSummary Kind = "GET_SUMMARY"
	GetTop     Kind = "GET_TOP"
	Help       Kind = "HELP"
	Unknown    Kind = "UNKNOWN"
)

// Intent is the typed result of parsing one message. Fields beyond Kind are
// only set for the kinds that carry them.
type Intent struct {
	Kind        Kind
	Amount      decimal.Decimal // AddExpense, AddIncome, SetBudget
	Category    string          // AddExpense, AddIncome, SetBudget
	Description string          // AddExpense, AddIncome
	MonthOffset int             // GetSummary: 0 = current month, -1 = previous
	Limit       int             // GetTop
}
