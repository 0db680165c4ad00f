package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType classifies a transaction as money out or money in.
type TransactionType string

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// TransactionSource records how a transaction entered the ledger.
type TransactionSource string

const (
	SourceText  TransactionSource = "text"
	SourceImage TransactionSource = "image"
)

// Transaction is a single ledger entry. Transactions are immutable once
// created; corrections happen before the confirmation step, not here.
type Transaction struct {
	Model
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount" gorm:"type:DECIMAL(20,8)"`
	Currency    string            `json:"currency"`
	CategoryID  uint              `json:"categoryId"`
	Category    Category          `json:"-"`
	Description string            `json:"description"`
	Source      TransactionSource `json:"source"`
}

// BeforeSave validates the transaction and trims string fields.
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.Description = strings.TrimSpace(t.Description)
	t.Currency = strings.TrimSpace(t.Currency)

	if t.Type != TypeExpense && t.Type != TypeIncome {
		return fmt.Errorf("%w transaction: type must be %q or %q", ErrInvalid, TypeExpense, TypeIncome)
	}

	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w transaction: amount must be positive", ErrInvalid)
	}

	if t.Source == "" {
		t.Source = SourceText
	}

	return nil
}

// AfterFind updates the timestamps to use UTC as timezone, not +0000.
//
// We already store them in UTC, but reading them from the database returns
// them as +0000.
func (t *Transaction) AfterFind(_ *gorm.DB) error {
	t.CreatedAt = t.CreatedAt.In(time.UTC)
	t.UpdatedAt = t.UpdatedAt.In(time.UTC)
	return nil
}
