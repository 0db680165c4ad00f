package models

import (
	"fmt"

	"github.com/ledgerbot/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget is a monthly spending limit for one category. There is at most one
// budget per (category, month) pair; setting it again replaces the amount.
type Budget struct {
	Model
	CategoryID uint            `json:"categoryId" gorm:"uniqueIndex:budget_category_month"`
	Category   Category        `json:"-"`
	Month      types.Month     `json:"month" gorm:"uniqueIndex:budget_category_month"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
}

// BeforeSave validates the budget.
func (b *Budget) BeforeSave(_ *gorm.DB) error {
	if !b.Amount.IsPositive() {
		return fmt.Errorf("%w budget: amount must be positive", ErrInvalid)
	}

	if b.Month.IsZero() {
		return fmt.Errorf("%w budget: month must be set", ErrInvalid)
	}

	return nil
}

// UpsertBudget sets the budget for a (category, month) pair, replacing any
// existing amount. No history of prior amounts is kept.
func UpsertBudget(db *gorm.DB, categoryID uint, month types.Month, amount decimal.Decimal) (Budget, error) {
	var budget Budget
	err := db.Where(&Budget{CategoryID: categoryID, Month: month}).First(&budget).Error
	if err == nil {
		budget.Amount = amount
		if err := db.Save(&budget).Error; err != nil {
			return Budget{}, err
		}
		return budget, nil
	}
	if !isNotFound(err) {
		return Budget{}, err
	}

	budget = Budget{CategoryID: categoryID, Month: month, Amount: amount}
	if err := db.Create(&budget).Error; err != nil {
		return Budget{}, err
	}

	return budget, nil
}

// BudgetForCategoryMonth returns the budget for a (category, month) pair.
// When none is set, found is false and err is nil.
func BudgetForCategoryMonth(db *gorm.DB, categoryID uint, month types.Month) (Budget, bool, error) {
	var budget Budget
	err := db.Where(&Budget{CategoryID: categoryID, Month: month}).First(&budget).Error
	if err == nil {
		return budget, true, nil
	}
	if isNotFound(err) {
		return Budget{}, false, nil
	}

	return Budget{}, false, err
}
