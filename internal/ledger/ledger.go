// Package ledger implements transaction recording and the budget-aware
// aggregations behind the chat reports.
package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ledgerbot/backend/internal/format"
	"github.com/ledgerbot/backend/internal/models"
	"github.com/ledgerbot/backend/internal/types"
)

// Service runs all ledger operations against the store.
type Service struct {
	db       *gorm.DB
	currency string
}

// New returns a ledger service. currency is the default currency code used
// when a transaction does not carry one.
func New(db *gorm.DB, currency string) *Service {
	return &Service{db: db, currency: currency}
}

// AddInput describes a transaction to record.
type AddInput struct {
	Type        models.TransactionType
	Amount      decimal.Decimal
	Category    string
	Description string
	Currency    string
	Source      models.TransactionSource
}

// AddResult is the created transaction plus the optional budget-overrun
// alert that accompanies the save confirmation.
type AddResult struct {
	Transaction models.Transaction
	Alert       string
}

// Balance is the all-time income/expense aggregate.
type Balance struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

// CategoryTotal is one category's expense total within a month.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// Summary aggregates one month of activity.
type Summary struct {
	Month      types.Month
	Income     decimal.Decimal
	Expenses   decimal.Decimal
	Balance    decimal.Decimal
	Categories []CategoryTotal
}

// BudgetLine is one category's budget for a month.
type BudgetLine struct {
	Category string
	Amount   decimal.Decimal
	Month    types.Month
}

// AddTransaction resolves the category, persists the transaction and, for
// expenses, checks the month's budget. The returned alert is non-empty when
// the category's cumulative spend for the current month now exceeds its
// budget. The check re-fires for every transaction above the limit; there
// is no de-duplication.
func (s *Service) AddTransaction(ctx context.Context, input AddInput) (AddResult, error) {
	currency := input.Currency
	if currency == "" {
		currency = s.currency
	}

	var created models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := models.ResolveOrCreateCategory(tx, input.Category)
		if err != nil {
			return err
		}

		created = models.Transaction{
			Type:        input.Type,
			Amount:      input.Amount,
			Currency:    currency,
			CategoryID:  category.ID,
			Description: input.Description,
			Source:      input.Source,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		created.Category = category
		return nil
	})
	if err != nil {
		return AddResult{}, fmt.Errorf("ledger: add transaction: %w", err)
	}

	// The transaction is committed at this point. A failing alert check
	// must not turn a saved transaction into an error reply, so it is
	// logged and dropped instead.
	alert, err := s.budgetAlert(ctx, created)
	if err != nil {
		log.Warn().Err(err).Str("category", created.Category.Name).Msg("budget alert check failed")
		alert = ""
	}

	return AddResult{Transaction: created, Alert: alert}, nil
}

// budgetAlert reports whether the transaction pushed its category over the
// current month's budget. Equality is not an overrun; only strictly greater
// spend alerts.
func (s *Service) budgetAlert(ctx context.Context, transaction models.Transaction) (string, error) {
	if transaction.Type != models.TypeExpense {
		return "", nil
	}

	month := types.CurrentUTC(0)
	budget, found, err := models.BudgetForCategoryMonth(s.db.WithContext(ctx), transaction.CategoryID, month)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}

	spent, err := s.categorySpend(ctx, transaction.CategoryID, month)
	if err != nil {
		return "", err
	}

	if spent.GreaterThan(budget.Amount) {
		return fmt.Sprintf(
			"⚠️ Budget exceeded for %s: spent %s of %s.",
			transaction.Category.Name,
			format.Amount(spent, transaction.Currency),
			format.Amount(budget.Amount, transaction.Currency),
		), nil
	}

	return "", nil
}

// categorySpend sums the month's expenses for one category. Summation is
// done on decimals in process so budget comparisons are exact.
func (s *Service) categorySpend(ctx context.Context, categoryID uint, month types.Month) (decimal.Decimal, error) {
	start, end := month.Range()

	var amounts []decimal.Decimal
	err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("type = ? AND category_id = ? AND created_at >= ? AND created_at < ?", models.TypeExpense, categoryID, start, end).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Decimal{}, err
	}

	return decimal.Sum(decimal.Zero, amounts...), nil
}

// Balance returns the all-time income, expenses and balance. The two sums
// are read in a single database transaction so the result is a consistent
// snapshot.
func (s *Service) Balance(ctx context.Context) (Balance, error) {
	var result Balance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		income, err := sumAmounts(tx, models.TypeIncome)
		if err != nil {
			return err
		}

		expenses, err := sumAmounts(tx, models.TypeExpense)
		if err != nil {
			return err
		}

		result = Balance{
			Income:   income,
			Expenses: expenses,
			Balance:  income.Sub(expenses),
		}
		return nil
	})
	if err != nil {
		return Balance{}, fmt.Errorf("ledger: balance: %w", err)
	}

	return result, nil
}

func sumAmounts(tx *gorm.DB, transactionType models.TransactionType) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := tx.Model(&models.Transaction{}).
		Where("type = ?", transactionType).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Decimal{}, err
	}

	return decimal.Sum(decimal.Zero, amounts...), nil
}

// MonthlySummary aggregates income, expenses and per-category expense
// totals for a month. Categories are ordered by amount descending, ties by
// name ascending; categories without expenses this month do not appear.
func (s *Service) MonthlySummary(ctx context.Context, month types.Month) (Summary, error) {
	start, end := month.Range()

	summary := Summary{Month: month}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expenses []models.Transaction
		err := tx.Preload("Category").
			Where("type = ? AND created_at >= ? AND created_at < ?", models.TypeExpense, start, end).
			Find(&expenses).Error
		if err != nil {
			return err
		}

		var incomes []decimal.Decimal
		err = tx.Model(&models.Transaction{}).
			Where("type = ? AND created_at >= ? AND created_at < ?", models.TypeIncome, start, end).
			Pluck("amount", &incomes).Error
		if err != nil {
			return err
		}

		grouped := make(map[string]decimal.Decimal)
		for _, expense := range expenses {
			name := expense.Category.Name
			grouped[name] = grouped[name].Add(expense.Amount)
			summary.Expenses = summary.Expenses.Add(expense.Amount)
		}

		for name, amount := range grouped {
			summary.Categories = append(summary.Categories, CategoryTotal{Category: name, Amount: amount})
		}
		sort.Slice(summary.Categories, func(i, j int) bool {
			if !summary.Categories[i].Amount.Equal(summary.Categories[j].Amount) {
				return summary.Categories[i].Amount.GreaterThan(summary.Categories[j].Amount)
			}
			return summary.Categories[i].Category < summary.Categories[j].Category
		})

		summary.Income = decimal.Sum(decimal.Zero, incomes...)
		summary.Balance = summary.Income.Sub(summary.Expenses)
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("ledger: monthly summary: %w", err)
	}

	return summary, nil
}

// Budgets returns the month's budgets ordered by category name ascending.
func (s *Service) Budgets(ctx context.Context, month types.Month) ([]BudgetLine, error) {
	var budgets []models.Budget
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where(&models.Budget{Month: month}).
		Find(&budgets).Error
	if err != nil {
		return nil, fmt.Errorf("ledger: budgets: %w", err)
	}

	lines := make([]BudgetLine, 0, len(budgets))
	for _, budget := range budgets {
		lines = append(lines, BudgetLine{
			Category: budget.Category.Name,
			Amount:   budget.Amount,
			Month:    budget.Month,
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Category < lines[j].Category
	})

	return lines, nil
}

// TopExpenses returns the month's limit largest expense transactions,
// ordered by amount descending; ties are broken by creation order so the
// result is deterministic.
func (s *Service) TopExpenses(ctx context.Context, limit int, month types.Month) ([]models.Transaction, error) {
	if limit <= 0 {
		return nil, nil
	}

	start, end := month.Range()

	var expenses []models.Transaction
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where("type = ? AND created_at >= ? AND created_at < ?", models.TypeExpense, start, end).
		Find(&expenses).Error
	if err != nil {
		return nil, fmt.Errorf("ledger: top expenses: %w", err)
	}

	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].Amount.Equal(expenses[j].Amount) {
			return expenses[i].Amount.GreaterThan(expenses[j].Amount)
		}
		return expenses[i].ID < expenses[j].ID
	})

	if len(expenses) > limit {
		expenses = expenses[:limit]
	}

	return expenses, nil
}

// SetBudget upserts the budget for (category, month). The category is
// created if it does not exist yet.
func (s *Service) SetBudget(ctx context.Context, category string, amount decimal.Decimal, month types.Month) (BudgetLine, error) {
	var line BudgetLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolved, err := models.ResolveOrCreateCategory(tx, category)
		if err != nil {
			return err
		}

		budget, err := models.UpsertBudget(tx, resolved.ID, month, amount)
		if err != nil {
			return err
		}

		line = BudgetLine{Category: resolved.Name, Amount: budget.Amount, Month: budget.Month}
		return nil
	})
	if err != nil {
		return BudgetLine{}, fmt.Errorf("ledger: set budget: %w", err)
	}

	return line, nil
}
