package ledger_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ledgerbot/backend/internal/ledger"
	"github.com/ledgerbot/backend/internal/models"
	"github.com/ledgerbot/backend/internal/types"
)

type TestSuiteStandard struct {
	suite.Suite
	ledger *ledger.Service
}

func TestSuite(t *testing.T) {
	suite.Run(t, new(TestSuiteStandard))
}

// SetupTest is called before each test in the suite.
func (suite *TestSuiteStandard) SetupTest() {
	err := models.Connect(filepath.Join(suite.T().TempDir(), "ledger.db"))
	if err != nil {
		suite.Require().FailNowf("Database connection failed", "Error: %s", err)
	}

	suite.ledger = ledger.New(models.DB, "NGN")
}

// TearDownTest is called after each test in the suite.
func (suite *TestSuiteStandard) TearDownTest() {
	sqlDB, _ := models.DB.DB()
	sqlDB.Close()
}

func (suite *TestSuiteStandard) addExpense(amount, category string) ledger.AddResult {
	result, err := suite.ledger.AddTransaction(context.Background(), ledger.AddInput{
		Type:        models.TypeExpense,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: category,
		Source:      models.SourceText,
	})
	if err != nil {
		suite.Require().FailNowf("expense could not be saved", "Error: %s", err)
	}

	return result
}

func (suite *TestSuiteStandard) addIncome(amount, description string) ledger.AddResult {
	result, err := suite.ledger.AddTransaction(context.Background(), ledger.AddInput{
		Type:        models.TypeIncome,
		Amount:      decimal.RequireFromString(amount),
		Category:    "income",
		Description: description,
		Source:      models.SourceText,
	})
	if err != nil {
		suite.Require().FailNowf("income could not be saved", "Error: %s", err)
	}

	return result
}

func (suite *TestSuiteStandard) setBudget(category, amount string) ledger.BudgetLine {
	line, err := suite.ledger.SetBudget(context.Background(), category, decimal.RequireFromString(amount), types.CurrentUTC(0))
	if err != nil {
		suite.Require().FailNowf("budget could not be saved", "Error: %s", err)
	}

	return line
}

func (suite *TestSuiteStandard) TestAddTransactionResolvesCategory() {
	result := suite.addExpense("500", "Street Food")

	suite.Assert().Equal("Street Food", result.Transaction.Category.Name)
	suite.Assert().Equal("street-food", result.Transaction.Category.Slug)
	suite.Assert().Equal("NGN", result.Transaction.Currency)

	// A second transaction with different casing reuses the category
	second := suite.addExpense("300", "street food")
	suite.Assert().Equal(result.Transaction.CategoryID, second.Transaction.CategoryID)

	var count int64
	models.DB.Model(&models.Category{}).Where("slug = ?", "street-food").Count(&count)
	suite.Assert().Equal(int64(1), count)
}

func (suite *TestSuiteStandard) TestAddTransactionRejectsInvalid() {
	_, err := suite.ledger.AddTransaction(context.Background(), ledger.AddInput{
		Type:     models.TypeExpense,
		Amount:   decimal.NewFromInt(-5),
		Category: "food",
	})
	suite.Assert().NotNil(err)

	_, err = suite.ledger.AddTransaction(context.Background(), ledger.AddInput{
		Type:     "transfer",
		Amount:   decimal.NewFromInt(5),
		Category: "food",
	})
	suite.Assert().NotNil(err)

	var count int64
	models.DB.Model(&models.Transaction{}).Count(&count)
	suite.Assert().Equal(int64(0), count, "no partial state may remain after a failed save")
}

func (suite *TestSuiteStandard) TestBudgetAlertFiresStrictlyAboveLimit() {
	suite.setBudget("food", "50000")

	// Below the limit: no alert
	result := suite.addExpense("30000", "food")
	suite.Assert().Empty(result.Alert)

	// Exactly at the limit: equality does not trigger
	result = suite.addExpense("20000", "food")
	suite.Assert().Empty(result.Alert)

	// Crossing the limit alerts
	result = suite.addExpense("1", "food")
	suite.Assert().NotEmpty(result.Alert)
	suite.Assert().Contains(result.Alert, "food")
	suite.Assert().Contains(result.Alert, "₦50,000")

	// Every further over-limit transaction alerts again
	result = suite.addExpense("100", "food")
	suite.Assert().NotEmpty(result.Alert)
}

func (suite *TestSuiteStandard) TestBudgetAlertScopedToCategory() {
	suite.setBudget("food", "100")

	result := suite.addExpense("5000", "transport")
	suite.Assert().Empty(result.Alert, "other categories must not alert")

	suite.Assert().Empty(suite.addIncome("500000", "salary").Alert, "income never alerts")
}

func (suite *TestSuiteStandard) TestBudgetAlertWithoutBudget() {
	result := suite.addExpense("99999", "food")
	suite.Assert().Empty(result.Alert)
}

func (suite *TestSuiteStandard) TestBalance() {
	suite.addIncome("320000", "salary")
	suite.addExpense("4500.50", "food")
	suite.addExpense("500.25", "transport")

	balance, err := suite.ledger.Balance(context.Background())
	suite.Require().Nil(err)

	suite.Assert().True(balance.Income.Equal(decimal.RequireFromString("320000")), "income is %s", balance.Income)
	suite.Assert().True(balance.Expenses.Equal(decimal.RequireFromString("5000.75")), "expenses is %s", balance.Expenses)
	suite.Assert().True(balance.Balance.Equal(decimal.RequireFromString("314999.25")), "balance is %s", balance.Balance)

	// Repeated reads without writes return identical results
	again, err := suite.ledger.Balance(context.Background())
	suite.Require().Nil(err)
	suite.Assert().Equal(balance, again)
}

func (suite *TestSuiteStandard) TestBalanceEmpty() {
	balance, err := suite.ledger.Balance(context.Background())
	suite.Require().Nil(err)
	suite.Assert().True(balance.Balance.IsZero())
}

func (suite *TestSuiteStandard) TestMonthlySummary() {
	suite.addIncome("320000", "salary")
	suite.addExpense("42000", "food")
	suite.addExpense("31000", "transport")
	suite.addExpense("80000", "rent")

	summary, err := suite.ledger.MonthlySummary(context.Background(), types.CurrentUTC(0))
	suite.Require().Nil(err)

	suite.Assert().True(summary.Income.Equal(decimal.RequireFromString("320000")))
	suite.Assert().True(summary.Expenses.Equal(decimal.RequireFromString("153000")))
	suite.Assert().True(summary.Balance.Equal(decimal.RequireFromString("167000")))

	suite.Require().Len(summary.Categories, 3)
	suite.Assert().Equal("rent", summary.Categories[0].Category)
	suite.Assert().Equal("food", summary.Categories[1].Category)
	suite.Assert().Equal("transport", summary.Categories[2].Category)
}

func (suite *TestSuiteStandard) TestMonthlySummaryTieBreak() {
	suite.addExpense("1000", "food")
	suite.addExpense("1000", "transport")

	summary, err := suite.ledger.MonthlySummary(context.Background(), types.CurrentUTC(0))
	suite.Require().Nil(err)

	suite.Require().Len(summary.Categories, 2)
	suite.Assert().Equal("food", summary.Categories[0].Category, "equal amounts order by name ascending")
	suite.Assert().Equal("transport", summary.Categories[1].Category)
}

func (suite *TestSuiteStandard) TestMonthlySummaryOtherMonthEmpty() {
	suite.addExpense("1000", "food")

	summary, err := suite.ledger.MonthlySummary(context.Background(), types.CurrentUTC(-1))
	suite.Require().Nil(err)

	suite.Assert().Empty(summary.Categories)
	suite.Assert().True(summary.Expenses.IsZero())
}

func (suite *TestSuiteStandard) TestTopExpenses() {
	first := suite.addExpense("500", "food")
	suite.addExpense("80000", "rent")
	second := suite.addExpense("500", "transport")
	suite.addExpense("12000", "food")

	expenses, err := suite.ledger.TopExpenses(context.Background(), 3, types.CurrentUTC(0))
	suite.Require().Nil(err)

	suite.Require().Len(expenses, 3)
	suite.Assert().Equal("rent", expenses[0].Category.Name)
	suite.Assert().Equal("food", expenses[1].Category.Name)
	suite.Assert().True(expenses[2].Amount.Equal(decimal.NewFromInt(500)))

	// The earlier of the two 500s wins the tie
	suite.Assert().Equal(first.Transaction.ID, expenses[2].ID)
	suite.Assert().NotEqual(second.Transaction.ID, expenses[2].ID)
}

func (suite *TestSuiteStandard) TestTopExpensesLimitZero() {
	suite.addExpense("500", "food")

	expenses, err := suite.ledger.TopExpenses(context.Background(), 0, types.CurrentUTC(0))
	suite.Require().Nil(err)
	suite.Assert().Empty(expenses)
}

func (suite *TestSuiteStandard) TestSetBudgetUpsert() {
	month := types.CurrentUTC(0)

	line := suite.setBudget("food", "50000")
	suite.Assert().Equal("food", line.Category)

	// Setting the budget again replaces the amount, it does not add a row
	line = suite.setBudget("food", "60000")
	suite.Assert().True(line.Amount.Equal(decimal.NewFromInt(60000)))

	var count int64
	models.DB.Model(&models.Budget{}).Count(&count)
	suite.Assert().Equal(int64(1), count)

	budgets, err := suite.ledger.Budgets(context.Background(), month)
	suite.Require().Nil(err)
	suite.Require().Len(budgets, 1)
	suite.Assert().True(budgets[0].Amount.Equal(decimal.NewFromInt(60000)))
}

func (suite *TestSuiteStandard) TestBudgetsOrderedByName() {
	suite.setBudget("rent", "80000")
	suite.setBudget("food", "50000")
	suite.setBudget("transport", "30000")

	budgets, err := suite.ledger.Budgets(context.Background(), types.CurrentUTC(0))
	suite.Require().Nil(err)

	suite.Require().Len(budgets, 3)
	suite.Assert().Equal("food", budgets[0].Category)
	suite.Assert().Equal("rent", budgets[1].Category)
	suite.Assert().Equal("transport", budgets[2].Category)
}

func (suite *TestSuiteStandard) TestBudgetsScopedToMonth() {
	suite.setBudget("food", "50000")

	budgets, err := suite.ledger.Budgets(context.Background(), types.CurrentUTC(-1))
	suite.Require().Nil(err)
	suite.Assert().Empty(budgets)
}
