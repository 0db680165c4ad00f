// Package report renders reply texts. Everything in here is pure string
// building; no I/O happens at rendering time.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerbot/backend/internal/format"
	"github.com/ledgerbot/backend/internal/ledger"
	"github.com/ledgerbot/backend/internal/models"
	"github.com/ledgerbot/backend/internal/pending"
	"github.com/ledgerbot/backend/internal/types"
)

// Help lists the supported commands.
func Help() string {
	return strings.Join([]string{
		"Supported commands:",
		"- spent <amount> on <category>",
		"- earned <amount> <description>",
		"- budget <category> <amount>",
		"- budgets",
		"- balance",
		"- summary | summary last month",
		"- top <n>",
		"- help",
	}, "\n")
}

// Unknown is the fallback reply for unparseable input.
func Unknown() string {
	return "I didn't understand that. Send help for commands."
}

// PendingPrompt reminds the sender of the three accepted actions while a
// pending transaction awaits confirmation.
func PendingPrompt() string {
	return "Pending transaction detected. Reply with `yes`, `no`, or `edit [field] [value]`."
}

// Discarded acknowledges a discarded pending transaction.
func Discarded() string {
	return "❌ Discarded pending transaction."
}

// Expired notifies the sender that their pending transaction timed out.
func Expired() string {
	return "⏱️ Pending transaction expired. Send the image again to continue."
}

// NotAnImage asks for an image when other media arrives.
func NotAnImage() string {
	return "Please send an image receipt or bank alert screenshot."
}

// RetakePhoto rejects a low-confidence extraction.
func RetakePhoto() string {
	return "⚠️ Low confidence extraction. Please retake the photo."
}

// Failure is the generic reply for store errors.
func Failure() string {
	return "Something went wrong while saving your data. Please try again."
}

// Saved confirms a recorded transaction, appending the budget alert when
// there is one.
func Saved(result ledger.AddResult) string {
	transaction := result.Transaction

	sign := "-"
	label := transaction.Category.Name
	if transaction.Type == models.TypeIncome {
		sign = "+"
		if transaction.Description != "" {
			label = transaction.Description
		}
	}

	saved := fmt.Sprintf("✅ Saved: %s%s (%s)", sign, format.Amount(transaction.Amount, transaction.Currency), label)
	if result.Alert == "" {
		return saved
	}
	return saved + "\n" + result.Alert
}

// BudgetSet confirms a budget upsert.
func BudgetSet(line ledger.BudgetLine, currency string) string {
	return fmt.Sprintf("✅ Budget set: %s %s for %s", line.Category, format.Amount(line.Amount, currency), line.Month)
}

// BudgetList renders the month's budgets.
func BudgetList(lines []ledger.BudgetLine, month types.Month, currency string) string {
	if len(lines) == 0 {
		return fmt.Sprintf("No budgets set for %s.", month)
	}

	out := []string{fmt.Sprintf("Budgets (%s):", month)}
	for _, line := range lines {
		out = append(out, fmt.Sprintf("- %s: %s", line.Category, format.Amount(line.Amount, currency)))
	}
	return strings.Join(out, "\n")
}

// BalanceMessage renders the all-time balance.
func BalanceMessage(balance ledger.Balance, currency string) string {
	return strings.Join([]string{
		fmt.Sprintf("Balance: %s", format.Amount(balance.Balance, currency)),
		fmt.Sprintf("Income: %s", format.Amount(balance.Income, currency)),
		fmt.Sprintf("Expenses: %s", format.Amount(balance.Expenses, currency)),
	}, "\n")
}

// TopExpenses renders the month's largest expenses.
func TopExpenses(expenses []models.Transaction, month types.Month) string {
	if len(expenses) == 0 {
		return "No expenses found for this month."
	}

	out := []string{fmt.Sprintf("Top %d expenses (%s):", len(expenses), month)}
	for i, expense := range expenses {
		line := fmt.Sprintf("%d. %s - %s", i+1, format.Amount(expense.Amount, expense.Currency), expense.Category.Name)
		if expense.Description != "" && expense.Description != expense.Category.Name {
			line += fmt.Sprintf(" (%s)", expense.Description)
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// SummaryMessage renders the monthly summary with budget progress bars.
// Categories with a budget show spend, a 10-cell bar, the percentage used
// and an "at limit" flag from 100% up; categories without one show only the
// spend. The at-limit comparison is decimal-exact.
func SummaryMessage(summary ledger.Summary, budgets []ledger.BudgetLine, currency string) string {
	budgetByCategory := make(map[string]decimal.Decimal, len(budgets))
	for _, line := range budgets {
		budgetByCategory[strings.ToLower(line.Category)] = line.Amount
	}

	lines := []string{
		fmt.Sprintf("📊 %s", summary.Month.Name()),
		"────────────────────",
		fmt.Sprintf("Income:    %s", format.Amount(summary.Income, currency)),
		fmt.Sprintf("Expenses:  %s", format.Amount(summary.Expenses, currency)),
		fmt.Sprintf("Balance:   %s", format.Amount(summary.Balance, currency)),
		"",
		"By category:",
	}

	if len(summary.Categories) == 0 {
		lines = append(lines, "No expenses recorded for this month.")
		return strings.Join(lines, "\n")
	}

	for _, item := range summary.Categories {
		budget, ok := budgetByCategory[strings.ToLower(item.Category)]
		if !ok {
			lines = append(lines, fmt.Sprintf("%s: %s", item.Category, format.Amount(item.Amount, currency)))
			continue
		}

		percent := decimal.Zero
		if budget.IsPositive() {
			percent = item.Amount.Mul(decimal.NewFromInt(100)).Div(budget)
		}

		atLimit := ""
		if item.Amount.GreaterThanOrEqual(budget) {
			atLimit = " ⚠️ at limit"
		}

		lines = append(lines, fmt.Sprintf(
			"%-12s %s %s %s%% of %s budget%s",
			item.Category,
			format.Amount(item.Amount, currency),
			progressBar(percent),
			percent.Round(0),
			format.Amount(budget, currency),
			atLimit,
		))
	}

	return strings.Join(lines, "\n")
}

// ConfirmationCard renders a pending transaction for review, together with
// the three accepted actions.
func ConfirmationCard(transaction pending.Transaction) string {
	return strings.Join([]string{
		"🧾 Please confirm this transaction:",
		"--------------------------------",
		fmt.Sprintf("💸 Amount: %s", format.Amount(transaction.Amount, transaction.Currency)),
		fmt.Sprintf("🏪 Merchant: %s", orDash(transaction.Merchant)),
		fmt.Sprintf("🏷️ Category: %s", transaction.Category),
		fmt.Sprintf("📅 Date: %s", orDash(transaction.Date)),
		fmt.Sprintf("📝 Description: %s", orDash(transaction.Description)),
		fmt.Sprintf("📌 Type: %s", transaction.Type),
		fmt.Sprintf("🎯 Confidence: %s", transaction.Confidence),
		"",
		"Reply with:",
		"- yes (save)",
		"- no (discard)",
		"- edit [field] [value] (update and review)",
	}, "\n")
}

// progressBar renders percent as a fixed-width 10-cell bar, filled
// proportionally and capped at full.
func progressBar(percent decimal.Decimal) string {
	const size = 10

	capped := percent
	if capped.LessThan(decimal.Zero) {
		capped = decimal.Zero
	}
	if capped.GreaterThan(decimal.NewFromInt(100)) {
		capped = decimal.NewFromInt(100)
	}

	filled := int(capped.Div(decimal.NewFromInt(10)).Round(0).IntPart())
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", size-filled) + "]"
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
