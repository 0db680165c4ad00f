package pending_test

import (
	"testing"

	"github.com/ledgerbot/backend/internal/pending"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testTransaction() pending.Transaction {
	return pending.Transaction{
		Type:        "expense",
		Amount:      decimal.NewFromInt(1200),
		Currency:    "NGN",
		Merchant:    "Shoprite",
		Category:    "food",
		Date:        "2024-05-12",
		Description: "groceries",
		Confidence:  "high",
	}
}

func TestApplyEditAmount(t *testing.T) {
	updated, err := testTransaction().ApplyEdit("amount", "6,000")
	assert.Nil(t, err)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(6000)))
}

func TestApplyEditAmountInvalid(t *testing.T) {
	tests := []string{"abc", "0", "-5", ""}

	for _, value := range tests {
		original := testTransaction()
		updated, err := original.ApplyEdit("amount", value)
		assert.ErrorIs(t, err, pending.ErrInvalidAmount, "value %q", value)
		assert.True(t, updated.Amount.Equal(original.Amount), "value %q: amount must be unchanged", value)
	}
}

func TestApplyEditUnknownField(t *testing.T) {
	original := testTransaction()
	updated, err := original.ApplyEdit("paymentmethod", "cash")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Unknown field: paymentmethod")
	assert.Equal(t, original, updated)
}

func TestApplyEditClearableFields(t *testing.T) {
	updated, err := testTransaction().ApplyEdit("merchant", "null")
	assert.Nil(t, err)
	assert.Equal(t, "", updated.Merchant)

	updated, err = testTransaction().ApplyEdit("date", "null")
	assert.Nil(t, err)
	assert.Equal(t, "", updated.Date)

	updated, err = testTransaction().ApplyEdit("merchant", "Spar")
	assert.Nil(t, err)
	assert.Equal(t, "Spar", updated.Merchant)
}

func TestApplyEditVerbatimFields(t *testing.T) {
	updated, err := testTransaction().ApplyEdit("description", "  dinner with friends  ")
	assert.Nil(t, err)
	assert.Equal(t, "dinner with friends", updated.Description)

	updated, err = testTransaction().ApplyEdit("category", "entertainment")
	assert.Nil(t, err)
	assert.Equal(t, "entertainment", updated.Category)
}
