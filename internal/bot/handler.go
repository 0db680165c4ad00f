// Package bot routes inbound messages: pending-session actions first, then
// the command grammar, and turns the outcome into reply text.
package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ledgerbot/backend/internal/extract"
	"github.com/ledgerbot/backend/internal/intent"
	"github.com/ledgerbot/backend/internal/ledger"
	"github.com/ledgerbot/backend/internal/models"
	"github.com/ledgerbot/backend/internal/pending"
	"github.com/ledgerbot/backend/internal/report"
	"github.com/ledgerbot/backend/internal/types"
)

// Notifier delivers an unsolicited message to a sender, outside the
// request/reply cycle. Used for expiry notifications.
type Notifier interface {
	Notify(sender, text string) error
}

// Handler dispatches one inbound message at a time per sender.
type Handler struct {
	ledger   *ledger.Service
	registry *pending.Registry
	extract  extract.Extractor
	notifier Notifier
	currency string
}

// New returns a message handler. notifier may be nil when the transport has
// no outbound channel; expiry notifications are then dropped.
func New(ledgerService *ledger.Service, registry *pending.Registry, extractor extract.Extractor, notifier Notifier, currency string) *Handler {
	return &Handler{
		ledger:   ledgerService,
		registry: registry,
		extract:  extractor,
		notifier: notifier,
		currency: currency,
	}
}

var editPattern = regexp.MustCompile(`(?i)^edit\s+(\w+)\s+(.+)$`)

// HandleText processes a text message and returns the reply. Store errors
// never escape; they are logged and answered with a generic failure reply.
func (h *Handler) HandleText(ctx context.Context, sender, text string) string {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	if transaction, ok := h.registry.Get(sender); ok {
		return h.handlePendingAction(ctx, sender, trimmed, lower, transaction)
	}

	return h.handleIntent(ctx, sender, text)
}

// handlePendingAction consumes input while a pending transaction awaits
// confirmation: yes, no, edit, or a reminder of those three.
func (h *Handler) handlePendingAction(ctx context.Context, sender, trimmed, lower string, transaction pending.Transaction) string {
	switch lower {
	case "yes":
		result, err := h.ledger.AddTransaction(ctx, ledger.AddInput{
			Type:        models.TransactionType(transaction.Type),
			Amount:      transaction.Amount,
			Category:    transaction.Category,
			Description: transaction.Description,
			Currency:    transaction.Currency,
			Source:      models.SourceImage,
		})
		if err != nil {
			// The session stays armed so the sender can retry.
			log.Error().Err(err).Str("sender", sender).Msg("confirm failed")
			return report.Failure()
		}

		h.registry.Resolve(sender)
		return report.Saved(result)

	case "no":
		h.registry.Resolve(sender)
		return report.Discarded()
	}

	if match := editPattern.FindStringSubmatch(trimmed); match != nil {
		updated, err := transaction.ApplyEdit(match[1], match[2])
		if err != nil {
			return fmt.Sprintf("⚠️ %s", err.Error())
		}

		h.registry.Update(sender, updated)
		return report.ConfirmationCard(updated)
	}

	return report.PendingPrompt()
}

// handleIntent parses the text and dispatches the resulting command.
func (h *Handler) handleIntent(ctx context.Context, sender, text string) string {
	parsed := intent.Parse(text)

	switch parsed.Kind {
	case intent.AddExpense:
		result, err := h.ledger.AddTransaction(ctx, ledger.AddInput{
			Type:        models.TypeExpense,
			Amount:      parsed.Amount,
			Category:    parsed.Category,
			Description: parsed.Description,
			Source:      models.SourceText,
		})
		if err != nil {
			log.Error().Err(err).Str("sender", sender).Msg("add expense failed")
			return report.Failure()
		}
		return report.Saved(result)

	case intent.AddIncome:
		result, err := h.ledger.AddTransaction(ctx, ledger.AddInput{
			Type:        models.TypeIncome,
			Amount:      parsed.Amount,
			Category:    parsed.Category,
			Description: parsed.Description,
			Source:      models.SourceText,
		})
		if err != nil {
			log.Error().Err(err).Str("sender", sender).Msg("add income failed")
			return report.Failure()
		}
		return report.Saved(result)

	case intent.SetBudget:
		line, err := h.ledger.SetBudget(ctx, parsed.Category, parsed.Amount, types.CurrentUTC(0))
		if err != nil {
			log.Error().Err(err).Str("sender", sender).Msg("set budget failed")
			return report.Failure()
		}
		return report.BudgetSet(line, h.currency)

	case intent.GetBudgets:
		month := types.CurrentUTC(0)
		lines, err := h.ledger.Budgets(ctx, month)
		if err != nil {
			log.Error().Err(err).Str("sender", sender).Msg("get budgets failed")
			return report.Failure()
		}
		return report.BudgetList(lines, month, h.currency)

	case intent.GetBalance:
		balance, err := h.ledger.Balance(ctx)
		if err != nil {
			log.Error().Err(err).Str("sender", sender).Msg("get balance failed")
			return report.Failure()
		}
		return report.BalanceMessage(balance, h.currency)

	case intent.GetSummary:
		month := types.CurrentUTC(parsed.MonthOffset)
		summary, err := h.ledger.MonthlySummary(ctx, month)
		if err != nil {
			log.Error().Err(err).Str("sender", sender).Msg("get summary failed")
			return report.Failure()
		}
		budgets, err := h.ledger.Budgets(ctx, month)
		if err != nil {
			log.Error().Err(err).Str("sender", sender).Msg("get summary budgets failed")
			return report.Failure()
		}
		return report.SummaryMessage(summary, budgets, h.currency)

	case intent.GetTop:
		limit := parsed.Limit
		if limit == 0 {
			limit = 5
		}
		expenses, err := h.ledger.TopExpenses(ctx, limit, types.CurrentUTC(0))
		if err != nil {
			log.Error().Err(err).Str("sender", sender).Msg("get top failed")
			return report.Failure()
		}
		return report.TopExpenses(expenses, types.CurrentUTC(0))

	case intent.Help:
		return report.Help()

	default:
		return report.Unknown()
	}
}

// HandleImage runs the extraction intake: non-images and low-confidence
// extractions never create a session.
func (h *Handler) HandleImage(ctx context.Context, sender string, image []byte, mimeType string) string {
	if !strings.HasPrefix(mimeType, "image/") {
		return report.NotAnImage()
	}

	extraction, err := h.extract.Extract(ctx, image, mimeType)
	if err != nil {
		if errors.Is(err, extract.ErrLowConfidence) {
			return report.RetakePhoto()
		}
		log.Warn().Err(err).Str("sender", sender).Msg("extraction failed")
		return fmt.Sprintf("Could not process image: %s", err.Error())
	}

	// Extractors must reject low confidence themselves, but a pending
	// session must never hold one either way.
	if extraction.Confidence == extract.ConfidenceLow {
		return report.RetakePhoto()
	}

	currency := extraction.Currency
	if currency == "" {
		currency = h.currency
	}

	transaction := pending.Transaction{
		Type:        extraction.Type,
		Amount:      extraction.Amount,
		Currency:    currency,
		Merchant:    extraction.Merchant,
		Category:    extraction.Category,
		Date:        extraction.Date,
		Description: extraction.Description,
		Confidence:  extraction.Confidence,
	}

	h.registry.Arm(sender, transaction, func() {
		h.notifyExpired(sender)
	})

	return report.ConfirmationCard(transaction)
}

// notifyExpired tells the sender their pending transaction timed out. The
// session removal already happened; delivery failures are swallowed.
func (h *Handler) notifyExpired(sender string) {
	if h.notifier == nil {
		return
	}

	if err := h.notifier.Notify(sender, report.Expired()); err != nil {
		log.Debug().Err(err).Str("sender", sender).Msg("expiry notification failed")
	}
}
