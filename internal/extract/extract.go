// Package extract turns receipt and bank-alert images into structured
// candidate transactions.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Confidence labels reported by the extraction model.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

var (
	// ErrLowConfidence means the image was readable but the extraction is
	// not trustworthy enough to save. Low-confidence extractions must never
	// become pending sessions.
	ErrLowConfidence = errors.New("low confidence extraction, please retake the photo")

	// ErrMalformed means the upstream service returned content that does
	// not satisfy the extraction contract.
	ErrMalformed = errors.New("malformed extraction response")
)

// Extraction is a structured candidate transaction derived from an image.
type Extraction struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Merchant    string          `json:"merchant"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Confidence  string          `json:"confidence"`
}

// Extractor derives a candidate transaction from image bytes.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (Extraction, error)
}

// Disabled is an Extractor for deployments without an extraction backend.
// It fails every image with a clear message.
type Disabled struct{}

func (Disabled) Extract(context.Context, []byte, string) (Extraction, error) {
	return Extraction{}, errors.New("image extraction is not configured")
}

// payload mirrors the JSON contract of the extraction model. Pointers
// distinguish missing keys from empty values; merchant and date may be null.
type payload struct {
	Type        *string      `json:"type"`
	Amount      *json.Number `json:"amount"`
	Currency    *string      `json:"currency"`
	Merchant    *string      `json:"merchant"`
	Category    *string      `json:"category"`
	Date        *string      `json:"date"`
	Description *string      `json:"description"`
	Confidence  *string      `json:"confidence"`
}

// parsePayload validates the decoded model output and converts it into an
// Extraction. Low-confidence payloads are rejected.
func parsePayload(p payload) (Extraction, error) {
	missing := missingFields(p)
	if len(missing) > 0 {
		return Extraction{}, fmt.Errorf("%w: missing required fields: %v", ErrMalformed, missing)
	}

	switch *p.Confidence {
	case ConfidenceHigh, ConfidenceMedium:
	case ConfidenceLow:
		return Extraction{}, ErrLowConfidence
	default:
		return Extraction{}, fmt.Errorf("%w: unknown confidence %q", ErrMalformed, *p.Confidence)
	}

	amount, err := decimal.NewFromString(p.Amount.String())
	if err != nil || !amount.IsPositive() {
		return Extraction{}, fmt.Errorf("%w: amount must be a positive number, got %q", ErrMalformed, p.Amount.String())
	}

	extraction := Extraction{
		Type:        *p.Type,
		Amount:      amount,
		Currency:    *p.Currency,
		Category:    *p.Category,
		Description: *p.Description,
		Confidence:  *p.Confidence,
	}
	if p.Merchant != nil {
		extraction.Merchant = *p.Merchant
	}
	if p.Date != nil {
		extraction.Date = *p.Date
	}

	return extraction, nil
}

func missingFields(p payload) []string {
	var missing []string
	for name, set := range map[string]bool{
		"type":        p.Type != nil,
		"amount":      p.Amount != nil,
		"currency":    p.Currency != nil,
		"category":    p.Category != nil,
		"description": p.Description != nil,
		"confidence":  p.Confidence != nil,
	} {
		if !set {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
