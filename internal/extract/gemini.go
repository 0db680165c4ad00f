package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the default Gemini model used for extraction.
const DefaultModelName = "gemini-2.5-flash"

const extractionPrompt = `Extract transaction data from this image.
Return ONLY valid JSON (no markdown, no explanation), following this exact shape:
{
  "type": "expense" | "income",
  "amount": number,
  "currency": string,
  "merchant": string | null,
  "category": "food" | "transport" | "utilities" | "entertainment" | "shopping" | "health" | "other",
  "date": "YYYY-MM-DD" | null,
  "description": string,
  "confidence": "high" | "medium" | "low"
}`

// GeminiExtractor extracts transaction data from images with the Gemini
// vision models.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates an extractor. An empty model selects
// DefaultModelName.
func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("extractor: API key is not configured")
	}
	if model == "" {
		model = DefaultModelName
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("extractor: create genai client: %w", err)
	}

	return &GeminiExtractor{client: client, model: model}, nil
}

// Extract sends the image to the model and parses the strict-JSON reply.
func (e *GeminiExtractor) Extract(ctx context.Context, image []byte, mimeType string) (Extraction, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
				{Text: extractionPrompt},
			},
		},
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return Extraction{}, fmt.Errorf("extractor: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return Extraction{}, fmt.Errorf("%w: empty response from model", ErrMalformed)
	}

	return ParseModelResponse(rawText)
}

// ParseModelResponse parses the model's text reply into an Extraction. It
// tolerates markdown fences and stray prose around the JSON object, since
// models occasionally ignore formatting instructions.
func ParseModelResponse(raw string) (Extraction, error) {
	cleaned := cleanModelJSON(raw)

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first == -1 || last == -1 || last < first {
		return Extraction{}, fmt.Errorf("%w: response did not contain JSON", ErrMalformed)
	}

	var p payload
	if err := json.Unmarshal([]byte(cleaned[first:last+1]), &p); err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return parsePayload(p)
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
