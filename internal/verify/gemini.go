package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Antkiler2012/Coin-Vault/internal/ocr"
)

// verdictPrompt is the shared contract for the plausibility check. The model
// must answer with a single JSON object and nothing else.
const verdictPrompt = `You are a coin pricing sanity checker. You are shown the front and back photo of what should be a single coin, together with a price estimate derived from shopping listings.

Coin: %s
EstimatedValueUSD: %.2f

Answer ONLY with a JSON object in this exact format:
{
  "singleCoin": true,
  "verdict": "low" | "fair" | "high",
  "reason": "short explanation"
}

Important:
- singleCoin must be false if the photos show more than one coin, a coin set, jewelry, or no coin at all
- verdict compares the estimate against typical sale prices: modern common circulation coins usually sell for $0.05-$2
- reason must be at most 120 characters
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// Gemini implements the Verifier interface using Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Verifier instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// Classify sends both coin faces and the estimate to the model
func (g *Gemini) Classify(ctx context.Context, front, back []byte, estimate float64, titleHint string) (*Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	frontPNG, _, err := ocr.NormalizePNG(front, "")
	if err != nil {
		return nil, err
	}
	backPNG, _, err := ocr.NormalizePNG(back, "")
	if err != nil {
		return nil, err
	}

	if titleHint == "" {
		titleHint = "(unknown)"
	}

	// genai.ImageData expects just the format suffix (e.g., "png"), not the
	// full MIME type. After NormalizePNG everything is PNG.
	parts := []genai.Part{
		genai.ImageData("png", frontPNG),
		genai.ImageData("png", backPNG),
		genai.Text(fmt.Sprintf(verdictPrompt, titleHint, estimate)),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	verdict, err := parseVerdictJSON(responseText.String())
	if err != nil {
		return nil, fmt.Errorf("parsing verdict: %w", err)
	}

	return verdict, nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
