package verify

import (
	"encoding/json"
	"fmt"
	"strings"
)

const maxReasonLength = 120

// parseVerdictJSON parses the JSON response from the model. Model output is
// free text that should contain a JSON object; extraction is best-effort and
// any failure means "no opinion" for the caller.
func parseVerdictJSON(text string) (*Verdict, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var verdict Verdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	// Normalize the rating; anything unrecognized is treated as "fair"
	verdict.Rating = strings.ToLower(strings.TrimSpace(verdict.Rating))
	switch verdict.Rating {
	case "low", "fair", "high":
	default:
		verdict.Rating = "fair"
	}

	verdict.Reason = strings.TrimSpace(verdict.Reason)
	if len(verdict.Reason) > maxReasonLength {
		verdict.Reason = verdict.Reason[:maxReasonLength]
	}

	return &verdict, nil
}
