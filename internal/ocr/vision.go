package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultVisionBaseURL = "https://vision.googleapis.com"

// ErrNoAPIKey is returned when the client was built without an API key.
// Callers treat it like any other OCR failure and carry on with no text.
var ErrNoAPIKey = errors.New("vision api key is not configured")

// Vision implements the Recognizer interface using the Google Cloud Vision
// TEXT_DETECTION feature over its REST endpoint
type Vision struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewVision creates a new Vision Recognizer instance. An empty key is allowed;
// every RecognizeText call will then fail with ErrNoAPIKey.
func NewVision(apiKey string) *Vision {
	return NewVisionWithClient(apiKey, defaultVisionBaseURL, &http.Client{
		Timeout: 30 * time.Second,
	})
}

// NewVisionWithClient creates a Vision instance with a custom base URL and
// HTTP client for testing
func NewVisionWithClient(apiKey, baseURL string, client *http.Client) *Vision {
	if baseURL == "" {
		baseURL = defaultVisionBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Vision{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
	}
}

type visionRequest struct {
	Requests []visionAnnotateRequest `json:"requests"`
}

type visionAnnotateRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type string `json:"type"`
}

type visionResponse struct {
	Responses []struct {
		FullTextAnnotation *struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations"`
	} `json:"responses"`
}

// RecognizeText sends the image to the annotate endpoint and returns the
// detected text
func (v *Vision) RecognizeText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	if v.apiKey == "" {
		return "", ErrNoAPIKey
	}

	// The annotate endpoint accepts JPEG and PNG; convert phone formats first
	finalImageData, _, err := NormalizePNG(imageData, contentType)
	if err != nil {
		return "", err
	}

	reqBody := visionRequest{
		Requests: []visionAnnotateRequest{
			{
				Image:    visionImage{Content: base64.StdEncoding.EncodeToString(finalImageData)},
				Features: []visionFeature{{Type: "TEXT_DETECTION"}},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/images:annotate?key=%s", v.baseURL, v.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling vision API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("vision API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed visionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(parsed.Responses) == 0 {
		return "", nil
	}

	first := parsed.Responses[0]
	if first.FullTextAnnotation != nil && first.FullTextAnnotation.Text != "" {
		return strings.TrimSpace(first.FullTextAnnotation.Text), nil
	}
	if len(first.TextAnnotations) > 0 {
		return strings.TrimSpace(first.TextAnnotations[0].Description), nil
	}
	return "", nil
}
