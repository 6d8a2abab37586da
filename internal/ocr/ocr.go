package ocr

import "context"

// Recognizer defines the interface for text recognition operations
type Recognizer interface {
	// RecognizeText extracts the text visible in an image. An empty string
	// with no error means the image simply contained no readable text.
	RecognizeText(ctx context.Context, imageData []byte, contentType string) (string, error)
}
