package coin

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Antkiler2012/Coin-Vault/internal/ocr"
)

// maxScanFormSize caps multipart uploads; two high-resolution phone photos
// fit comfortably under 50MB
const maxScanFormSize = int64(50 << 20)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// readFormImage reads one uploaded coin face from the multipart form
func readFormImage(r *http.Request, field string) ([]byte, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if header.Size > maxScanFormSize {
		return nil, errors.New("file is too large")
	}
	return io.ReadAll(f)
}

// handleCreateScan stages both coin faces and returns a scan id
func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxScanFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form. Maximum upload size is 50MB.", http.StatusBadRequest)
		return
	}

	front, err := readFormImage(r, "front")
	if err != nil {
		slog.Error("Error reading front image", "error", err)
		jsonError(w, "Front image is required", http.StatusBadRequest)
		return
	}
	back, err := readFormImage(r, "back")
	if err != nil {
		slog.Error("Error reading back image", "error", err)
		jsonError(w, "Back image is required", http.StatusBadRequest)
		return
	}

	id := s.payloads.Put(ScanPayload{Front: front, Back: back})
	slog.Info("Staged scan payload", "id", id, "front_bytes", len(front), "back_bytes", len(back))

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// handleEstimate runs the estimation pipeline for a staged scan. The scan flow
// is strictly forward: once the pipeline resolves, the staged payload is
// cleared and a new scan must be started.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	payload, ok := s.payloads.Get(id)
	if !ok {
		corsError(w, "Scan not found", http.StatusNotFound)
		return
	}

	var req struct {
		Year string `json:"year"`
	}
	if r.Body != nil {
		// An empty or missing body just means no year override
		json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := s.estimator.Estimate(r.Context(), payload.Front, payload.Back, req.Year)
	switch {
	case errors.Is(err, ErrInvalidYear):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, ErrNotSingleCoin):
		s.payloads.Clear(id)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case err != nil:
		slog.Error("Error estimating coin value", "id", id, "error", err)
		jsonError(w, "Failed to analyze", http.StatusInternalServerError)
		return
	}

	s.payloads.Clear(id)

	if result.Count == 0 {
		jsonError(w, "No results found", http.StatusUnprocessableEntity)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleListCoins returns the collection, newest first
func (s *Server) handleListCoins(w http.ResponseWriter, r *http.Request) {
	coins, err := s.service.ListCoins()
	if err != nil {
		slog.Error("Error listing coins", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(coins); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleAddCoin saves a coin to the collection
func (s *Server) handleAddCoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string   `json:"title"`
		Avg   *float64 `json:"avg"`
		Image string   `json:"image"` // base64-encoded, optional
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var image []byte
	if req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			jsonError(w, "Image must be base64-encoded", http.StatusBadRequest)
			return
		}
		// Normalize phone formats so stored images are always PNG
		image, _, err = ocr.NormalizePNG(decoded, "")
		if err != nil {
			jsonError(w, "Unsupported image format", http.StatusBadRequest)
			return
		}
	}

	coin, err := s.service.AddCoin(req.Title, req.Avg, image)
	if err != nil {
		slog.Error("Error adding coin", "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(coin); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleRemoveCoin removes a coin from the collection
func (s *Server) handleRemoveCoin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Coin ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.RemoveCoin(id); err != nil {
		corsError(w, "Error removing coin", http.StatusNotFound)
		return
	}

	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleGetCoinImage returns the stored image for a coin
func (s *Server) handleGetCoinImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Coin ID required", http.StatusBadRequest)
		return
	}
	data, err := s.service.GetCoinImage(id)
	if err != nil {
		corsError(w, "Image not found", http.StatusNotFound)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

// handleGetOnboarding reports the onboarding flag
func (s *Server) handleGetOnboarding(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"onboarded": s.onboarding.Exists()})
}

// handleSetOnboarding sets the onboarding flag
func (s *Server) handleSetOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := s.onboarding.Set(); err != nil {
		slog.Error("Error setting onboarding flag", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleClearOnboarding clears the onboarding flag
func (s *Server) handleClearOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := s.onboarding.Clear(); err != nil {
		slog.Error("Error clearing onboarding flag", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}
