package coin

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// IDGenerator generates unique IDs for coins and scan payloads
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles collection operations
type Service struct {
	db          DB
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, storage Storage) *Service {
	return &Service{
		db:          db,
		storage:     storage,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// AddCoin saves a coin to the collection, assigning an id and timestamp. The
// image is optional; when present it is persisted alongside the record.
func (s *Service) AddCoin(title string, avg *float64, image []byte) (*CollectedCoin, error) {
	if title == "" {
		return nil, fmt.Errorf("coin title is required")
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	coin := &CollectedCoin{
		ID:      id,
		Title:   title,
		Avg:     avg,
		AddedAt: now,
	}

	if len(image) > 0 {
		savedPath, err := s.storage.Save(fmt.Sprintf("%s.png", id), image)
		if err != nil {
			return nil, fmt.Errorf("saving image: %w", err)
		}
		coin.Image = savedPath
	}

	if err := s.db.SaveCoin(coin); err != nil {
		if coin.Image != "" {
			// Clean up the saved image since the record was not persisted
			s.storage.Delete(coin.Image)
		}
		return nil, fmt.Errorf("saving coin to database: %w", err)
	}

	return coin, nil
}

// GetCoin retrieves a coin by ID
func (s *Service) GetCoin(id string) (*CollectedCoin, error) {
	coin, err := s.db.GetCoin(id)
	if err != nil {
		return nil, fmt.Errorf("getting coin: %w", err)
	}
	return coin, nil
}

// ListCoins returns the collection, newest first
func (s *Service) ListCoins() ([]*CollectedCoin, error) {
	coins, err := s.db.ListCoins()
	if err != nil {
		return nil, fmt.Errorf("listing coins: %w", err)
	}
	return coins, nil
}

// RemoveCoin removes a coin and its image
func (s *Service) RemoveCoin(id string) error {
	coin, err := s.db.GetCoin(id)
	if err != nil {
		return fmt.Errorf("getting coin for removal: %w", err)
	}

	if coin.Image != "" {
		if err := s.storage.Delete(coin.Image); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete image", "filename", coin.Image, "error", err)
		}
	}

	if err := s.db.DeleteCoin(id); err != nil {
		return fmt.Errorf("deleting coin from database: %w", err)
	}
	return nil
}

// GetCoinImage retrieves the stored image for a coin
func (s *Service) GetCoinImage(id string) ([]byte, error) {
	coin, err := s.db.GetCoin(id)
	if err != nil {
		return nil, fmt.Errorf("getting coin: %w", err)
	}
	if coin.Image == "" {
		return nil, fmt.Errorf("coin has no stored image: %s", id)
	}

	data, err := s.storage.Get(coin.Image)
	if err != nil {
		return nil, fmt.Errorf("getting coin image: %w", err)
	}
	return data, nil
}
