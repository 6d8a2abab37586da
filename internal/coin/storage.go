package coin

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage defines the interface for coin image storage operations
type Storage interface {
	// Save saves an image and returns the name it was stored under
	Save(filename string, data []byte) (string, error)

	// Get retrieves an image by name
	Get(filename string) ([]byte, error)

	// Delete removes an image
	Delete(filename string) error
}

// LocalStorage implements the Storage interface using the local filesystem.
// Every stored image is a PNG (uploads are normalized before they get here),
// so names are forced to a .png extension and must be bare file names; the
// directory layout is flat and callers cannot point outside it.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// imageName validates a caller-supplied name and forces the .png extension.
// Anything that is not a bare file name is rejected.
func imageName(filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid image name: %q", filename)
	}
	if filepath.Ext(filename) != ".png" {
		filename += ".png"
	}
	return filename, nil
}

// Save saves an image to local storage
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	name, err := imageName(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(l.basePath, name), data, 0644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return name, nil
}

// Get retrieves an image from local storage
func (l *LocalStorage) Get(filename string) ([]byte, error) {
	name, err := imageName(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(l.basePath, name))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

// Delete removes an image from local storage
func (l *LocalStorage) Delete(filename string) error {
	name, err := imageName(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.basePath, name)); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}
