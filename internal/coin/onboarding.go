package coin

import (
	"fmt"
	"os"
)

// OnboardingFlag persists a single boolean as a marker file's presence
type OnboardingFlag struct {
	path string
}

// NewOnboardingFlag creates an OnboardingFlag backed by the given marker file
func NewOnboardingFlag(path string) *OnboardingFlag {
	return &OnboardingFlag{path: path}
}

// Exists reports whether the flag is set
func (f *OnboardingFlag) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Set creates the marker file
func (f *OnboardingFlag) Set() error {
	if err := os.WriteFile(f.path, []byte{}, 0644); err != nil {
		return fmt.Errorf("writing marker file: %w", err)
	}
	return nil
}

// Clear removes the marker file; a missing file is not an error
func (f *OnboardingFlag) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing marker file: %w", err)
	}
	return nil
}
