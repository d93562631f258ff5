package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ducminhle1904/bot-builder/pkg/strategy"
)

// DraftStore persists editing-session drafts to disk so an interrupted
// session can resume. Writes are atomic: the draft is written to a temp
// file and renamed over the previous one, so a crash mid-write never
// leaves a corrupt draft behind.
type DraftStore struct {
	dir string
	mu  sync.Mutex
}

// NewDraftStore creates the store, creating its directory if needed.
func NewDraftStore(dir string) (*DraftStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create draft directory: %w", err)
	}
	return &DraftStore{dir: dir}, nil
}

// SaveDraft writes the draft under the given name.
func (s *DraftStore) SaveDraft(name string, cfg strategy.StrategyConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := strategy.MarshalConfig(cfg)
	if err != nil {
		return fmt.Errorf("could not encode draft: %w", err)
	}

	path := s.draftPath(name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("could not write draft file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not replace draft file: %w", err)
	}

	return nil
}

// LoadDraft reads a previously saved draft.
func (s *DraftStore) LoadDraft(name string) (strategy.StrategyConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.draftPath(name))
	if err != nil {
		return nil, fmt.Errorf("could not read draft file: %w", err)
	}

	cfg, err := strategy.UnmarshalConfig(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse draft file: %w", err)
	}
	return cfg, nil
}

// DeleteDraft removes a saved draft. Deleting a missing draft is a
// no-op.
func (s *DraftStore) DeleteDraft(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.draftPath(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete draft file: %w", err)
	}
	return nil
}

func (s *DraftStore) draftPath(name string) string {
	return filepath.Join(s.dir, name+".json")
}
