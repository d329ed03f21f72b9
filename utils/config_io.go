package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"triage-bot/model"
)

// ErrNoChange aborts an Update without persisting. Returned by mutation
// callbacks when the requested change turns out to be a no-op.
var ErrNoChange = errors.New("no change")

// ConfigStore owns the durable configuration document. All reads go through
// snapshot views and all mutations through Update, which persists before
// returning. A single lock serializes mutations: the document is one file
// on disk, so per-guild granularity would still serialize on the write.
type ConfigStore struct {
	path string
	mu   sync.RWMutex
	cfg  *model.Config
}

// LoadConfigStore reads the configuration file and wraps it in a store.
func LoadConfigStore(path string) (*ConfigStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	cfg := &model.Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}
	cfg.EnsureMaps()

	return &ConfigStore{path: path, cfg: cfg}, nil
}

// View runs fn with a read lock held. fn must not retain or mutate the
// config.
func (s *ConfigStore) View(fn func(cfg *model.Config)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.cfg)
}

// Update runs fn with the write lock held and persists the document if fn
// succeeds. The mutation and its write form one serialized transaction.
// Returning ErrNoChange skips the write and propagates ErrNoChange.
func (s *ConfigStore) Update(fn func(cfg *model.Config) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.cfg); err != nil {
		return err
	}
	return s.save()
}

// EnsureReadChannels creates an empty read-channel list for a guild not yet
// registered, persisting immediately. Returns whether a write happened.
func (s *ConfigStore) EnsureReadChannels(guildID string) (bool, error) {
	err := s.Update(func(cfg *model.Config) error {
		if _, ok := cfg.OCRReadChannels[guildID]; ok {
			return ErrNoChange
		}
		cfg.OCRReadChannels[guildID] = []int64{}
		return nil
	})
	if errors.Is(err, ErrNoChange) {
		return false, nil
	}
	return err == nil, err
}

// EnsureResponseChannels is the response-channel counterpart of
// EnsureReadChannels.
func (s *ConfigStore) EnsureResponseChannels(guildID string) (bool, error) {
	err := s.Update(func(cfg *model.Config) error {
		if _, ok := cfg.OCRResponseChannels[guildID]; ok {
			return ErrNoChange
		}
		cfg.OCRResponseChannels[guildID] = []int64{}
		return nil
	})
	if errors.Is(err, ErrNoChange) {
		return false, nil
	}
	return err == nil, err
}

// ApplyOverrides mutates the in-memory document without persisting. Used
// for environment-sourced values that must never be written back to disk.
func (s *ConfigStore) ApplyOverrides(fn func(cfg *model.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cfg)
}

// save writes the document atomically: marshal, write a temp file in the
// same directory, then rename over the target. A crash mid-write leaves the
// old document intact. Caller must hold the write lock.
func (s *ConfigStore) save() error {
	data, err := json.MarshalIndent(s.cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("error marshalling config: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("error creating temp config file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("error writing temp config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error closing temp config file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error replacing config file %s: %w", s.path, err)
	}
	return nil
}
