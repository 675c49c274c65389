// Package profile persists named connection profiles (chip, RTT control
// block address, ELF path, core index) as a JSON file.
package profile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Profile describes one device connection setup.
type Profile struct {
	Name string `json:"name"`
	Chip string `json:"chip"`
	// RTTAddress is a hex address like "0x20031010"; empty means scan RAM.
	RTTAddress string `json:"rtt_address,omitempty"`
	// ELFPath points at the firmware image for symbol lookup.
	ELFPath string `json:"elf_path,omitempty"`
	// Core selects the target core (0 = app core, 1 = net core on nRF5340).
	Core int `json:"core"`
}

// Store loads and saves profiles at a fixed path.
type Store struct {
	mu       sync.RWMutex
	path     string
	profiles []Profile
}

// DefaultPath returns the per-user profile file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "rtt-viewer", "profiles.json")
}

// NewStore creates or loads a profile store at the given path. A missing or
// unreadable file starts an empty store.
func NewStore(path string) *Store {
	s := &Store{path: path}
	if raw, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(raw, &s.profiles)
	}
	return s
}

// List returns all profiles.
func (s *Store) List() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Profile(nil), s.profiles...)
}

// Get returns the profile with the given name.
func (s *Store) Get(name string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Upsert inserts or replaces a profile by name and saves.
func (s *Store) Upsert(p Profile) ([]Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i := range s.profiles {
		if s.profiles[i].Name == p.Name {
			s.profiles[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		s.profiles = append(s.profiles, p)
	}
	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	return append([]Profile(nil), s.profiles...), nil
}

// Delete removes a profile by name and saves. Deleting a missing profile is
// a no-op.
func (s *Store) Delete(name string) ([]Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.profiles[:0]
	for _, p := range s.profiles {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	s.profiles = kept
	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	return append([]Profile(nil), s.profiles...), nil
}

// saveLocked writes the profile list atomically: temp file then rename.
func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s.profiles, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
