/*
Package storage keeps the append-only list of extracted profiles. The file
store writes fitness_profiles.json; internal/database offers the same
contract on Postgres.
*/
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"healthcast/internal/profile"
	"healthcast/internal/utility"
)

// ErrNoProfiles means the store holds no profile yet.
var ErrNoProfiles = errors.New("no stored profiles")

// ProfileStore appends profiles and returns the most recent one.
type ProfileStore interface {
	Append(ctx context.Context, p profile.FitnessProfile) error
	Latest(ctx context.Context) (profile.FitnessProfile, error)
}

// JSONFileStore persists profiles as a compact JSON array. The file is
// rewritten atomically on every append; the last element is the latest.
type JSONFileStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

func (s *JSONFileStore) Path() string { return s.path }

func (s *JSONFileStore) Append(ctx context.Context, p profile.FitnessProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	all = append(all, p)

	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	return utility.WriteFileAtomic(s.path, data, 0o644)
}

func (s *JSONFileStore) Latest(ctx context.Context) (profile.FitnessProfile, error) {
	if err := ctx.Err(); err != nil {
		return profile.FitnessProfile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return profile.FitnessProfile{}, err
	}
	if len(all) == 0 {
		return profile.FitnessProfile{}, fmt.Errorf("%w: %s", ErrNoProfiles, s.path)
	}
	return all[len(all)-1], nil
}

// All returns every stored profile, oldest first.
func (s *JSONFileStore) All(ctx context.Context) ([]profile.FitnessProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *JSONFileStore) read() ([]profile.FitnessProfile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var all []profile.FitnessProfile
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	// hand-edited entries still get their derived fields
	for i := range all {
		all[i] = profile.New(all[i])
	}
	return all, nil
}
