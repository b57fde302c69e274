// Package store persists the subscription list as a versioned YAML file.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const CurrentVersion = 1

var (
	ErrNotFound          = errors.New("subscription not found")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrVersionMismatch   = errors.New("subscription file version mismatch")
	ErrCorrupt           = errors.New("subscription file is corrupt")
)

type Subscription struct {
	ID          int         `yaml:"id"`
	Title       string      `yaml:"title"`
	Network     string      `yaml:"network"`
	Status      string      `yaml:"status"`
	Runtime     int         `yaml:"runtime"`
	Language    string      `yaml:"language,omitempty"`
	Premiered   string      `yaml:"premiered,omitempty"`
	Updated     int64       `yaml:"updated,omitempty"`
	LastWatched *EpisodeRef `yaml:"last_watched,omitempty"`
}

// Watched reports whether ref is at or before the last watched episode.
func (s Subscription) Watched(ref EpisodeRef) bool {
	return s.LastWatched != nil && !s.LastWatched.Less(ref)
}

// AmbiguousError is returned by Find when a title matches several
// subscriptions.
type AmbiguousError struct {
	Query   string
	Matches []Subscription
}

func (e *AmbiguousError) Error() string {
	titles := make([]string, len(e.Matches))
	for i, m := range e.Matches {
		titles[i] = fmt.Sprintf("'%s'", m.Title)
	}
	return fmt.Sprintf("'%s' matches %d subscriptions: %s", e.Query, len(e.Matches), strings.Join(titles, ", "))
}

type fileData struct {
	Version       int            `yaml:"version"`
	Subscriptions []Subscription `yaml:"subscriptions"`
}

type Store struct {
	path string
	subs []Subscription
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

// Reload discards in-memory state and re-reads the file.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.subs = nil
			return nil
		}
		return fmt.Errorf("failed to read subscriptions from %s: %w", s.path, err)
	}

	var probe struct {
		Version int `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if probe.Version > CurrentVersion {
		return fmt.Errorf("%w: %s has version %d, this build supports up to %d", ErrVersionMismatch, s.path, probe.Version, CurrentVersion)
	}
	if probe.Version < 1 {
		return fmt.Errorf("%w: %s: missing version", ErrCorrupt, s.path)
	}

	var fd fileData
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	seen := make(map[int]bool, len(fd.Subscriptions))
	for _, sub := range fd.Subscriptions {
		if sub.ID <= 0 {
			return fmt.Errorf("%w: %s: subscription '%s' has no id", ErrCorrupt, s.path, sub.Title)
		}
		if seen[sub.ID] {
			return fmt.Errorf("%w: %s: duplicate id %d", ErrCorrupt, s.path, sub.ID)
		}
		seen[sub.ID] = true
	}

	s.subs = fd.Subscriptions
	s.sort()
	return nil
}

// Subscriptions returns a copy ordered by title.
func (s *Store) Subscriptions() []Subscription {
	out := make([]Subscription, len(s.subs))
	copy(out, s.subs)
	return out
}

func (s *Store) Len() int { return len(s.subs) }

func (s *Store) Get(id int) (Subscription, bool) {
	if i := s.index(id); i >= 0 {
		return s.subs[i], true
	}
	return Subscription{}, false
}

// Find matches title case-insensitively: an exact title wins, otherwise
// a single substring match is accepted.
func (s *Store) Find(title string) (Subscription, error) {
	query := strings.ToLower(strings.TrimSpace(title))
	if query == "" {
		return Subscription{}, fmt.Errorf("%w: empty title", ErrNotFound)
	}

	var exact, partial []Subscription
	for _, sub := range s.subs {
		name := strings.ToLower(sub.Title)
		switch {
		case name == query:
			exact = append(exact, sub)
		case strings.Contains(name, query):
			partial = append(partial, sub)
		}
	}

	matches := exact
	if len(matches) == 0 {
		matches = partial
	}
	switch len(matches) {
	case 0:
		return Subscription{}, fmt.Errorf("%w: '%s'", ErrNotFound, title)
	case 1:
		return matches[0], nil
	default:
		return Subscription{}, &AmbiguousError{Query: title, Matches: matches}
	}
}

func (s *Store) Add(sub Subscription) error {
	if s.index(sub.ID) >= 0 {
		return fmt.Errorf("%w: '%s'", ErrAlreadySubscribed, sub.Title)
	}
	s.subs = append(s.subs, sub)
	s.sort()
	return nil
}

func (s *Store) Update(sub Subscription) error {
	i := s.index(sub.ID)
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, sub.ID)
	}
	s.subs[i] = sub
	s.sort()
	return nil
}

func (s *Store) Remove(id int) (Subscription, error) {
	i := s.index(id)
	if i < 0 {
		return Subscription{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	removed := s.subs[i]
	s.subs = append(s.subs[:i], s.subs[i+1:]...)
	return removed, nil
}

// Save writes the store atomically: the data goes to a temp file in the
// same directory which is then renamed over the target.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	release, err := acquireLock(s.path + ".lock")
	if err != nil {
		return err
	}
	defer release()

	subs := s.subs
	if subs == nil {
		subs = []Subscription{}
	}
	data, err := yaml.Marshal(fileData{Version: CurrentVersion, Subscriptions: subs})
	if err != nil {
		return fmt.Errorf("failed to encode subscriptions: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".subscriptions-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", tmpName, s.path, err)
	}
	return nil
}

func (s *Store) index(id int) int {
	for i := range s.subs {
		if s.subs[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) sort() {
	sort.SliceStable(s.subs, func(i, j int) bool {
		a, b := strings.ToLower(s.subs[i].Title), strings.ToLower(s.subs[j].Title)
		if a != b {
			return a < b
		}
		return s.subs[i].ID < s.subs[j].ID
	})
}
