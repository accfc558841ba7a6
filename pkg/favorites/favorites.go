// Package favorites keeps the process-wide set of favorited token addresses.
package favorites

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrClosed = errors.New("favorites store is closed")

// Store is a set of identifiers mutated only by Toggle.
type Store interface {
	IsFavorited(id string) (bool, error)
	// Toggle adds id when absent, removes it when present, and returns the
	// new membership.
	Toggle(id string) (bool, error)
	List() ([]string, error)
	Close() error
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// MemoryStore is a Store that lives for the process only.
type MemoryStore struct {
	mu     sync.RWMutex
	ids    map[string]struct{}
	closed bool
}

func NewMemoryStore(ids ...string) *MemoryStore {
	s := &MemoryStore{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[normalize(id)] = struct{}{}
	}
	return s
}

func (s *MemoryStore) IsFavorited(id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrClosed
	}
	_, ok := s.ids[normalize(id)]
	return ok, nil
}

func (s *MemoryStore) Toggle(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	key := normalize(id)
	if _, ok := s.ids[key]; ok {
		delete(s.ids, key)
		return false, nil
	}
	s.ids[key] = struct{}{}
	return true, nil
}

func (s *MemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Adapter is the read/toggle capability handed to the view. Store errors are
// logged and read as "not favorited" so they never reach the render path.
type Adapter struct {
	store Store
	log   logrus.FieldLogger
}

func NewAdapter(store Store, log logrus.FieldLogger) *Adapter {
	return &Adapter{store: store, log: log}
}

func (a *Adapter) IsFavorited(id string) bool {
	ok, err := a.store.IsFavorited(id)
	if err != nil {
		a.log.WithError(err).WithField("address", id).Warn("Failed to read favorite")
		return false
	}
	return ok
}

// Toggle flips membership of id once.
func (a *Adapter) Toggle(id string) error {
	fav, err := a.store.Toggle(id)
	if err != nil {
		a.log.WithError(err).WithField("address", id).Error("Failed to toggle favorite")
		return err
	}
	a.log.WithFields(logrus.Fields{"address": id, "favorited": fav}).Debug("Favorite toggled")
	return nil
}
