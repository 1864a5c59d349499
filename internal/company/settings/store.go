// Package settings implements the persisted application settings store:
// the UI locale and the company identity shown to operators. Mutations are
// applied in memory synchronously and written back to a Persister in the
// background; Flush makes the write-back explicit.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	e "github.com/gartstein/olt/internal/company/errors"
	"github.com/gartstein/olt/internal/company/models"
	"go.uber.org/zap"
)

// DefaultNamespace identifies the persisted snapshot. Changing it loses saved settings.
const DefaultNamespace = "olt-settings"

var (
	jsonMarshal   = json.Marshal
	jsonUnmarshal = json.Unmarshal
)

// Persister is the local durable storage for snapshots.
type Persister interface {
	LoadSnapshot(ctx context.Context, namespace string) ([]byte, error)
	SaveSnapshot(ctx context.Context, namespace string, payload []byte) error
}

// Listener is called with the new state after every mutation.
type Listener func(state models.AppState)

// snapshot is the serialized form written to the Persister.
type snapshot struct {
	State   models.AppState `json:"state"`
	Version int             `json:"version"`
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Store holds the application settings. The zero value is not usable; use NewStore.
type Store struct {
	mu        sync.RWMutex
	state     models.AppState
	revision  uint64
	flushed   uint64
	listeners []listenerEntry
	nextID    uint64

	flushMu   sync.Mutex
	persister Persister
	namespace string
	logger    *zap.Logger

	dirty     chan struct{}
	closeChan chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithNamespace overrides DefaultNamespace.
func WithNamespace(namespace string) Option {
	return func(s *Store) {
		s.namespace = namespace
	}
}

// WithLogger sets the logger used for background write-back failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore loads the persisted snapshot, or seeds DefaultAppState when none
// exists, and starts the background write-back loop.
func NewStore(ctx context.Context, persister Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persister: persister,
		namespace: DefaultNamespace,
		logger:    zap.NewNop(),
		dirty:     make(chan struct{}, 1),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("settings_store")

	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.state = state

	go s.flushLoop()
	return s, nil
}

func (s *Store) load(ctx context.Context) (models.AppState, error) {
	payload, err := s.persister.LoadSnapshot(ctx, s.namespace)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return models.DefaultAppState(), nil
		}
		return models.AppState{}, fmt.Errorf("failed to load settings snapshot: %w", err)
	}

	// Fields absent from the payload keep their seeded values.
	snap := snapshot{State: models.DefaultAppState()}
	if err := jsonUnmarshal(payload, &snap); err != nil {
		s.logger.Warn("Discarding unreadable settings snapshot",
			zap.Error(err),
			zap.String("namespace", s.namespace),
		)
		return models.DefaultAppState(), nil
	}
	return snap.State, nil
}

// State returns a copy of the current settings.
func (s *Store) State() models.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetLocale replaces the locale. The value is not validated.
func (s *Store) SetLocale(locale models.Locale) {
	s.update(func(state *models.AppState) {
		state.Locale = locale
	})
}

// SetCompany merges the non-nil fields of patch into the company settings.
func (s *Store) SetCompany(patch models.CompanySettingsPatch) {
	s.update(func(state *models.AppState) {
		state.Company = state.Company.Merge(patch)
	})
}

// update applies fn, notifies listeners before returning and schedules a write-back.
// Listeners run outside the lock and receive the state produced by this
// mutation; with concurrent setters, calls may interleave out of order.
func (s *Store) update(fn func(state *models.AppState)) {
	s.mu.Lock()
	fn(&s.state)
	s.revision++
	state := s.state
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(state)
	}

	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// Subscribe registers fn to be called synchronously after each mutation,
// in registration order. The returned function removes the listener.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Flush writes the current state to the Persister if it changed since the last write.
func (s *Store) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.RLock()
	state, revision := s.state, s.revision
	flushed := s.flushed
	s.mu.RUnlock()

	if revision == flushed {
		return nil
	}

	payload, err := jsonMarshal(snapshot{State: state})
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	if err := s.persister.SaveSnapshot(ctx, s.namespace, payload); err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}

	s.mu.Lock()
	s.flushed = revision
	s.mu.Unlock()
	return nil
}

func (s *Store) flushLoop() {
	defer close(s.done)
	for {
		select {
		case <-s.dirty:
			if err := s.Flush(context.Background()); err != nil {
				s.logger.Error("Failed to write back settings",
					zap.Error(err),
					zap.String("namespace", s.namespace),
				)
			}
		case <-s.closeChan:
			return
		}
	}
}

// Close stops the background write-back and flushes any pending change.
func (s *Store) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		close(s.closeChan)
	})
	<-s.done
	return s.Flush(ctx)
}
