package repositories

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"trip-map-service/internal/adapters/events"
	"trip-map-service/internal/adapters/render"
	"trip-map-service/internal/domain"
	"trip-map-service/internal/services"
)

// ErrTripNotFound is returned for unknown or already-closed trips.
var ErrTripNotFound = errors.New("trip not found")

// TripSession binds one submitted itinerary to its pipeline controller,
// rendering surface and event log for the lifetime of the map view.
type TripSession struct {
	ID         string
	Itinerary  *domain.Itinerary
	Controller *services.DaySelectionController
	Surface    *render.StateSurface
	Events     *events.Recorder
	CreatedAt  time.Time
}

// MemoryTripStore holds active trip sessions in memory. Sessions are
// view-scoped state, not persisted trips; closing the view removes
// them.
type MemoryTripStore struct {
	mu       sync.Mutex
	sessions map[string]*TripSession
}

func NewMemoryTripStore() *MemoryTripStore {
	return &MemoryTripStore{sessions: make(map[string]*TripSession)}
}

// Add registers a session under a fresh id.
func (s *MemoryTripStore) Add(session *TripSession) string {
	id := uuid.NewString()
	session.ID = id
	session.CreatedAt = time.Now()

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()
	return id
}

func (s *MemoryTripStore) Get(id string) (*TripSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrTripNotFound
	}
	return session, nil
}

// Remove deletes the session and returns it so the caller can close
// its controller.
func (s *MemoryTripStore) Remove(id string) (*TripSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrTripNotFound
	}
	delete(s.sessions, id)
	return session, nil
}
