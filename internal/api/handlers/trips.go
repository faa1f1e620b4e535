package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"trip-map-service/internal/adapters/events"
	"trip-map-service/internal/adapters/render"
	"trip-map-service/internal/adapters/repositories"
	"trip-map-service/internal/api/dto"
	"trip-map-service/internal/config"
	"trip-map-service/internal/ports"
	"trip-map-service/internal/services"
)

// PipelineDeps are the shared adapters every trip session's pipeline
// runs against. Caches are shared across sessions on purpose; the
// rendering surface and event log are per session.
type PipelineDeps struct {
	Geocoder     ports.Geocoder
	GeocodeCache ports.GeocodeCache
	Directions   ports.DirectionsProvider
	RouteCache   ports.RouteCache
	Tuning       config.Pipeline
}

// TripHandler manages map sessions: one submitted itinerary, one
// controller, one surface.
type TripHandler struct {
	Store *repositories.MemoryTripStore
	Deps  PipelineDeps
}

// Create starts a session for a submitted itinerary and kicks off the
// initial all-days render.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	surface := render.NewStateSurface()
	recorder := events.NewRecorder()

	ctrl, err := services.NewDaySelectionController(
		&req.Itinerary,
		h.Deps.Geocoder,
		h.Deps.GeocodeCache,
		h.Deps.Directions,
		h.Deps.RouteCache,
		surface,
		recorder,
		h.Deps.Tuning,
	)
	if errors.Is(err, services.ErrNothingToShow) {
		writeError(w, r, http.StatusUnprocessableEntity, "itinerary has nothing to show")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not start session")
		return
	}

	if err := ctrl.Reset(); err != nil {
		writeError(w, r, http.StatusInternalServerError, "could not start render")
		return
	}

	id := h.Store.Add(&repositories.TripSession{
		Itinerary:  &req.Itinerary,
		Controller: ctrl,
		Surface:    surface,
		Events:     recorder,
	})

	log.Printf("trip created id=%s days=%d", id, len(req.Itinerary.Days))
	writeJSON(w, r, http.StatusCreated, dto.TripCreatedResponse{
		ID:   id,
		Days: len(req.Itinerary.Days),
	})
}

// SelectDay switches the session's view to one day (or all days).
func (h *TripHandler) SelectDay(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.SelectDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := session.Controller.SelectDay(req.Day); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]int{"day": req.Day})
}

// Reset restores the session's all-days view.
func (h *TripHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Controller.Reset(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]int{"day": services.DayAll})
}

// Close tears the session down: cancels in-flight work, clears its
// visuals and forgets it.
func (h *TripHandler) Close(w http.ResponseWriter, r *http.Request) {
	session, err := h.Store.Remove(r.PathValue("id"))
	if errors.Is(err, repositories.ErrTripNotFound) {
		writeError(w, r, http.StatusNotFound, "trip not found")
		return
	}

	session.Controller.Close()
	w.WriteHeader(http.StatusNoContent)
}

// Map serves the session's current surface snapshot.
func (h *TripHandler) Map(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, session.Surface.Snapshot())
}

// Status serves the session's phase and latest pipeline events.
func (h *TripHandler) Status(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	phase, day := session.Controller.State()
	ev := session.Events.Snapshot()
	writeJSON(w, r, http.StatusOK, dto.TripStatusResponse{
		Phase:    string(phase),
		Day:      day,
		Unplaced: session.Controller.Unplaced(),
		Progress: ev.Progress,
		Ready:    ev.Ready,
		Toasts:   ev.Toasts,
	})
}

func (h *TripHandler) session(w http.ResponseWriter, r *http.Request) (*repositories.TripSession, bool) {
	session, err := h.Store.Get(r.PathValue("id"))
	if errors.Is(err, repositories.ErrTripNotFound) {
		writeError(w, r, http.StatusNotFound, "trip not found")
		return nil, false
	}
	return session, true
}
