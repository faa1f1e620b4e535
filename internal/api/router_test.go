package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trip-map-service/internal/adapters/cache"
	"trip-map-service/internal/adapters/ors"
	"trip-map-service/internal/adapters/render"
	"trip-map-service/internal/adapters/repositories"
	"trip-map-service/internal/api"
	"trip-map-service/internal/api/dto"
	"trip-map-service/internal/api/handlers"
	"trip-map-service/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tuning := config.DefaultPipeline()
	tuning.BatchDelay = 0

	geocoder := ors.NewMockGeocoder([]ors.MockEntry{
		{Query: "Mercado da Ribeira, Lisbon, Portugal", Lat: 38.7067, Lon: -9.1459},
		{Query: "Castelo de S. Jorge, Lisbon, Portugal", Lat: 38.7139, Lon: -9.1335},
		{Query: "Belem Tower, Lisbon, Portugal", Lat: 38.6916, Lon: -9.2160},
	})

	router := api.NewRouter(repositories.NewMemoryTripStore(), handlers.PipelineDeps{
		Geocoder:     geocoder,
		GeocodeCache: nil,
		Directions:   &ors.MockDirections{},
		RouteCache:   cache.NewMemoryRouteCache(),
		Tuning:       tuning,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func submitTrip(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	body := []byte(`{
		"itinerary": {
			"destination": "Lisbon, Portugal",
			"days": [
				{
					"day": 1,
					"meals": [{"name": "Mercado da Ribeira", "time": "12:30"}],
					"attractions": [{"name": "Castelo de S. Jorge", "time": "09:00"}]
				},
				{
					"day": 2,
					"attractions": [{"name": "Belem Tower", "time": "10:00"}]
				}
			]
		}
	}`)

	res, err := http.Post(srv.URL+"/trips", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /trips: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		t.Fatalf("POST /trips status = %d, want 201", res.StatusCode)
	}

	var created dto.TripCreatedResponse
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == "" || created.Days != 2 {
		t.Fatalf("create response = %+v", created)
	}
	return created.ID
}

func waitReady(t *testing.T, srv *httptest.Server, id string, day int) dto.TripStatusResponse {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	var status dto.TripStatusResponse
	for time.Now().Before(deadline) {
		res, err := http.Get(srv.URL + "/trips/" + id + "/status")
		if err != nil {
			t.Fatalf("GET status: %v", err)
		}
		err = json.NewDecoder(res.Body).Decode(&status)
		res.Body.Close()
		if err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if status.Phase == "ready" && status.Day == day {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for ready day=%d, last status %+v", day, status)
	return status
}

func getMap(t *testing.T, srv *httptest.Server, id string) render.Snapshot {
	t.Helper()

	res, err := http.Get(srv.URL + "/trips/" + id + "/map")
	if err != nil {
		t.Fatalf("GET map: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET map status = %d, want 200", res.StatusCode)
	}
	var snap render.Snapshot
	if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
		t.Fatalf("decode map: %v", err)
	}
	return snap
}

func TestTripLifecycle(t *testing.T) {
	srv := newTestServer(t)
	id := submitTrip(t, srv)

	// Creation starts the all-days render.
	waitReady(t, srv, id, 0)
	snap := getMap(t, srv, id)
	if len(snap.Markers) != 3 {
		t.Errorf("all-days markers = %d, want 3", len(snap.Markers))
	}
	if len(snap.Routes) != 1 {
		t.Errorf("all-days routes = %d, want 1 (day 2 has a single stop)", len(snap.Routes))
	}

	// Switching days replaces the surface contents.
	selectBody := bytes.NewReader([]byte(`{"day": 2}`))
	res, err := http.Post(srv.URL+"/trips/"+id+"/select", "application/json", selectBody)
	if err != nil {
		t.Fatalf("POST select: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusAccepted {
		t.Fatalf("POST select status = %d, want 202", res.StatusCode)
	}

	waitReady(t, srv, id, 2)
	snap = getMap(t, srv, id)
	if len(snap.Markers) != 1 {
		t.Errorf("day 2 markers = %d, want 1", len(snap.Markers))
	}
	if len(snap.Routes) != 0 {
		t.Errorf("day 2 routes = %d, want 0", len(snap.Routes))
	}

	// "all" restores the reset view.
	res, err = http.Post(srv.URL+"/trips/"+id+"/select", "application/json",
		bytes.NewReader([]byte(`{"day": "all"}`)))
	if err != nil {
		t.Fatalf("POST select all: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusAccepted {
		t.Fatalf("POST select all status = %d, want 202", res.StatusCode)
	}
	waitReady(t, srv, id, 0)
	if snap = getMap(t, srv, id); len(snap.Markers) != 3 {
		t.Errorf("all-days markers after reselect = %d, want 3", len(snap.Markers))
	}

	// Closing removes the session entirely.
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/trips/"+id, nil)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE trip: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", res.StatusCode)
	}

	res, err = http.Get(srv.URL + "/trips/" + id + "/status")
	if err != nil {
		t.Fatalf("GET status after close: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("status after close = %d, want 404", res.StatusCode)
	}
}

func TestTripSelectInvalidDay(t *testing.T) {
	srv := newTestServer(t)
	id := submitTrip(t, srv)

	res, err := http.Post(srv.URL+"/trips/"+id+"/select", "application/json",
		bytes.NewReader([]byte(`{"day": 9}`)))
	if err != nil {
		t.Fatalf("POST select: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", res.StatusCode)
	}
}

func TestTripCreateRejectsEmptyItinerary(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Post(srv.URL+"/trips", "application/json",
		bytes.NewReader([]byte(`{"itinerary": {"destination": "", "days": []}}`)))
	if err != nil {
		t.Fatalf("POST /trips: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", res.StatusCode)
	}
}

func TestUnknownTripIsNotFound(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/trips/nope/map")
	if err != nil {
		t.Fatalf("GET map: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", res.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", res.StatusCode)
	}
	if got := res.Header.Get("X-Request-ID"); got == "" {
		t.Error("missing X-Request-ID header")
	}
}
