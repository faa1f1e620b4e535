package ors

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ORSClient talks to OpenRouteService. It implements both the geocoding
// and the directions capability behind one authenticated session,
// coordinating query normalization, client-side rate limiting and
// retry/backoff on transient failures. Safe for concurrent use.
type ORSClient struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	limiter *rate.Limiter
}

func NewORSClient(apiKey string, requestsPerSec int) (*ORSClient, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if requestsPerSec <= 0 {
		requestsPerSec = 5
	}

	return &ORSClient{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-car",
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
	}, nil
}

// normalize ensures consistent queries by collapsing whitespace.
func (o *ORSClient) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
