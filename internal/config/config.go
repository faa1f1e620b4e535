package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Get returns the environment variable value or the fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Pipeline holds the tuning knobs of the geocoding and routing
// pipeline. The defaults mirror the limits of the reference provider;
// they are policy, not core logic, so deployments can override them via
// a YAML file.
type Pipeline struct {
	// Number of geocode lookups issued concurrently per batch.
	BatchSize int
	// Pause between batches, imposed to respect provider rate limits.
	BatchDelay time.Duration
	// Days with more located stops than this are reduced to
	// first/middle/last before requesting a route.
	WaypointThreshold int
	// Decimal places used when grouping markers that share a coordinate.
	CoordinatePrecision int
	// Bounded wait for a selection's routes before Ready is emitted
	// with a degraded toast; late results still apply afterwards.
	RouteWaitTimeout time.Duration
}

// DefaultPipeline returns the reference tuning.
func DefaultPipeline() Pipeline {
	return Pipeline{
		BatchSize:           5,
		BatchDelay:          time.Second,
		WaypointThreshold:   10,
		CoordinatePrecision: 5,
		RouteWaitTimeout:    5 * time.Second,
	}
}

// LoadPipeline reads pipeline tuning from a YAML file, filling absent
// fields with defaults. A missing file is not an error; the file is
// optional.
func LoadPipeline(path string) (Pipeline, error) {
	p := DefaultPipeline()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("load pipeline config: read %q: %w", path, err)
	}

	var file pipelineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return p, fmt.Errorf("load pipeline config: parse %q: %w", path, err)
	}

	if file.BatchSize > 0 {
		p.BatchSize = file.BatchSize
	}
	if file.BatchDelayMS > 0 {
		p.BatchDelay = time.Duration(file.BatchDelayMS) * time.Millisecond
	}
	if file.WaypointThreshold > 0 {
		p.WaypointThreshold = file.WaypointThreshold
	}
	if file.CoordinatePrecision > 0 {
		p.CoordinatePrecision = file.CoordinatePrecision
	}
	if file.RouteWaitTimeoutMS > 0 {
		p.RouteWaitTimeout = time.Duration(file.RouteWaitTimeoutMS) * time.Millisecond
	}

	return p, nil
}

// pipelineFile is the on-disk shape. Delays are plain milliseconds so
// the file stays editable without duration-literal parsing rules.
type pipelineFile struct {
	BatchSize           int `yaml:"batch_size"`
	BatchDelayMS        int `yaml:"batch_delay_ms"`
	WaypointThreshold   int `yaml:"waypoint_threshold"`
	CoordinatePrecision int `yaml:"coordinate_precision"`
	RouteWaitTimeoutMS  int `yaml:"route_wait_timeout_ms"`
}
