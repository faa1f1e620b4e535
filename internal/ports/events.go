package ports

// EventSink receives presentation events emitted by the pipeline.
// Implementations must be cheap and non-blocking; the pipeline calls
// them inline between stages.
type EventSink interface {
	// Progress reports fractional geocoding progress for a selection,
	// as a 0-100 percentage, after every completed lookup.
	Progress(day int, percent int)
	// Ready signals that extraction, geocoding and routing for the
	// selection completed (including degraded fallback outcomes).
	Ready(day int)
	// Toast surfaces a non-fatal degraded-state message.
	Toast(message string)
}
