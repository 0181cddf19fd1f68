package monitoring

import (
	"sync"
	"time"
)

// Run describes one served recommendation request
type Run struct {
	Recommendations int
	HighPriority    int
	Cached          bool
	Duration        time.Duration
	At              time.Time
}

// Monitor remembers the latest recommendation run of every hospital
type Monitor struct {
	runs      map[string]Run
	runsMutex sync.RWMutex
	startTime time.Time
	now       func() time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		runs:      make(map[string]Run),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// RecordRun stores run as the latest for hospital. A zero At is set to now.
func (m *Monitor) RecordRun(hospital string, run Run) {
	if run.At.IsZero() {
		run.At = m.now()
	}
	m.runsMutex.Lock()
	defer m.runsMutex.Unlock()
	m.runs[hospital] = run
}

// LastRun returns the latest run recorded for hospital
func (m *Monitor) LastRun(hospital string) (Run, bool) {
	m.runsMutex.RLock()
	defer m.runsMutex.RUnlock()
	run, exists := m.runs[hospital]
	return run, exists
}

// Status reports the hospital's latest run together with process uptime.
// Other tenants' runs are never included.
func (m *Monitor) Status(hospital string) map[string]interface{} {
	status := map[string]interface{}{
		"uptime_seconds": m.now().Sub(m.startTime).Seconds(),
	}
	if run, ok := m.LastRun(hospital); ok {
		status["last_run"] = map[string]interface{}{
			"recommendations": run.Recommendations,
			"high_priority":   run.HighPriority,
			"cached":          run.Cached,
			"duration_ms":     run.Duration.Milliseconds(),
			"at":              run.At.UTC().Format(time.RFC3339),
		}
	}
	return status
}

// Reset clears all recorded runs
func (m *Monitor) Reset() {
	m.runsMutex.Lock()
	defer m.runsMutex.Unlock()
	m.runs = make(map[string]Run)
}
