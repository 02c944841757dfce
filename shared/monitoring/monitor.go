package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Monitor tracks background job runs and request outcomes for the health endpoints.
type Monitor struct {
	mu             sync.RWMutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastRunSummary string
	runs           int
	failedRuns     int
	requests       int64
	failedRequests int64
	startedAt      time.Time
	now            func() time.Time
}

// Status is a point-in-time copy of the monitor's counters.
type Status struct {
	Healthy        bool      `json:"healthy"`
	Summary        string    `json:"summary"`
	StartedAt      time.Time `json:"started_at"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	LastRunTime    time.Time `json:"last_run_time,omitempty"`
	LastRunSuccess bool      `json:"last_run_success"`
	LastRunSummary string    `json:"last_run_summary,omitempty"`
	Runs           int       `json:"runs"`
	FailedRuns     int       `json:"failed_runs"`
	Requests       int64     `json:"requests"`
	FailedRequests int64     `json:"failed_requests"`
}

func NewMonitor() *Monitor {
	return newMonitorWithClock(time.Now)
}

func newMonitorWithClock(now func() time.Time) *Monitor {
	return &Monitor{
		startedAt: now(),
		now:       now,
	}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = m.now()
	m.lastRunSummary = summary
	m.runs++
	m.mu.Unlock()

	log.Printf("✅ Run completed successfully - %s (took %v)", summary, duration)
}

// RecordPartialFailure logs a degraded run without changing health status.
func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()

	log.Printf("⚠️  PARTIAL FAILURE: %s (Duration: %v)", err.Error(), duration)
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = m.now()
	m.lastRunSummary = err.Error()
	m.runs++
	m.failedRuns++
	at := m.lastRunTime
	m.mu.Unlock()

	log.Printf("🚨 CRITICAL FAILURE: %s (Duration: %v)", err.Error(), duration)
	log.Printf("Failure occurred at: %s", at.Format("2006-01-02 15:04:05"))
}

// RecordRequest counts an API request; server errors count as failures.
func (m *Monitor) RecordRequest(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	if statusCode >= 500 {
		m.failedRequests++
	}
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthyLocked()
}

func (m *Monitor) healthyLocked() bool {
	if m.lastRunTime.IsZero() {
		return true // No runs yet, assume healthy
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summaryLocked()
}

func (m *Monitor) summaryLocked() string {
	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}
	if m.lastRunSuccess {
		return fmt.Sprintf("✅ Last run: %s", m.lastRunTime.Format("Jan 2 15:04"))
	}
	return fmt.Sprintf("❌ Last run failed: %s", m.lastRunTime.Format("Jan 2 15:04"))
}

func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Status{
		Healthy:        m.healthyLocked(),
		Summary:        m.summaryLocked(),
		StartedAt:      m.startedAt,
		UptimeSeconds:  int64(m.now().Sub(m.startedAt).Seconds()),
		LastRunTime:    m.lastRunTime,
		LastRunSuccess: m.lastRunSuccess,
		LastRunSummary: m.lastRunSummary,
		Runs:           m.runs,
		FailedRuns:     m.failedRuns,
		Requests:       m.requests,
		FailedRequests: m.failedRequests,
	}
}
