// Package health exposes liveness and readiness probe endpoints.
//
// Checks execute on demand when a probe endpoint is hit, each bounded by its
// own timeout. Readiness additionally requires the service to be marked ready,
// which happens after initialization and is revoked during graceful shutdown.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Probes holds the registered liveness and readiness checks.
type Probes struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []check
	readiness []check
}

// New returns an empty probe set. The service starts not ready.
func New() *Probes {
	return &Probes{}
}

// AddLiveness registers a liveness check. Liveness failures signal the process
// itself is broken and should be restarted.
func (p *Probes) AddLiveness(name string, timeout time.Duration, fn CheckFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.liveness = append(p.liveness, check{name: name, timeout: timeout, fn: fn})
}

// AddReadiness registers a readiness check. Readiness failures only take the
// instance out of rotation.
func (p *Probes) AddReadiness(name string, timeout time.Duration, fn CheckFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readiness = append(p.readiness, check{name: name, timeout: timeout, fn: fn})
}

// SetReady marks the service ready or not ready for traffic.
func (p *Probes) SetReady(ready bool) {
	p.ready.Store(ready)
}

// LiveEndpoint serves the /livez probe.
func (p *Probes) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	p.mu.RLock()
	checks := append([]check(nil), p.liveness...)
	p.mu.RUnlock()

	writeProbe(w, runChecks(r.Context(), checks))
}

// ReadyEndpoint serves the /readyz probe. It fails while the service has not
// been marked ready, regardless of individual checks.
func (p *Probes) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	p.mu.RLock()
	checks := append([]check(nil), p.readiness...)
	p.mu.RUnlock()

	failures := runChecks(r.Context(), checks)
	if !p.ready.Load() {
		failures["service"] = "not ready"
	}
	writeProbe(w, failures)
}

func runChecks(ctx context.Context, checks []check) map[string]string {
	failures := make(map[string]string)
	for _, c := range checks {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.fn(cctx)
		cancel()
		if err != nil {
			failures[c.name] = err.Error()
		}
	}
	return failures
}

type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func writeProbe(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := probeResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp = probeResponse{Status: "unhealthy", Checks: failures}
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
