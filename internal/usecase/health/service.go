package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates search runs on the corpus fallback.
	Degraded Status = "degraded"
	// Unhealthy indicates the corpus store is down.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names.
const (
	ComponentIndex  = "search_index"
	ComponentCorpus = "corpus"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	index  Pinger
	corpus Pinger
}

// New creates a Service.
func New(index, corpus Pinger) *Service {
	return &Service{index: index, corpus: corpus}
}

// Check pings every component. A failed index only degrades the service
// since search falls back to the corpus.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		ComponentIndex:  ping(ctx, s.index),
		ComponentCorpus: ping(ctx, s.corpus),
	}

	status := Healthy
	switch {
	case checks[ComponentCorpus] == CheckError:
		status = Unhealthy
	case checks[ComponentIndex] == CheckError:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}

func ping(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
