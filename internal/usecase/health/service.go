package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
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

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	backend Pinger
	cache   Pinger
}

// New creates a Service. cache can be nil.
func New(backend, cache Pinger) *Service {
	return &Service{backend: backend, cache: cache}
}

// Check runs health checks against all components. The search backend is
// required; losing only the cache degrades the service.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	backendOK := s.backend.Ping(ctx) == nil
	checks["backend"] = result(backendOK)

	cacheOK := true
	if s.cache != nil {
		cacheOK = s.cache.Ping(ctx) == nil
		checks["cache"] = result(cacheOK)
	}

	status := Healthy
	switch {
	case !backendOK:
		status = Unhealthy
	case !cacheOK:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func result(ok bool) CheckResult {
	if ok {
		return CheckOK
	}
	return CheckError
}
