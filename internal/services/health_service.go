package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// DatasetProber is the part of AnalyticsService the health checks use
type DatasetProber interface {
	Ping(ctx context.Context) error
	Status() DatasetStatus
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	dataset   DatasetProber
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Dataset *DatasetStatus `json:"dataset,omitempty"`
}

// NewHealthService creates a health service. dataset may be nil, in which
// case readiness only reflects the process itself.
func NewHealthService(version, buildTime string, dataset DatasetProber, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		dataset:   dataset,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready only when the order source can be reached
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Services:  make(map[string]ServiceHealth),
	}

	if hs.dataset != nil {
		status.Services["source"] = hs.checkSource(ctx)
	}

	for _, svc := range status.Services {
		if svc.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.UTC().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

func (hs *HealthService) checkSource(ctx context.Context) ServiceHealth {
	dataset := hs.dataset.Status()

	if err := hs.dataset.Ping(ctx); err != nil {
		hs.logger.WarnContext(ctx, "order source not reachable",
			slog.String("source", dataset.SourceID),
			slog.String("error", err.Error()))
		return ServiceHealth{
			Status:  "not_ready",
			Message: err.Error(),
			Dataset: &dataset,
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: "order source reachable",
		Dataset: &dataset,
	}
}
