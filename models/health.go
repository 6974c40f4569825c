package models

import "time"

// ComponentHealth is the status of one dependency
type ComponentHealth struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy"
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Status     string            `json:"status"` // "operational", "degraded", "outage"
	Station    string            `json:"station"`
	Routes     int               `json:"routes"`
	Components []ComponentHealth `json:"components"`
	CheckedAt  time.Time         `json:"checkedAt"`
}

// HealthStatus constants
const (
	StatusHealthy     = "healthy"
	StatusDegraded    = "degraded"
	StatusUnhealthy   = "unhealthy"
	StatusOperational = "operational"
	StatusOutage      = "outage"
)

// OverallStatus rolls component statuses up into one
func OverallStatus(components []ComponentHealth) string {
	status := StatusOperational
	for _, c := range components {
		switch c.Status {
		case StatusUnhealthy:
			return StatusOutage
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
