package http

import (
	"github.com/GriffinCanCode/switcher/internal/domain/applist"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/switcher/internal/shared/id"
	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

// StatusResponse is returned by GET /
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status   string                      `json:"status"`
	Revision uint64                      `json:"revision"`
	Apps     types.Stats                 `json:"apps"`
	Metrics  *monitoring.MetricsSnapshot `json:"metrics,omitempty"`
}

// AppsResponse is returned by GET /apps
type AppsResponse struct {
	Revision   uint64         `json:"revision"`
	RevisionID id.RevisionID  `json:"revision_id"`
	Snapshot   types.Snapshot `json:"snapshot"`
	Stats      types.Stats    `json:"stats"`
}

// AppListResponse is returned by the list selectors
type AppListResponse struct {
	Apps  []types.AppEntry `json:"apps"`
	Count int              `json:"count"`
}

// HotCodesResponse maps each bound key to its app
type HotCodesResponse struct {
	HotCodes map[string]string `json:"hot_codes"`
}

// EventResponse is returned by POST /events
type EventResponse struct {
	Revision   uint64         `json:"revision"`
	RevisionID id.RevisionID  `json:"revision_id"`
	Kind       applist.Kind   `json:"kind"`
	Snapshot   types.Snapshot `json:"snapshot"`
}

// ErrorResponse carries a rejected request's reason
type ErrorResponse struct {
	Error     string       `json:"error"`
	Kind      applist.Kind `json:"kind,omitempty"`
	RequestID id.RequestID `json:"request_id,omitempty"`
}
