package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/switcher/internal/api/middleware"
	"github.com/GriffinCanCode/switcher/internal/domain/applist"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/monitoring"
)

// Version is reported by the root endpoint
const Version = "0.3.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	dispatcher *applist.Dispatcher
	metrics    *monitoring.Metrics
	logger     *logging.Logger
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(dispatcher *applist.Dispatcher, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger.Named("api"),
	}
}

// Register mounts the handlers on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	apps := r.Group("/apps")
	apps.GET("", h.ListApps)
	apps.GET("/installed", h.InstalledApps)
	apps.GET("/removed", h.RemovedApps)
	apps.GET("/hotcodes", h.HotCodes)

	r.POST("/events", h.PostEvent)
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:  "online",
		Service: "switcher",
		Version: Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	current := h.dispatcher.Current()
	resp := HealthResponse{
		Status:   "healthy",
		Revision: current.Revision,
		Apps:     current.Snapshot.Stats(),
	}
	if h.metrics != nil {
		snap := h.metrics.Snapshot()
		resp.Metrics = &snap
	}
	c.JSON(http.StatusOK, resp)
}

// ListApps returns the whole live snapshot
func (h *Handlers) ListApps(c *gin.Context) {
	current := h.dispatcher.Current()
	c.JSON(http.StatusOK, AppsResponse{
		Revision:   current.Revision,
		RevisionID: current.RevisionID,
		Snapshot:   current.Snapshot,
		Stats:      current.Snapshot.Stats(),
	})
}

// InstalledApps lists the apps the switcher cycles through
func (h *Handlers) InstalledApps(c *gin.Context) {
	apps := applist.Installed(h.dispatcher.Snapshot().Apps)
	c.JSON(http.StatusOK, AppListResponse{Apps: apps, Count: len(apps)})
}

// RemovedApps lists the apps the user hid
func (h *Handlers) RemovedApps(c *gin.Context) {
	apps := applist.Removed(h.dispatcher.Snapshot().Apps)
	c.JSON(http.StatusOK, AppListResponse{Apps: apps, Count: len(apps)})
}

// HotCodes returns the key to app mapping
func (h *Handlers) HotCodes(c *gin.Context) {
	c.JSON(http.StatusOK, HotCodesResponse{
		HotCodes: applist.HotCodes(h.dispatcher.Snapshot().Apps),
	})
}

// PostEvent decodes an event envelope and dispatches it
func (h *Handlers) PostEvent(c *gin.Context) {
	var env applist.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		h.fail(c, http.StatusBadRequest, "", err)
		return
	}

	event, err := env.Event()
	if err != nil {
		h.fail(c, http.StatusBadRequest, env.Type, err)
		return
	}

	change, err := h.dispatcher.DispatchChange(event)
	if err != nil {
		h.fail(c, StatusFor(err), env.Type, err)
		return
	}

	c.JSON(http.StatusOK, EventResponse{
		Revision:   change.Revision,
		RevisionID: change.RevisionID,
		Kind:       change.Kind,
		Snapshot:   change.Snapshot,
	})
}

// StatusFor maps an engine error to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, applist.ErrUnknownApp):
		return http.StatusNotFound
	case errors.Is(err, applist.ErrInvalidEvent), errors.Is(err, applist.ErrUnknownEvent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(c *gin.Context, status int, kind applist.Kind, err error) {
	reqID := middleware.GetRequestID(c)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Event failed",
			zap.String("kind", string(kind)),
			zap.String("request_id", string(reqID)),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{
		Error:     err.Error(),
		Kind:      kind,
		RequestID: reqID,
	})
}
