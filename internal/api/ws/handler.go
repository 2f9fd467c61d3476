package ws

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/switcher/internal/api/http"
	"github.com/GriffinCanCode/switcher/internal/domain/applist"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/switcher/internal/shared/id"
	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

// Server message types
const (
	TypeSnapshot = "snapshot"
	TypeError    = "error"
	TypePong     = "pong"

	typePing = "ping"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageBytes = 1 << 20
	replyBuffer     = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Views connect from local origins
	},
}

// Message is sent from the server to a view
type Message struct {
	Type       string          `json:"type"`
	Revision   uint64          `json:"revision,omitempty"`
	RevisionID id.RevisionID   `json:"revision_id,omitempty"`
	Kind       applist.Kind    `json:"kind,omitempty"`
	Snapshot   *types.Snapshot `json:"snapshot,omitempty"`
	Error      string          `json:"error,omitempty"`
	Status     int             `json:"status,omitempty"`
	Timestamp  int64           `json:"timestamp"`
}

// Handler manages WebSocket connections
type Handler struct {
	dispatcher *applist.Dispatcher
	metrics    *monitoring.Metrics
	logger     *logging.Logger
}

// NewHandler creates a new WebSocket handler. metrics may be nil.
func NewHandler(dispatcher *applist.Dispatcher, metrics *monitoring.Metrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger.Named("ws"),
	}
}

// HandleConnection upgrades the request and streams snapshots until the
// view disconnects. Envelopes received from the view are dispatched.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	s := newSession(conn, h.logger.With(zap.String("conn_id", uuid.NewString())))
	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	// Subscribe before reading the current state so no change is missed;
	// a stale push is replaced by the newer one.
	unsubscribe := h.dispatcher.Subscribe(s.offer)
	defer unsubscribe()
	s.offer(h.dispatcher.Current())

	s.logger.Info("View connected")
	go s.writeLoop(h.metrics)
	s.readLoop(h.dispatch, h.metrics)
	s.logger.Info("View disconnected")
}

// dispatch handles one inbound frame and returns the reply, if any
func (h *Handler) dispatch(data []byte) *Message {
	var env applist.Envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return errorMessage("", http.StatusBadRequest, err)
	}
	if env.Type == typePing {
		return &Message{Type: TypePong, Timestamp: time.Now().Unix()}
	}

	event, err := env.Event()
	if err != nil {
		return errorMessage(env.Type, http.StatusBadRequest, err)
	}
	if _, err := h.dispatcher.Dispatch(event); err != nil {
		return errorMessage(env.Type, apihttp.StatusFor(err), err)
	}
	// The new snapshot reaches the view through its subscription.
	return nil
}

func errorMessage(kind applist.Kind, status int, err error) *Message {
	return &Message{
		Type:      TypeError,
		Kind:      kind,
		Error:     err.Error(),
		Status:    status,
		Timestamp: time.Now().Unix(),
	}
}

func snapshotMessage(change applist.Change) *Message {
	snap := change.Snapshot
	return &Message{
		Type:       TypeSnapshot,
		Revision:   change.Revision,
		RevisionID: change.RevisionID,
		Kind:       change.Kind,
		Snapshot:   &snap,
		Timestamp:  time.Now().Unix(),
	}
}
