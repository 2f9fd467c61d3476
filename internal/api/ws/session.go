package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/switcher/internal/domain/applist"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/monitoring"
)

// session is one view connection. Only writeLoop writes to conn.
type session struct {
	conn   *websocket.Conn
	logger *logging.Logger

	// latest holds at most one pending change; newer changes replace it
	latest chan applist.Change
	mu     sync.Mutex

	replies chan *Message
	done    chan struct{}
	once    sync.Once
}

func newSession(conn *websocket.Conn, logger *logging.Logger) *session {
	return &session{
		conn:    conn,
		logger:  logger,
		latest:  make(chan applist.Change, 1),
		replies: make(chan *Message, replyBuffer),
		done:    make(chan struct{}),
	}
}

// offer queues change, dropping an older one still waiting to be sent
func (s *session) offer(change applist.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case old := <-s.latest:
		if old.Revision > change.Revision {
			change = old
		}
	default:
	}
	s.latest <- change
}

func (s *session) reply(msg *Message) {
	select {
	case s.replies <- msg:
	case <-s.done:
	default:
		s.logger.Warn("Reply dropped, view is not reading", zap.String("type", msg.Type))
	}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *session) readLoop(dispatch func([]byte) *Message, metrics *monitoring.Metrics) {
	defer s.close()

	s.conn.SetReadLimit(maxMessageBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		if metrics != nil {
			metrics.RecordWSMessage("in", "envelope")
		}
		if msg := dispatch(data); msg != nil {
			s.reply(msg)
		}
	}
}

func (s *session) writeLoop(metrics *monitoring.Metrics) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		var msg *Message
		select {
		case <-s.done:
			return
		case change := <-s.latest:
			msg = snapshotMessage(change)
		case msg = <-s.replies:
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}

		if err := s.write(msg); err != nil {
			s.logger.Debug("WebSocket write failed", zap.Error(err))
			return
		}
		if metrics != nil {
			metrics.RecordWSMessage("out", msg.Type)
		}
	}
}

func (s *session) write(msg *Message) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
