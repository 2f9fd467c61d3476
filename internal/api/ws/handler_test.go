package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/switcher/internal/domain/applist"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

func setupServer(t *testing.T) (*applist.Dispatcher, *monitoring.Metrics, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d := applist.NewDispatcher(types.DefaultSnapshot())
	metrics := monitoring.NewMetrics(nil)

	router := gin.New()
	router.GET("/ws", NewHandler(d, metrics, nil).HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return d, metrics, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg Message
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

// readUntilRevision skips snapshots older than rev
func readUntilRevision(t *testing.T, conn *websocket.Conn, rev uint64) Message {
	t.Helper()
	for {
		msg := readMessage(t, conn)
		if msg.Type != TypeSnapshot || msg.Revision >= rev {
			return msg
		}
	}
}

func TestConnectSendsCurrentSnapshot(t *testing.T) {
	d, _, url := setupServer(t)
	_, err := d.Dispatch(applist.InstalledAppsScanned{Names: []string{"alpha", "beta"}})
	require.NoError(t, err)

	conn := dial(t, url)
	msg := readMessage(t, conn)

	assert.Equal(t, TypeSnapshot, msg.Type)
	assert.Equal(t, uint64(1), msg.Revision)
	require.NotNil(t, msg.Snapshot)
	assert.Len(t, msg.Snapshot.Apps, 2)
}

func TestChangesArePushed(t *testing.T) {
	d, _, url := setupServer(t)
	conn := dial(t, url)
	readMessage(t, conn)

	_, err := d.Dispatch(applist.InstalledAppsScanned{Names: []string{"alpha"}})
	require.NoError(t, err)

	msg := readUntilRevision(t, conn, 1)
	assert.Equal(t, TypeSnapshot, msg.Type)
	assert.Equal(t, applist.KindInstalledAppsScanned, msg.Kind)
	require.NotNil(t, msg.Snapshot)
	assert.Equal(t, "alpha", msg.Snapshot.Apps[0].Name)
}

func TestEnvelopeFromView(t *testing.T) {
	d, _, url := setupServer(t)
	conn := dial(t, url)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(applist.Envelope{
		Type:  applist.KindInstalledAppsScanned,
		Names: []string{"alpha", "beta"},
	}))

	msg := readUntilRevision(t, conn, 1)
	assert.Equal(t, TypeSnapshot, msg.Type)
	require.NotNil(t, msg.Snapshot)
	assert.Len(t, msg.Snapshot.Apps, 2)
	assert.Equal(t, uint64(1), d.Revision())
}

func TestRejectedEnvelopeGetsError(t *testing.T) {
	tests := []struct {
		name       string
		frame      string
		wantStatus int
	}{
		{"malformed", `{"type":`, http.StatusBadRequest},
		{"unknown type", `{"type":"appLaunched"}`, http.StatusBadRequest},
		{"unknown app", `{"type":"hotCodeUpdated","appName":"ghost","value":"KeyG"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, url := setupServer(t)
			conn := dial(t, url)
			readMessage(t, conn)

			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.frame)))

			msg := readMessage(t, conn)
			assert.Equal(t, TypeError, msg.Type)
			assert.Equal(t, tt.wantStatus, msg.Status)
			assert.NotEmpty(t, msg.Error)
			assert.Equal(t, uint64(0), d.Revision())
		})
	}
}

func TestPing(t *testing.T) {
	_, _, url := setupServer(t)
	conn := dial(t, url)
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, TypePong, readMessage(t, conn).Type)
}

func TestConnectionMetrics(t *testing.T) {
	_, metrics, url := setupServer(t)
	conn := dial(t, url)
	readMessage(t, conn)

	assert.Equal(t, int64(1), metrics.Snapshot().Connections)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return metrics.Snapshot().Connections == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestOfferKeepsNewest(t *testing.T) {
	s := &session{latest: make(chan applist.Change, 1)}

	s.offer(applist.Change{Revision: 2})
	s.offer(applist.Change{Revision: 1})
	s.offer(applist.Change{Revision: 3})

	got := <-s.latest
	assert.Equal(t, uint64(3), got.Revision)
	assert.Empty(t, s.latest)
}
