package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/switcher/internal/api/middleware"
	"github.com/GriffinCanCode/switcher/internal/domain/applist"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

func setupRouter(t *testing.T, events ...applist.Event) (*gin.Engine, *applist.Dispatcher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d := applist.NewDispatcher(types.DefaultSnapshot())
	for _, event := range events {
		_, err := d.Dispatch(event)
		require.NoError(t, err)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	NewHandlers(d, monitoring.NewMetrics(nil), nil).Register(router)
	return router, d
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

var seeded = []applist.Event{
	applist.InstalledAppsScanned{Names: []string{"Safari", "Mail", "Notes"}},
	applist.HotCodeUpdated{AppName: "Safari", Value: "KeyS"},
	applist.AppRemoved{AppName: "Notes"},
}

func TestRoot(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[StatusResponse](t, w)
	assert.Equal(t, "online", resp.Status)
	assert.Equal(t, Version, resp.Version)
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t, seeded...)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, uint64(3), resp.Revision)
	assert.Equal(t, 3, resp.Apps.TotalApps)
	assert.Equal(t, 2, resp.Apps.InstalledApps)
	assert.Equal(t, 1, resp.Apps.RemovedApps)
	require.NotNil(t, resp.Metrics)
}

func TestListApps(t *testing.T) {
	router, d := setupRouter(t, seeded...)

	w := doJSON(t, router, http.MethodGet, "/apps", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[AppsResponse](t, w)
	assert.Equal(t, d.Current().RevisionID, resp.RevisionID)
	assert.Equal(t, d.Snapshot(), resp.Snapshot)
	assert.Equal(t, 1, resp.Stats.HotCodes)
}

func TestSelectors(t *testing.T) {
	router, _ := setupRouter(t, seeded...)

	installed := decode[AppListResponse](t, doJSON(t, router, http.MethodGet, "/apps/installed", nil))
	require.Equal(t, 2, installed.Count)
	assert.Equal(t, "Safari", installed.Apps[0].Name)
	assert.Equal(t, "Mail", installed.Apps[1].Name)

	removed := decode[AppListResponse](t, doJSON(t, router, http.MethodGet, "/apps/removed", nil))
	require.Equal(t, 1, removed.Count)
	assert.Equal(t, "Notes", removed.Apps[0].Name)

	codes := decode[HotCodesResponse](t, doJSON(t, router, http.MethodGet, "/apps/hotcodes", nil))
	assert.Equal(t, map[string]string{"KeyS": "Safari"}, codes.HotCodes)
}

func TestSelectorsOnEmptyList(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/apps/removed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"apps":[],"count":0}`, w.Body.String())
}

func TestPostEvent(t *testing.T) {
	router, d := setupRouter(t, seeded...)

	w := doJSON(t, router, http.MethodPost, "/events", applist.Envelope{
		Type:    applist.KindHotCodeUpdated,
		AppName: "Mail",
		Value:   "KeyS",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[EventResponse](t, w)
	assert.Equal(t, uint64(4), resp.Revision)
	assert.Equal(t, applist.KindHotCodeUpdated, resp.Kind)
	assert.Equal(t, map[string]string{"KeyS": "Mail"}, applist.HotCodes(resp.Snapshot.Apps))
	assert.Equal(t, d.Snapshot(), resp.Snapshot)
}

func TestPostEventErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantKind   applist.Kind
	}{
		{
			name:       "malformed json",
			body:       `{"type":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing type",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown type",
			body:       `{"type":"appLaunched"}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "appLaunched",
		},
		{
			name:       "missing app name",
			body:       applist.Envelope{Type: applist.KindAppRemoved},
			wantStatus: http.StatusBadRequest,
			wantKind:   applist.KindAppRemoved,
		},
		{
			name:       "hot code for unknown app",
			body:       applist.Envelope{Type: applist.KindHotCodeUpdated, AppName: "Ghost", Value: "KeyG"},
			wantStatus: http.StatusNotFound,
			wantKind:   applist.KindHotCodeUpdated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, d := setupRouter(t, seeded...)
			before := d.Current()

			w := doJSON(t, router, http.MethodPost, "/events", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			resp := decode[ErrorResponse](t, w)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantKind, resp.Kind)
			assert.NotEmpty(t, resp.RequestID)

			after := d.Current()
			assert.Equal(t, before.Revision, after.Revision)
			assert.Equal(t, before.Snapshot, after.Snapshot)
		})
	}
}

func TestPostEventReorderAndRestore(t *testing.T) {
	router, d := setupRouter(t, seeded...)

	for _, env := range []applist.Envelope{
		{Type: applist.KindAppReordered, SourceName: "Notes", DestinationName: "Safari"},
		{Type: applist.KindAppRestored, AppName: "Notes"},
		{Type: applist.KindPickerResized, Height: 320},
	} {
		w := doJSON(t, router, http.MethodPost, "/events", env)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	snap := d.Snapshot()
	require.Len(t, snap.Apps, 3)
	assert.Equal(t, "Notes", snap.Apps[0].Name)
	assert.True(t, snap.Apps[0].IsInstalled)
	assert.False(t, snap.Apps[0].UserRemoved)
	assert.Equal(t, 320, snap.Height)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(applist.ErrUnknownApp))
	assert.Equal(t, http.StatusBadRequest, StatusFor(applist.ErrInvalidEvent))
	assert.Equal(t, http.StatusBadRequest, StatusFor(applist.ErrUnknownEvent))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("disk on fire")))
}
