package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/GriffinCanCode/switcher/internal/api/http"
	"github.com/GriffinCanCode/switcher/internal/api/middleware"
	"github.com/GriffinCanCode/switcher/internal/domain/applist"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = url
	cfg.MaxRetries = 0
	cfg.Timeout = 5 * time.Second
	return cfg
}

func setupAPI(t *testing.T) (*Client, *applist.Dispatcher) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	d := applist.NewDispatcher(types.DefaultSnapshot())
	router := gin.New()
	router.Use(middleware.RequestID())
	apihttp.NewHandlers(d, nil, nil).Register(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return New(testConfig(srv.URL)), d
}

func TestClientRoundTrip(t *testing.T) {
	c, d := setupAPI(t)
	ctx := context.Background()

	resp, err := c.Dispatch(ctx, applist.InstalledAppsScanned{Names: []string{"Safari", "Mail", "Notes"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), resp.Revision)
	assert.Len(t, resp.Snapshot.Apps, 3)

	_, err = c.Dispatch(ctx, applist.HotCodeUpdated{AppName: "Mail", Value: "KeyM"})
	require.NoError(t, err)
	_, err = c.Send(ctx, applist.Envelope{Type: applist.KindAppRemoved, AppName: "Notes"})
	require.NoError(t, err)

	apps, err := c.Apps(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.Snapshot(), apps.Snapshot)
	assert.Equal(t, uint64(3), apps.Revision)

	installed, err := c.Installed(ctx)
	require.NoError(t, err)
	assert.Len(t, installed, 2)

	removed, err := c.Removed(ctx)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "Notes", removed[0].Name)

	codes, err := c.HotCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"KeyM": "Mail"}, codes)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
}

func TestClientUnknownApp(t *testing.T) {
	c, _ := setupAPI(t)

	_, err := c.Dispatch(context.Background(), applist.HotCodeUpdated{AppName: "Ghost", Value: "KeyG"})
	require.Error(t, err)
	assert.ErrorIs(t, err, applist.ErrUnknownApp)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, applist.KindHotCodeUpdated, apiErr.Kind)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.Equal(t, resilience.StateClosed, c.BreakerState())
}

func TestClientInvalidEnvelope(t *testing.T) {
	c, _ := setupAPI(t)

	_, err := c.Send(context.Background(), applist.Envelope{Type: applist.KindAppRemoved})
	assert.ErrorIs(t, err, applist.ErrInvalidEvent)
}

func TestClientBreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.FailureThreshold = 2
	cfg.BreakerTimeout = time.Minute
	c := New(cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Apps(ctx)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
		assert.Equal(t, "internal error", apiErr.Message)
	}
	assert.Equal(t, resilience.StateOpen, c.BreakerState())

	_, err := c.Apps(ctx)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"healthy","revision":0,"apps":{}}`))
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 2
	cfg.MinWait = time.Millisecond
	cfg.MaxWait = 5 * time.Millisecond

	health, err := New(cfg).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientDoesNotResendEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d := applist.NewDispatcher(types.DefaultSnapshot())
	_, err := d.Dispatch(applist.InstalledAppsScanned{Names: []string{"a", "b", "c"}})
	require.NoError(t, err)

	router := gin.New()
	apihttp.NewHandlers(d, nil, nil).Register(router)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > 1 {
			router.ServeHTTP(w, r)
			return
		}
		// Apply the event, then drop the connection before replying
		router.ServeHTTP(httptest.NewRecorder(), r)
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close()
		}
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 2
	cfg.MinWait = time.Millisecond
	cfg.MaxWait = 5 * time.Millisecond

	_, err = New(cfg).Dispatch(context.Background(), applist.AppReordered{SourceName: "a", DestinationName: "c"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	snap := d.Snapshot()
	names := make([]string, 0, len(snap.Apps))
	for _, app := range snap.Apps {
		names = append(names, app.Name)
	}
	assert.Equal(t, []string{"b", "c", "a"}, names)
	assert.Equal(t, uint64(2), d.Revision())
}

func TestClientDoesNotResendEventsOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 3
	cfg.MinWait = time.Millisecond
	cfg.MaxWait = 5 * time.Millisecond

	_, err := New(cfg).Dispatch(context.Background(), applist.DonateClicked{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(testConfig(url)).Health(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestIsServerFailure(t *testing.T) {
	assert.False(t, isServerFailure(nil))
	assert.False(t, isServerFailure(&APIError{Status: http.StatusNotFound}))
	assert.False(t, isServerFailure(&APIError{Status: http.StatusBadRequest}))
	assert.True(t, isServerFailure(&APIError{Status: http.StatusBadGateway}))
	assert.True(t, isServerFailure(context.DeadlineExceeded))
}
