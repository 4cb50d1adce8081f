package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadiness_ManualGate(t *testing.T) {
	h := New()

	assert.False(t, h.IsReady(), "starts not ready")
	h.SetReady(true)
	assert.True(t, h.IsReady())
	h.SetReady(false)
	assert.False(t, h.IsReady(), "draining closes the gate again")
}

func TestProbe_FailureThreshold(t *testing.T) {
	var calls atomic.Int32
	h := New()
	h.AddReadinessCheck("flaky", time.Second, func(context.Context) error {
		calls.Add(1)
		return errors.New("down")
	})
	h.SetReady(true)

	h.Start(context.Background(), 5*time.Millisecond)
	defer h.Stop()

	// Stays healthy until three consecutive failures.
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return !h.IsReady() }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, calls.Load(), int32(failureThreshold))
}

func TestProbe_SingleSuccessRecovers(t *testing.T) {
	var healthy atomic.Bool
	h := New()
	h.AddReadinessCheck("upstream", time.Second, func(context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("down")
	})
	h.SetReady(true)

	h.Start(context.Background(), 5*time.Millisecond)
	defer h.Stop()

	require.Eventually(t, func() bool { return !h.IsReady() }, time.Second, time.Millisecond)

	healthy.Store(true)
	require.Eventually(t, func() bool { return h.IsReady() }, time.Second, time.Millisecond)
}

func TestLiveEndpoint(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, GoroutineCountCheck(100000))

	h.Start(context.Background(), 5*time.Millisecond)
	defer h.Stop()

	w := httptest.NewRecorder()
	h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestReadyEndpoint_NotReady(t *testing.T) {
	h := New()

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Checks, "_readiness")
}

func TestReadyEndpoint_FailedProbeDetail(t *testing.T) {
	h := New()
	h.AddReadinessCheck("catalog", 10*time.Millisecond, PingCheck(func(context.Context) error {
		return errors.New("connection refused")
	}))
	h.SetReady(true)

	h.Start(context.Background(), 5*time.Millisecond)
	defer h.Stop()

	require.Eventually(t, func() bool { return !h.IsReady() }, time.Second, time.Millisecond)

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp.Checks["catalog"], "connection refused")
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(100000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
