package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SetActiveRooms(3)
	m.RoomCreated()
	m.RoomDisbanded("inactivity")
	m.RoomDisbanded("inactivity")
	m.Membership("join", "ok")
	m.SoftFailure("Grant")
	m.PlatformRetry("Grant")
	m.MalformedRecord()
	m.ObserveSweep(20*time.Millisecond, 2)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveRooms))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoomsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoomsDisbanded.WithLabelValues("inactivity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MembershipOps.WithLabelValues("join", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SoftFailures.WithLabelValues("Grant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlatformRetries.WithLabelValues("Grant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MalformedRecords))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SweepFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SweepDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.SetActiveRooms(1)
		m.RoomCreated()
		m.RoomDisbanded("explicit")
		m.Membership("leave", "ok")
		m.SoftFailure("Revoke")
		m.PlatformRetry("Revoke")
		m.MalformedRecord()
		m.ObserveSweep(time.Second, 0)
	})
}

func TestGetHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RoomCreated()

	router := gin.New()
	GetHandler(router.Group("/observability"), reg, NewRuntimeGauges(reg))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/observability/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "roombot_rooms_created_total 1")
	assert.Contains(t, w.Body.String(), "app_go_routines")
}
