package room

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/hilthontt/roombot/application/usecases/room"
	"github.com/hilthontt/roombot/domain/model"
	"github.com/hilthontt/roombot/infrastructure/logger"
	"github.com/hilthontt/roombot/infrastructure/persistence/migration"
	"github.com/hilthontt/roombot/infrastructure/persistence/repository"
	"github.com/hilthontt/roombot/infrastructure/platform/memory"
	"github.com/hilthontt/roombot/presentation/middlewares"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) (*gin.Engine, *memory.Platform) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	binding.Validator = new(middlewares.DefaultValidator)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migration.Up1(db))

	platform := memory.New()
	uc := room.NewRoomUseCase(
		repository.NewRoomRepository(db, noop.NewTracerProvider().Tracer("test")),
		platform,
		nil,
		nil,
		logger.NewNopLogger(),
		room.Options{DefaultTimeout: time.Hour, Descriptions: []string{"Why not?"}},
	)

	router := gin.New()
	controller := NewRoomController(uc)
	rooms := router.Group("/api/v1/rooms")
	rooms.GET("", controller.ListRooms)
	rooms.POST("", controller.CreateRoom)
	rooms.POST("/sweep", controller.Sweep)
	rooms.GET("/:id", controller.GetRoom)
	rooms.DELETE("/:id", controller.DisbandRoom)
	rooms.POST("/:id/join", controller.JoinRoom)
	rooms.POST("/:id/leave", controller.LeaveRoom)
	rooms.POST("/:id/touch", controller.TouchRoom)
	return router, platform
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createRoom(t *testing.T, router *gin.Engine) RoomResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/v1/rooms", CreateRoomRequest{
		Activity:    "Chess Night",
		CommunityID: "42",
		Host:        "7",
		Color:       3447003,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp RoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateRoom(t *testing.T) {
	router, platform := setupRouter(t)
	resp := createRoom(t, router)

	assert.Equal(t, "Chess Night", resp.Activity)
	assert.Equal(t, "Why not?", resp.Description)
	assert.Equal(t, 2, resp.Capacity)
	assert.Empty(t, resp.Players)
	assert.Equal(t, "Players (0/2)", resp.Summary.PlayersName)
	assert.Equal(t, "Created by: <@7>", resp.Summary.Footer)
	assert.Equal(t, int64(3600), resp.TimeoutSeconds)

	id, err := model.ParseID(resp.ID)
	require.NoError(t, err)
	assert.True(t, platform.HasGroup(id))
}

func TestCreateRoom_InvalidRequest(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/rooms", map[string]any{
		"community_id": "abc",
		"host":         "7",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp.Error)
}

func TestJoinAndLeaveRoom(t *testing.T) {
	router, _ := setupRouter(t)
	created := createRoom(t, router)
	base := "/api/v1/rooms/" + created.ID

	w := doJSON(t, router, http.MethodPost, base+"/join", PlayerRequest{PlayerID: "100"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var joined MembershipResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &joined))
	assert.True(t, joined.Changed)
	assert.Equal(t, []string{"100"}, joined.Room.Players)
	assert.Equal(t, "<@100>", joined.Room.Summary.Players)
	assert.Equal(t, "Waiting for 1 more players", joined.Room.Summary.Status)

	w = doJSON(t, router, http.MethodPost, base+"/join", PlayerRequest{PlayerID: "101"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/join", PlayerRequest{PlayerID: "102"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/leave", PlayerRequest{PlayerID: "100"})
	require.Equal(t, http.StatusOK, w.Code)

	var left MembershipResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &left))
	assert.True(t, left.Changed)
	assert.Equal(t, []string{"101"}, left.Room.Players)
}

func TestJoinRoom_UnavailableWhenGroupMissing(t *testing.T) {
	router, platform := setupRouter(t)
	created := createRoom(t, router)

	id, err := model.ParseID(created.ID)
	require.NoError(t, err)
	platform.DropGroup(id)

	w := doJSON(t, router, http.MethodPost, "/api/v1/rooms/"+created.ID+"/join", PlayerRequest{PlayerID: "100"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDisbandRoom(t *testing.T) {
	router, _ := setupRouter(t)
	created := createRoom(t, router)
	path := "/api/v1/rooms/" + created.ID

	w := doJSON(t, router, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, path+"/touch", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestGetRoom_BadID(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/rooms/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSweep(t *testing.T) {
	router, _ := setupRouter(t)
	createRoom(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/rooms/sweep", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data room.SweepResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Checked)
	assert.Zero(t, resp.Data.Disbanded)
}
