package room

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/hilthontt/roombot/application/usecases/room"
	"github.com/hilthontt/roombot/domain/model"
	"github.com/hilthontt/roombot/presentation/middlewares"
)

type RoomController interface {
	ListRooms(ctx *gin.Context)
	CreateRoom(ctx *gin.Context)
	GetRoom(ctx *gin.Context)
	JoinRoom(ctx *gin.Context)
	LeaveRoom(ctx *gin.Context)
	TouchRoom(ctx *gin.Context)
	DisbandRoom(ctx *gin.Context)
	Sweep(ctx *gin.Context)
}

type roomController struct {
	usecase room.RoomUseCase
}

func NewRoomController(usecase room.RoomUseCase) RoomController {
	return &roomController{
		usecase: usecase,
	}
}

func (c *roomController) ListRooms(ctx *gin.Context) {
	rooms := c.usecase.Rooms()

	resp := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		resp = append(resp, toRoomResponse(r.Snapshot(), "", ""))
	}
	ctx.JSON(http.StatusOK, resp)
}

func (c *roomController) CreateRoom(ctx *gin.Context) {
	var req CreateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: middlewares.TranslateValidationError(err),
		})
		return
	}

	// binding already checked these are numeric.
	communityID, _ := model.ParseID(req.CommunityID)
	host, _ := model.ParseID(req.Host)
	var birthChannelID model.ID
	if req.BirthChannelID != "" {
		birthChannelID, _ = model.ParseID(req.BirthChannelID)
	}

	created, err := c.usecase.Create(ctx.Request.Context(), room.CreateRoomParams{
		Activity:       req.Activity,
		Description:    req.Description,
		CommunityID:    communityID,
		BirthChannelID: birthChannelID,
		Color:          req.Color,
		Host:           host,
		Capacity:       req.Capacity,
		Timeout:        time.Duration(req.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
			return
		}
		_ = ctx.Error(err)
		ctx.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "creation_failed",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, toRoomResponse(created.Snapshot(), "Created", host.Mention()))
}

func (c *roomController) GetRoom(ctx *gin.Context) {
	id, ok := roomID(ctx)
	if !ok {
		return
	}

	r, err := c.usecase.Get(id)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toRoomResponse(r.Snapshot(), "", ""))
}

func (c *roomController) JoinRoom(ctx *gin.Context) {
	id, player, ok := membershipRequest(ctx)
	if !ok {
		return
	}

	r, err := c.usecase.Get(id)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	joined, err := r.Join(ctx.Request.Context(), player)
	if err != nil {
		c.respondError(ctx, err)
		return
	}
	if !joined {
		ctx.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "room_unavailable",
			Message: "room unavailable",
		})
		return
	}

	ctx.JSON(http.StatusOK, MembershipResponse{
		Changed: true,
		Room:    toRoomResponse(r.Snapshot(), "Joined", player.Mention()),
	})
}

func (c *roomController) LeaveRoom(ctx *gin.Context) {
	id, player, ok := membershipRequest(ctx)
	if !ok {
		return
	}

	r, err := c.usecase.Get(id)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	left, err := r.Leave(ctx.Request.Context(), player)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	var action string
	if left {
		action = "Left"
	}
	ctx.JSON(http.StatusOK, MembershipResponse{
		Changed: left,
		Room:    toRoomResponse(r.Snapshot(), action, player.Mention()),
	})
}

func (c *roomController) TouchRoom(ctx *gin.Context) {
	id, ok := roomID(ctx)
	if !ok {
		return
	}

	if err := c.usecase.Touch(ctx.Request.Context(), id); err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (c *roomController) DisbandRoom(ctx *gin.Context) {
	id, ok := roomID(ctx)
	if !ok {
		return
	}

	if err := c.usecase.Disband(ctx.Request.Context(), id); err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, SuccessResponse{
		Message: "room disbanded",
	})
}

func (c *roomController) Sweep(ctx *gin.Context) {
	result, err := c.usecase.Sweep(ctx.Request.Context())
	if err != nil {
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "sweep_failed",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, SuccessResponse{
		Message: "sweep completed",
		Data:    result,
	})
}

func (c *roomController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, model.ErrRoomClosed):
		ctx.JSON(http.StatusGone, ErrorResponse{Error: "room_closed", Message: err.Error()})
	case errors.Is(err, model.ErrRoomFull):
		ctx.JSON(http.StatusConflict, ErrorResponse{Error: "room_full", Message: err.Error()})
	default:
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
}

func roomID(ctx *gin.Context) (model.ID, bool) {
	id, err := model.ParseID(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "room ID must be numeric",
		})
		return 0, false
	}
	return id, true
}

func membershipRequest(ctx *gin.Context) (model.ID, model.ID, bool) {
	id, ok := roomID(ctx)
	if !ok {
		return 0, 0, false
	}

	var req PlayerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: middlewares.TranslateValidationError(err),
		})
		return 0, 0, false
	}

	player, err := model.ParseID(req.PlayerID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "player_id must be numeric",
		})
		return 0, 0, false
	}
	return id, player, true
}
