package room

import (
	"time"

	"github.com/hilthontt/roombot/domain/model"
)

// Platform ids are 64-bit snowflakes and travel as decimal strings.
type CreateRoomRequest struct {
	Activity       string `json:"activity" binding:"required,max=100"`
	Description    string `json:"description" binding:"max=1024"`
	CommunityID    string `json:"community_id" binding:"required,numeric"`
	BirthChannelID string `json:"birth_channel_id" binding:"omitempty,numeric"`
	Color          int    `json:"color" binding:"min=0,max=16777215"`
	Host           string `json:"host" binding:"required,numeric"`
	Capacity       int    `json:"capacity" binding:"omitempty,min=1,max=99"`
	TimeoutSeconds int    `json:"timeout_seconds" binding:"omitempty,min=1"`
}

type PlayerRequest struct {
	PlayerID string `json:"player_id" binding:"required,numeric"`
}

type RoomResponse struct {
	ID             string        `json:"id"`
	ChannelID      string        `json:"channel_id"`
	CommunityID    string        `json:"community_id"`
	BirthChannelID string        `json:"birth_channel_id,omitempty"`
	Activity       string        `json:"activity"`
	Description    string        `json:"description"`
	Color          int           `json:"color"`
	Host           string        `json:"host"`
	Players        []string      `json:"players"`
	Capacity       int           `json:"capacity"`
	TimeoutSeconds int64         `json:"timeout_seconds"`
	CreatedAt      time.Time     `json:"created_at"`
	LastActiveAt   time.Time     `json:"last_active_at"`
	Summary        model.Summary `json:"summary"`
}

type MembershipResponse struct {
	Changed bool         `json:"changed"`
	Room    RoomResponse `json:"room"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func toRoomResponse(data model.Room, action, actor string) RoomResponse {
	players := make([]string, len(data.Players))
	for i, p := range data.Players {
		players[i] = p.String()
	}

	resp := RoomResponse{
		ID:             data.ID.String(),
		ChannelID:      data.ChannelID.String(),
		CommunityID:    data.CommunityID.String(),
		Activity:       data.Activity,
		Description:    data.Description,
		Color:          data.Color,
		Host:           data.Host.String(),
		Players:        players,
		Capacity:       data.Capacity,
		TimeoutSeconds: int64(data.Timeout / time.Second),
		CreatedAt:      data.CreatedAt,
		LastActiveAt:   data.LastActiveAt,
		Summary:        data.Summary(action, actor),
	}
	if data.BirthChannelID != 0 {
		resp.BirthChannelID = data.BirthChannelID.String()
	}
	return resp
}
