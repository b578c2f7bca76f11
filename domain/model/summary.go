package model

import (
	"fmt"
	"strings"
	"time"
)

const inactivityNotice = "Room will automatically disband from inactivity."

// Summary is everything a caller needs to render the live room card.
type Summary struct {
	RoomID      ID        `json:"roomId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       int       `json:"color"`
	PlayersName string    `json:"playersName"`
	Players     string    `json:"players"`
	Status      string    `json:"status"`
	Notice      string    `json:"notice"`
	Host        string    `json:"host"`
	Footer      string    `json:"footer,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Occupancy   int       `json:"occupancy"`
	Capacity    int       `json:"capacity"`
}

// Summary projects the room for display. action and actor feed the footer and may be empty.
func (r Room) Summary(action, actor string) Summary {
	mentions := make([]string, len(r.Players))
	for i, p := range r.Players {
		mentions[i] = p.Mention()
	}

	status := "Room is full"
	if missing := r.Capacity - len(r.Players); missing > 0 {
		status = fmt.Sprintf("Waiting for %d more players", missing)
	}

	var footer string
	if action != "" {
		footer = fmt.Sprintf("%s by: %s", action, actor)
	}

	return Summary{
		RoomID:      r.ID,
		Title:       r.Activity,
		Description: r.Description,
		Color:       r.Color,
		PlayersName: fmt.Sprintf("Players (%d/%d)", len(r.Players), r.Capacity),
		Players:     strings.Join(mentions, ", "),
		Status:      status,
		Notice:      inactivityNotice,
		Host:        r.Host.Mention(),
		Footer:      footer,
		CreatedAt:   r.CreatedAt,
		Occupancy:   len(r.Players),
		Capacity:    r.Capacity,
	}
}
