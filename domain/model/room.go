package model

import (
	"fmt"
	"slices"
	"time"
)

const DefaultCapacity = 2

type Room struct {
	ID             ID            `json:"id"`
	ChannelID      ID            `json:"channelId"`
	Color          int           `json:"color"`
	CommunityID    ID            `json:"communityId"`
	BirthChannelID ID            `json:"birthChannelId"`
	Activity       string        `json:"activity"`
	Description    string        `json:"description"`
	CreatedAt      time.Time     `json:"createdAt"`
	Timeout        time.Duration `json:"timeout"`
	Players        []ID          `json:"players"`
	Host           ID            `json:"host"`
	Capacity       int           `json:"capacity"`
	LastActiveAt   time.Time     `json:"lastActiveAt"`
}

func (r Room) IsMember(player ID) bool {
	return slices.Contains(r.Players, player)
}

func (r Room) IsFull() bool {
	return len(r.Players) >= r.Capacity
}

// IsIdle reports whether the room has been inactive for at least its timeout.
func (r Room) IsIdle(now time.Time) bool {
	return now.Sub(r.LastActiveAt) >= r.Timeout
}

// Topic is the channel topic reflecting the current occupancy.
func (r Room) Topic() string {
	return fmt.Sprintf("(%d/%d) %s", len(r.Players), r.Capacity, r.Description)
}

func (r Room) Record() RoomRecord {
	return RoomRecord{
		ID:             r.ID,
		ChannelID:      r.ChannelID,
		Color:          r.Color,
		CommunityID:    r.CommunityID,
		BirthChannelID: r.BirthChannelID,
		Activity:       r.Activity,
		Description:    r.Description,
		CreatedAt:      r.CreatedAt.UTC(),
		Timeout:        r.Timeout,
		Players:        EncodeIDs(r.Players),
		Host:           r.Host,
		Capacity:       r.Capacity,
		LastActiveAt:   r.LastActiveAt.UTC(),
	}
}
