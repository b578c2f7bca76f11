package model

import (
	"errors"
	"time"
)

// Column names used for partial updates of a RoomRecord.
const (
	ColumnPlayers      = "players"
	ColumnLastActiveAt = "last_active_at"
)

// RoomRecord is the persisted row for a Room. Players are stored encoded by EncodeIDs.
type RoomRecord struct {
	ID             ID            `gorm:"primaryKey;autoIncrement:false;type:bigint"`
	ChannelID      ID            `gorm:"type:bigint;not null"`
	Color          int           `gorm:"not null"`
	CommunityID    ID            `gorm:"type:bigint;not null;index"`
	BirthChannelID ID            `gorm:"type:bigint;not null"`
	Activity       string        `gorm:"size:100;not null"`
	Description    string        `gorm:"size:1024"`
	CreatedAt      time.Time     `gorm:"not null"`
	Timeout        time.Duration `gorm:"not null"`
	Players        string        `gorm:"not null"`
	Host           ID            `gorm:"type:bigint;not null"`
	Capacity       int           `gorm:"not null"`
	LastActiveAt   time.Time     `gorm:"not null;index"`
}

func (RoomRecord) TableName() string {
	return "rooms"
}

// Room decodes the record. A bad players column yields a *MalformedRecordError carrying the room id.
func (r RoomRecord) Room() (Room, error) {
	players, err := DecodeIDs(r.Players)
	if err != nil {
		var malformed *MalformedRecordError
		if errors.As(err, &malformed) {
			malformed.RoomID = r.ID
		}
		return Room{}, err
	}

	return Room{
		ID:             r.ID,
		ChannelID:      r.ChannelID,
		Color:          r.Color,
		CommunityID:    r.CommunityID,
		BirthChannelID: r.BirthChannelID,
		Activity:       r.Activity,
		Description:    r.Description,
		CreatedAt:      r.CreatedAt.UTC(),
		Timeout:        r.Timeout,
		Players:        players,
		Host:           r.Host,
		Capacity:       r.Capacity,
		LastActiveAt:   r.LastActiveAt.UTC(),
	}, nil
}
