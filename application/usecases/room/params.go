package room

import (
	"time"

	"github.com/hilthontt/roombot/domain/model"
)

// CreateRoomParams enumerates every caller-supplied field of a new room.
// Zero Capacity, Timeout and Description are replaced by the configured defaults.
type CreateRoomParams struct {
	Activity       string        `validate:"required,max=100"`
	Description    string        `validate:"max=1024"`
	CommunityID    model.ID      `validate:"required"`
	BirthChannelID model.ID
	Color          int           `validate:"min=0,max=16777215"`
	Host           model.ID      `validate:"required"`
	Capacity       int           `validate:"min=1,max=99"`
	Timeout        time.Duration `validate:"gt=0"`
}
