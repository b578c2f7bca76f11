package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("room not found")
	ErrRoomClosed      = errors.New("room has been disbanded")
	ErrRoomFull        = errors.New("room is full")
	ErrMalformedRecord = errors.New("malformed room record")
)

// MalformedRecordError reports a stored player list that cannot be decoded.
type MalformedRecordError struct {
	RoomID  ID
	Value   string
	Segment string
	Err     error
}

func (e *MalformedRecordError) Error() string {
	if e.RoomID != 0 {
		return fmt.Sprintf("room %s: malformed player list %q: bad segment %q", e.RoomID, e.Value, e.Segment)
	}
	return fmt.Sprintf("malformed player list %q: bad segment %q", e.Value, e.Segment)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}
