package model

import (
	"strconv"
	"strings"
)

// ID is a platform snowflake: access groups, channels, communities and players all share it.
type ID uint64

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Mention renders the id the way the chat platform expands user mentions.
func (id ID) Mention() string {
	return "<@" + id.String() + ">"
}

func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

const idSeparator = ","

// EncodeIDs joins ids into the storage form of the players column.
// An empty list encodes to the empty string.
func EncodeIDs(ids []ID) string {
	if len(ids) == 0 {
		return ""
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, idSeparator)
}

// DecodeIDs is the inverse of EncodeIDs. Order is preserved.
func DecodeIDs(s string) ([]ID, error) {
	if s == "" {
		return []ID{}, nil
	}

	parts := strings.Split(s, idSeparator)
	ids := make([]ID, 0, len(parts))
	for _, part := range parts {
		id, err := ParseID(part)
		if err != nil {
			return nil, &MalformedRecordError{Value: s, Segment: part, Err: err}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
