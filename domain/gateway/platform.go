package gateway

import (
	"context"
	"errors"

	"github.com/hilthontt/roombot/domain/model"
)

// ErrAbsent marks a platform resource (group, channel or member) that no longer exists.
// Callers treat it as a soft failure; every other error is a transport failure.
var ErrAbsent = errors.New("platform resource absent")

func IsAbsent(err error) bool {
	return errors.Is(err, ErrAbsent)
}

type Group struct {
	ID    model.ID
	Name  string
	Color int
}

type Channel struct {
	ID    model.ID
	Name  string
	Topic string
}

// ChannelSpec describes a room channel to create. Visibility is restricted to Group.
type ChannelSpec struct {
	Name       string
	Topic      string
	Group      model.ID
	CategoryID model.ID
}

// Platform is the chat platform a room's access group and channel live on.
type Platform interface {
	CreateAccessGroup(ctx context.Context, community model.ID, name string, color int) (model.ID, error)
	CreateChannel(ctx context.Context, community model.ID, spec ChannelSpec) (model.ID, error)
	Grant(ctx context.Context, community, group, player model.ID) error
	Revoke(ctx context.Context, community, group, player model.ID) error
	SetChannelTopic(ctx context.Context, channel model.ID, topic string) error
	DeleteAccessGroup(ctx context.Context, community, group model.ID) error
	DeleteChannel(ctx context.Context, channel model.ID) error
	ResolveGroup(ctx context.Context, community, group model.ID) (*Group, error)
	ResolveChannel(ctx context.Context, channel model.ID) (*Channel, error)
}
