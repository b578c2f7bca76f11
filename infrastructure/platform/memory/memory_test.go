package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/hilthontt/roombot/domain/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatform_GroupAndChannelLifecycle(t *testing.T) {
	ctx := context.Background()
	p := New()

	groupID, err := p.CreateAccessGroup(ctx, 42, "chess-night", 0xff0000)
	require.NoError(t, err)

	channelID, err := p.CreateChannel(ctx, 42, gateway.ChannelSpec{
		Name:  "chess-night",
		Topic: "(0/2) Bring your own board",
		Group: groupID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, groupID, channelID)

	group, err := p.ResolveGroup(ctx, 42, groupID)
	require.NoError(t, err)
	assert.Equal(t, "chess-night", group.Name)

	require.NoError(t, p.Grant(ctx, 42, groupID, 7))
	require.NoError(t, p.Grant(ctx, 42, groupID, 7))
	assert.Len(t, p.Members(groupID), 1)

	require.NoError(t, p.SetChannelTopic(ctx, channelID, "(1/2) Bring your own board"))
	assert.Equal(t, "(1/2) Bring your own board", p.Topic(channelID))

	require.NoError(t, p.Revoke(ctx, 42, groupID, 7))
	assert.Empty(t, p.Members(groupID))

	require.NoError(t, p.DeleteAccessGroup(ctx, 42, groupID))
	require.NoError(t, p.DeleteChannel(ctx, channelID))
	assert.False(t, p.HasGroup(groupID))
	assert.False(t, p.HasChannel(channelID))
}

func TestPlatform_AbsentResources(t *testing.T) {
	ctx := context.Background()
	p := New()

	_, err := p.CreateChannel(ctx, 42, gateway.ChannelSpec{Name: "orphan", Group: 1})
	assert.ErrorIs(t, err, gateway.ErrAbsent)

	groupID, err := p.CreateAccessGroup(ctx, 42, "room", 0)
	require.NoError(t, err)

	_, err = p.ResolveGroup(ctx, 99, groupID)
	assert.ErrorIs(t, err, gateway.ErrAbsent, "group from another community")

	p.RestrictMembers(42, 7)
	assert.ErrorIs(t, p.Grant(ctx, 42, groupID, 8), gateway.ErrAbsent)
	assert.NoError(t, p.Grant(ctx, 42, groupID, 7))

	p.DropGroup(groupID)
	assert.ErrorIs(t, p.Revoke(ctx, 42, groupID, 7), gateway.ErrAbsent)
	assert.ErrorIs(t, p.DeleteAccessGroup(ctx, 42, groupID), gateway.ErrAbsent)

	_, err = p.ResolveChannel(ctx, 12345)
	assert.ErrorIs(t, err, gateway.ErrAbsent)
	assert.ErrorIs(t, p.SetChannelTopic(ctx, 12345, "x"), gateway.ErrAbsent)
}

func TestPlatform_FailOn(t *testing.T) {
	ctx := context.Background()
	p := New()
	boom := errors.New("gateway timeout")

	p.FailOn("CreateAccessGroup", boom)
	_, err := p.CreateAccessGroup(ctx, 42, "room", 0)
	assert.ErrorIs(t, err, boom)

	p.FailOn("CreateAccessGroup", nil)
	_, err = p.CreateAccessGroup(ctx, 42, "room", 0)
	assert.NoError(t, err)
}
