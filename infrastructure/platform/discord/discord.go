// Package discord implements gateway.Platform on Discord: access groups are roles and room
// channels are text channels visible only to their role.
package discord

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/hilthontt/roombot/domain/gateway"
	"github.com/hilthontt/roombot/domain/model"
	pkgerrors "github.com/pkg/errors"
)

type Platform struct {
	session *discordgo.Session
}

var _ gateway.Platform = (*Platform)(nil)

func New(session *discordgo.Session) *Platform {
	return &Platform{session: session}
}

// NewSession creates a bot session for token. The caller opens and closes it.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	return session, nil
}

func (p *Platform) CreateAccessGroup(ctx context.Context, community model.ID, name string, color int) (model.ID, error) {
	mentionable := true
	role, err := p.session.GuildRoleCreate(community.String(), &discordgo.RoleParams{
		Name:        name,
		Color:       &color,
		Mentionable: &mentionable,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return 0, classify(err, "create role in guild %s", community)
	}
	return parseID(role.ID)
}

func (p *Platform) CreateChannel(ctx context.Context, community model.ID, spec gateway.ChannelSpec) (model.ID, error) {
	data := discordgo.GuildChannelCreateData{
		Name:  spec.Name,
		Type:  discordgo.ChannelTypeGuildText,
		Topic: spec.Topic,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				// the @everyone role shares the guild id
				ID:   community.String(),
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel,
			},
			{
				ID:    spec.Group.String(),
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
			},
		},
	}
	if spec.CategoryID != 0 {
		data.ParentID = spec.CategoryID.String()
	}

	channel, err := p.session.GuildChannelCreateComplex(community.String(), data, discordgo.WithContext(ctx))
	if err != nil {
		return 0, classify(err, "create channel in guild %s", community)
	}
	return parseID(channel.ID)
}

func (p *Platform) Grant(ctx context.Context, community, group, player model.ID) error {
	err := p.session.GuildMemberRoleAdd(community.String(), player.String(), group.String(), discordgo.WithContext(ctx))
	return classify(err, "grant role %s to %s", group, player)
}

func (p *Platform) Revoke(ctx context.Context, community, group, player model.ID) error {
	err := p.session.GuildMemberRoleRemove(community.String(), player.String(), group.String(), discordgo.WithContext(ctx))
	return classify(err, "revoke role %s from %s", group, player)
}

func (p *Platform) SetChannelTopic(ctx context.Context, channel model.ID, topic string) error {
	_, err := p.session.ChannelEdit(channel.String(), &discordgo.ChannelEdit{Topic: topic}, discordgo.WithContext(ctx))
	return classify(err, "set topic of channel %s", channel)
}

func (p *Platform) DeleteAccessGroup(ctx context.Context, community, group model.ID) error {
	err := p.session.GuildRoleDelete(community.String(), group.String(), discordgo.WithContext(ctx))
	return classify(err, "delete role %s", group)
}

func (p *Platform) DeleteChannel(ctx context.Context, channel model.ID) error {
	_, err := p.session.ChannelDelete(channel.String(), discordgo.WithContext(ctx))
	return classify(err, "delete channel %s", channel)
}

func (p *Platform) ResolveGroup(ctx context.Context, community, group model.ID) (*gateway.Group, error) {
	if role, err := p.session.State.Role(community.String(), group.String()); err == nil {
		return &gateway.Group{ID: group, Name: role.Name, Color: role.Color}, nil
	}

	roles, err := p.session.GuildRoles(community.String(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err, "list roles of guild %s", community)
	}
	for _, role := range roles {
		if role.ID == group.String() {
			return &gateway.Group{ID: group, Name: role.Name, Color: role.Color}, nil
		}
	}
	return nil, pkgerrors.Wrapf(gateway.ErrAbsent, "role %s", group)
}

func (p *Platform) ResolveChannel(ctx context.Context, channel model.ID) (*gateway.Channel, error) {
	if c, err := p.session.State.Channel(channel.String()); err == nil {
		return &gateway.Channel{ID: channel, Name: c.Name, Topic: c.Topic}, nil
	}

	c, err := p.session.Channel(channel.String(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify(err, "get channel %s", channel)
	}
	return &gateway.Channel{ID: channel, Name: c.Name, Topic: c.Topic}, nil
}

var absentCodes = map[int]struct{}{
	discordgo.ErrCodeUnknownChannel: {},
	discordgo.ErrCodeUnknownGuild:   {},
	discordgo.ErrCodeUnknownMember:  {},
	discordgo.ErrCodeUnknownRole:    {},
	discordgo.ErrCodeUnknownUser:    {},
}

// classify wraps err, mapping Discord's "unknown X" responses to gateway.ErrAbsent.
func classify(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil {
			if _, ok := absentCodes[restErr.Message.Code]; ok {
				return pkgerrors.Wrapf(gateway.ErrAbsent, format+": %s", append(args, restErr.Message.Message)...)
			}
		}
		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return pkgerrors.Wrapf(gateway.ErrAbsent, format, args...)
		}
	}
	return pkgerrors.Wrapf(err, format, args...)
}

func parseID(s string) (model.ID, error) {
	id, err := model.ParseID(s)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "parse discord id %q", s)
	}
	return id, nil
}
