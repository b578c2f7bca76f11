// Package memory is an in-process Platform used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hilthontt/roombot/domain/gateway"
	"github.com/hilthontt/roombot/domain/model"
)

type group struct {
	community model.ID
	name      string
	color     int
	members   mapset.Set[model.ID]
}

type channel struct {
	community model.ID
	name      string
	topic     string
	group     model.ID
}

type Platform struct {
	mu       sync.Mutex
	nextID   model.ID
	groups   map[model.ID]*group
	channels map[model.ID]*channel
	// members holds the resolvable members per community. A nil entry means every id resolves.
	members map[model.ID]mapset.Set[model.ID]
	failing map[string]error
}

var _ gateway.Platform = (*Platform)(nil)

func New() *Platform {
	return &Platform{
		nextID:   1_000_000,
		groups:   make(map[model.ID]*group),
		channels: make(map[model.ID]*channel),
		members:  make(map[model.ID]mapset.Set[model.ID]),
		failing:  make(map[string]error),
	}
}

// FailOn makes every call of the named method return err until cleared with a nil err.
func (p *Platform) FailOn(method string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err == nil {
		delete(p.failing, method)
		return
	}
	p.failing[method] = err
}

// RestrictMembers limits the members that resolve in community to ids.
func (p *Platform) RestrictMembers(community model.ID, ids ...model.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.members[community] = mapset.NewThreadUnsafeSet(ids...)
}

// DropGroup and DropChannel simulate a resource deleted out of band.
func (p *Platform) DropGroup(id model.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.groups, id)
}

func (p *Platform) DropChannel(id model.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.channels, id)
}

func (p *Platform) HasGroup(id model.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.groups[id]
	return ok
}

func (p *Platform) HasChannel(id model.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.channels[id]
	return ok
}

// Members returns the players currently granted the group.
func (p *Platform) Members(id model.ID) []model.ID {
	p.mu.Lock()
	defer p.mu.Unlock()

	g, ok := p.groups[id]
	if !ok {
		return nil
	}
	return g.members.ToSlice()
}

func (p *Platform) Topic(id model.ID) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.channels[id]; ok {
		return c.topic
	}
	return ""
}

func (p *Platform) CreateAccessGroup(ctx context.Context, community model.ID, name string, color int) (model.ID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.fail("CreateAccessGroup"); err != nil {
		return 0, err
	}

	p.nextID++
	p.groups[p.nextID] = &group{
		community: community,
		name:      name,
		color:     color,
		members:   mapset.NewThreadUnsafeSet[model.ID](),
	}
	return p.nextID, nil
}

func (p *Platform) CreateChannel(ctx context.Context, community model.ID, spec gateway.ChannelSpec) (model.ID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.fail("CreateChannel"); err != nil {
		return 0, err
	}
	if _, ok := p.groups[spec.Group]; !ok {
		return 0, fmt.Errorf("group %s: %w", spec.Group, gateway.ErrAbsent)
	}

	p.nextID++
	p.channels[p.nextID] = &channel{
		community: community,
		name:      spec.Name,
		topic:     spec.Topic,
		group:     spec.Group,
	}
	return p.nextID, nil
}

func (p *Platform) Grant(ctx context.Context, community, groupID, player model.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.fail("Grant"); err != nil {
		return err
	}
	g, err := p.memberGroup(community, groupID, player)
	if err != nil {
		return err
	}
	g.members.Add(player)
	return nil
}

func (p *Platform) Revoke(ctx context.Context, community, groupID, player model.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.fail("Revoke"); err != nil {
		return err
	}
	g, err := p.memberGroup(community, groupID, player)
	if err != nil {
		return err
	}
	g.members.Remove(player)
	return nil
}

func (p *Platform) SetChannelTopic(ctx context.Context, channelID model.ID, topic string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.fail("SetChannelTopic"); err != nil {
		return err
	}
	c, ok := p.channels[channelID]
	if !ok {
		return fmt.Errorf("channel %s: %w", channelID, gateway.ErrAbsent)
	}
	c.topic = topic
	return nil
}

func (p *Platform) DeleteAccessGroup(ctx context.Context, community, groupID model.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.fail("DeleteAccessGroup"); err != nil {
		return err
	}
	if _, ok := p.groups[groupID]; !ok {
		return fmt.Errorf("group %s: %w", groupID, gateway.ErrAbsent)
	}
	delete(p.groups, groupID)
	return nil
}

func (p *Platform) DeleteChannel(ctx context.Context, channelID model.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.fail("DeleteChannel"); err != nil {
		return err
	}
	if _, ok := p.channels[channelID]; !ok {
		return fmt.Errorf("channel %s: %w", channelID, gateway.ErrAbsent)
	}
	delete(p.channels, channelID)
	return nil
}

func (p *Platform) ResolveGroup(ctx context.Context, community, groupID model.ID) (*gateway.Group, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.fail("ResolveGroup"); err != nil {
		return nil, err
	}
	g, ok := p.groups[groupID]
	if !ok || g.community != community {
		return nil, fmt.Errorf("group %s: %w", groupID, gateway.ErrAbsent)
	}
	return &gateway.Group{ID: groupID, Name: g.name, Color: g.color}, nil
}

func (p *Platform) ResolveChannel(ctx context.Context, channelID model.ID) (*gateway.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.fail("ResolveChannel"); err != nil {
		return nil, err
	}
	c, ok := p.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s: %w", channelID, gateway.ErrAbsent)
	}
	return &gateway.Channel{ID: channelID, Name: c.name, Topic: c.topic}, nil
}

func (p *Platform) fail(method string) error {
	return p.failing[method]
}

func (p *Platform) memberGroup(community, groupID, player model.ID) (*group, error) {
	g, ok := p.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, gateway.ErrAbsent)
	}
	if allowed, ok := p.members[community]; ok && !allowed.Contains(player) {
		return nil, fmt.Errorf("member %s: %w", player, gateway.ErrAbsent)
	}
	return g, nil
}
