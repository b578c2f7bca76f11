package room

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-playground/validator/v10"
	"github.com/hilthontt/roombot/domain/gateway"
	"github.com/hilthontt/roombot/domain/model"
	"github.com/hilthontt/roombot/domain/repository"
	"github.com/hilthontt/roombot/infrastructure/events"
	"github.com/hilthontt/roombot/infrastructure/logger"
	"github.com/hilthontt/roombot/infrastructure/metrics"
	"go.uber.org/zap"
)

type RoomUseCase interface {
	Create(ctx context.Context, params CreateRoomParams) (*Room, error)
	LoadAll(ctx context.Context) ([]*Room, error)
	Get(id model.ID) (*Room, error)
	Rooms() []*Room
	Join(ctx context.Context, id, player model.ID) (bool, error)
	Leave(ctx context.Context, id, player model.ID) (bool, error)
	Touch(ctx context.Context, id model.ID) error
	Disband(ctx context.Context, id model.ID) error
	Sweep(ctx context.Context) (SweepResult, error)
}

type Options struct {
	DefaultTimeout  time.Duration
	DefaultCapacity int
	Descriptions    []string
	CategoryID      model.ID
	// Rand drives the default description. Nil seeds a fresh generator.
	Rand *rand.Rand
	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

type roomUseCase struct {
	*deps
	opts     Options
	validate *validator.Validate

	rngMu sync.Mutex
	rng   *rand.Rand

	mu    sync.RWMutex
	rooms map[model.ID]*Room

	sweeping mapset.Set[model.ID]
}

func NewRoomUseCase(
	repository repository.RoomRepository,
	platform gateway.Platform,
	publisher events.Publisher,
	metrics *metrics.Metrics,
	logger *logger.Logger,
	opts Options,
) RoomUseCase {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultCapacity == 0 {
		opts.DefaultCapacity = model.DefaultCapacity
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	uc := &roomUseCase{
		deps: &deps{
			repository: repository,
			platform:   platform,
			publisher:  publisher,
			metrics:    metrics,
			logger:     logger,
			now:        opts.Now,
		},
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		rng:      rng,
		rooms:    make(map[model.ID]*Room),
		sweeping: mapset.NewSet[model.ID](),
	}
	uc.deps.onDisband = uc.forget
	return uc
}

// Create allocates the access group and channel, then persists the room. Any failure releases
// whatever was already allocated so no partial room survives.
func (uc *roomUseCase) Create(ctx context.Context, params CreateRoomParams) (*Room, error) {
	params = uc.withDefaults(params)
	if err := uc.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid room parameters: %w", err)
	}

	groupID, err := uc.platform.CreateAccessGroup(ctx, params.CommunityID, params.Activity, params.Color)
	if err != nil {
		uc.logger.Error("failed to create access group", zap.Error(err), zap.Stringer("communityID", params.CommunityID))
		return nil, fmt.Errorf("failed to create access group: %w", err)
	}

	channelID, err := uc.platform.CreateChannel(ctx, params.CommunityID, gateway.ChannelSpec{
		Name:       channelName(params.Activity),
		Topic:      fmt.Sprintf("(0/%d) %s", params.Capacity, params.Description),
		Group:      groupID,
		CategoryID: uc.opts.CategoryID,
	})
	if err != nil {
		uc.logger.Error("failed to create channel", zap.Error(err), zap.Stringer("roomID", groupID))
		uc.release(ctx, params.CommunityID, groupID, 0)
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	now := uc.now().UTC()
	data := model.Room{
		ID:             groupID,
		ChannelID:      channelID,
		Color:          params.Color,
		CommunityID:    params.CommunityID,
		BirthChannelID: params.BirthChannelID,
		Activity:       params.Activity,
		Description:    params.Description,
		CreatedAt:      now,
		Timeout:        params.Timeout,
		Players:        []model.ID{},
		Host:           params.Host,
		Capacity:       params.Capacity,
		LastActiveAt:   now,
	}

	record := data.Record()
	if err := uc.repository.Upsert(ctx, &record); err != nil {
		uc.logger.Error("failed to persist room", zap.Error(err), zap.Stringer("roomID", groupID))
		uc.release(ctx, params.CommunityID, groupID, channelID)
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	room := uc.register(newRoom(data, uc.deps))
	uc.metrics.RoomCreated()

	room.mu.Lock()
	room.publish(events.EventRoomCreated, params.Host)
	room.mu.Unlock()

	uc.logger.Info("room created successfully",
		zap.Stringer("roomID", groupID),
		zap.Stringer("channelID", channelID),
		zap.Stringer("hostID", params.Host),
		zap.String("activity", params.Activity),
	)
	return room, nil
}

// LoadAll rebuilds the live set from the store. Records that fail to decode are skipped; the
// returned error then joins their errors while rooms still holds every room that loaded.
func (uc *roomUseCase) LoadAll(ctx context.Context) ([]*Room, error) {
	records, err := uc.repository.All(ctx)
	if err != nil {
		uc.logger.Error("failed to load rooms", zap.Error(err))
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	rooms := make([]*Room, 0, len(records))
	var malformed []error

	for _, record := range records {
		data, err := record.Room()
		if err != nil {
			uc.metrics.MalformedRecord()
			uc.logger.Error("skipping malformed room record", zap.Stringer("roomID", record.ID), zap.Error(err))
			malformed = append(malformed, err)
			continue
		}
		rooms = append(rooms, uc.register(newRoom(data, uc.deps)))
	}

	uc.logger.Info("rooms loaded",
		zap.Int("loaded", len(rooms)),
		zap.Int("skipped", len(malformed)),
	)
	return rooms, errors.Join(malformed...)
}

func (uc *roomUseCase) Get(id model.ID) (*Room, error) {
	uc.mu.RLock()
	room, ok := uc.rooms[id]
	uc.mu.RUnlock()

	if !ok || room.State() == StateDisbanded {
		return nil, fmt.Errorf("room %s: %w", id, model.ErrNotFound)
	}
	return room, nil
}

// Rooms returns the active rooms ordered by id.
func (uc *roomUseCase) Rooms() []*Room {
	uc.mu.RLock()
	all := make([]*Room, 0, len(uc.rooms))
	for _, room := range uc.rooms {
		all = append(all, room)
	}
	uc.mu.RUnlock()

	active := all[:0]
	for _, room := range all {
		if room.State() == StateActive {
			active = append(active, room)
		}
	}
	slices.SortFunc(active, func(a, b *Room) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return active
}

func (uc *roomUseCase) Join(ctx context.Context, id, player model.ID) (bool, error) {
	room, err := uc.Get(id)
	if err != nil {
		return false, err
	}
	return room.Join(ctx, player)
}

func (uc *roomUseCase) Leave(ctx context.Context, id, player model.ID) (bool, error) {
	room, err := uc.Get(id)
	if err != nil {
		return false, err
	}
	return room.Leave(ctx, player)
}

func (uc *roomUseCase) Touch(ctx context.Context, id model.ID) error {
	room, err := uc.Get(id)
	if err != nil {
		return err
	}
	return room.Touch(ctx)
}

func (uc *roomUseCase) Disband(ctx context.Context, id model.ID) error {
	room, err := uc.Get(id)
	if err != nil {
		return err
	}
	return room.Disband(ctx)
}

func (uc *roomUseCase) withDefaults(params CreateRoomParams) CreateRoomParams {
	if params.Capacity == 0 {
		params.Capacity = uc.opts.DefaultCapacity
	}
	if params.Timeout == 0 {
		params.Timeout = uc.opts.DefaultTimeout
	}
	if params.Description == "" {
		uc.rngMu.Lock()
		params.Description = RandomDescription(uc.opts.Descriptions, uc.rng)
		uc.rngMu.Unlock()
	}
	return params
}

// register adds room to the live set. An instance already registered under the same id wins so
// its lock keeps serializing callers.
// The room lock of an existing entry is only taken after uc.mu is released.
func (uc *roomUseCase) register(room *Room) *Room {
	for {
		uc.mu.RLock()
		existing := uc.rooms[room.ID()]
		uc.mu.RUnlock()

		if existing != nil && existing.State() == StateActive {
			return existing
		}

		uc.mu.Lock()
		if uc.rooms[room.ID()] != existing {
			uc.mu.Unlock()
			continue
		}
		uc.rooms[room.ID()] = room
		uc.metrics.SetActiveRooms(len(uc.rooms))
		uc.mu.Unlock()
		return room
	}
}

// forget drops room unless the id was already taken over by a newer instance.
func (uc *roomUseCase) forget(room *Room) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.rooms[room.ID()] == room {
		delete(uc.rooms, room.ID())
	}
	uc.metrics.SetActiveRooms(len(uc.rooms))
}

func (uc *roomUseCase) release(ctx context.Context, community, group, channel model.ID) {
	if channel != 0 {
		if err := uc.platform.DeleteChannel(ctx, channel); err != nil && !gateway.IsAbsent(err) {
			uc.logger.Error("failed to release channel", zap.Error(err), zap.Stringer("channelID", channel))
		}
	}
	if err := uc.platform.DeleteAccessGroup(ctx, community, group); err != nil && !gateway.IsAbsent(err) {
		uc.logger.Error("failed to release access group", zap.Error(err), zap.Stringer("roomID", group))
	}
}
