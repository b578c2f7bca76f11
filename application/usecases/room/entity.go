package room

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hilthontt/roombot/domain/gateway"
	"github.com/hilthontt/roombot/domain/model"
	"github.com/hilthontt/roombot/domain/repository"
	"github.com/hilthontt/roombot/infrastructure/events"
	"github.com/hilthontt/roombot/infrastructure/logger"
	"github.com/hilthontt/roombot/infrastructure/metrics"
	"go.uber.org/zap"
)

type State int

const (
	StateActive State = iota
	StateDisbanded
)

func (s State) String() string {
	if s == StateDisbanded {
		return "disbanded"
	}
	return "active"
}

const (
	reasonExplicit   = "explicit"
	reasonInactivity = "inactivity"
)

// deps are shared by the usecase and every live room.
type deps struct {
	repository repository.RoomRepository
	platform   gateway.Platform
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     *logger.Logger
	now        func() time.Time
	onDisband  func(room *Room)
}

// Room is a live room. Every mutation holds mu for its whole duration, so platform effects and
// persistence for one room never interleave.
type Room struct {
	mu    sync.Mutex
	data  model.Room
	state State

	*deps
	logger *logger.Logger
}

func newRoom(data model.Room, d *deps) *Room {
	if data.Players == nil {
		data.Players = []model.ID{}
	}
	return &Room{
		data:   data,
		deps:   d,
		logger: d.logger.With(zap.Stringer("roomID", data.ID)),
	}
}

func (r *Room) ID() model.ID {
	return r.data.ID
}

func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Snapshot returns a copy of the room's current data.
func (r *Room) Snapshot() model.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := r.data
	data.Players = slices.Clone(r.data.Players)
	return data
}

// Join adds player. It reports false without error when the room's platform resources cannot be
// resolved or the grant fails; the room is left untouched in that case.
func (r *Room) Join(ctx context.Context, player model.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateDisbanded {
		return false, model.ErrRoomClosed
	}
	if r.data.IsMember(player) {
		return true, nil
	}
	if r.data.IsFull() {
		r.metrics.Membership("join", "full")
		return false, model.ErrRoomFull
	}

	if !r.resourcesAvailable(ctx) {
		r.metrics.Membership("join", "unavailable")
		return false, nil
	}

	if err := r.platform.Grant(ctx, r.data.CommunityID, r.data.ID, player); err != nil {
		r.softFail("Grant", player, err)
		r.metrics.Membership("join", "unavailable")
		return false, nil
	}

	prevPlayers, prevActive := r.data.Players, r.data.LastActiveAt
	r.data.Players = append(slices.Clip(r.data.Players), player)
	r.data.LastActiveAt = r.now().UTC()

	if err := r.persistMembership(ctx); err != nil {
		r.data.Players, r.data.LastActiveAt = prevPlayers, prevActive
		if revokeErr := r.platform.Revoke(ctx, r.data.CommunityID, r.data.ID, player); revokeErr != nil {
			r.logger.Error("failed to undo grant after persistence failure",
				zap.Stringer("playerID", player),
				zap.Error(revokeErr),
			)
		}
		r.metrics.Membership("join", "error")
		return false, fmt.Errorf("join room %s: %w", r.data.ID, err)
	}

	r.syncTopic(ctx)
	r.publish(events.EventRoomJoined, player)
	r.metrics.Membership("join", "ok")
	r.logger.Info("player joined room",
		zap.Stringer("playerID", player),
		zap.Int("players", len(r.data.Players)),
		zap.Int("capacity", r.data.Capacity),
	)
	return true, nil
}

// Leave removes player. It reports false when player is not a member or the revoke failed.
func (r *Room) Leave(ctx context.Context, player model.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateDisbanded {
		return false, model.ErrRoomClosed
	}

	left, err := r.leaveLocked(ctx, player, true)
	switch {
	case err != nil:
		r.metrics.Membership("leave", "error")
	case left:
		r.metrics.Membership("leave", "ok")
	default:
		r.metrics.Membership("leave", "noop")
	}
	return left, err
}

func (r *Room) leaveLocked(ctx context.Context, player model.ID, syncTopic bool) (bool, error) {
	idx := slices.Index(r.data.Players, player)
	if idx < 0 {
		return false, nil
	}

	if err := r.platform.Revoke(ctx, r.data.CommunityID, r.data.ID, player); err != nil {
		if !gateway.IsAbsent(err) {
			r.softFail("Revoke", player, err)
			return false, nil
		}
		r.logger.Debug("revoke skipped, resource already gone",
			zap.Stringer("playerID", player),
			zap.Error(err),
		)
	}

	prevPlayers, prevActive := r.data.Players, r.data.LastActiveAt
	r.data.Players = slices.Delete(slices.Clone(r.data.Players), idx, idx+1)
	r.data.LastActiveAt = r.now().UTC()

	if err := r.persistMembership(ctx); err != nil {
		r.data.Players, r.data.LastActiveAt = prevPlayers, prevActive
		return false, fmt.Errorf("leave room %s: %w", r.data.ID, err)
	}

	if syncTopic {
		r.syncTopic(ctx)
	}
	r.publish(events.EventRoomLeft, player)
	r.logger.Info("player left room",
		zap.Stringer("playerID", player),
		zap.Int("players", len(r.data.Players)),
	)
	return true, nil
}

// Touch resets the inactivity clock.
func (r *Room) Touch(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateDisbanded {
		return model.ErrRoomClosed
	}

	prev := r.data.LastActiveAt
	r.data.LastActiveAt = r.now().UTC()

	err := r.repository.UpdateFields(ctx, r.data.ID, map[string]any{
		model.ColumnLastActiveAt: r.data.LastActiveAt,
	})
	if err != nil {
		r.data.LastActiveAt = prev
		return fmt.Errorf("touch room %s: %w", r.data.ID, err)
	}
	return nil
}

// Disband removes every player, releases the platform resources and deletes the record.
// Platform cleanup is best effort; only a failure to delete the record fails the disband.
func (r *Room) Disband(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateDisbanded {
		return model.ErrRoomClosed
	}
	return r.disbandLocked(ctx, reasonExplicit)
}

// disbandIfIdle disbands the room when it has been idle for its timeout at now.
func (r *Room) disbandIfIdle(ctx context.Context, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateDisbanded || !r.data.IsIdle(now) {
		return false, nil
	}

	r.logger.Info("disbanding idle room",
		zap.Time("lastActiveAt", r.data.LastActiveAt),
		zap.Duration("timeout", r.data.Timeout),
	)
	if err := r.disbandLocked(ctx, reasonInactivity); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Room) disbandLocked(ctx context.Context, reason string) error {
	for _, player := range slices.Clone(r.data.Players) {
		left, err := r.leaveLocked(ctx, player, false)
		if err != nil || !left {
			r.logger.Warn("skipping player during disband",
				zap.Stringer("playerID", player),
				zap.Error(err),
			)
		}
	}

	if err := r.platform.DeleteAccessGroup(ctx, r.data.CommunityID, r.data.ID); err != nil {
		r.cleanupFailed("DeleteAccessGroup", err)
	}

	if err := r.repository.Delete(ctx, r.data.ID); err != nil {
		return fmt.Errorf("disband room %s: %w", r.data.ID, err)
	}
	r.state = StateDisbanded

	if err := r.platform.DeleteChannel(ctx, r.data.ChannelID); err != nil {
		r.cleanupFailed("DeleteChannel", err)
	}

	if r.onDisband != nil {
		r.onDisband(r)
	}
	r.publish(events.EventRoomDisbanded, 0)
	r.metrics.RoomDisbanded(reason)
	r.logger.Info("room disbanded", zap.String("reason", reason))
	return nil
}

func (r *Room) persistMembership(ctx context.Context) error {
	return r.repository.UpdateFields(ctx, r.data.ID, map[string]any{
		model.ColumnPlayers:      model.EncodeIDs(r.data.Players),
		model.ColumnLastActiveAt: r.data.LastActiveAt,
	})
}

// resourcesAvailable reports whether both the access group and channel still resolve.
func (r *Room) resourcesAvailable(ctx context.Context) bool {
	if _, err := r.platform.ResolveGroup(ctx, r.data.CommunityID, r.data.ID); err != nil {
		r.softFail("ResolveGroup", 0, err)
		return false
	}
	if _, err := r.platform.ResolveChannel(ctx, r.data.ChannelID); err != nil {
		r.softFail("ResolveChannel", 0, err)
		return false
	}
	return true
}

func (r *Room) syncTopic(ctx context.Context) {
	if err := r.platform.SetChannelTopic(ctx, r.data.ChannelID, r.data.Topic()); err != nil {
		r.softFail("SetChannelTopic", 0, err)
	}
}

func (r *Room) softFail(op string, player model.ID, err error) {
	r.metrics.SoftFailure(op)

	fields := []zap.Field{zap.String("op", op), zap.Bool("absent", gateway.IsAbsent(err)), zap.Error(err)}
	if player != 0 {
		fields = append(fields, zap.Stringer("playerID", player))
	}
	r.logger.Warn("platform call did not succeed", fields...)
}

func (r *Room) cleanupFailed(op string, err error) {
	if gateway.IsAbsent(err) {
		r.logger.Debug("platform resource already gone", zap.String("op", op))
		return
	}
	r.softFail(op, 0, err)
}

func (r *Room) publish(eventType events.EventType, player model.ID) {
	event := events.NewRoomEvent(eventType, r.data.ID.String(), "", map[string]any{
		"players":  len(r.data.Players),
		"capacity": r.data.Capacity,
	})
	if player != 0 {
		event.UserID = player.String()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.publisher.Publish(ctx, event); err != nil {
			r.logger.Warn("failed to publish room event",
				zap.String("type", string(event.Type)),
				zap.Error(err),
			)
		}
	}()
}
