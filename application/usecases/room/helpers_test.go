package room

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/roombot/domain/model"
	"github.com/hilthontt/roombot/infrastructure/logger"
	"github.com/hilthontt/roombot/infrastructure/platform/memory"
	"github.com/stretchr/testify/require"
)

const testCommunity model.ID = 42

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeRepository struct {
	mu         sync.Mutex
	records    map[model.ID]model.RoomRecord
	failUpdate error
	failDelete error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: make(map[model.ID]model.RoomRecord)}
}

func (r *fakeRepository) Upsert(ctx context.Context, record *model.RoomRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = *record
	return nil
}

func (r *fakeRepository) UpdateFields(ctx context.Context, id model.ID, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failUpdate != nil {
		return r.failUpdate
	}
	record, ok := r.records[id]
	if !ok {
		return model.ErrNotFound
	}
	for column, value := range fields {
		switch column {
		case model.ColumnPlayers:
			record.Players = value.(string)
		case model.ColumnLastActiveAt:
			record.LastActiveAt = value.(time.Time)
		}
	}
	r.records[id] = record
	return nil
}

func (r *fakeRepository) Delete(ctx context.Context, id model.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failDelete != nil {
		return r.failDelete
	}
	delete(r.records, id)
	return nil
}

func (r *fakeRepository) All(ctx context.Context) ([]model.RoomRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]model.RoomRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record)
	}
	return records, nil
}

func (r *fakeRepository) GetByID(ctx context.Context, id model.ID) (*model.RoomRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &record, nil
}

func (r *fakeRepository) setFailUpdate(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failUpdate = err
}

func (r *fakeRepository) setFailDelete(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failDelete = err
}

func (r *fakeRepository) players(t *testing.T, id model.ID) []model.ID {
	t.Helper()

	record, err := r.GetByID(context.Background(), id)
	require.NoError(t, err)
	players, err := model.DecodeIDs(record.Players)
	require.NoError(t, err)
	return players
}

type fixture struct {
	uc       RoomUseCase
	repo     *fakeRepository
	platform *memory.Platform
	clock    *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:     newFakeRepository(),
		platform: memory.New(),
		clock:    newFakeClock(),
	}
	f.uc = NewRoomUseCase(f.repo, f.platform, nil, nil, logger.NewNopLogger(), Options{
		DefaultTimeout:  time.Hour,
		DefaultCapacity: model.DefaultCapacity,
		Descriptions:    []string{"Why not?", "Let's go!"},
		Rand:            rand.New(rand.NewPCG(1, 2)),
		Now:             f.clock.Now,
	})
	return f
}

func (f *fixture) createRoom(t *testing.T, mutate ...func(*CreateRoomParams)) *Room {
	t.Helper()

	params := CreateRoomParams{
		Activity:    "Chess Night",
		Description: "Bring your own board",
		CommunityID: testCommunity,
		Color:       0x3498db,
		Host:        7,
	}
	for _, m := range mutate {
		m(&params)
	}

	room, err := f.uc.Create(context.Background(), params)
	require.NoError(t, err)
	return room
}
