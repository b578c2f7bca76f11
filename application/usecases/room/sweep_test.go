package room

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/roombot/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep_TimeoutBoundary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	withTimeout := func(p *CreateRoomParams) { p.Timeout = 60 * time.Second }

	stale := f.createRoom(t, withTimeout)
	f.clock.Advance(2 * time.Second)
	fresh := f.createRoom(t, withTimeout)
	f.clock.Advance(59 * time.Second)

	result, err := f.uc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Checked: 2, Disbanded: 1}, result)

	assert.Equal(t, StateDisbanded, stale.State())
	assert.Equal(t, StateActive, fresh.State())

	_, err = f.repo.GetByID(ctx, stale.ID())
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = f.repo.GetByID(ctx, fresh.ID())
	assert.NoError(t, err)
}

func TestSweep_ActivityKeepsRoomAlive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.createRoom(t, func(p *CreateRoomParams) { p.Timeout = time.Minute })

	f.clock.Advance(50 * time.Second)
	ok, err := room.Join(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)

	f.clock.Advance(50 * time.Second)
	result, err := f.uc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Disbanded)
	assert.Equal(t, StateActive, room.State())
}

func TestSweep_ContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	withTimeout := func(p *CreateRoomParams) { p.Timeout = time.Second }

	f.createRoom(t, withTimeout)
	f.createRoom(t, withTimeout)
	f.clock.Advance(time.Minute)
	f.repo.setFailDelete(errors.New("connection reset"))

	result, err := f.uc.Sweep(ctx)
	require.Error(t, err)
	assert.Equal(t, SweepResult{Checked: 2, Failed: 2}, result)
	assert.Len(t, f.uc.Rooms(), 2)

	f.repo.setFailDelete(nil)
	result, err = f.uc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Disbanded)
	assert.Empty(t, f.uc.Rooms())
}

func TestSweep_ConcurrentPassesDisbandOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.createRoom(t, func(p *CreateRoomParams) { p.Timeout = time.Second })
	f.clock.Advance(time.Minute)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.uc.Sweep(ctx)
			assert.NoError(t, err)

			mu.Lock()
			total += result.Disbanded
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, total)
}

func TestSweep_RacingJoinObservesClosedRoom(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	room := f.createRoom(t, func(p *CreateRoomParams) { p.Timeout = time.Second })
	f.clock.Advance(time.Minute)

	_, err := f.uc.Sweep(ctx)
	require.NoError(t, err)

	_, err = room.Join(ctx, 1)
	assert.ErrorIs(t, err, model.ErrRoomClosed)
}
