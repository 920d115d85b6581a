package redislocations_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/adapters/out/redislocations"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

const storeTTL = time.Minute

func newStore(t *testing.T) (*redislocations.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redislocations.NewStore(client, storeTTL), mr
}

func somePing(t *testing.T, lat, lon float64) ports.LocationPing {
	t.Helper()
	location, err := kernel.NewGeoLocation(lat, lon)
	require.NoError(t, err)
	return ports.LocationPing{
		Location:   location,
		ReportedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestStore_PutAndGet(t *testing.T) {
	store, _ := newStore(t)
	ctx := t.Context()
	courierID := kernel.NewUUID()
	ping := somePing(t, 40.0, -75.0)

	require.NoError(t, store.Put(ctx, courierID, ping))

	got, found, err := store.Get(ctx, courierID)
	require.NoError(t, err)
	require.True(t, found)
	equal, err := got.Location.IsEqual(ping.Location)
	require.NoError(t, err)
	assert.True(t, equal)
	assert.True(t, got.ReportedAt.Equal(ping.ReportedAt))
}

func TestStore_Get_Missing(t *testing.T) {
	store, _ := newStore(t)

	_, found, err := store.Get(t.Context(), kernel.NewUUID())

	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Put_ReplacesPreviousPing(t *testing.T) {
	store, _ := newStore(t)
	ctx := t.Context()
	courierID := kernel.NewUUID()

	first := somePing(t, 40.0, -75.0)
	second := somePing(t, 41.0, -76.0)
	require.NoError(t, store.Put(ctx, courierID, first))
	require.NoError(t, store.Put(ctx, courierID, second))

	got, found, err := store.Get(ctx, courierID)
	require.NoError(t, err)
	require.True(t, found)
	equal, err := got.Location.IsEqual(second.Location)
	require.NoError(t, err)
	assert.True(t, equal)
}

func TestStore_PingExpiresAfterTTL(t *testing.T) {
	store, mr := newStore(t)
	ctx := t.Context()
	courierID := kernel.NewUUID()

	require.NoError(t, store.Put(ctx, courierID, somePing(t, 40.0, -75.0)))

	mr.FastForward(storeTTL + time.Second)

	_, found, err := store.Get(ctx, courierID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_Put_RefreshesTTL(t *testing.T) {
	store, mr := newStore(t)
	ctx := t.Context()
	courierID := kernel.NewUUID()

	require.NoError(t, store.Put(ctx, courierID, somePing(t, 40.0, -75.0)))
	mr.FastForward(storeTTL / 2)
	require.NoError(t, store.Put(ctx, courierID, somePing(t, 40.1, -75.1)))
	mr.FastForward(storeTTL / 2)

	_, found, err := store.Get(ctx, courierID)
	require.NoError(t, err)
	assert.True(t, found, "a fresh ping should reset the expiry")
}

func TestStore_GetMany(t *testing.T) {
	store, mr := newStore(t)
	ctx := t.Context()

	fresh := kernel.NewUUID()
	expired := kernel.NewUUID()
	unknown := kernel.NewUUID()

	require.NoError(t, store.Put(ctx, expired, somePing(t, 41.0, -76.0)))
	mr.FastForward(storeTTL + time.Second)

	freshPing := somePing(t, 40.0, -75.0)
	require.NoError(t, store.Put(ctx, fresh, freshPing))

	pings, err := store.GetMany(ctx, []kernel.UUID{fresh, expired, unknown})

	require.NoError(t, err)
	require.Len(t, pings, 1)
	got, ok := pings[fresh]
	require.True(t, ok)
	equal, err := got.Location.IsEqual(freshPing.Location)
	require.NoError(t, err)
	assert.True(t, equal)
}

func TestStore_GetMany_Empty(t *testing.T) {
	store, _ := newStore(t)

	pings, err := store.GetMany(t.Context(), nil)

	require.NoError(t, err)
	assert.Empty(t, pings)
}

func TestStore_Put_InvalidCourierID(t *testing.T) {
	store, _ := newStore(t)

	err := store.Put(t.Context(), kernel.UUID{}, somePing(t, 40.0, -75.0))

	require.Error(t, err)
}

func TestStore_Put_InvalidLocation(t *testing.T) {
	store, _ := newStore(t)

	err := store.Put(t.Context(), kernel.NewUUID(), ports.LocationPing{})

	require.Error(t, err)
}
