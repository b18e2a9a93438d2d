package patients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	profile *Profile
	err     error
	calls   int
}

func (s *countingStore) FindByPhone(context.Context, string) (*Profile, error) {
	s.calls++
	return s.profile, s.err
}

func TestCachedStoreReadThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	next := &countingStore{profile: &Profile{Forename: strPtr("Milan"), Surname: strPtr("Majtán")}}
	store := NewCachedStore(next, client, time.Minute, nil)
	ctx := context.Background()

	p, err := store.FindByPhone(ctx, "+421903123456")
	require.NoError(t, err)
	assert.Equal(t, "Milan Majtán", p.FullName())
	assert.Equal(t, 1, next.calls)
	assert.True(t, mr.Exists("patients:phone:+421903123456"))
	assert.Equal(t, time.Minute, mr.TTL("patients:phone:+421903123456"))

	p, err = store.FindByPhone(ctx, "+421903123456")
	require.NoError(t, err)
	assert.Equal(t, "Milan Majtán", p.FullName())
	assert.Nil(t, p.Email)
	assert.Equal(t, 1, next.calls)

	mr.FastForward(2 * time.Minute)
	_, err = store.FindByPhone(ctx, "+421903123456")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedStoreSkipsNegativesAndErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	miss := &countingStore{}
	store := NewCachedStore(miss, client, 0, nil)
	p, err := store.FindByPhone(ctx, "+1")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.False(t, mr.Exists("patients:phone:+1"))

	failing := &countingStore{err: errors.New("db down")}
	_, err = NewCachedStore(failing, client, 0, nil).FindByPhone(ctx, "+2")
	assert.Error(t, err)
	assert.False(t, mr.Exists("patients:phone:+2"))
}

func TestCachedStoreFallsThroughWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	next := &countingStore{profile: &Profile{Forename: strPtr("Eva")}}
	p, err := NewCachedStore(next, client, 0, nil).FindByPhone(context.Background(), "+3")
	require.NoError(t, err)
	assert.Equal(t, "Eva", p.FullName())
}

func TestCachedStoreWithoutClient(t *testing.T) {
	next := &countingStore{profile: &Profile{Forename: strPtr("Eva")}}
	store := NewCachedStore(next, nil, 0, nil)
	_, _ = store.FindByPhone(context.Background(), "+3")
	_, _ = store.FindByPhone(context.Background(), "+3")
	assert.Equal(t, 2, next.calls)
}
