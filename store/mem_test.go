package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vousmeveyoz/discord-jixabot/types"
)

func TestMemLicensesTouchLastUsed(t *testing.T) {
	ctx := context.Background()
	s := NewMemLicenses()

	require.NoError(t, s.Append(ctx, types.License{
		Key:       "AAAA-BBBB-CCCC-DDDD",
		RobloxID:  "12345",
		DiscordID: "999",
		CreatedAt: time.Now(),
	}))

	l, err := s.FindByKey(ctx, "AAAA-BBBB-CCCC-DDDD")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Nil(t, l.LastUsed)

	used := time.Now().Add(time.Hour)
	require.NoError(t, s.TouchLastUsed(ctx, "AAAA-BBBB-CCCC-DDDD", used))

	l, err = s.FindByKey(ctx, "AAAA-BBBB-CCCC-DDDD")
	require.NoError(t, err)
	require.NotNil(t, l.LastUsed)
	assert.True(t, l.LastUsed.Equal(used))

	missing, err := s.FindByKey(ctx, "ZZZZ-ZZZZ-ZZZZ-ZZZZ")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemCustomersUpsertByUserKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemCustomers()

	first := time.Now()

	require.NoError(t, s.Upsert(ctx, types.Customer{
		UserKey:   "uk_1",
		Name:      "Alpha",
		ChannelID: "chan-1",
		KoinRate:  100,
		UpdatedAt: first,
	}))

	// Same user key, different channel: exactly one record survives,
	// reflecting the second call.
	second := first.Add(time.Minute)

	require.NoError(t, s.Upsert(ctx, types.Customer{
		UserKey:   "uk_1",
		Name:      "Alpha Renamed",
		ChannelID: "chan-2",
		KoinRate:  250,
		UpdatedAt: second,
	}))

	assert.Len(t, s.Customers, 1)

	old, err := s.FindByChannel(ctx, "chan-1")
	require.NoError(t, err)
	assert.Nil(t, old)

	c, err := s.FindByChannel(ctx, "chan-2")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Alpha Renamed", c.Name)
	assert.EqualValues(t, 250, c.KoinRate)
	assert.True(t, c.UpdatedAt.Equal(second))
	assert.True(t, c.CreatedAt.Equal(first))
}

func TestMemCustomersChannelBindingIsExclusive(t *testing.T) {
	ctx := context.Background()
	s := NewMemCustomers()

	now := time.Now()

	require.NoError(t, s.Upsert(ctx, types.Customer{UserKey: "uk_old", Name: "Old", ChannelID: "chan-1", KoinRate: 100, UpdatedAt: now}))
	require.NoError(t, s.Upsert(ctx, types.Customer{UserKey: "uk_new", Name: "New", ChannelID: "chan-1", KoinRate: 100, UpdatedAt: now}))

	c, err := s.FindByChannel(ctx, "chan-1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "uk_new", c.UserKey)
	assert.Len(t, s.Customers, 1)
}
