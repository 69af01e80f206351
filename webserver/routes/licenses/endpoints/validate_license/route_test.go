package validate_license

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vousmeveyoz/discord-jixabot/state"
	"github.com/Vousmeveyoz/discord-jixabot/store"
	"github.com/Vousmeveyoz/discord-jixabot/types"
	"github.com/infinitybotlist/eureka/hotcache"
)

// memCache is an in-process hotcache.HotCache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string]*types.License
}

func newMemCache() *memCache {
	return &memCache{data: map[string]*types.License{}}
}

func (m *memCache) Get(ctx context.Context, key string) (*types.License, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]

	if !ok {
		return nil, hotcache.ErrHotCacheDataNotFound
	}

	return v, nil
}

func (m *memCache) Set(ctx context.Context, key string, value *types.License, expiry time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *memCache) Increment(ctx context.Context, key string, value int64) error { return nil }
func (m *memCache) IncrementOne(ctx context.Context, key string) error           { return nil }
func (m *memCache) Exists(ctx context.Context, key string) (bool, error)         { return false, nil }
func (m *memCache) Expiry(ctx context.Context, key string) (time.Duration, error) {
	return 0, nil
}

func seedLicense(t *testing.T, licenses store.Licenses) types.License {
	t.Helper()

	l := types.License{
		Key:       "AB12-CD34-EF56-GH78",
		RobloxID:  "12345",
		DiscordID: "999",
		CreatedAt: time.Now().Add(-24 * time.Hour),
	}

	require.NoError(t, licenses.Append(context.Background(), l))

	return l
}

func TestMain(m *testing.M) {
	state.Logger = zap.NewNop()
	m.Run()
}

func TestValidateMissingKey(t *testing.T) {
	resp := Validate(context.Background(), store.NewMemLicenses(), newMemCache(), types.ValidateRequest{}, time.Now())

	assert.Equal(t, http.StatusBadRequest, resp.Status)

	body, ok := resp.Json.(types.ValidateResponse)
	require.True(t, ok)
	assert.False(t, body.Success)
	assert.Equal(t, "Missing required field: key", body.Message)
}

func TestValidateUnknownKey(t *testing.T) {
	resp := Validate(context.Background(), store.NewMemLicenses(), newMemCache(), types.ValidateRequest{Key: "ZZZZ-ZZZZ-ZZZZ-ZZZZ"}, time.Now())

	assert.Equal(t, http.StatusOK, resp.Status)

	body, ok := resp.Json.(types.ValidateResponse)
	require.True(t, ok)
	assert.False(t, body.Success)
	assert.Equal(t, "Invalid license key", body.Message)
	assert.Nil(t, body.Data)
}

func TestValidateSuccessTouchesLastUsed(t *testing.T) {
	licenses := store.NewMemLicenses()
	l := seedLicense(t, licenses)

	now := time.Now()

	resp := Validate(context.Background(), licenses, newMemCache(), types.ValidateRequest{Key: l.Key}, now)

	assert.Equal(t, http.StatusOK, resp.Status)

	body, ok := resp.Json.(types.ValidateResponse)
	require.True(t, ok)
	assert.True(t, body.Success)
	require.NotNil(t, body.Data)
	assert.Equal(t, "12345", body.Data.RobloxID)
	assert.Equal(t, "999", body.Data.DiscordID)

	stored, err := licenses.FindByKey(context.Background(), l.Key)
	require.NoError(t, err)
	require.NotNil(t, stored.LastUsed)
	assert.WithinDuration(t, now, *stored.LastUsed, time.Second)
}

func TestValidateRobloxMismatch(t *testing.T) {
	licenses := store.NewMemLicenses()
	l := seedLicense(t, licenses)

	resp := Validate(context.Background(), licenses, newMemCache(), types.ValidateRequest{Key: l.Key, RobloxID: "67890"}, time.Now())

	assert.Equal(t, http.StatusOK, resp.Status)

	body, ok := resp.Json.(types.ValidateResponse)
	require.True(t, ok)
	assert.False(t, body.Success)
	assert.Equal(t, "License key does not match Roblox ID", body.Message)

	// A mismatched validation must not count as a use.
	stored, err := licenses.FindByKey(context.Background(), l.Key)
	require.NoError(t, err)
	assert.Nil(t, stored.LastUsed)
}

func TestValidateMatchingRobloxID(t *testing.T) {
	licenses := store.NewMemLicenses()
	l := seedLicense(t, licenses)

	resp := Validate(context.Background(), licenses, newMemCache(), types.ValidateRequest{Key: l.Key, RobloxID: "12345"}, time.Now())

	body, ok := resp.Json.(types.ValidateResponse)
	require.True(t, ok)
	assert.True(t, body.Success)
}

func TestValidatePopulatesAndUsesCache(t *testing.T) {
	licenses := store.NewMemLicenses()
	l := seedLicense(t, licenses)
	cache := newMemCache()

	resp := Validate(context.Background(), licenses, cache, types.ValidateRequest{Key: l.Key}, time.Now())

	body := resp.Json.(types.ValidateResponse)
	require.True(t, body.Success)

	cached, err := cache.Get(context.Background(), l.Key)
	require.NoError(t, err)
	assert.Equal(t, l.Key, cached.Key)

	// A cached entry alone is enough for a second lookup.
	resp = Validate(context.Background(), store.NewMemLicenses(), cache, types.ValidateRequest{Key: l.Key}, time.Now())
	body = resp.Json.(types.ValidateResponse)
	assert.True(t, body.Success)
}
