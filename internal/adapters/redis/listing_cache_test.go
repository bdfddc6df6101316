package redis_adapter

import (
	"context"
	"testing"
	"time"

	"marketplace-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleListings() []domain.Property {
	bed := 2
	agentID := uuid.New()
	created := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	return []domain.Property{{
		ID:           uuid.New(),
		Title:        "Marina view",
		PropertyType: domain.PropertyTypeApartment,
		ListingType:  domain.ListingTypeRent,
		Price:        12000,
		Bed:          &bed,
		City:         "Dubai",
		Images:       []string{"http://media.test/a.jpg"},
		Status:       domain.StatusPublished,
		AgentID:      &agentID,
		CreatedAt:    created,
		UpdatedAt:    created,
	}}
}

func TestNewListingCacheValidatesArguments(t *testing.T) {
	_, err := NewListingCache(nil, "listings", time.Minute)
	assert.Error(t, err)

	_, err = newListingCache(newFakeRedis(), "", time.Minute)
	assert.Error(t, err)

	_, err = newListingCache(newFakeRedis(), "listings", 0)
	assert.Error(t, err)
}

func TestListingCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeRedis()
	cache, err := newListingCache(kv, "listings", 2*time.Minute)
	require.NoError(t, err)

	page, err := cache.GetListings(ctx, "rent|city=dubai")
	require.NoError(t, err)
	assert.False(t, page.Hit)
	assert.Equal(t, "listings:0:rent|city=dubai", page.Token)

	want := sampleListings()
	require.NoError(t, cache.SetListings(ctx, page.Token, want))

	page, err = cache.GetListings(ctx, "rent|city=dubai")
	require.NoError(t, err)
	require.True(t, page.Hit)
	assert.Equal(t, want, page.Items)

	e, ok := kv.entry("listings:0:rent|city=dubai")
	require.True(t, ok)
	assert.Equal(t, 2*time.Minute, e.ttl)
}

func TestListingCacheInvalidateHidesOldPages(t *testing.T) {
	ctx := context.Background()
	cache, err := newListingCache(newFakeRedis(), "listings", time.Minute)
	require.NoError(t, err)

	page, err := cache.GetListings(ctx, "buy")
	require.NoError(t, err)
	require.NoError(t, cache.SetListings(ctx, page.Token, sampleListings()))
	require.NoError(t, cache.Invalidate(ctx))

	page, err = cache.GetListings(ctx, "buy")
	require.NoError(t, err)
	assert.False(t, page.Hit)
	assert.Equal(t, "listings:1:buy", page.Token)

	require.NoError(t, cache.SetListings(ctx, page.Token, nil))
	page, err = cache.GetListings(ctx, "buy")
	require.NoError(t, err)
	assert.True(t, page.Hit)
}

func TestListingCacheDropsPageReadBeforeInvalidate(t *testing.T) {
	ctx := context.Background()
	kv := newFakeRedis()
	cache, err := newListingCache(kv, "listings", time.Minute)
	require.NoError(t, err)

	// Запрос промахнулся и пошел в БД, в это время объявление изменили.
	stale, err := cache.GetListings(ctx, "buy")
	require.NoError(t, err)
	require.False(t, stale.Hit)
	require.NoError(t, cache.Invalidate(ctx))

	require.NoError(t, cache.SetListings(ctx, stale.Token, sampleListings()))

	page, err := cache.GetListings(ctx, "buy")
	require.NoError(t, err)
	assert.False(t, page.Hit)
	assert.Empty(t, page.Items)
	_, ok := kv.entry("listings:1:buy")
	assert.False(t, ok)
}

func TestListingCacheSkipsWriteWithoutToken(t *testing.T) {
	ctx := context.Background()
	kv := newFakeRedis()
	cache, err := newListingCache(kv, "listings", time.Minute)
	require.NoError(t, err)

	require.NoError(t, cache.SetListings(ctx, "", sampleListings()))
	assert.Empty(t, kv.data)
}

func TestListingCacheReportsBackendErrors(t *testing.T) {
	ctx := context.Background()
	kv := newFakeRedis()
	kv.err = errRedisDown
	cache, err := newListingCache(kv, "listings", time.Minute)
	require.NoError(t, err)

	page, err := cache.GetListings(ctx, "buy")
	assert.ErrorIs(t, err, errRedisDown)
	assert.False(t, page.Hit)
	assert.Empty(t, page.Token)
	assert.ErrorIs(t, cache.SetListings(ctx, "listings:0:buy", sampleListings()), errRedisDown)
	assert.ErrorIs(t, cache.Invalidate(ctx), errRedisDown)
}

func TestListingCacheRejectsCorruptedPayload(t *testing.T) {
	ctx := context.Background()
	kv := newFakeRedis()
	kv.data["listings:0:buy"] = fakeEntry{value: "{not json"}
	cache, err := newListingCache(kv, "listings", time.Minute)
	require.NoError(t, err)

	page, err := cache.GetListings(ctx, "buy")
	assert.Error(t, err)
	assert.False(t, page.Hit)
	assert.Empty(t, page.Token)
}

func TestNoopListingCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	var cache NoopListingCache
	require.NoError(t, cache.SetListings(ctx, "listings:0:buy", sampleListings()))
	page, err := cache.GetListings(ctx, "buy")
	require.NoError(t, err)
	assert.False(t, page.Hit)
	assert.Empty(t, page.Token)
	assert.NoError(t, cache.Invalidate(ctx))
}
