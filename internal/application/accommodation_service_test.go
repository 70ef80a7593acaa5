package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/application"
	"github.com/Serai-Stays/service-reservation/internal/cache"
	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/accommodation"
)

type accommodationFixture struct {
	store *memStore
	cache *cache.MemoryCache
	svc   *application.AccommodationService
}

func newAccommodationFixture(t *testing.T) *accommodationFixture {
	t.Helper()
	st := newMemStore()
	ch := cache.NewMemoryCache()
	return &accommodationFixture{
		store: st,
		cache: ch,
		svc:   application.NewAccommodationService(st, ch, zap.NewNop()),
	}
}

func TestAccommodationService_CreateAccommodation(t *testing.T) {
	fx := newAccommodationFixture(t)
	ctx := context.Background()

	created, err := fx.svc.CreateAccommodation(ctx, application.CreateAccommodationRequest{
		Name:        "Serai Cameron Lodge",
		Description: "Highland retreat",
		AddressLine: "Jalan Besar",
		City:        "Tanah Rata",
		State:       "Pahang",
		Postcode:    "39000",
		Country:     "MY",
		StarRating:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Serai Cameron Lodge", created.Name)
	assert.Equal(t, 3, created.StarRating)
	assert.True(t, created.Active)
	assert.Equal(t, int64(1), created.Version)

	got, err := fx.svc.GetAccommodation(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	_, err = fx.svc.CreateAccommodation(ctx, application.CreateAccommodationRequest{City: "Ipoh", Country: "MY"})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestAccommodationService_SearchAccommodations(t *testing.T) {
	fx := newAccommodationFixture(t)
	ctx := context.Background()

	seed := func(name, city string, stars int, active bool) {
		acc, err := accommodation.NewAccommodation(name, "", "", city, "", "", "MY", stars)
		require.NoError(t, err)
		if !active {
			acc.Deactivate()
		}
		require.NoError(t, fx.store.Repos().Accommodations.Save(ctx, acc))
	}
	seed("Serai Langkawi Resort", "Langkawi", 4, true)
	seed("Anjung Villa", "Langkawi", 5, true)
	seed("Closed Inn", "Langkawi", 4, false)
	seed("City Stay", "Kuala Lumpur", 3, true)

	result, err := fx.svc.SearchAccommodations(ctx, accommodation.SearchFilter{
		City:       "langkawi",
		MinStars:   4,
		ActiveOnly: true,
	}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), result.Total)
	// Ordered by name.
	assert.Equal(t, "Anjung Villa", result.Items[0].Name)
	assert.Equal(t, "Serai Langkawi Resort", result.Items[1].Name)

	byName, err := fx.svc.SearchAccommodations(ctx, accommodation.SearchFilter{Name: "villa"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byName.Total)

	paged, err := fx.svc.SearchAccommodations(ctx, accommodation.SearchFilter{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), paged.Total)
	assert.Len(t, paged.Items, 2)
	assert.Equal(t, 2, paged.TotalPages)
}

func TestAccommodationService_UpdateAccommodation_PartialEdit(t *testing.T) {
	fx := newAccommodationFixture(t)
	ctx := context.Background()
	acc := seedProperty(t, fx.store)

	updated, err := fx.svc.UpdateAccommodation(ctx, acc.ID(), application.UpdateAccommodationRequest{
		Description: "Renovated beachfront resort",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renovated beachfront resort", updated.Description)
	assert.Equal(t, acc.Name(), updated.Name)
	assert.Equal(t, acc.City(), updated.City)
	assert.Equal(t, int64(2), updated.Version)

	_, err = fx.svc.UpdateAccommodation(ctx, acc.ID(), application.UpdateAccommodationRequest{StarRating: 9})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	stored, err := fx.svc.GetAccommodation(ctx, acc.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)

	_, err = fx.svc.UpdateAccommodation(ctx, uuid.New(), application.UpdateAccommodationRequest{Name: "Ghost"})
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
}

func TestAccommodationService_DeactivateAndActivate(t *testing.T) {
	fx := newAccommodationFixture(t)
	ctx := context.Background()
	acc := seedProperty(t, fx.store)

	require.NoError(t, fx.svc.DeactivateAccommodation(ctx, acc.ID()))
	hidden, err := fx.svc.SearchAccommodations(ctx, accommodation.SearchFilter{ActiveOnly: true}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, hidden.Total)

	require.NoError(t, fx.svc.ActivateAccommodation(ctx, acc.ID()))
	visible, err := fx.svc.SearchAccommodations(ctx, accommodation.SearchFilter{ActiveOnly: true}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), visible.Total)

	got, err := fx.svc.GetAccommodation(ctx, acc.ID())
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Equal(t, int64(3), got.Version)

	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(fx.svc.DeactivateAccommodation(ctx, uuid.New())))
}

func TestAccommodationService_CreateRoom(t *testing.T) {
	fx := newAccommodationFixture(t)
	ctx := context.Background()
	acc := seedProperty(t, fx.store)

	created, err := fx.svc.CreateRoom(ctx, acc.ID(), application.CreateRoomRequest{
		Name:               "Deluxe Seaview",
		Description:        "Twin beds, balcony",
		Capacity:           3,
		PricePerNightCents: 28000,
		DefaultUnits:       6,
	})
	require.NoError(t, err)
	assert.Equal(t, acc.ID(), created.AccommodationID)
	assert.Equal(t, int64(28000), created.PricePerNightCents)
	assert.Equal(t, 6, created.DefaultUnits)
	assert.True(t, created.Active)

	_, err = fx.svc.CreateRoom(ctx, uuid.New(), application.CreateRoomRequest{
		Name: "Orphan Room", Capacity: 2, PricePerNightCents: 10000, DefaultUnits: 1,
	})
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))

	_, err = fx.svc.CreateRoom(ctx, acc.ID(), application.CreateRoomRequest{
		Name: "Broken Room", Capacity: 0, PricePerNightCents: 10000, DefaultUnits: 1,
	})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestAccommodationService_ListRooms(t *testing.T) {
	fx := newAccommodationFixture(t)
	ctx := context.Background()
	acc := seedProperty(t, fx.store)
	seedRoomType(t, fx.store, acc.ID(), "Deluxe Seaview", 20000, 2)
	retired := seedRoomType(t, fx.store, acc.ID(), "Old Wing", 15000, 4)
	require.NoError(t, fx.svc.DeactivateRoom(ctx, retired.ID()))

	all, err := fx.svc.ListRooms(ctx, acc.ID(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := fx.svc.ListRooms(ctx, acc.ID(), true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Deluxe Seaview", active[0].Name)

	_, err = fx.svc.ListRooms(ctx, uuid.New(), false)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
}

func TestAccommodationService_UpdateRoom_InvalidatesAvailability(t *testing.T) {
	fx := newAccommodationFixture(t)
	ctx := context.Background()
	acc := seedProperty(t, fx.store)
	room := seedRoomType(t, fx.store, acc.ID(), "Deluxe Seaview", 20000, 2)

	// A cached availability answer for the property must not survive a room
	// edit.
	cacheKey := "availability:acc:" + acc.ID().String() + ":2026-09-10:2026-09-12"
	require.NoError(t, fx.cache.Set(ctx, cacheKey, "stale", time.Minute))

	updated, err := fx.svc.UpdateRoom(ctx, room.ID(), application.UpdateRoomRequest{
		PricePerNightCents: 25000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), updated.PricePerNightCents)
	assert.Equal(t, "Deluxe Seaview", updated.Name)
	assert.Equal(t, int64(2), updated.Version)

	var stale string
	hit, err := fx.cache.Get(ctx, cacheKey, &stale)
	require.NoError(t, err)
	assert.False(t, hit)

	_, err = fx.svc.UpdateRoom(ctx, room.ID(), application.UpdateRoomRequest{Capacity: -1})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestAccommodationService_GetRoom(t *testing.T) {
	fx := newAccommodationFixture(t)
	ctx := context.Background()
	acc := seedProperty(t, fx.store)
	room := seedRoomType(t, fx.store, acc.ID(), "Deluxe Seaview", 20000, 2)

	got, err := fx.svc.GetRoom(ctx, room.ID())
	require.NoError(t, err)
	assert.Equal(t, room.ID(), got.ID)

	_, err = fx.svc.GetRoom(ctx, uuid.New())
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
}
