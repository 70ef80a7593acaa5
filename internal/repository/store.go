package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Serai-Stays/service-reservation/internal/domain/store"
)

// GormStore bundles the GORM repositories and runs multi-repository units of
// work inside one database transaction.
type GormStore struct {
	db    *gorm.DB
	repos store.Repositories
}

// NewGormStore creates a store over the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:    db,
		repos: buildRepositories(db),
	}
}

// Repos returns repositories bound to the shared connection pool.
func (s *GormStore) Repos() store.Repositories {
	return s.repos
}

// Transaction runs fn with repositories bound to a single database
// transaction. A non-nil error from fn rolls the transaction back.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx store.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepositories(tx))
	})
}

func buildRepositories(db *gorm.DB) store.Repositories {
	return store.Repositories{
		Accommodations: NewGormAccommodationRepository(db),
		Rooms:          NewGormRoomRepository(db),
		Inventory:      NewGormInventoryRepository(db),
		Bookings:       NewGormBookingRepository(db),
		Payments:       NewGormPaymentRepository(db),
		Notifications:  NewGormNotificationRepository(db),
		Audit:          NewGormAuditRepository(db),
	}
}
