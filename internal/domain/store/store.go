package store

import (
	"context"

	"github.com/Serai-Stays/service-reservation/internal/domain/accommodation"
	"github.com/Serai-Stays/service-reservation/internal/domain/audit"
	"github.com/Serai-Stays/service-reservation/internal/domain/availability"
	"github.com/Serai-Stays/service-reservation/internal/domain/booking"
	"github.com/Serai-Stays/service-reservation/internal/domain/notification"
	"github.com/Serai-Stays/service-reservation/internal/domain/payment"
)

// Repositories bundles the repository contracts that participate in the
// booking workflows. A bundle is bound either to the store's auto-commit
// connection or to one transaction.
type Repositories struct {
	Accommodations accommodation.AccommodationRepository
	Rooms          accommodation.RoomRepository
	Inventory      availability.InventoryRepository
	Bookings       booking.BookingRepository
	Payments       payment.PaymentRepository
	Notifications  notification.NotificationRepository
	Audit          audit.AuditRepository
}

// Store hands out repository bundles and executes functions inside a single
// database transaction.
type Store interface {
	// Repos returns the auto-commit repository bundle.
	Repos() Repositories

	// Transaction runs fn with a bundle bound to one transaction. An error
	// from fn rolls every write back and is returned unchanged; a nil
	// return commits.
	Transaction(ctx context.Context, fn func(tx Repositories) error) error
}
