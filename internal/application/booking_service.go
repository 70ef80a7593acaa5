package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/cache"
	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/accommodation"
	"github.com/Serai-Stays/service-reservation/internal/domain/audit"
	"github.com/Serai-Stays/service-reservation/internal/domain/availability"
	"github.com/Serai-Stays/service-reservation/internal/domain/booking"
	"github.com/Serai-Stays/service-reservation/internal/domain/notification"
	"github.com/Serai-Stays/service-reservation/internal/domain/payment"
	"github.com/Serai-Stays/service-reservation/internal/domain/store"
	"github.com/Serai-Stays/service-reservation/internal/events"
	"github.com/Serai-Stays/service-reservation/internal/lock"
)

// lockWaitTimeout bounds how long a creation request waits for the
// per-(accommodation, check-in-date) lock before failing with LockTimeout.
const lockWaitTimeout = 15 * time.Second

// BookingItemRequest is one room line of a creation request.
type BookingItemRequest struct {
	RoomID   uuid.UUID `json:"room_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	AccommodationID uuid.UUID            `json:"accommodation_id" binding:"required"`
	CheckInDate     string               `json:"check_in_date" binding:"required"`
	CheckOutDate    string               `json:"check_out_date" binding:"required"`
	GuestCount      int                  `json:"guest_count" binding:"required,min=1"`
	Items           []BookingItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes           string               `json:"notes"`
}

// UpdateBookingRequest holds the fields a guest may edit while the booking is
// still pending. Dates are fixed after creation; changing them means
// cancelling and rebooking.
type UpdateBookingRequest struct {
	GuestCount int    `json:"guest_count" binding:"required,min=1"`
	Notes      string `json:"notes"`
}

// CancelBookingRequest carries the optional cancellation reason.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// UpdateStatusRequest is the admin transition request.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// BookingItemDTO is the response representation of a booking line.
type BookingItemDTO struct {
	ID              uuid.UUID `json:"id"`
	RoomID          uuid.UUID `json:"room_id"`
	Quantity        int       `json:"quantity"`
	UnitPriceCents  int64     `json:"unit_price_cents"`
	TotalPriceCents int64     `json:"total_price_cents"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID               uuid.UUID        `json:"id"`
	BookingNumber    string           `json:"booking_number"`
	UserID           uuid.UUID        `json:"user_id"`
	AccommodationID  uuid.UUID        `json:"accommodation_id"`
	Status           string           `json:"status"`
	PaymentState     string           `json:"payment_state"`
	CheckInDate      string           `json:"check_in_date"`
	CheckOutDate     string           `json:"check_out_date"`
	Nights           int              `json:"nights"`
	GuestCount       int              `json:"guest_count"`
	Items            []BookingItemDTO `json:"items"`
	TotalAmountCents int64            `json:"total_amount_cents"`
	Currency         string           `json:"currency"`
	Notes            string           `json:"notes,omitempty"`
	CheckedInAt      *time.Time       `json:"checked_in_at,omitempty"`
	CheckedOutAt     *time.Time       `json:"checked_out_at,omitempty"`
	CancelledAt      *time.Time       `json:"cancelled_at,omitempty"`
	CancelReason     string           `json:"cancel_reason,omitempty"`
	Version          int64            `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// AuditEntryDTO is the response representation of one audit record.
type AuditEntryDTO struct {
	ID         uuid.UUID `json:"id"`
	ActorID    uuid.UUID `json:"actor_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Action     string    `json:"action"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	store    store.Store
	pricing  booking.PricingStrategy
	locker   lock.Locker
	cache    cache.Cache
	notifier notification.Notifier
	producer EventPublisher
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	st store.Store,
	pricing booking.PricingStrategy,
	locker lock.Locker,
	ch cache.Cache,
	notifier notification.Notifier,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		store:    st,
		pricing:  pricing,
		locker:   locker,
		cache:    ch,
		notifier: notifier,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking creates a pending booking for the given user. Creation
// attempts for the same accommodation and check-in date are serialized by a
// keyed lock; the availability check, the booking insert and the inventory
// decrements then run inside one store transaction so either everything lands
// or nothing does.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	stay, err := booking.ParseStayRange(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	roomIDs := make([]uuid.UUID, 0, len(req.Items))
	qtyByRoom := make(map[uuid.UUID]int, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, domain.NewValidationError("item quantity must be positive")
		}
		if _, dup := qtyByRoom[item.RoomID]; dup {
			return nil, domain.NewValidationError("duplicate room in booking items")
		}
		qtyByRoom[item.RoomID] = item.Quantity
		roomIDs = append(roomIDs, item.RoomID)
	}

	var bk *booking.Booking
	lockKey := bookingLockKey(req.AccommodationID, stay)

	err = s.locker.WithLock(ctx, lockKey, lockWaitTimeout, func() error {
		return s.store.Transaction(ctx, func(tx store.Repositories) error {
			acc, err := tx.Accommodations.FindByID(ctx, req.AccommodationID)
			if err != nil {
				return err
			}
			if !acc.IsActive() {
				return domain.NewNotFoundError("Accommodation", req.AccommodationID.String())
			}

			rooms, err := tx.Rooms.FindByIDs(ctx, roomIDs)
			if err != nil {
				return err
			}
			roomByID := make(map[uuid.UUID]*accommodation.Room, len(rooms))
			for _, room := range rooms {
				roomByID[room.ID()] = room
			}

			requests := make([]availability.RoomRequest, 0, len(roomIDs))
			lines := make([]booking.PricingLine, 0, len(roomIDs))
			for _, roomID := range roomIDs {
				room, ok := roomByID[roomID]
				if !ok || !room.BelongsTo(req.AccommodationID) || !room.IsActive() {
					return domain.NewNotFoundError("Room", roomID.String())
				}
				requests = append(requests, availability.RoomRequest{
					Stock:    availability.RoomStock{RoomID: room.ID(), DefaultUnits: room.DefaultUnits()},
					Quantity: qtyByRoom[roomID],
				})
				lines = append(lines, booking.PricingLine{
					UnitPriceCents: room.PricePerNightCents(),
					Quantity:       qtyByRoom[roomID],
				})
			}

			engine := availability.NewEngine(tx.Inventory)
			if err := engine.EnsureAvailable(ctx, requests, stay); err != nil {
				return err
			}

			totalCents, err := s.pricing.Calculate(booking.PricingParams{
				Nights: stay.Nights(),
				Lines:  lines,
			})
			if err != nil {
				return err
			}

			items := make([]*booking.BookingItem, 0, len(roomIDs))
			for _, roomID := range roomIDs {
				item, err := booking.NewBookingItem(
					roomID,
					qtyByRoom[roomID],
					roomByID[roomID].PricePerNightCents(),
					stay.Nights(),
				)
				if err != nil {
					return err
				}
				items = append(items, item)
			}

			bk, err = booking.NewBooking(
				userID,
				req.AccommodationID,
				stay,
				req.GuestCount,
				items,
				totalCents,
				domain.CurrencyMYR,
				req.Notes,
			)
			if err != nil {
				return err
			}

			if err := tx.Bookings.Save(ctx, bk); err != nil {
				return fmt.Errorf("failed to save booking: %w", err)
			}

			for _, request := range requests {
				if err := tx.Inventory.Reserve(ctx, request.Stock, stay, request.Quantity); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	bookingID := bk.ID()
	s.notifier.Notify(ctx, userID, &bookingID, notification.TypeBookingCreated,
		fmt.Sprintf("Booking %s created for %s, pending payment", bk.BookingNumber(), stay.String()))
	s.publishBookingCreated(ctx, bk)
	s.invalidateAvailability(ctx, req.AccommodationID)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking. Non-admin callers only see their own.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, requesterID uuid.UUID, admin bool) (*BookingDTO, error) {
	bk, err := s.store.Repos().Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !admin && !bk.IsOwnedBy(requesterID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetUserBookings retrieves paginated bookings for a user, newest first.
func (s *BookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.store.Repos().Bookings.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UpdateBooking applies a guest edit to a pending booking more than 24 hours
// before check-in. Dates cannot change, so no availability or inventory work
// is needed.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID, userID uuid.UUID, req UpdateBookingRequest) (*BookingDTO, error) {
	var bk *booking.Booking
	err := s.store.Transaction(ctx, func(tx store.Repositories) error {
		var err error
		bk, err = tx.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if !bk.IsOwnedBy(userID) {
			return domain.NewForbiddenError("booking does not belong to this user")
		}

		if err := bk.UpdateDetails(req.GuestCount, req.Notes, time.Now().UTC()); err != nil {
			return err
		}

		bk.IncrementVersion()
		if err := tx.Bookings.Update(ctx, bk); err != nil {
			return err
		}

		entry, err := audit.NewEntry(userID, bk.ID(), audit.ActionUpdated, bk.Status().String(), bk.Status().String())
		if err != nil {
			return err
		}
		return tx.Audit.Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels the caller's own booking under the guest cancellation
// policy, restores the reserved inventory and, when a completed payment
// exists, writes a pending refund row for the payment consumer to execute.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID, reason string) (*BookingDTO, error) {
	var bk *booking.Booking
	var refund *payment.Payment
	var fromStatus booking.BookingStatus

	err := s.store.Transaction(ctx, func(tx store.Repositories) error {
		var err error
		bk, err = tx.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if !bk.IsOwnedBy(userID) {
			return domain.NewForbiddenError("booking does not belong to this user")
		}

		fromStatus = bk.Status()
		if err := bk.CancelByUser(time.Now().UTC(), reason); err != nil {
			return err
		}

		original, err := tx.Payments.FindCompletedByBookingID(ctx, bookingID)
		switch {
		case err == nil:
			refund, err = payment.NewRefund(original)
			if err != nil {
				return err
			}
			if err := tx.Payments.Save(ctx, refund); err != nil {
				return err
			}
			bk.MarkRefundPending()
		case domain.CodeOf(err) == domain.CodeNotFound:
			// Nothing was paid, nothing to refund.
		default:
			return err
		}

		bk.IncrementVersion()
		if err := tx.Bookings.Update(ctx, bk); err != nil {
			return err
		}

		if err := restoreInventory(ctx, tx, bk); err != nil {
			return err
		}

		entry, err := audit.NewEntry(userID, bk.ID(), audit.ActionCancelled, fromStatus.String(), bk.Status().String())
		if err != nil {
			return err
		}
		return tx.Audit.Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Booking %s has been cancelled", bk.BookingNumber())
	if refund != nil {
		message = fmt.Sprintf("Booking %s has been cancelled and your refund is being processed", bk.BookingNumber())
	}
	s.notifier.Notify(ctx, bk.UserID(), &bookingID, notification.TypeBookingCancelled, message)

	var refundID *uuid.UUID
	if refund != nil {
		id := refund.ID()
		refundID = &id
	}
	evt := events.BookingCancelledEvent{
		BookingID:  bk.ID(),
		UserID:     bk.UserID(),
		Reason:     reason,
		RefundID:   refundID,
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicBookingEvents, events.BookingCancelled, evt)

	if refund != nil {
		refundEvt := events.RefundRequestedEvent{
			RefundID:          refund.ID(),
			OriginalPaymentID: *refund.OriginalPaymentID(),
			BookingID:         bk.ID(),
			AmountCents:       refund.AmountCents(),
			Currency:          refund.Currency(),
			OccurredAt:        time.Now().UTC(),
		}
		publishEvent(ctx, s.producer, s.logger, events.TopicPaymentEvents, events.PaymentRefundRequested, refundEvt)
	}

	s.invalidateAvailability(ctx, bk.AccommodationID())

	result := toBookingDTO(bk)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// UpdateBookingStatus applies an admin lifecycle transition. Moving into
// cancelled restores the booking's inventory in the same transaction.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID, actorID uuid.UUID, statusValue, reason string) (*BookingDTO, error) {
	target, err := booking.ParseBookingStatus(statusValue)
	if err != nil {
		return nil, err
	}

	var bk *booking.Booking
	var fromStatus booking.BookingStatus

	err = s.store.Transaction(ctx, func(tx store.Repositories) error {
		var err error
		bk, err = tx.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}

		fromStatus = bk.Status()
		if target == booking.StatusCancelled {
			if err := bk.Cancel(reason); err != nil {
				return err
			}
			if err := restoreInventory(ctx, tx, bk); err != nil {
				return err
			}
		} else if err := bk.TransitionTo(target); err != nil {
			return err
		}

		bk.IncrementVersion()
		if err := tx.Bookings.Update(ctx, bk); err != nil {
			return err
		}

		entry, err := audit.NewEntry(actorID, bk.ID(), audit.ActionStatusChanged, fromStatus.String(), bk.Status().String())
		if err != nil {
			return err
		}
		return tx.Audit.Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	notificationType, message := statusNotification(bk)
	s.notifier.Notify(ctx, bk.UserID(), &bookingID, notificationType, message)

	evt := events.BookingStatusChangedEvent{
		BookingID:  bk.ID(),
		FromStatus: fromStatus.String(),
		ToStatus:   bk.Status().String(),
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicBookingEvents, events.BookingStatusChanged, evt)

	if target == booking.StatusCancelled {
		s.invalidateAvailability(ctx, bk.AccommodationID())
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// ListAllBookings returns a paginated, filtered list of bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, filter booking.ListFilter, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.store.Repos().Bookings.ListAll(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.store.Repos().Bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// GetAuditTrail returns the audit entries for a booking, oldest first (admin).
func (s *BookingService) GetAuditTrail(ctx context.Context, bookingID uuid.UUID) ([]AuditEntryDTO, error) {
	repos := s.store.Repos()
	if _, err := repos.Bookings.FindByID(ctx, bookingID); err != nil {
		return nil, err
	}

	entries, err := repos.Audit.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]AuditEntryDTO, len(entries))
	for i, entry := range entries {
		dtos[i] = AuditEntryDTO{
			ID:         entry.ID(),
			ActorID:    entry.ActorID(),
			BookingID:  entry.BookingID(),
			Action:     entry.Action(),
			FromStatus: entry.FromStatus(),
			ToStatus:   entry.ToStatus(),
			CreatedAt:  entry.CreatedAt(),
		}
	}
	return dtos, nil
}

// --- Helpers ---

func bookingLockKey(accommodationID uuid.UUID, stay booking.StayRange) string {
	return fmt.Sprintf("booking:acc:%s:ci:%s", accommodationID, stay.CheckIn().Format(time.DateOnly))
}

// restoreInventory puts a cancelled booking's units back, the exact inverse of
// the decrement applied at creation.
func restoreInventory(ctx context.Context, tx store.Repositories, bk *booking.Booking) error {
	for _, item := range bk.Items() {
		if err := tx.Inventory.Release(ctx, item.RoomID(), bk.Stay(), item.Quantity()); err != nil {
			return err
		}
	}
	return nil
}

func statusNotification(bk *booking.Booking) (notification.Type, string) {
	switch bk.Status() {
	case booking.StatusConfirmed:
		return notification.TypeBookingConfirmed, fmt.Sprintf("Booking %s has been confirmed", bk.BookingNumber())
	case booking.StatusCancelled:
		return notification.TypeBookingCancelled, fmt.Sprintf("Booking %s has been cancelled", bk.BookingNumber())
	default:
		return notification.TypeStatusChanged, fmt.Sprintf("Booking %s is now %s", bk.BookingNumber(), bk.Status())
	}
}

func (s *BookingService) publishBookingCreated(ctx context.Context, bk *booking.Booking) {
	evt := events.BookingCreatedEvent{
		BookingID:        bk.ID(),
		BookingNumber:    bk.BookingNumber(),
		UserID:           bk.UserID(),
		AccommodationID:  bk.AccommodationID(),
		CheckInDate:      bk.Stay().CheckIn().Format(time.DateOnly),
		CheckOutDate:     bk.Stay().CheckOut().Format(time.DateOnly),
		GuestCount:       bk.GuestCount(),
		TotalAmountCents: bk.TotalAmountCents(),
		Currency:         bk.Currency(),
		OccurredAt:       time.Now().UTC(),
	}
	publishEvent(ctx, s.producer, s.logger, events.TopicBookingEvents, events.BookingCreated, evt)
}

func (s *BookingService) invalidateAvailability(ctx context.Context, accommodationID uuid.UUID) {
	if err := s.cache.DelPattern(ctx, availabilityCachePattern(accommodationID)); err != nil {
		s.logger.Warn("failed to invalidate availability cache",
			zap.String("accommodation_id", accommodationID.String()),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *booking.Booking) BookingDTO {
	items := make([]BookingItemDTO, len(bk.Items()))
	for i, item := range bk.Items() {
		items[i] = BookingItemDTO{
			ID:              item.ID(),
			RoomID:          item.RoomID(),
			Quantity:        item.Quantity(),
			UnitPriceCents:  item.UnitPriceCents(),
			TotalPriceCents: item.TotalPriceCents(),
		}
	}

	return BookingDTO{
		ID:               bk.ID(),
		BookingNumber:    bk.BookingNumber(),
		UserID:           bk.UserID(),
		AccommodationID:  bk.AccommodationID(),
		Status:           bk.Status().String(),
		PaymentState:     bk.PaymentState().String(),
		CheckInDate:      bk.Stay().CheckIn().Format(time.DateOnly),
		CheckOutDate:     bk.Stay().CheckOut().Format(time.DateOnly),
		Nights:           bk.Stay().Nights(),
		GuestCount:       bk.GuestCount(),
		Items:            items,
		TotalAmountCents: bk.TotalAmountCents(),
		Currency:         bk.Currency(),
		Notes:            bk.Notes(),
		CheckedInAt:      bk.CheckedInAt(),
		CheckedOutAt:     bk.CheckedOutAt(),
		CancelledAt:      bk.CancelledAt(),
		CancelReason:     bk.CancelReason(),
		Version:          bk.Version(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}
}
