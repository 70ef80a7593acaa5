package application_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/accommodation"
	"github.com/Serai-Stays/service-reservation/internal/domain/audit"
	"github.com/Serai-Stays/service-reservation/internal/domain/availability"
	"github.com/Serai-Stays/service-reservation/internal/domain/booking"
	"github.com/Serai-Stays/service-reservation/internal/domain/notification"
	"github.com/Serai-Stays/service-reservation/internal/domain/payment"
	"github.com/Serai-Stays/service-reservation/internal/domain/store"
	"github.com/Serai-Stays/service-reservation/internal/gateway"
	"github.com/Serai-Stays/service-reservation/internal/kafka"
)

// memStore is an in-memory store.Store. Find returns clones and Save/Update
// stores clones, so aggregates held by callers never alias stored state; a
// transaction snapshots the maps up front and restores them when fn fails.
// Concurrent transactions are not isolated from each other; tests that run
// transactions concurrently serialize them through the service's lock.
type memStore struct {
	mu             sync.Mutex
	accommodations map[uuid.UUID]*accommodation.Accommodation
	rooms          map[uuid.UUID]*accommodation.Room
	inventory      map[invKey]invRow
	bookings       map[uuid.UUID]*booking.Booking
	payments       map[uuid.UUID]*payment.Payment
	notifications  map[uuid.UUID]*notification.Notification
	audits         []*audit.Entry
}

// invKey identifies one room-night. Dates are normalized to UTC midnight so
// equal nights compare equal as map keys.
type invKey struct {
	roomID uuid.UUID
	date   time.Time
}

type invRow struct {
	total     int
	available int
}

func newMemStore() *memStore {
	return &memStore{
		accommodations: make(map[uuid.UUID]*accommodation.Accommodation),
		rooms:          make(map[uuid.UUID]*accommodation.Room),
		inventory:      make(map[invKey]invRow),
		bookings:       make(map[uuid.UUID]*booking.Booking),
		payments:       make(map[uuid.UUID]*payment.Payment),
		notifications:  make(map[uuid.UUID]*notification.Notification),
	}
}

var _ store.Store = (*memStore)(nil)

func (s *memStore) Repos() store.Repositories {
	return store.Repositories{
		Accommodations: &memAccommodationRepo{s: s},
		Rooms:          &memRoomRepo{s: s},
		Inventory:      &memInventoryRepo{s: s},
		Bookings:       &memBookingRepo{s: s},
		Payments:       &memPaymentRepo{s: s},
		Notifications:  &memNotificationRepo{s: s},
		Audit:          &memAuditRepo{s: s},
	}
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx store.Repositories) error) error {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.restoreLocked(snapshot)
		s.mu.Unlock()
		return err
	}
	return nil
}

type memSnapshot struct {
	accommodations map[uuid.UUID]*accommodation.Accommodation
	rooms          map[uuid.UUID]*accommodation.Room
	inventory      map[invKey]invRow
	bookings       map[uuid.UUID]*booking.Booking
	payments       map[uuid.UUID]*payment.Payment
	notifications  map[uuid.UUID]*notification.Notification
	audits         []*audit.Entry
}

// snapshotLocked copies the map headers only. Stored values are never mutated
// in place (writes always replace the entry with a fresh clone), so sharing
// them between the live maps and the snapshot is safe.
func (s *memStore) snapshotLocked() memSnapshot {
	snap := memSnapshot{
		accommodations: make(map[uuid.UUID]*accommodation.Accommodation, len(s.accommodations)),
		rooms:          make(map[uuid.UUID]*accommodation.Room, len(s.rooms)),
		inventory:      make(map[invKey]invRow, len(s.inventory)),
		bookings:       make(map[uuid.UUID]*booking.Booking, len(s.bookings)),
		payments:       make(map[uuid.UUID]*payment.Payment, len(s.payments)),
		notifications:  make(map[uuid.UUID]*notification.Notification, len(s.notifications)),
		audits:         append([]*audit.Entry(nil), s.audits...),
	}
	for k, v := range s.accommodations {
		snap.accommodations[k] = v
	}
	for k, v := range s.rooms {
		snap.rooms[k] = v
	}
	for k, v := range s.inventory {
		snap.inventory[k] = v
	}
	for k, v := range s.bookings {
		snap.bookings[k] = v
	}
	for k, v := range s.payments {
		snap.payments[k] = v
	}
	for k, v := range s.notifications {
		snap.notifications[k] = v
	}
	return snap
}

func (s *memStore) restoreLocked(snap memSnapshot) {
	s.accommodations = snap.accommodations
	s.rooms = snap.rooms
	s.inventory = snap.inventory
	s.bookings = snap.bookings
	s.payments = snap.payments
	s.notifications = snap.notifications
	s.audits = snap.audits
}

// --- Clone helpers ---

func cloneAccommodation(a *accommodation.Accommodation) *accommodation.Accommodation {
	return accommodation.Reconstruct(
		a.ID(), a.Name(), a.Description(), a.AddressLine(), a.City(), a.State(),
		a.Postcode(), a.Country(), a.StarRating(), a.IsActive(), a.Version(),
		a.CreatedAt(), a.UpdatedAt(),
	)
}

func cloneRoom(r *accommodation.Room) *accommodation.Room {
	return accommodation.ReconstructRoom(
		r.ID(), r.AccommodationID(), r.Name(), r.Description(), r.Capacity(),
		r.PricePerNightCents(), r.DefaultUnits(), r.IsActive(), r.Version(),
		r.CreatedAt(), r.UpdatedAt(),
	)
}

func cloneBooking(bk *booking.Booking) *booking.Booking {
	items := make([]*booking.BookingItem, len(bk.Items()))
	for i, item := range bk.Items() {
		items[i] = booking.ReconstructBookingItem(
			item.ID(), item.BookingID(), item.RoomID(), item.Quantity(),
			item.UnitPriceCents(), item.TotalPriceCents(), item.CreatedAt(),
		)
	}
	return booking.ReconstructBooking(
		bk.ID(), bk.BookingNumber(), bk.UserID(), bk.AccommodationID(),
		bk.Status(), bk.PaymentState(), bk.Stay(), bk.GuestCount(), items,
		bk.TotalAmountCents(), bk.Currency(), bk.Notes(),
		bk.CheckedInAt(), bk.CheckedOutAt(), bk.CancelledAt(), bk.CancelReason(),
		bk.Version(), bk.CreatedAt(), bk.UpdatedAt(),
	)
}

func clonePayment(p *payment.Payment) *payment.Payment {
	return payment.ReconstructPayment(
		p.ID(), p.BookingID(), p.Provider(), p.ProviderReference(), p.Status(),
		p.AmountCents(), p.Currency(), p.OriginalPaymentID(), p.FailureReason(),
		p.PaidAt(), p.Version(), p.CreatedAt(), p.UpdatedAt(),
	)
}

func cloneNotification(n *notification.Notification) *notification.Notification {
	return notification.ReconstructNotification(
		n.ID(), n.UserID(), n.BookingID(), n.NotificationType(), n.Message(),
		n.Read(), n.CreatedAt(),
	)
}

// --- Accommodation repository ---

type memAccommodationRepo struct {
	s *memStore
}

func (r *memAccommodationRepo) FindByID(ctx context.Context, id uuid.UUID) (*accommodation.Accommodation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accommodations[id]
	if !ok {
		return nil, domain.NewNotFoundError("Accommodation", id.String())
	}
	return cloneAccommodation(a), nil
}

func (r *memAccommodationRepo) Search(ctx context.Context, filter accommodation.SearchFilter, page, limit int) ([]*accommodation.Accommodation, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matches []*accommodation.Accommodation
	for _, a := range r.s.accommodations {
		if filter.City != "" && !strings.EqualFold(a.City(), filter.City) {
			continue
		}
		if filter.Country != "" && !strings.EqualFold(a.Country(), filter.Country) {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(a.Name()), strings.ToLower(filter.Name)) {
			continue
		}
		if a.StarRating() < filter.MinStars {
			continue
		}
		if filter.ActiveOnly && !a.IsActive() {
			continue
		}
		matches = append(matches, cloneAccommodation(a))
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name() < matches[j].Name() })

	total := int64(len(matches))
	return pageSlice(matches, page, limit), total, nil
}

func (r *memAccommodationRepo) Save(ctx context.Context, a *accommodation.Accommodation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.accommodations[a.ID()] = cloneAccommodation(a)
	return nil
}

func (r *memAccommodationRepo) Update(ctx context.Context, a *accommodation.Accommodation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.accommodations[a.ID()]
	if !ok {
		return domain.NewNotFoundError("Accommodation", a.ID().String())
	}
	if current.Version() != a.Version()-1 {
		return domain.NewConflictError("accommodation was modified by another transaction")
	}
	r.s.accommodations[a.ID()] = cloneAccommodation(a)
	return nil
}

// --- Room repository ---

type memRoomRepo struct {
	s *memStore
}

func (r *memRoomRepo) FindByID(ctx context.Context, id uuid.UUID) (*accommodation.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, domain.NewNotFoundError("Room", id.String())
	}
	return cloneRoom(room), nil
}

func (r *memRoomRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*accommodation.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rooms []*accommodation.Room
	for _, id := range ids {
		if room, ok := r.s.rooms[id]; ok {
			rooms = append(rooms, cloneRoom(room))
		}
	}
	return rooms, nil
}

func (r *memRoomRepo) FindByAccommodationID(ctx context.Context, accommodationID uuid.UUID, activeOnly bool) ([]*accommodation.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rooms []*accommodation.Room
	for _, room := range r.s.rooms {
		if room.AccommodationID() != accommodationID {
			continue
		}
		if activeOnly && !room.IsActive() {
			continue
		}
		rooms = append(rooms, cloneRoom(room))
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name() < rooms[j].Name() })
	return rooms, nil
}

func (r *memRoomRepo) Save(ctx context.Context, room *accommodation.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rooms[room.ID()] = cloneRoom(room)
	return nil
}

func (r *memRoomRepo) Update(ctx context.Context, room *accommodation.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.rooms[room.ID()]
	if !ok {
		return domain.NewNotFoundError("Room", room.ID().String())
	}
	if current.Version() != room.Version()-1 {
		return domain.NewConflictError("room was modified by another transaction")
	}
	r.s.rooms[room.ID()] = cloneRoom(room)
	return nil
}

// --- Inventory repository ---

type memInventoryRepo struct {
	s *memStore
}

func (r *memInventoryRepo) OverrideUnits(ctx context.Context, roomIDs []uuid.UUID, stay booking.StayRange) (map[availability.RoomDate]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	units := make(map[availability.RoomDate]int)
	for _, roomID := range roomIDs {
		for _, date := range stay.Dates() {
			if row, ok := r.s.inventory[invKey{roomID: roomID, date: date}]; ok {
				units[availability.RoomDate{RoomID: roomID, Date: date}] = row.available
			}
		}
	}
	return units, nil
}

func (r *memInventoryRepo) ReservedUnits(ctx context.Context, roomIDs []uuid.UUID, stay booking.StayRange) (map[availability.RoomDate]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wanted := make(map[uuid.UUID]bool, len(roomIDs))
	for _, id := range roomIDs {
		wanted[id] = true
	}

	reserved := make(map[availability.RoomDate]int)
	for _, bk := range r.s.bookings {
		if bk.Status() == booking.StatusCancelled {
			continue
		}
		if !bk.Stay().CheckIn().Before(stay.CheckOut()) || !bk.Stay().CheckOut().After(stay.CheckIn()) {
			continue
		}
		from := bk.Stay().CheckIn()
		if from.Before(stay.CheckIn()) {
			from = stay.CheckIn()
		}
		to := bk.Stay().CheckOut()
		if to.After(stay.CheckOut()) {
			to = stay.CheckOut()
		}
		for _, item := range bk.Items() {
			if !wanted[item.RoomID()] {
				continue
			}
			for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
				reserved[availability.RoomDate{RoomID: item.RoomID(), Date: d}] += item.Quantity()
			}
		}
	}
	return reserved, nil
}

func (r *memInventoryRepo) Reserve(ctx context.Context, stock availability.RoomStock, stay booking.StayRange, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, date := range stay.Dates() {
		key := invKey{roomID: stock.RoomID, date: date}
		if row, ok := r.s.inventory[key]; ok {
			if row.available < quantity {
				return domain.NewInsufficientAvailabilityError(stock.RoomID.String(), quantity, row.available)
			}
			row.available -= quantity
			r.s.inventory[key] = row
			continue
		}
		if stock.DefaultUnits < quantity {
			return domain.NewInsufficientAvailabilityError(stock.RoomID.String(), quantity, stock.DefaultUnits)
		}
		r.s.inventory[key] = invRow{total: stock.DefaultUnits, available: stock.DefaultUnits - quantity}
	}
	return nil
}

func (r *memInventoryRepo) Release(ctx context.Context, roomID uuid.UUID, stay booking.StayRange, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, date := range stay.Dates() {
		key := invKey{roomID: roomID, date: date}
		row, ok := r.s.inventory[key]
		if !ok {
			continue
		}
		row.available += quantity
		r.s.inventory[key] = row
	}
	return nil
}

func (r *memInventoryRepo) SetOverride(ctx context.Context, stock availability.RoomStock, date time.Time, totalUnits int) error {
	if totalUnits < 0 {
		return domain.NewValidationError("total units must not be negative")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := invKey{roomID: stock.RoomID, date: booking.NormalizeDate(date)}
	if row, ok := r.s.inventory[key]; ok {
		reserved := row.total - row.available
		available := totalUnits - reserved
		if available < 0 {
			available = 0
		}
		r.s.inventory[key] = invRow{total: totalUnits, available: available}
		return nil
	}
	r.s.inventory[key] = invRow{total: totalUnits, available: totalUnits}
	return nil
}

// availableOn reads a room-night's bookable count the way a test asserts it:
// the override row when one exists, the given default otherwise.
func (s *memStore) availableOn(roomID uuid.UUID, date time.Time, defaultUnits int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.inventory[invKey{roomID: roomID, date: booking.NormalizeDate(date)}]; ok {
		return row.available
	}
	return defaultUnits
}

// --- Booking repository ---

type memBookingRepo struct {
	s *memStore
}

func (r *memBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bk, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return cloneBooking(bk), nil
}

func (r *memBookingRepo) FindByNumber(ctx context.Context, number string) (*booking.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, bk := range r.s.bookings {
		if bk.BookingNumber() == number {
			return cloneBooking(bk), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", number)
}

func (r *memBookingRepo) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*booking.Booking, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matches []*booking.Booking
	for _, bk := range r.s.bookings {
		if bk.UserID() == userID {
			matches = append(matches, cloneBooking(bk))
		}
	}
	sortBookingsNewestFirst(matches)
	return pageSlice(matches, page, limit), int64(len(matches)), nil
}

func (r *memBookingRepo) ListAll(ctx context.Context, filter booking.ListFilter, page, limit int) ([]*booking.Booking, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matches []*booking.Booking
	for _, bk := range r.s.bookings {
		if filter.Status != "" && bk.Status() != filter.Status {
			continue
		}
		if filter.AccommodationID != uuid.Nil && bk.AccommodationID() != filter.AccommodationID {
			continue
		}
		if filter.UserID != uuid.Nil && bk.UserID() != filter.UserID {
			continue
		}
		matches = append(matches, cloneBooking(bk))
	}
	sortBookingsNewestFirst(matches)
	return pageSlice(matches, page, limit), int64(len(matches)), nil
}

func (r *memBookingRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.s.bookings {
		counts[bk.Status().String()]++
	}
	return counts, nil
}

func (r *memBookingRepo) Save(ctx context.Context, bk *booking.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func (r *memBookingRepo) Update(ctx context.Context, bk *booking.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if current.Version() != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.s.bookings[bk.ID()] = cloneBooking(bk)
	return nil
}

func sortBookingsNewestFirst(bookings []*booking.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt().After(bookings[j].CreatedAt())
	})
}

// --- Payment repository ---

type memPaymentRepo struct {
	s *memStore
}

func (r *memPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, domain.NewNotFoundError("Payment", id.String())
	}
	return clonePayment(p), nil
}

func (r *memPaymentRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matches []*payment.Payment
	for _, p := range r.s.payments {
		if p.BookingID() == bookingID {
			matches = append(matches, clonePayment(p))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt().After(matches[j].CreatedAt())
	})
	return matches, nil
}

func (r *memPaymentRepo) FindByProviderReference(ctx context.Context, provider payment.Provider, reference string) (*payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.Provider() == provider && p.ProviderReference() == reference && reference != "" {
			return clonePayment(p), nil
		}
	}
	return nil, domain.NewNotFoundError("Payment", reference)
}

func (r *memPaymentRepo) FindCompletedByBookingID(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var newest *payment.Payment
	for _, p := range r.s.payments {
		if p.BookingID() != bookingID || p.Status() != payment.StatusCompleted || p.IsRefund() {
			continue
		}
		if newest == nil || p.CreatedAt().After(newest.CreatedAt()) {
			newest = p
		}
	}
	if newest == nil {
		return nil, domain.NewNotFoundError("Payment", bookingID.String())
	}
	return clonePayment(newest), nil
}

func (r *memPaymentRepo) Save(ctx context.Context, p *payment.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.payments[p.ID()] = clonePayment(p)
	return nil
}

func (r *memPaymentRepo) Update(ctx context.Context, p *payment.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.payments[p.ID()]
	if !ok {
		return domain.NewNotFoundError("Payment", p.ID().String())
	}
	if current.Version() != p.Version()-1 {
		return domain.NewConflictError("payment was modified by another transaction")
	}
	r.s.payments[p.ID()] = clonePayment(p)
	return nil
}

// --- Notification repository ---

type memNotificationRepo struct {
	s *memStore
}

func (r *memNotificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, domain.NewNotFoundError("Notification", id.String())
	}
	return cloneNotification(n), nil
}

func (r *memNotificationRepo) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*notification.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matches []*notification.Notification
	for _, n := range r.s.notifications {
		if n.UserID() == userID {
			matches = append(matches, cloneNotification(n))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt().After(matches[j].CreatedAt())
	})
	return pageSlice(matches, page, limit), int64(len(matches)), nil
}

func (r *memNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.notifications {
		if n.UserID() == userID && !n.Read() {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) Save(ctx context.Context, n *notification.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notifications[n.ID()] = cloneNotification(n)
	return nil
}

func (r *memNotificationRepo) Update(ctx context.Context, n *notification.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notifications[n.ID()]; !ok {
		return domain.NewNotFoundError("Notification", n.ID().String())
	}
	r.s.notifications[n.ID()] = cloneNotification(n)
	return nil
}

// --- Audit repository ---

type memAuditRepo struct {
	s *memStore
}

func (r *memAuditRepo) Save(ctx context.Context, entry *audit.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, entry)
	return nil
}

func (r *memAuditRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*audit.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matches []*audit.Entry
	for _, entry := range r.s.audits {
		if entry.BookingID() == bookingID {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

func pageSlice[T any](items []T, page, limit int) []T {
	offset := (page - 1) * limit
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// --- Recording fakes ---

type notifyCall struct {
	userID    uuid.UUID
	bookingID *uuid.UUID
	kind      notification.Type
	message   string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (f *fakeNotifier) Notify(ctx context.Context, userID uuid.UUID, bookingID *uuid.UUID, notificationType notification.Type, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{
		userID:    userID,
		bookingID: bookingID,
		kind:      notificationType,
		message:   message,
	})
}

func (f *fakeNotifier) Calls() []notifyCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifyCall(nil), f.calls...)
}

type publishedEvent struct {
	topic string
	event kafka.CloudEvent
}

type fakeProducer struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeProducer) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{topic: topic, event: event})
	return nil
}

func (f *fakeProducer) Events() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedEvent(nil), f.events...)
}

func (f *fakeProducer) eventsOfType(eventType string) []publishedEvent {
	var matches []publishedEvent
	for _, evt := range f.Events() {
		if evt.event.Type == eventType {
			matches = append(matches, evt)
		}
	}
	return matches
}

// fakeGateway is a scriptable payment vendor adapter.
type fakeGateway struct {
	mu        sync.Mutex
	provider  payment.Provider
	chargeRef string
	redirect  string
	refundRef string
	chargeErr error
	refundErr error
	charges   []gateway.ChargeRequest
	refunds   []gateway.RefundRequest
}

func (g *fakeGateway) Provider() payment.Provider {
	return g.provider
}

func (g *fakeGateway) CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	g.mu.Lock()
	g.charges = append(g.charges, req)
	g.mu.Unlock()
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return &gateway.ChargeResult{ProviderReference: g.chargeRef, RedirectURL: g.redirect}, nil
}

func (g *fakeGateway) Refund(ctx context.Context, req gateway.RefundRequest) (*gateway.RefundResult, error) {
	g.mu.Lock()
	g.refunds = append(g.refunds, req)
	g.mu.Unlock()
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	return &gateway.RefundResult{ProviderReference: g.refundRef}, nil
}
