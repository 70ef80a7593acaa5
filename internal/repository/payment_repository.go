package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/Serai-Stays/service-reservation/internal/domain/payment"
)

// PaymentModel is the GORM model for the payments table. Refund rows point at
// the charge they reverse via OriginalPaymentID.
type PaymentModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	Provider          string     `gorm:"not null;size:20;uniqueIndex:idx_payments_provider_ref"`
	ProviderReference string     `gorm:"size:200;uniqueIndex:idx_payments_provider_ref,where:provider_reference <> ''"`
	Status            string     `gorm:"not null;size:20;index"`
	AmountCents       int64      `gorm:"not null"`
	Currency          string     `gorm:"not null;size:3;default:'MYR'"`
	OriginalPaymentID *uuid.UUID `gorm:"type:uuid"`
	FailureReason     string     `gorm:"size:500"`
	PaidAt            *time.Time `gorm:""`
	Version           int64      `gorm:"not null;default:1"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

// TableName specifies the table name for GORM.
func (PaymentModel) TableName() string {
	return "payments"
}

// GormPaymentRepository implements payment.PaymentRepository using GORM.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GORM-backed payment repository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID retrieves a payment by its ID.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", id.String())
		}
		return nil, err
	}
	return toDomainPayment(&model), nil
}

// FindByBookingID retrieves all payment rows for a booking, newest first.
func (r *GormPaymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*payment.Payment, error) {
	var models []PaymentModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	payments := make([]*payment.Payment, len(models))
	for i := range models {
		payments[i] = toDomainPayment(&models[i])
	}
	return payments, nil
}

// FindByProviderReference locates the payment a vendor webhook refers to.
func (r *GormPaymentRepository) FindByProviderReference(ctx context.Context, provider payment.Provider, reference string) (*payment.Payment, error) {
	var model PaymentModel
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_reference = ?", provider.String(), reference).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", reference)
		}
		return nil, err
	}
	return toDomainPayment(&model), nil
}

// FindCompletedByBookingID retrieves the completed charge for a booking.
// Refund rows are excluded so the charge can be located even after a refund
// row was written.
func (r *GormPaymentRepository) FindCompletedByBookingID(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	var model PaymentModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status = ? AND original_payment_id IS NULL", bookingID, payment.StatusCompleted.String()).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", bookingID.String())
		}
		return nil, err
	}
	return toDomainPayment(&model), nil
}

// Save persists a new payment.
func (r *GormPaymentRepository) Save(ctx context.Context, pay *payment.Payment) error {
	model := toPaymentModel(pay)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update persists changes to an existing payment using optimistic locking.
func (r *GormPaymentRepository) Update(ctx context.Context, pay *payment.Payment) error {
	model := toPaymentModel(pay)
	expectedVersion := pay.Version() - 1

	result := r.db.WithContext(ctx).Model(&PaymentModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"provider_reference": model.ProviderReference,
			"status":             model.Status,
			"failure_reason":     model.FailureReason,
			"paid_at":            model.PaidAt,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("payment was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toPaymentModel(pay *payment.Payment) *PaymentModel {
	return &PaymentModel{
		ID:                pay.ID(),
		BookingID:         pay.BookingID(),
		Provider:          pay.Provider().String(),
		ProviderReference: pay.ProviderReference(),
		Status:            pay.Status().String(),
		AmountCents:       pay.AmountCents(),
		Currency:          pay.Currency(),
		OriginalPaymentID: pay.OriginalPaymentID(),
		FailureReason:     pay.FailureReason(),
		PaidAt:            pay.PaidAt(),
		Version:           pay.Version(),
		CreatedAt:         pay.CreatedAt(),
		UpdatedAt:         pay.UpdatedAt(),
	}
}

func toDomainPayment(model *PaymentModel) *payment.Payment {
	return payment.ReconstructPayment(
		model.ID,
		model.BookingID,
		payment.Provider(model.Provider),
		model.ProviderReference,
		payment.PaymentStatus(model.Status),
		model.AmountCents,
		model.Currency,
		model.OriginalPaymentID,
		model.FailureReason,
		model.PaidAt,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
