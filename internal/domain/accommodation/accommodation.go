package accommodation

import (
	"time"

	"github.com/Serai-Stays/service-reservation/internal/domain"
	"github.com/google/uuid"
)

// Accommodation is the aggregate root for a bookable property. Properties are
// never hard-deleted; deactivation hides them from search and new bookings.
type Accommodation struct {
	id          uuid.UUID
	name        string
	description string
	addressLine string
	city        string
	state       string
	postcode    string
	country     string
	starRating  int
	active      bool
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewAccommodation creates a new active accommodation with validated fields.
func NewAccommodation(name, description, addressLine, city, state, postcode, country string, starRating int) (*Accommodation, error) {
	if name == "" {
		return nil, domain.NewValidationError("accommodation name is required")
	}
	if city == "" {
		return nil, domain.NewValidationError("city is required")
	}
	if country == "" {
		return nil, domain.NewValidationError("country is required")
	}
	if starRating < 0 || starRating > 5 {
		return nil, domain.NewValidationError("star rating must be between 0 and 5")
	}

	now := time.Now().UTC()
	return &Accommodation{
		id:          uuid.New(),
		name:        name,
		description: description,
		addressLine: addressLine,
		city:        city,
		state:       state,
		postcode:    postcode,
		country:     country,
		starRating:  starRating,
		active:      true,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an Accommodation from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	name, description, addressLine, city, state, postcode, country string,
	starRating int,
	active bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Accommodation {
	return &Accommodation{
		id:          id,
		name:        name,
		description: description,
		addressLine: addressLine,
		city:        city,
		state:       state,
		postcode:    postcode,
		country:     country,
		starRating:  starRating,
		active:      active,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (a *Accommodation) ID() uuid.UUID        { return a.id }
func (a *Accommodation) Name() string         { return a.name }
func (a *Accommodation) Description() string  { return a.description }
func (a *Accommodation) AddressLine() string  { return a.addressLine }
func (a *Accommodation) City() string         { return a.city }
func (a *Accommodation) State() string        { return a.state }
func (a *Accommodation) Postcode() string     { return a.postcode }
func (a *Accommodation) Country() string      { return a.country }
func (a *Accommodation) StarRating() int      { return a.starRating }
func (a *Accommodation) IsActive() bool       { return a.active }
func (a *Accommodation) Version() int64       { return a.version }
func (a *Accommodation) CreatedAt() time.Time { return a.createdAt }
func (a *Accommodation) UpdatedAt() time.Time { return a.updatedAt }

// --- Behavior ---

// Update applies partial updates; empty strings and zero ratings are ignored.
func (a *Accommodation) Update(name, description, addressLine, city, state, postcode, country string, starRating int) error {
	if starRating < 0 || starRating > 5 {
		return domain.NewValidationError("star rating must be between 0 and 5")
	}
	if name != "" {
		a.name = name
	}
	if description != "" {
		a.description = description
	}
	if addressLine != "" {
		a.addressLine = addressLine
	}
	if city != "" {
		a.city = city
	}
	if state != "" {
		a.state = state
	}
	if postcode != "" {
		a.postcode = postcode
	}
	if country != "" {
		a.country = country
	}
	if starRating > 0 {
		a.starRating = starRating
	}
	a.version++
	a.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate soft-deletes the accommodation.
func (a *Accommodation) Deactivate() {
	a.active = false
	a.version++
	a.updatedAt = time.Now().UTC()
}

// Activate re-enables a previously deactivated accommodation.
func (a *Accommodation) Activate() {
	a.active = true
	a.version++
	a.updatedAt = time.Now().UTC()
}
