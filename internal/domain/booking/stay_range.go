package booking

import (
	"time"

	"github.com/Serai-Stays/service-reservation/internal/domain"
)

// StayRange is the half-open [check-in, check-out) interval of a stay. The
// check-in night is occupied, the check-out date is not. Dates are normalized
// to midnight UTC.
type StayRange struct {
	checkIn  time.Time
	checkOut time.Time
}

// NewStayRange builds a validated stay range. A range with check-out on or
// before check-in has zero nights and is rejected.
func NewStayRange(checkIn, checkOut time.Time) (StayRange, error) {
	ci := NormalizeDate(checkIn)
	co := NormalizeDate(checkOut)
	if !co.After(ci) {
		return StayRange{}, domain.NewInvalidDateRangeError(
			ci.Format(time.DateOnly),
			co.Format(time.DateOnly),
		)
	}
	return StayRange{checkIn: ci, checkOut: co}, nil
}

// ParseStayRange builds a stay range from "2006-01-02" formatted strings.
func ParseStayRange(checkIn, checkOut string) (StayRange, error) {
	ci, err := time.Parse(time.DateOnly, checkIn)
	if err != nil {
		return StayRange{}, domain.NewValidationError("check_in must be formatted as YYYY-MM-DD")
	}
	co, err := time.Parse(time.DateOnly, checkOut)
	if err != nil {
		return StayRange{}, domain.NewValidationError("check_out must be formatted as YYYY-MM-DD")
	}
	return NewStayRange(ci, co)
}

// NormalizeDate truncates a timestamp to midnight UTC.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CheckIn returns the check-in date.
func (r StayRange) CheckIn() time.Time { return r.checkIn }

// CheckOut returns the exclusive check-out date.
func (r StayRange) CheckOut() time.Time { return r.checkOut }

// Nights returns the number of occupied nights.
func (r StayRange) Nights() int {
	return int(r.checkOut.Sub(r.checkIn).Hours() / 24)
}

// Dates returns one entry per occupied night, check-out excluded.
func (r StayRange) Dates() []time.Time {
	dates := make([]time.Time, 0, r.Nights())
	for d := r.checkIn; d.Before(r.checkOut); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Covers reports whether the given date is an occupied night of the stay.
func (r StayRange) Covers(date time.Time) bool {
	d := NormalizeDate(date)
	return !d.Before(r.checkIn) && d.Before(r.checkOut)
}

// String renders the range as "YYYY-MM-DD/YYYY-MM-DD".
func (r StayRange) String() string {
	return r.checkIn.Format(time.DateOnly) + "/" + r.checkOut.Format(time.DateOnly)
}
