// Package eligibility decides whether a donor may be marked available to
// donate, given the date of their last donation.
package eligibility

import (
	"errors"
	"fmt"
	"time"
)

// DefaultIntervalDays is the minimum number of days between two whole blood
// donations.
const DefaultIntervalDays = 56

// ErrFutureDonation is returned when the last donation date is after today.
var ErrFutureDonation = errors.New("last donation date is in the future")

// WaitError rejects an availability change made inside the cooldown window.
type WaitError struct {
	DaysRemaining int
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("You must wait %d more days before becoming available again.", e.DaysRemaining)
}

// Policy holds the minimum number of days between a donation and renewed
// availability.
type Policy struct {
	IntervalDays int
}

// NewPolicy returns a Policy using intervalDays, or DefaultIntervalDays when
// intervalDays is not positive.
func NewPolicy(intervalDays int) Policy {
	if intervalDays <= 0 {
		intervalDays = DefaultIntervalDays
	}
	return Policy{IntervalDays: intervalDays}
}

// Evaluate returns the availability value to persist. A requested value of
// false is always accepted. A requested value of true is accepted when there
// is no recorded donation or the interval has fully elapsed, otherwise a
// *WaitError is returned.
func (p Policy) Evaluate(requested bool, lastDonation *time.Time, today time.Time) (bool, error) {
	if !requested {
		return false, nil
	}

	if lastDonation == nil {
		return true, nil
	}

	elapsed := DaysBetween(*lastDonation, today)
	if elapsed < 0 {
		return false, ErrFutureDonation
	}

	if elapsed >= p.IntervalDays {
		return true, nil
	}

	return false, &WaitError{DaysRemaining: p.IntervalDays - elapsed}
}

// NextEligibleDate is the first day a donor who last gave on lastDonation may
// be available again.
func (p Policy) NextEligibleDate(lastDonation time.Time) time.Time {
	return Date(lastDonation).AddDate(0, 0, p.IntervalDays)
}

// Date truncates t to its calendar date in t's location, expressed in UTC so
// that day arithmetic is free of DST offsets.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from a to b. It is negative when b is
// before a.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}
