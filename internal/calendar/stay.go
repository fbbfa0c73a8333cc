package calendar

import (
	"errors"
	"math"
	"time"
)

var ErrInvalidRange = errors.New("check-out date must be after check-in date")

const msPerDay = 86_400_000

// DateRange is a check-in/check-out selection. A zero bound is absent.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func (r DateRange) Complete() bool {
	return !r.CheckIn.IsZero() && !r.CheckOut.IsZero()
}

// Validate rejects complete ranges whose check-out is not strictly after check-in.
func (r DateRange) Validate() error {
	if r.Complete() && !r.CheckOut.After(r.CheckIn) {
		return ErrInvalidRange
	}

	return nil
}

type Stay struct {
	Nights     int     `json:"nights"`
	TotalPrice float64 `json:"totalPrice"`
}

// ComputeStay counts started days between the bounds as nights. It does not check
// ordering: callers must Validate the range first.
func ComputeStay(checkIn, checkOut time.Time, nightlyPrice float64) Stay {
	if checkIn.IsZero() || checkOut.IsZero() {
		return Stay{}
	}

	// UnixMilli keeps spans longer than time.Duration can hold exact.
	ms := checkOut.UnixMilli() - checkIn.UnixMilli()
	nights := int(math.Ceil(float64(ms) / msPerDay))

	return Stay{
		Nights:     nights,
		TotalPrice: float64(nights) * nightlyPrice,
	}
}
