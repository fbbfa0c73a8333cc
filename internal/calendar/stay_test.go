package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeStay(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		price    float64
		want     Stay
	}{
		{
			name:     "three nights",
			checkIn:  date(2024, time.June, 1),
			checkOut: date(2024, time.June, 4),
			price:    100,
			want:     Stay{Nights: 3, TotalPrice: 300},
		},
		{
			name:     "same day",
			checkIn:  date(2024, time.June, 5),
			checkOut: date(2024, time.June, 5),
			price:    100,
			want:     Stay{},
		},
		{
			name:     "partial day counts as a night",
			checkIn:  date(2024, time.June, 1),
			checkOut: date(2024, time.June, 4).Add(time.Hour),
			price:    50,
			want:     Stay{Nights: 4, TotalPrice: 200},
		},
		{
			name:     "span of several centuries",
			checkIn:  date(2024, time.January, 1),
			checkOut: date(2400, time.January, 1),
			price:    100,
			want:     Stay{Nights: 137331, TotalPrice: 13733100},
		},
		{
			name:    "missing check-out",
			checkIn: date(2024, time.June, 1),
			price:   100,
			want:    Stay{},
		},
		{
			name:     "missing check-in",
			checkOut: date(2024, time.June, 1),
			price:    100,
			want:     Stay{},
		},
		{
			name:     "reversed range",
			checkIn:  date(2024, time.June, 4),
			checkOut: date(2024, time.June, 1),
			price:    100,
			want:     Stay{Nights: -3, TotalPrice: -300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStay(tt.checkIn, tt.checkOut, tt.price)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, ComputeStay(tt.checkIn, tt.checkOut, tt.price))
		})
	}
}

func TestDateRangeValidate(t *testing.T) {
	assert.ErrorIs(t, DateRange{CheckIn: date(2024, time.June, 5), CheckOut: date(2024, time.June, 5)}.Validate(), ErrInvalidRange)
	assert.ErrorIs(t, DateRange{CheckIn: date(2024, time.June, 6), CheckOut: date(2024, time.June, 5)}.Validate(), ErrInvalidRange)
	assert.NoError(t, DateRange{CheckIn: date(2024, time.June, 5), CheckOut: date(2024, time.June, 6)}.Validate())
	assert.NoError(t, DateRange{CheckIn: date(2024, time.June, 5)}.Validate())
	assert.NoError(t, DateRange{}.Validate())
}
