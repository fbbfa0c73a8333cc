package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanSubmitBooking(t *testing.T) {
	validRange := DateRange{CheckIn: date(2024, time.June, 1), CheckOut: date(2024, time.June, 4)}
	validContact := Contact{Name: "Nino B", Phone: "+995 555 000 000", Email: "nino@example.com"}

	tests := []struct {
		name    string
		r       DateRange
		guests  Guests
		max     int
		contact Contact
		price   float64
		wantErr error
	}{
		{
			name:    "valid",
			r:       validRange,
			guests:  Guests{Adults: 2},
			max:     2,
			contact: validContact,
			price:   300,
		},
		{
			name:    "too many guests",
			r:       validRange,
			guests:  Guests{Adults: 2, Children: 1},
			max:     2,
			contact: validContact,
			price:   300,
			wantErr: ErrGuestCountExceeded,
		},
		{
			name:    "no guests",
			r:       validRange,
			max:     2,
			contact: validContact,
			price:   300,
			wantErr: ErrNoGuests,
		},
		{
			name:    "zero price",
			r:       validRange,
			guests:  Guests{Adults: 1},
			max:     2,
			contact: validContact,
			wantErr: ErrZeroPrice,
		},
		{
			name:    "whitespace phone",
			r:       validRange,
			guests:  Guests{Adults: 1},
			max:     2,
			contact: Contact{Name: "Nino B", Phone: "   ", Email: "nino@example.com"},
			price:   300,
			wantErr: ErrMissingContactInfo,
		},
		{
			name:    "missing check-out",
			r:       DateRange{CheckIn: date(2024, time.June, 1)},
			guests:  Guests{Adults: 1},
			max:     2,
			contact: validContact,
			price:   300,
			wantErr: ErrIncompleteRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSubmission(tt.r, tt.guests, tt.max, tt.contact, tt.price)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantErr == nil, CanSubmitBooking(tt.r, tt.guests, tt.max, tt.contact, tt.price))
		})
	}
}
