package booking

import (
	"github.com/transitgo/service-booking/internal/domain"
)

// ServiceFeeCents is the fixed surcharge added to every booking total.
const ServiceFeeCents int64 = 500

// FarePolicy computes and validates booking totals.
type FarePolicy interface {
	// Quote returns the expected booking total in cents for the given fare
	// per seat and seat count, inclusive of the service fee.
	Quote(farePerSeatCents int64, seatCount int) int64

	// ValidateTotal checks a caller-supplied total against the quoted one.
	ValidateTotal(totalCents, farePerSeatCents int64, seatCount int) error
}

// StandardFarePolicy implements the default fare math: fare per seat times
// seat count plus the fixed service fee. Client-supplied totals are checked
// against it rather than trusted.
type StandardFarePolicy struct{}

// NewStandardFarePolicy creates a new StandardFarePolicy.
func NewStandardFarePolicy() *StandardFarePolicy {
	return &StandardFarePolicy{}
}

// Quote returns farePerSeatCents * seatCount + ServiceFeeCents.
func (p *StandardFarePolicy) Quote(farePerSeatCents int64, seatCount int) int64 {
	return farePerSeatCents*int64(seatCount) + ServiceFeeCents
}

// ValidateTotal fails with a ValidationError if the supplied total does not
// match the quoted fare.
func (p *StandardFarePolicy) ValidateTotal(totalCents, farePerSeatCents int64, seatCount int) error {
	expected := p.Quote(farePerSeatCents, seatCount)
	if totalCents != expected {
		return domain.NewValidationError("total amount does not match the trip fare")
	}
	return nil
}
