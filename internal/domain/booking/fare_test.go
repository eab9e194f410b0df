package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transitgo/service-booking/internal/domain"
)

func TestStandardFarePolicy_Quote(t *testing.T) {
	policy := NewStandardFarePolicy()

	assert.Equal(t, int64(5500), policy.Quote(5000, 1))
	assert.Equal(t, int64(15500), policy.Quote(5000, 3))
}

func TestStandardFarePolicy_ValidateTotal(t *testing.T) {
	policy := NewStandardFarePolicy()

	assert.NoError(t, policy.ValidateTotal(10500, 5000, 2))

	err := policy.ValidateTotal(10000, 5000, 2)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
