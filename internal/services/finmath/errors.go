package finmath

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Reason is a machine-readable cause of an invalid input
type Reason string

const (
	ReasonInsufficientPayment Reason = "insufficient_payment"
	ReasonNonPositiveBalance  Reason = "non_positive_balance"
	ReasonNegativeRate        Reason = "negative_rate"
	ReasonNonPositivePayment  Reason = "non_positive_payment"
	ReasonNonPositiveExpenses Reason = "non_positive_expenses"
	ReasonNegativeSavings     Reason = "negative_savings"
	ReasonAlreadyAtRetirement Reason = "already_at_retirement"
	ReasonInvalidAge          Reason = "invalid_age"
)

// Sentinels for use with errors.Is
var (
	ErrInsufficientPayment = errors.New("payment does not cover monthly interest")
	ErrNonPositiveBalance  = errors.New("balance must be positive")
	ErrNegativeRate        = errors.New("interest rate must not be negative")
	ErrNonPositivePayment  = errors.New("payment must be positive")
	ErrNonPositiveExpenses = errors.New("monthly expenses must be positive")
	ErrNegativeSavings     = errors.New("savings must not be negative")
	ErrAlreadyAtRetirement = errors.New("retirement age must be after current age")
	ErrInvalidAge          = errors.New("age must be positive")
)

var sentinels = map[Reason]error{
	ReasonInsufficientPayment: ErrInsufficientPayment,
	ReasonNonPositiveBalance:  ErrNonPositiveBalance,
	ReasonNegativeRate:        ErrNegativeRate,
	ReasonNonPositivePayment:  ErrNonPositivePayment,
	ReasonNonPositiveExpenses: ErrNonPositiveExpenses,
	ReasonNegativeSavings:     ErrNegativeSavings,
	ReasonAlreadyAtRetirement: ErrAlreadyAtRetirement,
	ReasonInvalidAge:          ErrInvalidAge,
}

// InputError is returned for inputs the library cannot compute with.
// Minimum is set when a smallest valid value exists, e.g. the minimum payment.
type InputError struct {
	Reason  Reason
	Field   string
	Value   decimal.Decimal
	Minimum *decimal.Decimal
}

func (e *InputError) Error() string {
	msg := fmt.Sprintf("invalid %s (%s): %v", e.Field, e.Value, sentinels[e.Reason])
	if e.Minimum != nil {
		msg += fmt.Sprintf(", minimum is %s", e.Minimum.StringFixed(2))
	}
	return msg
}

// Is matches the sentinel error of the same reason
func (e *InputError) Is(target error) bool {
	return sentinels[e.Reason] == target
}

func inputError(reason Reason, field string, value decimal.Decimal) *InputError {
	return &InputError{Reason: reason, Field: field, Value: value}
}
