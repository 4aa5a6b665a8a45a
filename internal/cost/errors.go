package cost

import "errors"

var (
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrUnknownProduct    = errors.New("unknown product")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrIncompatibleUnits = errors.New("incompatible units")
)
