package order

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderIsNotConstructed is returned for orders not built by NewOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
	// ErrIllegalTransition classifies every TransitionError.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrTransporterAlreadyAssigned is returned by a second AssignTransporter call.
	ErrTransporterAlreadyAssigned = errors.New("transporter already assigned")
	// ErrOrderNotAssignable is returned when assignment is attempted outside Created.
	ErrOrderNotAssignable = errors.New("order not in assignable state")
	// ErrItemsAreRequired is returned for an order without items.
	ErrItemsAreRequired = errors.New("at least one item is required")
)

// TransitionError describes a rejected status change.
type TransitionError struct {
	From Status
	To   Status
}

func NewTransitionError(from, to Status) *TransitionError {
	return &TransitionError{From: from, To: to}
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}
