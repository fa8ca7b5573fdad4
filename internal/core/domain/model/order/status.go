package order

import (
	"fmt"
	"slices"

	"harvestlog/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
// State transitions:
//
//	Created ──> TransportAssigned ──> PickedUp ──> InTransit ──> Delivered ──> Completed
//	   │                │                 │
//	   └────────────────┴─────────────────┴──────> Cancelled
//
// Completed and Cancelled are terminal.
type Status int

const (
	// Unknown represents an uninitialized status.
	Unknown Status = iota
	Created
	TransportAssigned
	PickedUp
	InTransit
	Delivered
	Completed
	Cancelled
)

// getStatusStrings maps statuses to their wire names.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:           "UNKNOWN",
		Created:           "CREATED",
		TransportAssigned: "TRANSPORT_ASSIGNED",
		PickedUp:          "PICKED_UP",
		InTransit:         "IN_TRANSIT",
		Delivered:         "DELIVERED",
		Completed:         "COMPLETED",
		Cancelled:         "CANCELLED",
	}
}

// getAllowedTransitions is the legal transition table.
func getAllowedTransitions() map[Status][]Status {
	//nolint:exhaustive // Unknown has no transitions
	return map[Status][]Status{
		Created:           {TransportAssigned, Cancelled},
		TransportAssigned: {PickedUp, Cancelled},
		PickedUp:          {InTransit, Cancelled},
		InTransit:         {Delivered},
		Delivered:         {Completed},
		Completed:         {},
		Cancelled:         {},
	}
}

// ParseStatus converts a wire name such as "PICKED_UP" into a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := getAllowedTransitions()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// AllowedNext returns the statuses reachable from s in one transition.
func (s Status) AllowedNext() []Status {
	return slices.Clone(getAllowedTransitions()[s])
}

// CanTransitionTo reports whether next is in the allowed set of s.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(getAllowedTransitions()[s], next)
}

// IsTerminal reports whether s has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// IsLive reports whether the order is on its way: a transporter is engaged and
// the delivery has neither finished nor been called off.
func (s Status) IsLive() bool {
	return s == TransportAssigned || s == PickedUp || s == InTransit || s == Delivered
}

// TransitionTo returns next if the transition table allows it.
//
// Example:
//
//	next, err := order.Created.TransitionTo(order.PickedUp)
//	// err: cannot transition from CREATED to PICKED_UP
func (s Status) TransitionTo(next Status) (Status, error) {
	if err := next.Validate(); err != nil {
		return Unknown, err
	}

	if !s.CanTransitionTo(next) {
		return Unknown, NewTransitionError(s, next)
	}

	return next, nil
}

// Cancel returns Cancelled for every non-terminal status. It deliberately
// ignores the transition table: cancellation is an escape hatch, so an order
// that is InTransit or Delivered can still be called off.
// The boolean is false when s is already terminal.
func (s Status) Cancel() (Status, bool) {
	if s.IsTerminal() {
		return s, false
	}
	return Cancelled, true
}
