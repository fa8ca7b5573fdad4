package commands

import (
	"errors"

	"harvestlog/internal/core/domain/model/order"
	"harvestlog/internal/pkg/guard"
)

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand requests a status change of the active order.
type TransitionOrderCommand struct {
	status order.Status

	guard guard.ConstructorGuard
}

func NewTransitionOrderCommand(status order.Status) (TransitionOrderCommand, error) {
	if err := status.Validate(); err != nil {
		return TransitionOrderCommand{}, err
	}

	return TransitionOrderCommand{
		status: status,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

func (c TransitionOrderCommand) Status() order.Status {
	return c.status
}
