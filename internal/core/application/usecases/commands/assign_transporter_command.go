package commands

import (
	"errors"
	"fmt"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/order"
	"harvestlog/internal/pkg/errs"
	"harvestlog/internal/pkg/guard"
)

var ErrAssignTransporterCommandIsNotConstructed = errors.New(
	"AssignTransporterCommand must be created via NewAssignTransporterCommand constructor",
)

// AssignTransporterCommand attaches a transporter to the active order.
type AssignTransporterCommand struct {
	transporter order.Party

	guard guard.ConstructorGuard
}

func NewAssignTransporterCommand(transporter order.Party) (AssignTransporterCommand, error) {
	if err := transporter.Validate(); err != nil {
		return AssignTransporterCommand{}, err
	}
	if transporter.Role() != kernel.RoleTransport {
		return AssignTransporterCommand{}, errs.NewValueIsInvalidErrorWithCause("transporter",
			fmt.Errorf("role is %s, expected %s", transporter.Role(), kernel.RoleTransport))
	}

	return AssignTransporterCommand{
		transporter: transporter,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c AssignTransporterCommand) Validate() error {
	return c.guard.Validate(ErrAssignTransporterCommandIsNotConstructed)
}

func (c AssignTransporterCommand) Transporter() order.Party {
	return c.transporter
}
