package kernel

import (
	"fmt"

	"harvestlog/internal/pkg/errs"
)

// Role identifies one of the three parties of a delivery.
type Role string

const (
	RoleBuyer     Role = "buyer"
	RoleSeller    Role = "seller"
	RoleTransport Role = "transport"
)

// Validate accepts only buyer, seller and transport.
func (r Role) Validate() error {
	switch r {
	case RoleBuyer, RoleSeller, RoleTransport:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", string(r)))
	}
}

func (r Role) String() string {
	return string(r)
}
