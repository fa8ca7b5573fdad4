package tracking

import (
	"errors"
	"strings"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/pkg/errs"
	"harvestlog/internal/pkg/guard"
)

var ErrEntityLocationIsNotConstructed = errors.New("EntityLocation must be created via NewEntityLocation constructor")

// EntityLocation is the live position of one party. Unlike order.Party it is
// replaced on every position change.
type EntityLocation struct {
	id          string
	role        kernel.Role
	name        string
	location    kernel.Location
	online      bool
	lastUpdated time.Time

	guard guard.ConstructorGuard
}

func NewEntityLocation(
	id string,
	role kernel.Role,
	name string,
	location kernel.Location,
	online bool,
	lastUpdated time.Time,
) (EntityLocation, error) {
	e := EntityLocation{
		role:        role,
		name:        name,
		location:    location,
		online:      online,
		lastUpdated: lastUpdated,
		guard:       guard.NewConstructorGuard(),
	}

	var idErr error
	if strings.TrimSpace(id) == "" {
		idErr = errs.NewValueIsRequiredError("entity id")
	}
	e.id = id

	if err := errors.Join(idErr, role.Validate(), location.Validate()); err != nil {
		return EntityLocation{}, err
	}
	return e, nil
}

func (e EntityLocation) Validate() error {
	return e.guard.Validate(ErrEntityLocationIsNotConstructed)
}

func (e EntityLocation) ID() string {
	return e.id
}

func (e EntityLocation) Role() kernel.Role {
	return e.role
}

func (e EntityLocation) Name() string {
	return e.name
}

func (e EntityLocation) Location() kernel.Location {
	return e.location
}

func (e EntityLocation) Online() bool {
	return e.online
}

func (e EntityLocation) LastUpdated() time.Time {
	return e.lastUpdated
}

// MovedTo returns a copy placed at location, stamped with at.
func (e EntityLocation) MovedTo(location kernel.Location, at time.Time) EntityLocation {
	e.location = location
	e.lastUpdated = at
	return e
}
