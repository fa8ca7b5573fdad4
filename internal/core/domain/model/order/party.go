package order

import (
	"errors"
	"strings"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/pkg/errs"
	"harvestlog/internal/pkg/guard"
)

// ErrPartyIsNotConstructed is returned for a zero-value Party.
var ErrPartyIsNotConstructed = errors.New("Party must be created via NewParty constructor")

// Party is a snapshot of a buyer, seller or transporter taken when the order
// is created or a transporter is assigned. It is never refreshed from the live
// position feed afterwards, so an order keeps the positions it was placed with.
type Party struct {
	id          string
	role        kernel.Role
	name        string
	location    kernel.Location
	online      bool
	lastUpdated time.Time
	guard       guard.ConstructorGuard
}

// NewParty validates and captures a party snapshot.
func NewParty(
	id string,
	role kernel.Role,
	name string,
	location kernel.Location,
	online bool,
	lastUpdated time.Time,
) (Party, error) {
	p := Party{
		online:      online,
		lastUpdated: lastUpdated,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		role.Validate(),
		p.setName(name),
		location.Validate(),
	); err != nil {
		return Party{}, err
	}

	p.role = role
	p.location = location
	return p, nil
}

// Validate reports whether the party was built through NewParty.
func (p Party) Validate() error {
	return p.guard.Validate(ErrPartyIsNotConstructed)
}

func (p Party) ID() string {
	return p.id
}

func (p Party) Role() kernel.Role {
	return p.role
}

func (p Party) Name() string {
	return p.name
}

func (p Party) Location() kernel.Location {
	return p.location
}

func (p Party) Online() bool {
	return p.online
}

func (p Party) LastUpdated() time.Time {
	return p.lastUpdated
}

func (p *Party) setID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errs.NewValueIsRequiredError("party id")
	}
	p.id = id
	return nil
}

func (p *Party) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("party name")
	}
	p.name = name
	return nil
}
