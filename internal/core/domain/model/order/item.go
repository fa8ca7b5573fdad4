package order

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"harvestlog/internal/pkg/errs"
	"harvestlog/internal/pkg/guard"
)

// Item is one order line: a produce name, a quantity in kilograms and a unit price.
type Item struct {
	name       string
	quantity   float64
	pricePerKg float64
	guard      guard.ConstructorGuard
}

// NewItem validates a non-empty name and strictly positive quantity and price.
func NewItem(name string, quantity, pricePerKg float64) (Item, error) {
	item := Item{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		item.setName(name),
		item.setQuantity(quantity),
		item.setPricePerKg(pricePerKg),
	); err != nil {
		return Item{}, err
	}

	return item, nil
}

// Validate reports whether the item was built through NewItem.
func (i Item) Validate() error {
	return i.guard.Validate(nil)
}

func (i Item) Name() string {
	return i.name
}

func (i Item) Quantity() float64 {
	return i.quantity
}

func (i Item) PricePerKg() float64 {
	return i.pricePerKg
}

// Subtotal is quantity × pricePerKg.
func (i Item) Subtotal() float64 {
	return i.quantity * i.pricePerKg
}

func (i *Item) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("item name")
	}
	i.name = name
	return nil
}

func (i *Item) setQuantity(quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%v is not greater than 0", quantity))
	}
	i.quantity = quantity
	return nil
}

func (i *Item) setPricePerKg(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("pricePerKg", fmt.Errorf("%v is not greater than 0", price))
	}
	i.pricePerKg = price
	return nil
}
