package commands

import (
	"errors"

	"harvestlog/internal/core/domain/model/order"
	"harvestlog/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand places a new order for buyer from seller.
//
// Example:
//
//	tomatoes, _ := order.NewItem("Tomatoes", 20, 45)
//	cmd, err := NewCreateOrderCommand(buyer, seller, []order.Item{tomatoes})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	buyer  order.Party
	seller order.Party
	items  []order.Item

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(buyer, seller order.Party, items []order.Item) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setBuyer(buyer),
		cmd.setSeller(seller),
		cmd.setItems(items),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Buyer() order.Party {
	return c.buyer
}

func (c CreateOrderCommand) Seller() order.Party {
	return c.seller
}

func (c CreateOrderCommand) Items() []order.Item {
	out := make([]order.Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *CreateOrderCommand) setBuyer(buyer order.Party) error {
	if err := buyer.Validate(); err != nil {
		return err
	}
	c.buyer = buyer
	return nil
}

func (c *CreateOrderCommand) setSeller(seller order.Party) error {
	if err := seller.Validate(); err != nil {
		return err
	}
	c.seller = seller
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return order.ErrItemsAreRequired
	}
	c.items = make([]order.Item, len(items))
	copy(c.items, items)
	return nil
}
