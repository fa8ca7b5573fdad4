package order

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/pkg/errs"
	"harvestlog/internal/pkg/guard"
)

// ChatIDPrefix is prepended to the order id to form the chat channel id.
const ChatIDPrefix = "chat-"

// Order is the aggregate root of a single buyer/seller/transporter delivery.
//
// Order follows these invariants:
//   - Buyer and seller are captured at creation and never change
//   - The transporter is set at most once, while the order is Created
//   - Total amount and delivery fee are computed once at creation
//   - Status changes follow the transition table; Cancel is the only exception
//   - Can only be created through NewOrder
type Order struct {
	id          kernel.UUID
	status      Status
	buyer       Party
	seller      Party
	transporter *Party
	items       []Item
	totalAmount float64
	deliveryFee float64
	createdAt   time.Time
	updatedAt   time.Time
	chatID      string

	guard guard.ConstructorGuard
}

// NewOrder creates an order in Created status.
//
// Example:
//
//	tomatoes, _ := order.NewItem("Tomatoes", 20, 45)
//	chilies, _ := order.NewItem("Chilies", 5, 80)
//	o, err := order.NewOrder(kernel.NewOrderedUUID(), buyer, seller, []order.Item{tomatoes, chilies}, time.Now())
//	// o.TotalAmount() == 1300, o.DeliveryFee() == 180
func NewOrder(id kernel.UUID, buyer, seller Party, items []Item, now time.Time) (*Order, error) {
	o := &Order{
		status:    Created,
		createdAt: now,
		updatedAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setBuyer(buyer),
		o.setSeller(seller),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	o.totalAmount = TotalAmount(o.items)
	o.deliveryFee = DeliveryFee(o.totalAmount)
	return o, nil
}

// TotalAmount sums quantity × pricePerKg over items.
func TotalAmount(items []Item) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// DeliveryFee is 10% of the order total plus a flat 50, rounded to a whole unit.
func DeliveryFee(totalAmount float64) float64 {
	return math.Round(totalAmount*0.10 + 50)
}

// Validate ensures the order was built through NewOrder.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by id.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) Buyer() Party {
	return o.buyer
}

func (o *Order) Seller() Party {
	return o.seller
}

// Transporter returns the assigned transporter, or nil before assignment.
func (o *Order) Transporter() *Party {
	if o.transporter == nil {
		return nil
	}
	t := *o.transporter
	return &t
}

// Items returns a copy of the order lines in their original order.
func (o *Order) Items() []Item {
	return slices.Clone(o.items)
}

func (o *Order) TotalAmount() float64 {
	return o.totalAmount
}

func (o *Order) DeliveryFee() float64 {
	return o.deliveryFee
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// ChatID is empty until a transporter has been assigned.
func (o *Order) ChatID() string {
	return o.chatID
}

// IsLive reports whether a transporter is engaged and the order is unfinished.
func (o *Order) IsLive() bool {
	return o.status.IsLive()
}

// AssignTransporter attaches the transporter, moves the order to
// TransportAssigned and opens the chat id. It succeeds exactly once.
func (o *Order) AssignTransporter(transporter Party, now time.Time) error {
	if o.transporter != nil {
		return ErrTransporterAlreadyAssigned
	}
	if o.status != Created {
		return ErrOrderNotAssignable
	}
	if err := transporter.Validate(); err != nil {
		return err
	}
	if transporter.Role() != kernel.RoleTransport {
		return errs.NewValueIsInvalidErrorWithCause("transporter",
			fmt.Errorf("role is %s, expected %s", transporter.Role(), kernel.RoleTransport))
	}

	next, err := o.status.TransitionTo(TransportAssigned)
	if err != nil {
		return err
	}

	o.transporter = &transporter
	o.status = next
	o.chatID = ChatIDPrefix + o.id.String()
	o.updatedAt = now
	return nil
}

// TransitionTo moves the order to next if the transition table allows it.
// A rejected transition leaves the order untouched.
func (o *Order) TransitionTo(next Status, now time.Time) error {
	status, err := o.status.TransitionTo(next)
	if err != nil {
		return err
	}

	o.status = status
	o.updatedAt = now
	return nil
}

// Cancel forces Cancelled from any non-terminal status without consulting the
// transition table. It returns false and changes nothing when the order is
// already Completed or Cancelled.
func (o *Order) Cancel(now time.Time) bool {
	status, ok := o.status.Cancel()
	if !ok {
		return false
	}

	o.status = status
	o.updatedAt = now
	return true
}

// Clone returns an independent copy of the order.
func (o *Order) Clone() *Order {
	c := *o
	c.items = slices.Clone(o.items)
	if o.transporter != nil {
		t := *o.transporter
		c.transporter = &t
	}
	return &c
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setBuyer(buyer Party) error {
	if err := buyer.Validate(); err != nil {
		return err
	}
	if buyer.Role() != kernel.RoleBuyer {
		return errs.NewValueIsInvalidErrorWithCause("buyer",
			fmt.Errorf("role is %s, expected %s", buyer.Role(), kernel.RoleBuyer))
	}
	o.buyer = buyer
	return nil
}

func (o *Order) setSeller(seller Party) error {
	if err := seller.Validate(); err != nil {
		return err
	}
	if seller.Role() != kernel.RoleSeller {
		return errs.NewValueIsInvalidErrorWithCause("seller",
			fmt.Errorf("role is %s, expected %s", seller.Role(), kernel.RoleSeller))
	}
	o.seller = seller
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d]", i), err)
		}
	}
	o.items = slices.Clone(items)
	return nil
}
