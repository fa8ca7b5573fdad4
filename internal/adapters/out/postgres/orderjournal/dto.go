// Package orderjournal persists an audit trail of order lifecycle changes:
// the latest snapshot of each order and one event row per status change.
package orderjournal

import (
	"time"

	"harvestlog/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderSnapshotDTO is the latest known state of an order.
type OrderSnapshotDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status      string    `gorm:"size:32;index"`
	Buyer       PartyDTO  `gorm:"embedded;embeddedPrefix:buyer_"`
	Seller      PartyDTO  `gorm:"embedded;embeddedPrefix:seller_"`
	Transporter *PartyDTO `gorm:"type:jsonb;serializer:json"`
	Items       []ItemDTO `gorm:"type:jsonb;serializer:json"`
	TotalAmount float64
	DeliveryFee float64
	ChatID      string `gorm:"size:64"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (OrderSnapshotDTO) TableName() string {
	return "order_snapshots"
}

// PartyDTO is a participant as captured by the order.
type PartyDTO struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// ItemDTO is one order line.
type ItemDTO struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	PricePerKg float64 `json:"pricePerKg"`
}

// OrderEventDTO is one status change.
type OrderEventDTO struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID `gorm:"type:uuid;index"`
	FromStatus string    `gorm:"size:32"`
	ToStatus   string    `gorm:"size:32"`
	OccurredAt time.Time `gorm:"index"`
}

func (OrderEventDTO) TableName() string {
	return "order_events"
}

func partyFromDomain(p order.Party) PartyDTO {
	return PartyDTO{
		ID:   p.ID(),
		Name: p.Name(),
		Lat:  p.Location().Lat(),
		Lng:  p.Location().Lng(),
	}
}

func snapshotFromDomain(o *order.Order) OrderSnapshotDTO {
	var transporter *PartyDTO
	if t := o.Transporter(); t != nil {
		dto := partyFromDomain(*t)
		transporter = &dto
	}

	items := make([]ItemDTO, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, ItemDTO{
			Name:       item.Name(),
			Quantity:   item.Quantity(),
			PricePerKg: item.PricePerKg(),
		})
	}

	return OrderSnapshotDTO{
		ID:          o.ID().Bytes(),
		Status:      o.Status().String(),
		Buyer:       partyFromDomain(o.Buyer()),
		Seller:      partyFromDomain(o.Seller()),
		Transporter: transporter,
		Items:       items,
		TotalAmount: o.TotalAmount(),
		DeliveryFee: o.DeliveryFee(),
		ChatID:      o.ChatID(),
		CreatedAt:   o.CreatedAt(),
		UpdatedAt:   o.UpdatedAt(),
	}
}
