package http

import (
	"time"

	"harvestlog/internal/core/application/tracker"
	"harvestlog/internal/core/domain/model/chat"
	"harvestlog/internal/core/domain/model/kernel"
	"harvestlog/internal/core/domain/model/order"
	"harvestlog/internal/core/domain/model/routing"
	"harvestlog/internal/core/domain/model/tracking"
	"harvestlog/internal/core/domain/services"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type PartyRequest struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type ItemRequest struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	PricePerKg float64 `json:"pricePerKg"`
}

type CreateOrderRequest struct {
	Items  []ItemRequest `json:"items"`
	Buyer  *PartyRequest `json:"buyer,omitempty"`
	Seller *PartyRequest `json:"seller,omitempty"`
}

type AssignTransporterRequest struct {
	Transporter *PartyRequest `json:"transporter,omitempty"`
}

type TransitionRequest struct {
	Status string `json:"status"`
}

type SendMessageRequest struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	SenderRole string `json:"senderRole"`
	Content    string `json:"content"`
}

type Party struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Name        string    `json:"name"`
	Location    Location  `json:"location"`
	Online      bool      `json:"online"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type Item struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	PricePerKg float64 `json:"pricePerKg"`
}

type Order struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Buyer       Party     `json:"buyer"`
	Seller      Party     `json:"seller"`
	Transporter *Party    `json:"transporter"`
	Items       []Item    `json:"items"`
	TotalAmount float64   `json:"totalAmount"`
	DeliveryFee float64   `json:"deliveryFee"`
	ChatID      string    `json:"chatId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ActiveOrder struct {
	Order *Order `json:"order"`
	Error string `json:"error"`
}

type CancelResult struct {
	Order     *Order `json:"order"`
	Cancelled bool   `json:"cancelled"`
}

type HistoryEvent struct {
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Message struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chatId"`
	OrderID    string    `json:"orderId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	SenderRole string    `json:"senderRole"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
}

type Distances struct {
	BuyerToSeller     float64 `json:"buyerToSeller"`
	SellerToTransport float64 `json:"sellerToTransport"`
	BuyerToTransport  float64 `json:"buyerToTransport"`
}

type Locations struct {
	Ready     bool      `json:"ready"`
	Tracking  bool      `json:"tracking"`
	Error     string    `json:"error"`
	Entities  []Party   `json:"entities"`
	Distances Distances `json:"distances"`
}

type Route struct {
	Coordinates     []Location `json:"coordinates"`
	DistanceKm      float64    `json:"distanceKm"`
	DurationMinutes float64    `json:"durationMinutes"`
}

type Routes struct {
	Loading           bool   `json:"loading"`
	BuyerToSeller     *Route `json:"buyerToSeller"`
	SellerToTransport *Route `json:"sellerToTransport"`
	BuyerToTransport  *Route `json:"buyerToTransport"`
}

type NearbyEntity struct {
	Entity     Party   `json:"entity"`
	DistanceKm float64 `json:"distanceKm"`
}

func toLocation(l kernel.Location) Location {
	return Location{Lat: l.Lat(), Lng: l.Lng()}
}

func fromParty(p order.Party) Party {
	return Party{
		ID:          p.ID(),
		Role:        p.Role().String(),
		Name:        p.Name(),
		Location:    toLocation(p.Location()),
		Online:      p.Online(),
		LastUpdated: p.LastUpdated(),
	}
}

func fromEntity(e tracking.EntityLocation) Party {
	return Party{
		ID:          e.ID(),
		Role:        e.Role().String(),
		Name:        e.Name(),
		Location:    toLocation(e.Location()),
		Online:      e.Online(),
		LastUpdated: e.LastUpdated(),
	}
}

func fromOrder(o *order.Order) *Order {
	if o == nil {
		return nil
	}

	items := o.Items()
	out := &Order{
		ID:          o.ID().String(),
		Status:      o.Status().String(),
		Buyer:       fromParty(o.Buyer()),
		Seller:      fromParty(o.Seller()),
		Items:       make([]Item, len(items)),
		TotalAmount: o.TotalAmount(),
		DeliveryFee: o.DeliveryFee(),
		ChatID:      o.ChatID(),
		CreatedAt:   o.CreatedAt(),
		UpdatedAt:   o.UpdatedAt(),
	}
	for i, it := range items {
		out.Items[i] = Item{Name: it.Name(), Quantity: it.Quantity(), PricePerKg: it.PricePerKg()}
	}
	if t := o.Transporter(); t != nil {
		p := fromParty(*t)
		out.Transporter = &p
	}
	return out
}

func fromMessage(m chat.Message) Message {
	return Message{
		ID:         m.ID,
		ChatID:     m.ChatID,
		OrderID:    m.OrderID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		SenderRole: string(m.SenderRole),
		Content:    m.Content,
		Type:       string(m.Kind),
		Timestamp:  m.Timestamp,
	}
}

func fromRoute(r *routing.Route) *Route {
	if r == nil {
		return nil
	}

	coords := r.Coordinates()
	out := &Route{
		Coordinates:     make([]Location, len(coords)),
		DistanceKm:      r.DistanceKm(),
		DurationMinutes: r.DurationMinutes(),
	}
	for i, c := range coords {
		out.Coordinates[i] = toLocation(c)
	}
	return out
}

func fromSnapshot(s tracker.Snapshot) Locations {
	entities := s.Entities()
	out := Locations{
		Ready:    s.Ready,
		Tracking: s.Tracking,
		Error:    s.Error,
		Entities: make([]Party, len(entities)),
	}
	for i, e := range entities {
		out.Entities[i] = fromEntity(e)
	}

	// positions in a snapshot are always constructed
	out.Distances.BuyerToSeller, _ = s.Buyer.Location().DistanceKm(s.Seller.Location())
	out.Distances.SellerToTransport, _ = s.Seller.Location().DistanceKm(s.Transport.Location())
	out.Distances.BuyerToTransport, _ = s.Buyer.Location().DistanceKm(s.Transport.Location())
	return out
}

func fromNearby(items []services.Nearby[tracking.EntityLocation]) []NearbyEntity {
	out := make([]NearbyEntity, len(items))
	for i, n := range items {
		out[i] = NearbyEntity{Entity: fromEntity(n.Item), DistanceKm: n.DistanceKm}
	}
	return out
}

func partyFromEntity(e tracking.EntityLocation) (order.Party, error) {
	return order.NewParty(e.ID(), e.Role(), e.Name(), e.Location(), e.Online(), e.LastUpdated())
}

func partyFromRequest(req PartyRequest, role kernel.Role, now time.Time) (order.Party, error) {
	loc, err := kernel.NewLocation(req.Lat, req.Lng)
	if err != nil {
		return order.Party{}, err
	}
	return order.NewParty(req.ID, role, req.Name, loc, true, now)
}
