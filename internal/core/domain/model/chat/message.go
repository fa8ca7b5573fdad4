package chat

import (
	"fmt"
	"time"

	"harvestlog/internal/pkg/errs"
)

// Kind separates participant messages from lifecycle notices.
type Kind string

const (
	KindText   Kind = "text"
	KindSystem Kind = "system"
)

// SenderRole identifies who wrote a message.
type SenderRole string

const (
	SenderBuyer       SenderRole = "buyer"
	SenderSeller      SenderRole = "seller"
	SenderTransporter SenderRole = "transporter"
	SenderSystem      SenderRole = "system"
)

// ParseSenderRole accepts the three participant roles. System is reserved for
// AddSystemMessage and cannot be claimed by a sender.
func ParseSenderRole(s string) (SenderRole, error) {
	switch r := SenderRole(s); r {
	case SenderBuyer, SenderSeller, SenderTransporter:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("senderRole", fmt.Errorf("%q is not a valid sender role", s))
	}
}

// Sender is the author of a text message.
type Sender struct {
	ID   string
	Name string
	Role SenderRole
}

// Message is one immutable chat entry.
type Message struct {
	ID         string
	ChatID     string
	OrderID    string
	SenderID   string
	SenderName string
	SenderRole SenderRole
	Content    string
	Kind       Kind
	Timestamp  time.Time
}
