package chat

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"harvestlog/internal/pkg/errs"
	"harvestlog/internal/pkg/guard"

	"github.com/google/uuid"
)

const (
	// MaxMessages is the log size; the oldest message is evicted first.
	MaxMessages = 200
	// MaxContentLength is measured in runes after trimming.
	MaxContentLength = 500
	// DefaultFloodInterval is the minimum gap between two accepted sends of one sender.
	DefaultFloodInterval = 500 * time.Millisecond
)

var (
	ErrChannelIsNotConstructed = errors.New("Channel must be created via NewChannel constructor")
	// ErrFloodControl is returned when a sender writes again inside the flood interval.
	ErrFloodControl = errors.New("message rejected by flood control")
	// ErrContentIsEmpty is returned when nothing is left after trimming.
	ErrContentIsEmpty = errors.New("message content is empty")
)

// Channel is the ephemeral message log of one order. It is not safe for
// concurrent use; the owning service serializes access.
type Channel struct {
	orderID       string
	chatID        string
	floodInterval time.Duration
	messages      []Message
	lastSent      map[string]time.Time

	guard guard.ConstructorGuard
}

// NewChannel opens a channel for an order. A non-positive floodInterval
// falls back to DefaultFloodInterval.
func NewChannel(orderID, chatID string, floodInterval time.Duration) (*Channel, error) {
	if floodInterval <= 0 {
		floodInterval = DefaultFloodInterval
	}

	c := &Channel{
		floodInterval: floodInterval,
		lastSent:      make(map[string]time.Time),
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(c.setOrderID(orderID), c.setChatID(chatID)); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Channel) Validate() error {
	if c == nil {
		return ErrChannelIsNotConstructed
	}
	return c.guard.Validate(ErrChannelIsNotConstructed)
}

func (c *Channel) OrderID() string {
	return c.orderID
}

func (c *Channel) ChatID() string {
	return c.chatID
}

// Send appends a text message. Content is trimmed and cut to MaxContentLength
// runes. The flood gate is kept per sender id and only accepted sends move it.
func (c *Channel) Send(sender Sender, content string, now time.Time) (Message, error) {
	if strings.TrimSpace(sender.ID) == "" {
		return Message{}, errs.NewValueIsRequiredError("senderId")
	}
	if _, err := ParseSenderRole(string(sender.Role)); err != nil {
		return Message{}, err
	}

	if last, ok := c.lastSent[sender.ID]; ok && now.Sub(last) < c.floodInterval {
		return Message{}, ErrFloodControl
	}

	content = NormalizeContent(content)
	if content == "" {
		return Message{}, ErrContentIsEmpty
	}

	msg := Message{
		ID:         "msg-" + uuid.NewString(),
		ChatID:     c.chatID,
		OrderID:    c.orderID,
		SenderID:   sender.ID,
		SenderName: sender.Name,
		SenderRole: sender.Role,
		Content:    content,
		Kind:       KindText,
		Timestamp:  now,
	}

	c.lastSent[sender.ID] = now
	c.append(msg)
	return msg, nil
}

// AddSystemMessage appends a notice without flood or length gating.
func (c *Channel) AddSystemMessage(content string, now time.Time) Message {
	msg := Message{
		ID:         "sys-" + uuid.NewString(),
		ChatID:     c.chatID,
		OrderID:    c.orderID,
		SenderID:   string(SenderSystem),
		SenderName: "System",
		SenderRole: SenderSystem,
		Content:    content,
		Kind:       KindSystem,
		Timestamp:  now,
	}

	c.append(msg)
	return msg
}

// Messages returns a copy of the log, oldest first.
func (c *Channel) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Channel) Len() int {
	return len(c.messages)
}

// Clear empties the log and resets the flood gates.
func (c *Channel) Clear() {
	c.messages = nil
	clear(c.lastSent)
}

// NormalizeContent trims surrounding whitespace and keeps at most
// MaxContentLength runes.
func NormalizeContent(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= MaxContentLength {
		return content
	}
	return strings.TrimSpace(string([]rune(content)[:MaxContentLength]))
}

func (c *Channel) append(msg Message) {
	c.messages = append(c.messages, msg)
	if overflow := len(c.messages) - MaxMessages; overflow > 0 {
		c.messages = append(c.messages[:0:0], c.messages[overflow:]...)
	}
}

func (c *Channel) setOrderID(orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		return errs.NewValueIsRequiredError("orderId")
	}
	c.orderID = orderID
	return nil
}

func (c *Channel) setChatID(chatID string) error {
	if strings.TrimSpace(chatID) == "" {
		return errs.NewValueIsRequiredError("chatId")
	}
	c.chatID = chatID
	return nil
}
