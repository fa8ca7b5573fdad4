package commands

import (
	"errors"
	"strings"

	"harvestlog/internal/core/domain/model/chat"
	"harvestlog/internal/pkg/errs"
	"harvestlog/internal/pkg/guard"
)

var ErrSendChatMessageCommandIsNotConstructed = errors.New(
	"SendChatMessageCommand must be created via NewSendChatMessageCommand constructor",
)

// SendChatMessageCommand posts a participant message into the active order chat.
type SendChatMessageCommand struct {
	sender  chat.Sender
	content string

	guard guard.ConstructorGuard
}

func NewSendChatMessageCommand(senderID, senderName, senderRole, content string) (SendChatMessageCommand, error) {
	role, roleErr := chat.ParseSenderRole(senderRole)

	var idErr error
	if strings.TrimSpace(senderID) == "" {
		idErr = errs.NewValueIsRequiredError("senderId")
	}

	if err := errors.Join(idErr, roleErr); err != nil {
		return SendChatMessageCommand{}, err
	}

	return SendChatMessageCommand{
		sender:  chat.Sender{ID: senderID, Name: strings.TrimSpace(senderName), Role: role},
		content: content,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c SendChatMessageCommand) Validate() error {
	return c.guard.Validate(ErrSendChatMessageCommandIsNotConstructed)
}

func (c SendChatMessageCommand) Sender() chat.Sender {
	return c.sender
}

func (c SendChatMessageCommand) Content() string {
	return c.content
}
