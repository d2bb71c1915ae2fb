// Package telegram delivers announcements to a Telegram channel.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/game-announcer/internal/delivery"
)

// Sender is the part of *tgbotapi.BotAPI the channel uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Channel posts to one Telegram chat, addressed by numeric id or @username.
type Channel struct {
	sender   Sender
	chatID   int64
	username string
}

// NewChannel targets chat, which is either a numeric chat id or an "@channel" username.
func NewChannel(sender Sender, chat string) (*Channel, error) {
	chat = strings.TrimSpace(chat)
	if chat == "" {
		return nil, errors.New("telegram: chat must not be empty")
	}
	if strings.HasPrefix(chat, "@") {
		return &Channel{sender: sender, username: chat}, nil
	}
	id, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram: chat %q is neither a numeric id nor an @username", chat)
	}
	return &Channel{sender: sender, chatID: id}, nil
}

// NewBot connects to the Bot API with token. An empty endpoint uses the public API.
func NewBot(token, endpoint string, client *http.Client) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = &http.Client{}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect bot: %w", err)
	}
	return bot, nil
}

// Send posts text and returns the message id as the handle.
func (c *Channel) Send(ctx context.Context, text string) (delivery.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", delivery.NewError(delivery.KindUnknown, "send", err)
	}

	var msg tgbotapi.MessageConfig
	if c.username != "" {
		msg = tgbotapi.NewMessageToChannel(c.username, text)
	} else {
		msg = tgbotapi.NewMessage(c.chatID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML

	sent, err := c.sender.Send(msg)
	if err != nil {
		return "", classify("send", err)
	}
	return delivery.Handle(strconv.Itoa(sent.MessageID)), nil
}

// Edit replaces the text of the message identified by handle.
func (c *Channel) Edit(ctx context.Context, handle delivery.Handle, text string) error {
	if err := ctx.Err(); err != nil {
		return delivery.NewError(delivery.KindUnknown, "edit", err)
	}

	messageID, err := strconv.Atoi(string(handle))
	if err != nil {
		return delivery.NewError(delivery.KindNotFound, "edit", fmt.Errorf("invalid message handle %q", handle))
	}

	edit := tgbotapi.EditMessageTextConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:          c.chatID,
			ChannelUsername: c.username,
			MessageID:       messageID,
		},
		Text:      text,
		ParseMode: tgbotapi.ModeHTML,
	}
	if _, err := c.sender.Send(edit); err != nil {
		return classify("edit", err)
	}
	return nil
}

func classify(op string, err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return delivery.NewError(delivery.KindUnknown, op, err)
	}

	message := strings.ToLower(apiErr.Message)
	switch {
	case strings.Contains(message, "message is not modified"):
		return delivery.NewError(delivery.KindUnchanged, op, err)
	case strings.Contains(message, "message to edit not found"),
		strings.Contains(message, "message not found"):
		return delivery.NewError(delivery.KindNotFound, op, err)
	case apiErr.Code == http.StatusForbidden,
		strings.Contains(message, "chat not found"),
		strings.Contains(message, "not enough rights"),
		strings.Contains(message, "have no rights"),
		strings.Contains(message, "bot was kicked"):
		return delivery.NewError(delivery.KindPermission, op, err)
	}
	return delivery.NewError(delivery.KindUnknown, op, err)
}
