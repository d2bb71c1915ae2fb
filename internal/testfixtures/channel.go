package testfixtures

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/game-announcer/internal/delivery"
)

// SentMessage is one message held by a RecordingChannel.
type SentMessage struct {
	Handle delivery.Handle
	Text   string
	Edits  int
}

// RecordingChannel is an in-memory delivery.Channel. It reports unchanged
// edits the way a real chat platform does and can be primed with failures.
type RecordingChannel struct {
	mu       sync.Mutex
	next     int
	messages map[delivery.Handle]*SentMessage
	order    []delivery.Handle
	sendErr  error
	editErr  error
}

// NewRecordingChannel returns an empty channel.
func NewRecordingChannel() *RecordingChannel {
	return &RecordingChannel{messages: make(map[delivery.Handle]*SentMessage)}
}

// FailSends makes subsequent Send calls return err. Pass nil to recover.
func (c *RecordingChannel) FailSends(err error) {
	c.mu.Lock()
	c.sendErr = err
	c.mu.Unlock()
}

// FailEdits makes subsequent Edit calls return err. Pass nil to recover.
func (c *RecordingChannel) FailEdits(err error) {
	c.mu.Lock()
	c.editErr = err
	c.mu.Unlock()
}

// Delete removes a message so later edits fail with delivery.KindNotFound.
func (c *RecordingChannel) Delete(handle delivery.Handle) {
	c.mu.Lock()
	delete(c.messages, handle)
	c.mu.Unlock()
}

// Send implements delivery.Channel.
func (c *RecordingChannel) Send(ctx context.Context, text string) (delivery.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return "", c.sendErr
	}
	c.next++
	handle := delivery.Handle(fmt.Sprintf("%d", c.next))
	c.messages[handle] = &SentMessage{Handle: handle, Text: text}
	c.order = append(c.order, handle)
	return handle, nil
}

// Edit implements delivery.Channel.
func (c *RecordingChannel) Edit(ctx context.Context, handle delivery.Handle, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editErr != nil {
		return c.editErr
	}
	msg, ok := c.messages[handle]
	if !ok {
		return delivery.NewError(delivery.KindNotFound, "edit", fmt.Errorf("message %s not found", handle))
	}
	if msg.Text == text {
		return delivery.NewError(delivery.KindUnchanged, "edit", fmt.Errorf("message %s is not modified", handle))
	}
	msg.Text = text
	msg.Edits++
	return nil
}

// Sent returns copies of every message still held, in send order.
func (c *RecordingChannel) Sent() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SentMessage, 0, len(c.order))
	for _, handle := range c.order {
		if msg, ok := c.messages[handle]; ok {
			out = append(out, *msg)
		}
	}
	return out
}

// Message returns a copy of the message stored under handle.
func (c *RecordingChannel) Message(handle delivery.Handle) (SentMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, ok := c.messages[handle]
	if !ok {
		return SentMessage{}, false
	}
	return *msg, true
}
