// Package dispatch performs real sends for automation rules and implements
// the run path taken when a domain event fires.
package dispatch

import (
	"context"
	"fmt"

	"recruit-automation/internal/common/errors"
	"recruit-automation/internal/models"
)

// Dispatcher sends one rendered message to one recipient.
type Dispatcher interface {
	Dispatch(ctx context.Context, channel models.Channel, recipient string, msg models.RenderedMessage) error
}

// Sender delivers over a single channel.
type Sender interface {
	Send(ctx context.Context, recipient string, msg models.RenderedMessage) error
}

// Router picks the Sender registered for the message's channel.
type Router struct {
	senders map[models.Channel]Sender
}

func NewRouter() *Router {
	return &Router{senders: make(map[models.Channel]Sender)}
}

// Register installs s for channel, replacing any previous sender.
func (r *Router) Register(channel models.Channel, s Sender) *Router {
	r.senders[channel] = s
	return r
}

// Channels lists the channels with a registered sender.
func (r *Router) Channels() []models.Channel {
	var out []models.Channel
	for _, c := range models.Channels() {
		if _, ok := r.senders[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Dispatch fails with DISPATCH_FAILED when the channel has no sender or the
// sender errors. Sender errors are kept as the cause.
func (r *Router) Dispatch(ctx context.Context, channel models.Channel, recipient string, msg models.RenderedMessage) error {
	s, ok := r.senders[channel]
	if !ok {
		return errors.NewDispatchFailedError(string(channel), fmt.Errorf("channel %q is not enabled", channel))
	}
	if err := s.Send(ctx, recipient, msg); err != nil {
		if _, typed := errors.As(err); typed {
			return err
		}
		return errors.NewDispatchFailedError(string(channel), err)
	}
	return nil
}
