package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"recruit-automation/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// InAppNotification is the payload pushed to a user's notification feed.
type InAppNotification struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// InAppSender publishes to a per-recipient Redis channel for live clients
// and keeps a capped inbox list for clients that connect later.
type InAppSender struct {
	rdb       redis.Cmdable
	prefix    string
	inboxSize int64
	now       func() time.Time
	newID     func() string
}

func NewInAppSender(rdb redis.Cmdable, prefix string, inboxSize int) *InAppSender {
	if inboxSize <= 0 {
		inboxSize = 100
	}
	return &InAppSender{
		rdb:       rdb,
		prefix:    prefix,
		inboxSize: int64(inboxSize),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// ChannelKey is the pub/sub channel for recipient.
func (s *InAppSender) ChannelKey(recipient string) string {
	return fmt.Sprintf("%s:%s", s.prefix, recipient)
}

// InboxKey is the list holding recipient's recent notifications, newest first.
func (s *InAppSender) InboxKey(recipient string) string {
	return fmt.Sprintf("%s:inbox:%s", s.prefix, recipient)
}

func (s *InAppSender) Send(ctx context.Context, recipient string, msg models.RenderedMessage) error {
	payload, err := json.Marshal(InAppNotification{
		ID:        s.newID(),
		Subject:   msg.Subject,
		Body:      msg.Body,
		CreatedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	inbox := s.InboxKey(recipient)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, inbox, payload)
		pipe.LTrim(ctx, inbox, 0, s.inboxSize-1)
		pipe.Publish(ctx, s.ChannelKey(recipient), payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}
