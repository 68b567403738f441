package notify

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
)

// LogDispatcher writes notifications to the request logger instead of
// delivering them. Variables are omitted since they may carry invite codes.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if _, _, err := Render(msg); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("notification",
		slog.String("kind", string(msg.Kind)),
		slog.String("to", msg.To),
	)
	return nil
}
