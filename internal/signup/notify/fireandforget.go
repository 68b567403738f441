package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
)

// DefaultSendTimeout bounds a single background delivery.
const DefaultSendTimeout = 3 * time.Second

// FireAndForget runs deliveries in the background. Failures are logged and
// never reach the caller. A nil *FireAndForget drops every message.
type FireAndForget struct {
	d       Dispatcher
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewFireAndForget(d Dispatcher, timeout time.Duration) *FireAndForget {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &FireAndForget{d: d, timeout: timeout}
}

// Send schedules delivery and returns immediately.
func (f *FireAndForget) Send(ctx context.Context, to string, kind Kind, vars map[string]string) {
	if f == nil || f.d == nil {
		return
	}

	log := slogx.FromContext(ctx)
	ctx = context.WithoutCancel(ctx)
	msg := Message{To: to, Kind: kind, Vars: vars}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error("notification dispatcher panicked",
					slog.String("kind", string(kind)),
					slog.Any("panic", r),
				)
			}
		}()

		sendCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		if err := f.d.Dispatch(sendCtx, msg); err != nil {
			log.Warn("notification delivery failed",
				slog.String("kind", string(kind)),
				slog.Any("error", err),
			)
		}
	}()
}

// Wait blocks until in-flight deliveries finish. Used on shutdown.
func (f *FireAndForget) Wait() {
	if f == nil {
		return
	}
	f.wg.Wait()
}
