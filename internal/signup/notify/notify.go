// Package notify delivers invite and signup notifications. Delivery is never
// on the critical path: services hand messages to FireAndForget, which logs
// failures instead of returning them.
package notify

import (
	"context"
	"errors"
)

// Kind selects the template a notification is rendered with.
type Kind string

const (
	KindInvite             Kind = "invite"
	KindSignupConfirmation Kind = "signup_confirmation"
)

// Message is one notification addressed to a single recipient.
type Message struct {
	To   string
	Kind Kind
	Vars map[string]string
}

// Dispatcher delivers a message through one channel (SMTP, NATS, log).
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

var (
	ErrNoRecipient = errors.New("notify: message has no recipient")
	ErrUnknownKind = errors.New("notify: unknown notification kind")
)
