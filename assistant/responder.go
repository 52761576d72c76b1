package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message in the assistant conversation.
type Turn struct {
	Role Role
	Text string
}

// Media is an inline attachment passed to the assistant.
type Media struct {
	MimeType   string
	Base64Data string
}

// Responder produces the assistant's reply. Implementations must not panic
// and report failures as response text.
type Responder interface {
	GenerateResponse(ctx context.Context, prompt string, history []Turn, media []Media) string
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, prompt string, history []Turn, media []Media) string

// GenerateResponse calls f.
func (f ResponderFunc) GenerateResponse(ctx context.Context, prompt string, history []Turn, media []Media) string {
	return f(ctx, prompt, history, media)
}

// In-band replies for failures that happen outside the collaborator.
const (
	ReplyNotConfigured = "Error: assistant backend not configured."
	ReplyEmpty         = "ERR_NULL_RESPONSE"
	ReplyFailure       = "ERR_NETWORK_FAILURE: NEURAL_LINK_SEVERED"
)

// OfflineResponder answers every prompt with ReplyNotConfigured. It is the
// default when a session has no backend.
type OfflineResponder struct{}

// GenerateResponse returns ReplyNotConfigured.
func (OfflineResponder) GenerateResponse(context.Context, string, []Turn, []Media) string {
	return ReplyNotConfigured
}

// EchoResponder repeats the prompt back, noting history length and media.
// It is used by demos and tests.
type EchoResponder struct {
	Prefix string
}

// GenerateResponse echoes prompt.
func (e EchoResponder) GenerateResponse(_ context.Context, prompt string, history []Turn, media []Media) string {
	prefix := e.Prefix
	if prefix == "" {
		prefix = "ECHO"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]: %s", prefix, len(history), prompt)
	for _, m := range media {
		fmt.Fprintf(&b, " <%s>", m.MimeType)
	}
	return b.String()
}

// Safe wraps r so that a panic or an empty reply becomes an in-band error
// string. A nil r yields an OfflineResponder.
func Safe(r Responder) Responder {
	if r == nil {
		return OfflineResponder{}
	}
	return ResponderFunc(func(ctx context.Context, prompt string, history []Turn, media []Media) (reply string) {
		defer func() {
			if p := recover(); p != nil {
				logrus.WithFields(logrus.Fields{
					"function": "GenerateResponse",
					"panic":    fmt.Sprint(p),
				}).Error("Assistant backend panicked")
				reply = ReplyFailure
			}
		}()
		if err := ctx.Err(); err != nil {
			return ReplyFailure
		}
		reply = r.GenerateResponse(ctx, prompt, history, media)
		if strings.TrimSpace(reply) == "" {
			return ReplyEmpty
		}
		return reply
	})
}
