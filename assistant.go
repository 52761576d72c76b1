package shadowlink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/shadowlink/assistant"
	"github.com/opd-ai/shadowlink/contact"
	"github.com/opd-ai/shadowlink/messaging"
)

// askAssistant completes a Send to the assistant contact. The message is
// never encrypted; the reply is stored as a read message from the
// assistant. It must be started after track.
func (s *Session) askAssistant(msg messaging.Message) {
	defer s.untrack()

	s.store.UpdateState(msg.ID, messaging.StateSent)

	var prior []messaging.Message
	for _, m := range s.store.FilterConversation(s.PublicKey(), contact.AssistantContactID) {
		if m.ID != msg.ID {
			prior = append(prior, m)
		}
	}
	history := assistant.BuildHistory(prior, s.PublicKey())
	prompt, media := assistant.BuildPrompt(msg.Content, msg.Attachment)

	reply := s.responder.GenerateResponse(s.ctx, prompt, history, media)

	logrus.WithFields(logrus.Fields{
		"function":    "askAssistant",
		"message_id":  msg.ID,
		"history":     len(history),
		"media_items": len(media),
	}).Debug("Assistant replied")

	s.deliverMessage(messaging.Message{
		ID:          messaging.NewMessageID(),
		SenderID:    contact.AssistantContactID,
		RecipientID: s.PublicKey(),
		Content:     reply,
		Timestamp:   s.timeProvider.Now(),
		State:       messaging.StateRead,
	})
}

// ExecuteToolCall parses and runs a tool invocation from the assistant and
// returns its JSON result.
func (s *Session) ExecuteToolCall(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	call, err := assistant.ParseToolCall(name, args)
	if err != nil {
		return nil, err
	}
	return s.ExecuteTool(ctx, call)
}

// ExecuteTool runs a validated tool call and returns its JSON result.
func (s *Session) ExecuteTool(ctx context.Context, call assistant.ToolCall) (json.RawMessage, error) {
	var result interface{}

	switch call := call.(type) {
	case assistant.ResolveCode:
		c, err := s.LinkByCode(ctx, call.Code)
		if err != nil {
			return nil, err
		}
		result = summarize(c)

	case assistant.ListContacts:
		contacts := s.contacts.List()
		summaries := make([]assistant.ContactSummary, 0, len(contacts))
		for _, c := range contacts {
			summaries = append(summaries, summarize(c))
		}
		result = summaries

	case assistant.ReadConversation:
		if _, ok := s.contacts.Get(call.PeerID); !ok {
			return nil, fmt.Errorf("%w: %s", contact.ErrNotFound, call.PeerID)
		}
		limit := call.Limit
		if limit <= 0 {
			limit = assistant.DefaultConversationLimit
		}
		msgs := s.Conversation(call.PeerID)
		if len(msgs) > limit {
			msgs = msgs[len(msgs)-limit:]
		}
		entries := make([]assistant.ConversationEntry, 0, len(msgs))
		for _, m := range msgs {
			entries = append(entries, assistant.ConversationEntry{
				SenderID:  m.SenderID,
				Content:   m.Content,
				Timestamp: m.Timestamp.UnixMilli(),
				State:     m.State.String(),
			})
		}
		result = entries

	default:
		return nil, fmt.Errorf("%w: %T", assistant.ErrUnknownTool, call)
	}

	return json.Marshal(result)
}

func summarize(c contact.Contact) assistant.ContactSummary {
	return assistant.ContactSummary{
		ID:          c.ID,
		DisplayName: c.DisplayName,
		IsAutomated: c.IsAutomated,
	}
}
