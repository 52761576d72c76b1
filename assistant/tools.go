package assistant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultConversationLimit is used when read_conversation omits limit.
	DefaultConversationLimit = 20
	// MaxConversationLimit caps read_conversation.
	MaxConversationLimit = 200
)

var (
	// ErrUnknownTool is returned for tool names outside the supported set.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments is returned when tool arguments fail validation.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// ToolCall is one of ResolveCode, ListContacts or ReadConversation.
type ToolCall interface {
	ToolName() string
	toolCall()
}

// ResolveCode asks the session to link with the owner of a linking code.
type ResolveCode struct {
	Code string `json:"code"`
}

// ListContacts asks for the contact list.
type ListContacts struct{}

// ReadConversation asks for the most recent messages exchanged with a peer.
type ReadConversation struct {
	PeerID string `json:"peer_id"`
	Limit  int    `json:"limit,omitempty"`
}

func (ResolveCode) ToolName() string      { return "resolve_code" }
func (ListContacts) ToolName() string     { return "list_contacts" }
func (ReadConversation) ToolName() string { return "read_conversation" }

func (ResolveCode) toolCall()      {}
func (ListContacts) toolCall()     {}
func (ReadConversation) toolCall() {}

// ParseToolCall decodes and validates a tool invocation. Unknown fields are
// rejected.
func ParseToolCall(name string, args json.RawMessage) (ToolCall, error) {
	switch name {
	case "resolve_code":
		var call ResolveCode
		if err := decodeArgs(args, &call); err != nil {
			return nil, err
		}
		call.Code = strings.TrimSpace(call.Code)
		if call.Code == "" {
			return nil, fmt.Errorf("%w: resolve_code requires code", ErrInvalidArguments)
		}
		return call, nil

	case "list_contacts":
		var call ListContacts
		if err := decodeArgs(args, &call); err != nil {
			return nil, err
		}
		return call, nil

	case "read_conversation":
		var call ReadConversation
		if err := decodeArgs(args, &call); err != nil {
			return nil, err
		}
		if call.PeerID == "" {
			return nil, fmt.Errorf("%w: read_conversation requires peer_id", ErrInvalidArguments)
		}
		switch {
		case call.Limit < 0 || call.Limit > MaxConversationLimit:
			return nil, fmt.Errorf("%w: limit %d outside 0..%d", ErrInvalidArguments, call.Limit, MaxConversationLimit)
		case call.Limit == 0:
			call.Limit = DefaultConversationLimit
		}
		return call, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

// ContactSummary is the list_contacts result entry.
type ContactSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsAutomated bool   `json:"is_automated"`
}

// ConversationEntry is the read_conversation result entry.
type ConversationEntry struct {
	SenderID  string `json:"sender_id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	State     string `json:"state"`
}
