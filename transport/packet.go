package transport

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PacketType identifies the kind of a packet.
type PacketType string

const (
	// PacketMessage is an addressed envelope on TopicMessages.
	PacketMessage PacketType = "MSG"
	// PacketQuery asks who currently owns a linking code.
	PacketQuery PacketType = "QUERY"
	// PacketResponse answers a PacketQuery.
	PacketResponse PacketType = "RESPONSE"
)

// ErrMalformedPacket indicates a packet that failed to parse or validate.
var ErrMalformedPacket = errors.New("malformed packet")

// MessagePacket is the unit broadcast on TopicMessages. Payload holds the
// JSON encoded encrypted envelope. Attachment is the out-of-band binary
// described by the envelope's attachment metadata.
type MessagePacket struct {
	Type           PacketType      `json:"type"`
	TargetID       string          `json:"targetId"`
	SenderID       string          `json:"senderId"`
	SenderUsername string          `json:"senderUsername"`
	Payload        json.RawMessage `json:"payload"`
	Attachment     []byte          `json:"fileBlob,omitempty"`
}

// Serialize converts a packet to bytes for transmission.
func (p *MessagePacket) Serialize() ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

func (p *MessagePacket) validate() error {
	switch {
	case p.Type != PacketMessage:
		return fmt.Errorf("%w: unexpected type %q", ErrMalformedPacket, p.Type)
	case p.TargetID == "":
		return fmt.Errorf("%w: missing target id", ErrMalformedPacket)
	case p.SenderID == "":
		return fmt.Errorf("%w: missing sender id", ErrMalformedPacket)
	case len(p.Payload) == 0:
		return fmt.Errorf("%w: missing payload", ErrMalformedPacket)
	}
	return nil
}

// ParseMessagePacket decodes and validates a message packet.
func ParseMessagePacket(data []byte) (*MessagePacket, error) {
	var p MessagePacket
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPacket, err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// DirectoryPacket is the unit broadcast on TopicDirectory. Queries carry
// Code, RequesterID and RequestID; responses additionally carry the
// responder's PublicKey and Username and echo the query fields.
type DirectoryPacket struct {
	Type        PacketType `json:"type"`
	Code        string     `json:"code"`
	PublicKey   string     `json:"publicKey,omitempty"`
	Username    string     `json:"username,omitempty"`
	RequesterID string     `json:"requesterId"`
	RequestID   string     `json:"requestId"`
}

// Serialize converts a directory packet to bytes for transmission.
func (p *DirectoryPacket) Serialize() ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

func (p *DirectoryPacket) validate() error {
	if p.Code == "" || p.RequesterID == "" || p.RequestID == "" {
		return fmt.Errorf("%w: directory packet missing code, requester or request id", ErrMalformedPacket)
	}
	switch p.Type {
	case PacketQuery:
		return nil
	case PacketResponse:
		if p.PublicKey == "" {
			return fmt.Errorf("%w: response without public key", ErrMalformedPacket)
		}
		return nil
	default:
		return fmt.Errorf("%w: unexpected type %q", ErrMalformedPacket, p.Type)
	}
}

// ParseDirectoryPacket decodes and validates a directory packet.
func ParseDirectoryPacket(data []byte) (*DirectoryPacket, error) {
	var p DirectoryPacket
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPacket, err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
