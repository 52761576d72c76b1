package shadowlink

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/shadowlink/contact"
	"github.com/opd-ai/shadowlink/crypto"
	"github.com/opd-ai/shadowlink/limits"
	"github.com/opd-ai/shadowlink/messaging"
	"github.com/opd-ai/shadowlink/transport"
)

// OutgoingAttachment is a file to send along with a message.
type OutgoingAttachment struct {
	Name     string
	MimeType string
	Data     []byte
}

// AttachmentURL returns the local handle for an attachment of a message.
func AttachmentURL(messageID, name string) string {
	return fmt.Sprintf("attachment://%s/%s", messageID, name)
}

// Send stores a message to contactID in the sending state and returns it.
// Encryption and submission happen in the background; the stored message
// moves to sent when the transport accepts it and to failed otherwise.
// Messages to the assistant contact are answered by the Responder instead.
func (s *Session) Send(ctx context.Context, contactID, content string, att *OutgoingAttachment) (messaging.Message, error) {
	if err := ctx.Err(); err != nil {
		return messaging.Message{}, err
	}
	if err := limits.ValidateContent(content, att != nil); err != nil {
		return messaging.Message{}, err
	}
	if att != nil {
		if err := limits.ValidateAttachment(att.Name, int64(len(att.Data))); err != nil {
			return messaging.Message{}, err
		}
	}

	c, ok := s.contacts.Get(contactID)
	if !ok {
		return messaging.Message{}, fmt.Errorf("%w: %s", contact.ErrNotFound, crypto.KeyPrefix(contactID))
	}

	if !s.track() {
		return messaging.Message{}, ErrClosed
	}

	msg := messaging.Message{
		ID:          messaging.NewMessageID(),
		SenderID:    s.PublicKey(),
		RecipientID: c.ID,
		Content:     content,
		Timestamp:   s.timeProvider.Now(),
		State:       messaging.StateSending,
	}
	if att != nil {
		data := make([]byte, len(att.Data))
		copy(data, att.Data)
		msg.Attachment = &messaging.Attachment{
			Name:     att.Name,
			Size:     int64(len(data)),
			MimeType: att.MimeType,
			Data:     data,
			URL:      AttachmentURL(msg.ID, att.Name),
		}
	}
	s.store.Append(msg)

	if c.IsAutomated {
		go s.askAssistant(msg)
	} else {
		go s.deliver(c, msg)
	}
	return msg, nil
}

// deliver completes a Send to a peer. It must be started after track.
func (s *Session) deliver(c contact.Contact, msg messaging.Message) {
	defer s.untrack()

	logger := logrus.WithFields(logrus.Fields{
		"function":   "deliver",
		"message_id": msg.ID,
		"recipient":  crypto.KeyPrefix(c.ID),
	})

	if err := s.transmit(c, msg.Content, msg.Attachment, msg.Timestamp); err != nil {
		logger.WithError(err).Warn("Message delivery failed")
		s.stats.messageFailed()
		s.store.UpdateState(msg.ID, messaging.StateFailed)
		return
	}

	s.stats.messageSent()
	s.store.UpdateState(msg.ID, messaging.StateSent)
	logger.Debug("Message sent")
}

// transmit encrypts content for c and broadcasts it. Nothing is submitted
// to the transport unless encryption succeeded.
func (s *Session) transmit(c contact.Contact, content string, att *messaging.Attachment, sentAt time.Time) error {
	key, err := s.sharedKey(c)
	if err != nil {
		return err
	}

	env, err := s.codec.Seal(key, []byte(content), s.PublicKey(), att.Metadata(), sentAt)
	if err != nil {
		return err
	}
	payload, err := env.Marshal()
	if err != nil {
		return err
	}

	pkt := &transport.MessagePacket{
		Type:           transport.PacketMessage,
		TargetID:       c.ID,
		SenderID:       s.PublicKey(),
		SenderUsername: s.DisplayName(),
		Payload:        payload,
	}
	if att != nil {
		pkt.Attachment = att.Data
	}
	data, err := pkt.Serialize()
	if err != nil {
		return err
	}

	return s.transport.Broadcast(s.ctx, transport.TopicMessages, data)
}
