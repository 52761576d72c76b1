package shadowlink

import (
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/shadowlink/contact"
	"github.com/opd-ai/shadowlink/crypto"
	"github.com/opd-ai/shadowlink/messaging"
	"github.com/opd-ai/shadowlink/transport"
)

// handlePacket processes one packet from the message topic. Packets not
// addressed to the local identity are ignored. Unknown senders are linked
// only after their envelope authenticates.
func (s *Session) handlePacket(data []byte) {
	if !s.track() {
		return
	}
	defer s.untrack()

	pkt, err := transport.ParseMessagePacket(data)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "handlePacket",
			"error":    err.Error(),
		}).Debug("Dropping malformed message packet")
		return
	}

	self := s.PublicKey()
	if pkt.TargetID != self || pkt.SenderID == self {
		return
	}

	logger := logrus.WithFields(logrus.Fields{
		"function": "handlePacket",
		"sender":   crypto.KeyPrefix(pkt.SenderID),
	})

	env, err := messaging.ParseEnvelope(pkt.Payload)
	if err != nil {
		logger.WithError(err).Warn("Dropping malformed envelope")
		s.stats.decryptFailed()
		return
	}
	if env.SenderPublicKey != pkt.SenderID {
		logger.Warn("Envelope sender does not match packet sender")
		s.stats.decryptFailed()
		return
	}

	known, isKnown := s.contacts.Get(pkt.SenderID)
	if isKnown && known.IsAutomated {
		return
	}

	key, err := s.inboundKey(known, isKnown, pkt.SenderID)
	if err != nil {
		logger.WithError(err).Warn("Cannot derive key for sender")
		s.stats.decryptFailed()
		return
	}

	plaintext, err := s.codec.Open(key, env)
	if err != nil {
		logger.WithError(err).Warn("Dropping envelope that failed authentication")
		s.stats.decryptFailed()
		if !isKnown {
			crypto.WipeSymmetricKey(&key)
		}
		return
	}

	if !isKnown {
		c, created, err := s.contacts.AutoLink(pkt.SenderID, pkt.SenderUsername)
		if err != nil {
			logger.WithError(err).Warn("Auto-link failed")
			crypto.WipeSymmetricKey(&key)
			return
		}
		s.keys.Store(c.ID, key)
		if created {
			logger.WithField("display_name", c.DisplayName).Info("Auto-linked new contact")
		}
	} else {
		s.contacts.BackfillDisplayName(pkt.SenderID, pkt.SenderUsername)
	}

	msg := messaging.Message{
		ID:          messaging.NewMessageID(),
		SenderID:    pkt.SenderID,
		RecipientID: self,
		Content:     string(plaintext),
		Timestamp:   env.Time(),
		State:       messaging.StateRead,
	}
	msg.Attachment = reassembleAttachment(msg.ID, env.AttachmentMetadata, pkt.Attachment, logger)

	s.stats.messageReceived()
	s.deliverMessage(msg)
	logger.Debug("Message received")
}

// inboundKey returns the key for an inbound sender. Keys of unknown senders
// are derived without caching; they enter the cache only once the sender
// is linked.
func (s *Session) inboundKey(c contact.Contact, known bool, senderID string) (crypto.SymmetricKey, error) {
	if known {
		return s.sharedKey(c)
	}
	peer, err := crypto.ImportPublicKey(senderID)
	if err != nil {
		return crypto.SymmetricKey{}, err
	}
	return s.identity.Identity().Agree(peer)
}

// reassembleAttachment pairs authenticated metadata with the out-of-band
// binary. A binary whose size disagrees with the metadata is discarded.
func reassembleAttachment(messageID string, meta *messaging.AttachmentMetadata, blob []byte, logger *logrus.Entry) *messaging.Attachment {
	if meta == nil {
		return nil
	}
	if int64(len(blob)) != meta.Size {
		logger.WithFields(logrus.Fields{
			"expected_size": meta.Size,
			"actual_size":   len(blob),
		}).Warn("Discarding attachment with mismatched size")
		return nil
	}
	return &messaging.Attachment{
		Name:     meta.Name,
		Size:     meta.Size,
		MimeType: meta.MimeType,
		Data:     blob,
		URL:      AttachmentURL(messageID, meta.Name),
	}
}
