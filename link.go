package shadowlink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/shadowlink/contact"
	"github.com/opd-ai/shadowlink/crypto"
	"github.com/opd-ai/shadowlink/directory"
	"github.com/opd-ai/shadowlink/messaging"
)

// HandshakeText returns the announcement sent to a newly linked contact.
func HandshakeText(displayName string) string {
	return fmt.Sprintf("[SYSTEM_HANDSHAKE]: Secure Link Established by %s.", displayName)
}

// LinkByCode resolves code and adds its owner as a contact. When the
// contact is new a handshake message is sent to it in the background; an
// already known contact is returned unchanged.
func (s *Session) LinkByCode(ctx context.Context, code string) (contact.Contact, error) {
	if !s.track() {
		return contact.Contact{}, ErrClosed
	}
	defer s.untrack()

	c, created, err := s.contacts.ResolveAndLink(ctx, code)
	switch {
	case errors.Is(err, directory.ErrCodeNotFound):
		s.stats.resolution(resolutionNotFound)
		return contact.Contact{}, err
	case errors.Is(err, directory.ErrSelfLink):
		s.stats.resolution(resolutionSelf)
		return contact.Contact{}, err
	case err != nil:
		s.stats.resolution(resolutionError)
		return contact.Contact{}, err
	case !created:
		s.stats.resolution(resolutionExisting)
		return c, nil
	}

	s.stats.resolution(resolutionLinked)
	logrus.WithFields(logrus.Fields{
		"function":     "LinkByCode",
		"contact_id":   crypto.KeyPrefix(c.ID),
		"display_name": c.DisplayName,
	}).Info("Contact linked")

	if s.track() {
		go s.sendHandshake(c)
	}
	return c, nil
}

// sendHandshake announces the local identity to c. The handshake is
// recorded in the conversation only once the transport accepted it.
func (s *Session) sendHandshake(c contact.Contact) {
	defer s.untrack()

	if d := s.options.HandshakeDelay; d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-s.ctx.Done():
			return
		}
	}

	content := HandshakeText(s.DisplayName())
	logger := logrus.WithFields(logrus.Fields{
		"function":   "sendHandshake",
		"contact_id": crypto.KeyPrefix(c.ID),
	})

	now := s.timeProvider.Now()
	if err := s.transmit(c, content, nil, now); err != nil {
		logger.WithError(err).Warn("Handshake failed")
		s.stats.messageFailed()
		return
	}

	s.stats.messageSent()
	s.store.Append(messaging.Message{
		ID:          messaging.NewMessageID(),
		SenderID:    s.PublicKey(),
		RecipientID: c.ID,
		Content:     content,
		Timestamp:   now,
		State:       messaging.StateSent,
	})
	logger.Debug("Handshake sent")
}
