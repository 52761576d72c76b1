package shadowlink

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/shadowlink/assistant"
	"github.com/opd-ai/shadowlink/contact"
	"github.com/opd-ai/shadowlink/crypto"
	"github.com/opd-ai/shadowlink/directory"
	"github.com/opd-ai/shadowlink/identity"
	"github.com/opd-ai/shadowlink/messaging"
	"github.com/opd-ai/shadowlink/transport"
)

var (
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session closed")

	// ErrNoTransport is returned by New when no transport is supplied.
	ErrNoTransport = errors.New("transport is required")
)

// MessageCallback is called for every message added to the store that
// did not originate from a local Send: inbound peer messages and assistant
// replies.
type MessageCallback func(msg messaging.Message)

// ContactCallback is called when a contact is added by linking or
// auto-link.
type ContactCallback func(c contact.Contact)

// Session is one participant: an identity, its contacts and its
// conversations, attached to a transport.
type Session struct {
	options      *Options
	timeProvider crypto.TimeProvider

	identity  *identity.Manager
	transport transport.Transport
	resolver  *directory.Resolver
	contacts  *contact.Registry
	store     *messaging.ConversationStore
	codec     *messaging.Codec
	keys      *crypto.KeyCache
	responder assistant.Responder
	stats     *stats

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()

	// lifecycleMu guards closed and the work counters. active counts
	// tracked background work; inCallback counts the part of it currently
	// running a user callback.
	lifecycleMu sync.Mutex
	idle        *sync.Cond
	closed      bool
	active      int
	inCallback  int

	callbackMu      sync.RWMutex
	messageCallback MessageCallback
	contactCallback ContactCallback
}

// New creates a session with a fresh identity and attaches it to t. A nil
// options value selects NewOptions.
func New(t transport.Transport, options *Options) (*Session, error) {
	if t == nil {
		return nil, ErrNoTransport
	}
	if options == nil {
		options = NewOptions()
	}
	tp := crypto.OrDefault(options.TimeProvider)

	mgr, err := identity.NewManager(options.DisplayName, tp)
	if err != nil {
		return nil, err
	}

	codec, err := messaging.NewCodec(options.CipherSuite)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		options:      options,
		timeProvider: tp,
		identity:     mgr,
		transport:    t,
		store:        messaging.NewConversationStore(),
		codec:        codec,
		keys:         crypto.NewKeyCache(),
		responder:    assistant.Safe(options.Responder),
		stats:        newStats(options.EnableMetrics),
		ctx:          ctx,
		cancel:       cancel,
	}
	s.idle = sync.NewCond(&s.lifecycleMu)

	s.resolver = directory.NewResolver(mgr, t, options.ResolveTimeout)
	var dir directory.Directory = s.resolver
	if options.Directory != nil {
		dir = options.Directory
	}

	s.contacts = contact.NewRegistry(mgr.PublicKey(), dir, tp)
	s.stats.contacts.Set(float64(s.contacts.Len()))
	s.contacts.OnContactAdded(s.contactAdded)

	s.unsubscribe = t.Subscribe(transport.TopicMessages, s.handlePacket)

	logrus.WithFields(logrus.Fields{
		"function":     "New",
		"display_name": mgr.DisplayName(),
		"public_key":   crypto.KeyPrefix(mgr.PublicKey()),
		"cipher_suite": codec.Suite().String(),
	}).Info("Session started")

	return s, nil
}

// track registers one unit of background work. It returns false once the
// session is closed.
func (s *Session) track() bool {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if s.closed {
		return false
	}
	s.active++
	return true
}

// untrack releases a unit registered by track.
func (s *Session) untrack() {
	s.lifecycleMu.Lock()
	s.active--
	s.lifecycleMu.Unlock()
	s.idle.Broadcast()
}

// runCallback invokes a user callback. While it runs, the calling
// goroutine does not hold Close back, so callbacks may close the session.
func (s *Session) runCallback(fn func()) {
	s.lifecycleMu.Lock()
	s.inCallback++
	s.lifecycleMu.Unlock()
	s.idle.Broadcast()

	defer func() {
		s.lifecycleMu.Lock()
		s.inCallback--
		s.lifecycleMu.Unlock()
	}()
	fn()
}

// Close detaches the session from the transport, fails pending
// resolutions, waits for background work and forgets all derived keys.
// Work blocked inside a user callback is not waited for, so Close may be
// called from OnMessage, OnStateChange and OnContactAdded.
func (s *Session) Close() error {
	s.lifecycleMu.Lock()
	if s.closed {
		s.lifecycleMu.Unlock()
		return nil
	}
	s.closed = true
	s.lifecycleMu.Unlock()

	s.cancel()
	s.unsubscribe()
	s.resolver.Close()

	s.lifecycleMu.Lock()
	for s.active > s.inCallback {
		s.idle.Wait()
	}
	s.lifecycleMu.Unlock()
	s.keys.Clear()

	logrus.WithFields(logrus.Fields{
		"function":   "Close",
		"public_key": crypto.KeyPrefix(s.PublicKey()),
	}).Info("Session closed")
	return nil
}

// PublicKey returns the local identity's canonical id.
func (s *Session) PublicKey() string {
	return s.identity.PublicKey()
}

// DisplayName returns the local display name.
func (s *Session) DisplayName() string {
	return s.identity.DisplayName()
}

// LinkingCode returns today's linking code for the local identity.
func (s *Session) LinkingCode() string {
	return s.identity.CurrentCode()
}

// Contacts returns all contacts in the order they were added.
func (s *Session) Contacts() []contact.Contact {
	return s.contacts.List()
}

// Contact returns the contact with id.
func (s *Session) Contact(id string) (contact.Contact, bool) {
	return s.contacts.Get(id)
}

// Conversation returns the messages exchanged with peerID in order.
func (s *Session) Conversation(peerID string) []messaging.Message {
	return s.store.FilterConversation(s.PublicKey(), peerID)
}

// Message returns the stored message with id.
func (s *Session) Message(id string) (messaging.Message, bool) {
	return s.store.Get(id)
}

// Registry returns the Prometheus registry holding the session metrics.
func (s *Session) Registry() *prometheus.Registry {
	return s.stats.reg
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() Stats {
	return Stats{
		MessagesSent:     s.stats.sentAtomic.Load(),
		MessagesFailed:   s.stats.failedAtomic.Load(),
		MessagesReceived: s.stats.receivedAtomic.Load(),
		DecryptFailures:  s.stats.decryptFailsAtomic.Load(),
		Contacts:         s.contacts.Len(),
	}
}

// OnMessage sets the callback for received messages.
func (s *Session) OnMessage(callback MessageCallback) {
	s.callbackMu.Lock()
	defer s.callbackMu.Unlock()
	s.messageCallback = callback
}

// OnContactAdded sets the callback for new contacts.
func (s *Session) OnContactAdded(callback ContactCallback) {
	s.callbackMu.Lock()
	defer s.callbackMu.Unlock()
	s.contactCallback = callback
}

// OnStateChange registers a callback for delivery state changes.
func (s *Session) OnStateChange(callback messaging.DeliveryCallback) {
	if callback == nil {
		return
	}
	s.store.OnStateChange(func(msg messaging.Message, previous messaging.DeliveryState) {
		s.runCallback(func() { callback(msg, previous) })
	})
}

func (s *Session) contactAdded(c contact.Contact) {
	s.stats.contacts.Set(float64(s.contacts.Len()))

	s.callbackMu.RLock()
	cb := s.contactCallback
	s.callbackMu.RUnlock()
	if cb != nil {
		s.runCallback(func() { cb(c) })
	}
}

func (s *Session) deliverMessage(msg messaging.Message) {
	s.store.Append(msg)

	s.callbackMu.RLock()
	cb := s.messageCallback
	s.callbackMu.RUnlock()
	if cb != nil {
		s.runCallback(func() { cb(msg) })
	}
}

// sharedKey returns the cached pairwise key for c, deriving it on first use.
func (s *Session) sharedKey(c contact.Contact) (crypto.SymmetricKey, error) {
	return s.keys.GetOrDerive(c.ID, func() (crypto.SymmetricKey, error) {
		return s.identity.Identity().Agree(c.PublicKey)
	})
}
