package messaging

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// ConversationStore holds every message of a session in insertion order.
// It is safe for concurrent use.
type ConversationStore struct {
	mu        sync.RWMutex
	messages  []Message
	index     map[string]int
	callbacks []DeliveryCallback
}

// NewConversationStore creates an empty store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		index: make(map[string]int),
	}
}

// Append adds msg to the store. A message whose id is already present is
// ignored and false is returned.
func (s *ConversationStore) Append(msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[msg.ID]; exists {
		return false
	}
	s.index[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg.clone())
	return true
}

// UpdateState moves a message to state. Unknown ids and transitions the
// state machine does not allow are no-ops and return false.
func (s *ConversationStore) UpdateState(id string, state DeliveryState) bool {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	previous := s.messages[pos].State
	if !previous.CanTransition(state) {
		s.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"function":   "UpdateState",
			"message_id": id,
			"from":       previous.String(),
			"to":         state.String(),
		}).Debug("Ignoring invalid state transition")
		return false
	}
	s.messages[pos].State = state
	updated := s.messages[pos].clone()
	callbacks := append([]DeliveryCallback(nil), s.callbacks...)
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(updated, previous)
	}
	return true
}

// OnStateChange registers a callback invoked after every successful
// UpdateState. Callbacks run on the updating goroutine.
func (s *ConversationStore) OnStateChange(cb DeliveryCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

// Get returns a copy of the message with id.
func (s *ConversationStore) Get(id string) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return Message{}, false
	}
	return s.messages[pos].clone(), true
}

// FilterConversation returns the messages exchanged between self and peer
// in insertion order.
func (s *ConversationStore) FilterConversation(self, peer string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Message
	for _, m := range s.messages {
		if m.IsBetween(self, peer) {
			out = append(out, m.clone())
		}
	}
	return out
}

// Len returns the number of stored messages.
func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
