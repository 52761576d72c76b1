package contact

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/opd-ai/shadowlink/crypto"
	"github.com/opd-ai/shadowlink/directory"
	"github.com/opd-ai/shadowlink/identity"
	"github.com/opd-ai/shadowlink/limits"
)

// AddedCallback is called after a contact is inserted.
type AddedCallback func(c Contact)

// Registry maps contact ids to contacts in insertion order. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	contacts *orderedmap.OrderedMap[string, Contact]

	selfID       string
	directory    directory.Directory
	timeProvider crypto.TimeProvider
	onAdded      []AddedCallback
}

// NewRegistry creates a registry for the identity selfID, holding only the
// assistant contact. dir may be nil if codes are never resolved.
func NewRegistry(selfID string, dir directory.Directory, tp crypto.TimeProvider) *Registry {
	tp = crypto.OrDefault(tp)
	r := &Registry{
		contacts:     orderedmap.New[string, Contact](),
		selfID:       selfID,
		directory:    dir,
		timeProvider: tp,
	}
	r.contacts.Set(AssistantContactID, AssistantContact(tp.Now()))
	return r
}

// OnContactAdded registers a callback invoked after every insertion.
func (r *Registry) OnContactAdded(cb AddedCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onAdded = append(r.onAdded, cb)
}

// ResolveAndLink resolves code through the directory and inserts the
// resulting contact if it is not already known. created reports whether a
// new contact was inserted.
func (r *Registry) ResolveAndLink(ctx context.Context, code string) (c Contact, created bool, err error) {
	code, err = identity.NormalizeCode(code)
	if err != nil {
		return Contact{}, false, err
	}
	if r.directory == nil {
		return Contact{}, false, directory.ErrCodeNotFound
	}

	res, err := r.directory.Resolve(ctx, code)
	if err != nil {
		return Contact{}, false, err
	}
	if res.PublicKey == r.selfID {
		return Contact{}, false, directory.ErrSelfLink
	}
	if res.PublicKey == AssistantContactID {
		return Contact{}, false, ErrReservedID
	}

	if existing, ok := r.Get(res.PublicKey); ok {
		r.BackfillDisplayName(res.PublicKey, res.DisplayName)
		existing, _ = r.Get(res.PublicKey)
		return existing, false, nil
	}

	pub, err := crypto.ImportPublicKey(res.PublicKey)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ResolveAndLink",
			"code":     code,
			"error":    err.Error(),
		}).Warn("Directory returned malformed public key")
		return Contact{}, false, err
	}

	return r.Insert(Contact{
		ID:          res.PublicKey,
		DisplayName: sanitizeName(res.DisplayName),
		PublicKey:   pub,
		AddedAt:     r.timeProvider.Now(),
	})
}

// AutoLink inserts a contact for an unknown sender. It is idempotent:
// concurrent calls for the same sender create exactly one contact and only
// one caller observes created == true.
func (r *Registry) AutoLink(senderID, claimedName string) (c Contact, created bool, err error) {
	switch senderID {
	case r.selfID:
		return Contact{}, false, directory.ErrSelfLink
	case AssistantContactID:
		return Contact{}, false, ErrReservedID
	}

	if existing, ok := r.Get(senderID); ok {
		return existing, false, nil
	}

	pub, err := crypto.ImportPublicKey(senderID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "AutoLink",
			"sender":   crypto.KeyPrefix(senderID),
			"error":    err.Error(),
		}).Warn("Refusing to auto-link sender with malformed key")
		return Contact{}, false, err
	}

	return r.Insert(Contact{
		ID:          senderID,
		DisplayName: sanitizeName(claimedName),
		PublicKey:   pub,
		AddedAt:     r.timeProvider.Now(),
	})
}

// Insert adds c unless a contact with the same id exists, in which case the
// existing contact is returned with created == false.
func (r *Registry) Insert(c Contact) (Contact, bool, error) {
	if c.ID == "" {
		return Contact{}, false, limits.ErrEmpty
	}

	r.mu.Lock()
	if existing, ok := r.contacts.Get(c.ID); ok {
		r.mu.Unlock()
		return existing, false, nil
	}
	if c.AddedAt.IsZero() {
		c.AddedAt = r.timeProvider.Now()
	}
	r.contacts.Set(c.ID, c)
	callbacks := append([]AddedCallback(nil), r.onAdded...)
	r.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":     "Insert",
		"contact_id":   crypto.KeyPrefix(c.ID),
		"display_name": c.DisplayName,
	}).Info("Contact added")

	for _, cb := range callbacks {
		cb(c)
	}
	return c, true, nil
}

// Get returns the contact with id.
func (r *Registry) Get(id string) (Contact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contacts.Get(id)
}

// List returns all contacts in insertion order, assistant first.
func (r *Registry) List() []Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Contact, 0, r.contacts.Len())
	for pair := r.contacts.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Len returns the number of contacts including the assistant.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contacts.Len()
}

// BackfillDisplayName sets the display name of a contact whose current name
// is empty or the unknown placeholder. It reports whether the name changed.
func (r *Registry) BackfillDisplayName(id, name string) bool {
	name = strings.TrimSpace(name)
	if limits.ValidateDisplayName(name) != nil || name == UnknownDisplayName {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contacts.Get(id)
	if !ok || c.IsAutomated || !hasPlaceholderName(c) {
		return false
	}
	c.DisplayName = name
	r.contacts.Set(id, c)
	return true
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if limits.ValidateDisplayName(name) != nil {
		return UnknownDisplayName
	}
	return name
}
