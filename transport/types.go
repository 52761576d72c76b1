package transport

import (
	"context"
	"errors"
)

// Topic names a logical broadcast channel.
type Topic string

const (
	// TopicMessages carries point-to-point message packets. Every party
	// receives every packet and filters on the target id.
	TopicMessages Topic = "shadowlink_secure_network"

	// TopicDirectory carries directory QUERY and RESPONSE packets.
	TopicDirectory Topic = "shadowlink_directory"
)

// Handler processes one raw packet received on a topic. Handlers may run
// concurrently with each other and must not retain data after returning
// unless they copy it.
type Handler func(data []byte)

// Transport is the reliable broadcast abstraction the protocol is layered
// on. Implementations deliver every packet broadcast on a topic to every
// subscriber of that topic, including the sender's own subscriptions.
type Transport interface {
	// Broadcast submits a packet on topic. A nil error means the transport
	// accepted the packet, not that any peer processed it.
	Broadcast(ctx context.Context, topic Topic, data []byte) error

	// Subscribe registers handler for topic and returns a function that
	// removes the subscription.
	Subscribe(topic Topic, handler Handler) (unsubscribe func())
}

// ErrClosed is returned when broadcasting on a closed transport.
var ErrClosed = errors.New("transport closed")
