// Package shadowlink implements an end-to-end encrypted peer messaging
// session built on ephemeral identities and rotating linking codes.
//
// A Session owns one P-256 identity, answers directory queries for its
// current linking code, links contacts by code, and exchanges authenticated
// AES-GCM envelopes with them over a broadcast Transport.
//
// # Getting Started
//
//	bus := transport.NewMemoryBus()
//
//	options := shadowlink.NewOptions()
//	options.DisplayName = "NEO"
//
//	session, err := shadowlink.New(bus, options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	fmt.Println("Share this code:", session.LinkingCode())
//
//	session.OnMessage(func(msg messaging.Message) {
//	    fmt.Printf("%s: %s\n", msg.SenderID, msg.Content)
//	})
//
// # Linking
//
// LinkByCode resolves a code through the directory and adds the owner as a
// contact. A newly linked contact receives a handshake message so that it
// auto-links the local identity in return:
//
//	c, err := session.LinkByCode(ctx, "X7K2QZ")
//
// # Sending
//
// Send stores the message immediately in the sending state and returns.
// Encryption and submission complete in the background and move the message
// to sent or failed; register OnStateChange to observe the transition.
//
//	msg, err := session.Send(ctx, c.ID, "hello", nil)
//
// # Automated Assistant
//
// Every session has the contact contact.AssistantContactID. Messages to it
// are never encrypted; they are answered by the configured
// assistant.Responder. Tool calls from the assistant are validated with
// assistant.ParseToolCall and run with ExecuteTool.
//
// # Deterministic Testing
//
// Options.TimeProvider drives linking-code rotation and timestamps:
//
//	options.TimeProvider = &mockTimeProvider{currentTime: time.Unix(1000, 0)}
//
// # Thread Safety
//
// Session is safe for concurrent use. Inbound packets are processed on the
// transport's goroutines and callbacks are invoked from them.
package shadowlink
