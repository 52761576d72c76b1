// Package messaging implements the message codec, the encrypted envelope
// wire format and the in-memory conversation store.
//
// Example:
//
//	codec, _ := messaging.NewCodec(crypto.CipherAES256GCM)
//	env, err := codec.Seal(key, []byte("hello"), selfID, nil, time.Now())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plaintext, err := codec.Open(key, env)
//
// Conversation state lives in a ConversationStore. Outgoing messages start
// in StateSending and move to StateSent or StateFailed; received messages
// are created in StateRead.
package messaging
