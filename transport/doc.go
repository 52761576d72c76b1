// Package transport defines the broadcast transport ShadowLink is layered
// on and the packets exchanged over it.
//
// # Topics
//
// Two topics are used. [TopicMessages] carries addressed [MessagePacket]
// values; every subscriber sees every packet and keeps only those whose
// target id is its own. [TopicDirectory] carries [DirectoryPacket] queries
// and responses used to resolve linking codes.
//
// # Memory Bus
//
// [MemoryBus] is the in-process implementation used by tests and demos.
// Handlers run on their own goroutines with a private copy of each packet,
// and a sender's own subscriptions receive its broadcasts.
//
//	bus := transport.NewMemoryBus()
//	defer bus.Close()
//
//	unsubscribe := bus.Subscribe(transport.TopicMessages, func(data []byte) {
//	    pkt, err := transport.ParseMessagePacket(data)
//	    if err != nil {
//	        return
//	    }
//	    fmt.Println("packet for", pkt.TargetID)
//	})
//	defer unsubscribe()
//
// FailNext injects transport failures:
//
//	bus.FailNext(1, errors.New("link down"))
package transport
