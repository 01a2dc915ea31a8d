/*
Package bridge implements the component side of the component/host
message protocol.

# Overview

A Bridge owns all protocol state for one embedded component: the session
captured at handshake, the queue of calls issued before the handshake, the
table of calls awaiting replies, and the pending coalesced save. State is
guarded by a single mutex; inbound messages are handled one at a time by
the transport adapter loop, and user callbacks always run with the mutex
released.

# Lifecycle

	created --component-registered--> active --Close--> closed

Calls made while created are queued and flushed in order, exactly once,
when the host registers the component. Calls made after Close return
ErrClosed.

# Usage

	port := transport.NewPort("https://host.example", 64)

	cfg := bridge.DefaultConfig()
	cfg.InitialPermissions = []types.Permission{{Name: "stream-context-item"}}
	cfg.OnReady = func() { log.Println("ready") }

	b := bridge.New(port, cfg)
	go b.Run(ctx, port)

	b.StreamContextItem(func(item *types.Item) {
		item.Content["text"] = "edited"
		b.SaveItem(item, nil, false)
	})

The Parent passed to New must not call back into the bridge
synchronously from PostMessage.
*/
package bridge
