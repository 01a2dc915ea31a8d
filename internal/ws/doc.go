// Package ws simulates the host side of the component protocol over
// WebSocket.
//
// Each connection is one embedded component. On connect the host sends
// component-registered with a fresh session key, then answers every
// envelope carrying that key with a reply whose original.messageId echoes
// the envelope. Envelopes with another session key are logged and
// ignored.
//
// Message Types (Component → Host):
//   - request-permissions, set-size, set-component-data
//   - stream-items, stream-context-item
//   - create-item(s), save-items, delete-items
//   - select-item, associate-item, deassociate-item, clear-selection
//   - any other action: echoed back as {"echo": data}
//
// Message Types (Host → Component):
//   - component-registered: session key, component data, environment, uuid
//   - themes: stylesheet URLs, sent by BroadcastThemes
//   - reply: {original: {messageId, action}, data}
//
// Items live in an in-memory Store seeded with one context note.
//
// Example Usage:
//
//	handler := ws.NewHandler(ws.DefaultConfig(), ws.NewStore(), logger, metrics)
//	router.GET("/component", handler.HandleConnection)
package ws
