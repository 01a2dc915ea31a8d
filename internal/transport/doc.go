// Package transport carries bridge messages between a component and its
// host application.
//
// A host can reach the component over two kinds of channel:
//   - Structured: values are passed as-is (an in-process Port, the analogue
//     of a browser window message).
//   - Text: every message is a JSON string (a WebSocket, the analogue of a
//     mobile webview's document message).
//
// Both kinds implement EventSource. An Adapter funnels all attached sources
// into one dispatch loop so that no two inbound messages are handled
// concurrently. The first inbound event fixes the origin used for every
// later outbound post; events from other origins never change it.
//
// Outbound messages go through the Parent capability, which follows
// postMessage semantics: a post whose target origin does not match the
// parent's origin is refused.
package transport
