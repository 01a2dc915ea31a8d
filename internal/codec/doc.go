// Package codec defines the bridge's wire envelopes and converts them to
// and from the two encodings the host may use.
//
// Outbound envelopes are passed through unchanged to hosts that accept
// structured values and serialized to JSON text for hosts that only
// accept strings (mobile webviews). Inbound messages arrive either as
// structured values or as JSON text and are normalized into Message.
//
// Domain records are always sanitized before crossing the boundary: the
// parent/children graph is nulled so no cyclic or in-memory-only
// structure is serialized.
//
// Action vocabulary (component -> host):
//   - request-permissions, set-size, set-component-data
//   - stream-items, stream-context-item
//   - select-item, clear-selection
//   - create-item, create-items, associate-item, deassociate-item
//   - save-items, delete-items
//
// Action vocabulary (host -> component):
//   - component-registered: handshake
//   - themes: replacement stylesheet list
//   - replies carrying original.messageId
package codec
