package codec

import "github.com/GriffinCanCode/componentbridge/internal/types"

// API is the protocol namespace stamped on every outbound envelope
const API = "component"

// Outbound actions
const (
	ActionRequestPermissions = "request-permissions"
	ActionSetSize            = "set-size"
	ActionStreamItems        = "stream-items"
	ActionStreamContextItem  = "stream-context-item"
	ActionSelectItem         = "select-item"
	ActionCreateItem         = "create-item"
	ActionCreateItems        = "create-items"
	ActionAssociateItem      = "associate-item"
	ActionDeassociateItem    = "deassociate-item"
	ActionClearSelection     = "clear-selection"
	ActionDeleteItems        = "delete-items"
	ActionSaveItems          = "save-items"
	ActionSetComponentData   = "set-component-data"
)

// Inbound actions
const (
	ActionComponentRegistered = "component-registered"
	ActionThemes              = "themes"
)

// Envelope is one outbound message. MessageID is fresh per send;
// SessionKey is present only once a session exists.
type Envelope struct {
	Action     string `json:"action" mapstructure:"action"`
	Data       any    `json:"data" mapstructure:"data"`
	MessageID  string `json:"messageId" mapstructure:"messageId"`
	SessionKey string `json:"sessionKey,omitempty" mapstructure:"sessionKey"`
	API        string `json:"api" mapstructure:"api"`
}

// Original is the echo of an outbound envelope embedded in a reply.
type Original struct {
	MessageID string `json:"messageId" mapstructure:"messageId"`
	Action    string `json:"action,omitempty" mapstructure:"action"`
}

// Message is a normalized inbound message. Handshake messages carry
// SessionKey and ComponentData; replies carry Original.
type Message struct {
	Action        string         `json:"action,omitempty" mapstructure:"action"`
	Data          any            `json:"data,omitempty" mapstructure:"data"`
	SessionKey    string         `json:"sessionKey,omitempty" mapstructure:"sessionKey"`
	ComponentData map[string]any `json:"componentData,omitempty" mapstructure:"componentData"`
	Original      *Original      `json:"original,omitempty" mapstructure:"original"`
}

// Object returns Data when it is a JSON object, or nil. Indexing the
// nil map is safe, so callers can read fields without a check.
func (m *Message) Object() map[string]any {
	return Object(m.Data)
}

// Object returns v as a JSON object, or nil when v is anything else.
func Object(v any) map[string]any {
	switch obj := v.(type) {
	case map[string]any:
		return obj
	case types.Record:
		return obj
	}
	return nil
}

// IsReply reports whether the message answers an outbound envelope.
func (m *Message) IsReply() bool {
	return m.Original != nil
}
