package types

// Permission is one capability the component asks the host to grant.
type Permission struct {
	Name         string   `json:"name" mapstructure:"name"`
	ContentTypes []string `json:"content_types,omitempty" mapstructure:"content_types"`
}
