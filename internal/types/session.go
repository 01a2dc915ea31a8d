package types

import "strings"

// Environment classifies the host application embedding the component
type Environment int

const (
	EnvironmentWeb Environment = iota
	EnvironmentDesktop
	EnvironmentMobile
)

// String returns the wire name of the environment
func (e Environment) String() string {
	switch e {
	case EnvironmentDesktop:
		return "desktop"
	case EnvironmentMobile:
		return "mobile"
	default:
		return "web"
	}
}

// ParseEnvironment maps a host environment tag to an Environment.
// Unknown tags are treated as web.
func ParseEnvironment(tag string) Environment {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "desktop":
		return EnvironmentDesktop
	case "mobile", "ios", "android":
		return EnvironmentMobile
	default:
		return EnvironmentWeb
	}
}

// Session holds the credentials and metadata captured at handshake
type Session struct {
	Key           string
	ComponentData map[string]any
	Environment   Environment
	SelfUUID      string
}
