package transport

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrOriginMismatch is returned when a post targets a foreign origin
	ErrOriginMismatch = errors.New("transport: target origin does not match parent")
	// ErrClosed is returned when posting to a closed channel
	ErrClosed = errors.New("transport: closed")
	// ErrBufferFull is returned when the outbound buffer cannot accept a post
	ErrBufferFull = errors.New("transport: outbound buffer full")
)

// AnyOrigin matches every parent origin
const AnyOrigin = "*"

// Inbound is one raw event observed on a source.
type Inbound struct {
	Origin  string
	Payload any
	// Text marks events from a text channel, whose payload is JSON.
	Text bool
}

// EventSource delivers inbound events until ctx is cancelled or the
// source is exhausted.
type EventSource interface {
	Run(ctx context.Context, deliver func(Inbound)) error
}

// Parent is the outbound side of the channel.
type Parent interface {
	PostMessage(message any, targetOrigin string) error
}

// ParentFunc adapts a function to Parent.
type ParentFunc func(message any, targetOrigin string) error

// PostMessage calls f.
func (f ParentFunc) PostMessage(message any, targetOrigin string) error {
	return f(message, targetOrigin)
}

// originMatches applies postMessage target-origin rules.
func originMatches(parentOrigin, target string) bool {
	return target == AnyOrigin || strings.EqualFold(parentOrigin, target)
}

// OriginFromURL derives the web origin (scheme://host[:port]) of a URL.
// WebSocket schemes map to their HTTP counterparts.
func OriginFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	scheme := u.Scheme
	switch scheme {
	case "ws":
		scheme = "http"
	case "wss":
		scheme = "https"
	}
	if scheme == "" || u.Host == "" {
		return "", errors.New("transport: url has no origin: " + raw)
	}
	return scheme + "://" + u.Host, nil
}
