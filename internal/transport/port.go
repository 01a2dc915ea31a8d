package transport

import (
	"context"
	"sync"
)

// Port is an in-process structured channel. The host side calls Send and
// reads Outbound; the component side attaches the Port as an EventSource
// and posts to it as its Parent.
type Port struct {
	origin  string
	inbound chan Inbound
	out     chan any

	closeOnce sync.Once
	done      chan struct{}
}

// NewPort creates a port whose host lives at origin. buffer bounds both
// directions.
func NewPort(origin string, buffer int) *Port {
	if buffer <= 0 {
		buffer = 64
	}
	return &Port{
		origin:  origin,
		inbound: make(chan Inbound, buffer),
		out:     make(chan any, buffer),
		done:    make(chan struct{}),
	}
}

// Origin returns the host origin.
func (p *Port) Origin() string { return p.origin }

// Send delivers v to the component from the host origin.
func (p *Port) Send(v any) error {
	return p.SendFrom(p.origin, v)
}

// SendFrom delivers v to the component as if posted from origin.
func (p *Port) SendFrom(origin string, v any) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	select {
	case p.inbound <- Inbound{Origin: origin, Payload: v}:
		return nil
	case <-p.done:
		return ErrClosed
	}
}

// Outbound returns the values the component has posted.
func (p *Port) Outbound() <-chan any { return p.out }

// Run implements EventSource.
func (p *Port) Run(ctx context.Context, deliver func(Inbound)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case in := <-p.inbound:
			deliver(in)
		}
	}
}

// PostMessage implements Parent. It never blocks.
func (p *Port) PostMessage(message any, targetOrigin string) error {
	if !originMatches(p.origin, targetOrigin) {
		return ErrOriginMismatch
	}
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	select {
	case p.out <- message:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close stops the port. Pending inbound values are discarded.
func (p *Port) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}
