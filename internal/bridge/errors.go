package bridge

import "errors"

var (
	// ErrClosed is returned by calls made after Close
	ErrClosed = errors.New("bridge: closed")
	// ErrLostCorrelation is reported when a reply matches no pending call
	ErrLostCorrelation = errors.New("bridge: reply matches no pending call")
	// ErrDuplicateMessageID is returned when the id source repeats an id
	// that is still pending
	ErrDuplicateMessageID = errors.New("bridge: duplicate message id")
)
