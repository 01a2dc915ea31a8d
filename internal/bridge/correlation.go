package bridge

import (
	"time"

	"github.com/GriffinCanCode/componentbridge/internal/shared/id"
)

// ReplyFunc receives the data of a host reply. data is whatever the host
// sent: an object, a list, a scalar or nil.
type ReplyFunc func(data any)

type pendingCall struct {
	action   string
	callback ReplyFunc
	sentAt   time.Time
}

// correlationTable maps outbound message ids to their callbacks. Entries
// leave the table when resolved or when older than maxAge.
type correlationTable struct {
	maxAge  time.Duration
	entries map[id.MessageID]pendingCall
}

func newCorrelationTable(maxAge time.Duration) *correlationTable {
	return &correlationTable{
		maxAge:  maxAge,
		entries: make(map[id.MessageID]pendingCall),
	}
}

func (t *correlationTable) add(msgID id.MessageID, call pendingCall) error {
	if _, exists := t.entries[msgID]; exists {
		return ErrDuplicateMessageID
	}
	t.entries[msgID] = call
	return nil
}

// take removes and returns the entry for msgID.
func (t *correlationTable) take(msgID id.MessageID) (pendingCall, bool) {
	call, ok := t.entries[msgID]
	if ok {
		delete(t.entries, msgID)
	}
	return call, ok
}

func (t *correlationTable) remove(msgID id.MessageID) {
	delete(t.entries, msgID)
}

// evict drops entries sent before now-maxAge. A non-positive maxAge
// disables eviction.
func (t *correlationTable) evict(now time.Time) int {
	if t.maxAge <= 0 {
		return 0
	}
	cutoff := now.Add(-t.maxAge)
	evicted := 0
	for msgID, call := range t.entries {
		if call.sentAt.Before(cutoff) {
			delete(t.entries, msgID)
			evicted++
		}
	}
	return evicted
}

func (t *correlationTable) len() int { return len(t.entries) }

func (t *correlationTable) clear() {
	t.entries = make(map[id.MessageID]pendingCall)
}
