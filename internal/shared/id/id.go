// Package id provides identifier generation for the component bridge.
//
// Two families of identifiers are produced:
//   - Message IDs: random UUIDv4 strings stamped on every outbound envelope.
//     The host echoes them back in replies, so they must never repeat within
//     a bridge lifetime.
//   - Instance IDs: prefixed ULIDs (brg_*, sess_*) used for log correlation
//     and for session keys issued by the host simulator. ULIDs sort by
//     creation time, which keeps logs readable.
//
// Message ID generation is exposed as the Source interface so the bridge
// can be driven with a deterministic Sequence in tests.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// MessageID identifies one outbound envelope
type MessageID string

// BridgeID identifies one bridge instance
type BridgeID string

// SessionKey identifies a host-issued session
type SessionKey string

const (
	BridgePrefix  = "brg"
	SessionPrefix = "sess"
)

func (id MessageID) String() string  { return string(id) }
func (id BridgeID) String() string   { return string(id) }
func (id SessionKey) String() string { return string(id) }

// ============================================================================
// Message ID Sources
// ============================================================================

// Source produces message identifiers.
type Source interface {
	Next() MessageID
}

// SourceFunc adapts a function to Source.
type SourceFunc func() MessageID

// Next calls f.
func (f SourceFunc) Next() MessageID { return f() }

// UUID returns a Source of random version 4 UUIDs.
func UUID() Source {
	return SourceFunc(func() MessageID {
		return MessageID(uuid.NewString())
	})
}

// Sequence is a deterministic Source yielding prefix-1, prefix-2, ...
type Sequence struct {
	prefix string
	n      atomic.Uint64
}

// NewSequence creates a Sequence with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (s *Sequence) Next() MessageID {
	return MessageID(s.prefix + "-" + strconv.FormatUint(s.n.Add(1), 10))
}

// IsUUID reports whether id parses as a UUID.
func IsUUID(id MessageID) bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}

// ============================================================================
// ULID Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source
// Useful for testing with deterministic entropy
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewBridgeID generates a new bridge instance ID
func NewBridgeID() BridgeID {
	return BridgeID(Default().GenerateWithPrefix(BridgePrefix))
}

// NewSessionKey generates a new session key
func NewSessionKey() SessionKey {
	return SessionKey(Default().GenerateWithPrefix(SessionPrefix))
}

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}
