package bridge

import "github.com/GriffinCanCode/componentbridge/internal/codec"

// ComponentDataValue returns the locally cached value for key
func (b *Bridge) ComponentDataValue(key string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.componentData[key]
	return v, ok
}

// SetComponentDataValue stores value under key and mirrors the whole map
// to the host.
func (b *Bridge) SetComponentDataValue(key string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return ErrClosed
	}
	b.componentData[key] = value
	return b.callLocked(codec.ActionSetComponentData, b.componentDataSnapshotLocked(), nil)
}

// ClearComponentData empties the cache and mirrors it to the host.
func (b *Bridge) ClearComponentData() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return ErrClosed
	}
	b.componentData = make(map[string]any)
	if b.session != nil {
		b.session.ComponentData = b.componentData
	}
	return b.callLocked(codec.ActionSetComponentData, b.componentDataSnapshotLocked(), nil)
}

func (b *Bridge) componentDataSnapshotLocked() map[string]any {
	snapshot := make(map[string]any, len(b.componentData))
	for k, v := range b.componentData {
		snapshot[k] = v
	}
	return map[string]any{"componentData": snapshot}
}
