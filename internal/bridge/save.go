package bridge

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/componentbridge/internal/codec"
	"github.com/GriffinCanCode/componentbridge/internal/types"
)

// SaveItem saves a single item. See SaveItems.
func (b *Bridge) SaveItem(item *types.Item, done func(), skipDebounce bool) error {
	return b.SaveItems([]*types.Item{item}, done, skipDebounce)
}

// SaveItems stamps every item's UpdatedAt with the current time and sends
// a save-items call.
//
// With coalesced saving enabled and skipDebounce false, the call is held
// for SaveDelay; a later SaveItems within that window replaces it, so a
// burst of saves produces one call carrying the last batch. skipDebounce
// sends right away and cancels any held save.
//
// Items are stamped and snapshotted now, not when the save is sent, so a
// host update arriving during the delay cannot look newer than the edit.
func (b *Bridge) SaveItems(items []*types.Item, done func(), skipDebounce bool) error {
	now := b.cfg.Clock.Now()
	for _, item := range items {
		if item != nil {
			item.UpdatedAt = now
		}
	}
	data := map[string]any{"items": codec.SanitizeAll(items)}
	reply := func(any) {
		if done != nil {
			done()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return ErrClosed
	}
	b.metrics.IncSavesScheduled()
	b.cancelSaveLocked()

	if !b.cfg.CoalescedSaving || skipDebounce {
		b.metrics.RecordSaveFlush("immediate", len(items))
		return b.callLocked(codec.ActionSaveItems, data, reply)
	}

	b.saveGen++
	gen := b.saveGen
	count := len(items)
	b.saveTimer = b.cfg.Clock.AfterFunc(b.cfg.SaveDelay, func() {
		b.flushSave(gen, data, reply, count)
	})
	return nil
}

// flushSave sends a held save unless it was superseded or cancelled.
func (b *Bridge) flushSave(gen uint64, data map[string]any, reply ReplyFunc, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed || gen != b.saveGen || b.saveTimer == nil {
		return
	}
	b.saveTimer = nil
	b.metrics.RecordSaveFlush("coalesced", count)
	if err := b.callLocked(codec.ActionSaveItems, data, reply); err != nil {
		b.logger.Warn("Coalesced save failed", zap.Error(err), zap.Int("items", count))
	}
}

// cancelSaveLocked drops the held save, if any.
func (b *Bridge) cancelSaveLocked() {
	if b.saveTimer == nil {
		return
	}
	b.saveTimer.Stop()
	b.saveTimer = nil
	b.saveGen++
}

// SavePending reports whether a coalesced save is waiting to be sent
func (b *Bridge) SavePending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saveTimer != nil
}
