package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/componentbridge/internal/codec"
	"github.com/GriffinCanCode/componentbridge/internal/types"
)

func note(uuid, text string) *types.Item {
	return &types.Item{
		UUID:        uuid,
		ContentType: "Note",
		Content:     map[string]any{"text": text},
	}
}

func savedRecords(t *testing.T, env *codec.Envelope) []types.Record {
	t.Helper()
	require.Equal(t, codec.ActionSaveItems, env.Action)
	records, ok := dataMap(t, env)["items"].([]types.Record)
	require.True(t, ok)
	return records
}

func countAction(t *testing.T, p *recordingParent, action string) int {
	n := 0
	for _, a := range p.actions(t) {
		if a == action {
			n++
		}
	}
	return n
}

func TestSaveBurstSendsLastBatchOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.register()

	require.NoError(t, h.bridge.SaveItems([]*types.Item{note("a", "1")}, nil, false))
	h.clock.Advance(100 * time.Millisecond)
	require.NoError(t, h.bridge.SaveItems([]*types.Item{note("b", "2")}, nil, false))
	h.clock.Advance(100 * time.Millisecond)
	require.NoError(t, h.bridge.SaveItems([]*types.Item{note("c", "3"), note("d", "4")}, nil, false))

	h.clock.Advance(DefaultSaveDelay - time.Millisecond)
	assert.Equal(t, 0, countAction(t, h.parent, codec.ActionSaveItems))
	assert.True(t, h.bridge.SavePending())

	h.clock.Advance(time.Millisecond)
	require.Equal(t, 1, countAction(t, h.parent, codec.ActionSaveItems))
	assert.False(t, h.bridge.SavePending())

	records := savedRecords(t, h.parent.last(t))
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0]["uuid"])
	assert.Equal(t, "d", records[1]["uuid"])

	h.clock.Advance(time.Second)
	assert.Equal(t, 1, countAction(t, h.parent, codec.ActionSaveItems))
}

func TestSaveStampsAtCallTime(t *testing.T) {
	h := newHarness(t, nil)
	h.register()

	item := note("a", "draft")
	callTime := h.clock.Now()
	require.NoError(t, h.bridge.SaveItem(item, nil, false))
	assert.Equal(t, callTime, item.UpdatedAt)

	h.clock.Advance(DefaultSaveDelay)

	records := savedRecords(t, h.parent.last(t))
	require.Len(t, records, 1)
	assert.Equal(t, callTime, records[0]["updated_at"])
	assert.NotEqual(t, h.clock.Now(), records[0]["updated_at"])
}

func TestSaveSnapshotsItemsAtCallTime(t *testing.T) {
	h := newHarness(t, nil)
	h.register()

	item := note("a", "first")
	require.NoError(t, h.bridge.SaveItem(item, nil, false))
	item.ContentType = "Changed"

	h.clock.Advance(DefaultSaveDelay)
	records := savedRecords(t, h.parent.last(t))
	assert.Equal(t, "Note", records[0]["content_type"])
}

func TestSkipDebounceSendsNowAndCancelsPending(t *testing.T) {
	h := newHarness(t, nil)
	h.register()

	require.NoError(t, h.bridge.SaveItem(note("held", "x"), nil, false))
	require.Equal(t, 1, h.clock.Pending())

	require.NoError(t, h.bridge.SaveItem(note("now", "y"), nil, true))

	require.Equal(t, 1, countAction(t, h.parent, codec.ActionSaveItems))
	assert.Equal(t, "now", savedRecords(t, h.parent.last(t))[0]["uuid"])
	assert.Equal(t, 0, h.clock.Pending())
	assert.False(t, h.bridge.SavePending())

	h.clock.Advance(time.Second)
	assert.Equal(t, 1, countAction(t, h.parent, codec.ActionSaveItems))
}

func TestSaveWithoutCoalescing(t *testing.T) {
	h := newHarness(t, func(cfg *Config) { cfg.CoalescedSaving = false })
	h.register()

	require.NoError(t, h.bridge.SaveItem(note("a", "1"), nil, false))
	require.NoError(t, h.bridge.SaveItem(note("b", "2"), nil, false))

	assert.Equal(t, 2, countAction(t, h.parent, codec.ActionSaveItems))
	assert.Equal(t, 0, h.clock.Pending())
}

func TestSaveCallbackRunsOnReply(t *testing.T) {
	h := newHarness(t, nil)
	h.register()

	saved := 0
	require.NoError(t, h.bridge.SaveItem(note("a", "1"), func() { saved++ }, true))
	h.reply(h.parent.last(t).MessageID, map[string]any{})

	assert.Equal(t, 1, saved)
}

func TestSaveBeforeHandshakeIsQueuedAfterDelay(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.bridge.SaveItem(note("a", "1"), nil, false))
	h.clock.Advance(DefaultSaveDelay)
	assert.Equal(t, 0, h.parent.count())

	h.register()
	assert.Equal(t, []string{codec.ActionSaveItems}, h.parent.actions(t))
}

func TestSaveCustomDelay(t *testing.T) {
	h := newHarness(t, func(cfg *Config) { cfg.SaveDelay = time.Second })
	h.register()

	require.NoError(t, h.bridge.SaveItem(note("a", "1"), nil, false))
	h.clock.Advance(DefaultSaveDelay)
	assert.Equal(t, 0, h.parent.count())
	h.clock.Advance(time.Second)
	assert.Equal(t, 1, h.parent.count())
}
