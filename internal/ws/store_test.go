package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/componentbridge/internal/types"
)

func TestStoreSeedsContextItem(t *testing.T) {
	store := NewStore()

	ctx := store.ContextItem()
	require.NotNil(t, ctx)
	assert.Equal(t, "Note", ctx["content_type"])
	assert.Len(t, store.List(), 1)
}

func TestStorePut(t *testing.T) {
	store := NewStore()

	stored := store.Put(types.Record{
		"content_type": "Tag",
		"parent":       "x",
		"children":     []any{"y"},
	})

	id, _ := stored["uuid"].(string)
	require.NotEmpty(t, id)
	assert.NotContains(t, stored, "parent")
	assert.NotContains(t, stored, "children")
	assert.NotNil(t, stored["created_at"])

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Tag", got["content_type"])

	// Returned records are copies
	got["content_type"] = "Note"
	again, _ := store.Get(id)
	assert.Equal(t, "Tag", again["content_type"])
}

func TestStoreListAndDelete(t *testing.T) {
	store := NewStore()
	store.Put(types.Record{"uuid": "b", "content_type": "Tag"})
	store.Put(types.Record{"uuid": "a", "content_type": "Tag"})

	tags := store.List("Tag")
	require.Len(t, tags, 2)
	assert.Equal(t, "a", tags[0]["uuid"])
	assert.Equal(t, "b", tags[1]["uuid"])

	assert.Len(t, store.List("Tag", "Note"), 3)
	assert.Equal(t, 2, store.Delete("a", "b", "missing"))
	assert.Empty(t, store.List("Tag"))
}
