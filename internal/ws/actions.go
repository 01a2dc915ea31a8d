package ws

import (
	"github.com/GriffinCanCode/componentbridge/internal/codec"
	"github.com/GriffinCanCode/componentbridge/internal/types"
)

// handle applies env to the simulated host and returns the reply data.
func (h *Handler) handle(cn *conn, env *codec.Envelope) map[string]any {
	data, _ := env.Data.(map[string]any)

	switch env.Action {
	case codec.ActionRequestPermissions:
		perms, _ := data["permissions"].([]any)
		h.mu.Lock()
		cn.permissions = append(cn.permissions, perms...)
		h.mu.Unlock()
		return map[string]any{"approved": true}

	case codec.ActionStreamContextItem:
		return map[string]any{"item": h.store.ContextItem()}

	case codec.ActionStreamItems:
		return map[string]any{"items": h.store.List(stringList(data["content_types"])...)}

	case codec.ActionCreateItem:
		rec, _ := data["item"].(map[string]any)
		return map[string]any{"item": h.store.Put(types.Record(rec))}

	case codec.ActionCreateItems:
		created := make([]types.Record, 0)
		for _, rec := range records(data["items"]) {
			created = append(created, h.store.Put(rec))
		}
		return map[string]any{"items": created}

	case codec.ActionSaveItems:
		saved := make([]string, 0)
		for _, rec := range records(data["items"]) {
			saved = append(saved, h.store.Put(rec)["uuid"].(string))
		}
		return map[string]any{"saved": saved}

	case codec.ActionDeleteItems:
		var ids []string
		for _, rec := range records(data["items"]) {
			if id, ok := rec["uuid"].(string); ok {
				ids = append(ids, id)
			}
		}
		return map[string]any{"deleted": h.store.Delete(ids...)}

	case codec.ActionSetComponentData:
		mirrored, _ := data["componentData"].(map[string]any)
		h.mu.Lock()
		cn.componentData = mirrored
		h.mu.Unlock()
		return map[string]any{}

	case codec.ActionSetSize, codec.ActionSelectItem, codec.ActionAssociateItem,
		codec.ActionDeassociateItem, codec.ActionClearSelection:
		return map[string]any{}

	default:
		// Custom events are echoed back
		return map[string]any{"echo": env.Data}
	}
}

func stringList(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
