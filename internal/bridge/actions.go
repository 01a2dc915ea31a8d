package bridge

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/componentbridge/internal/codec"
	"github.com/GriffinCanCode/componentbridge/internal/types"
)

// ClearSelectionContentType is the content type cleared by ClearSelection
const ClearSelectionContentType = "Tag"

// SetSize asks the host to resize the component. width and height are
// passed through, so both numbers and CSS strings such as "100%" work.
func (b *Bridge) SetSize(kind string, width, height any) error {
	return b.Call(codec.ActionSetSize, map[string]any{
		"type":   kind,
		"width":  width,
		"height": height,
	}, nil)
}

// RequestPermissions asks the host for perms. done runs when the host
// replies.
func (b *Bridge) RequestPermissions(perms []types.Permission, done func()) error {
	return b.Call(codec.ActionRequestPermissions, permissionsData(perms), func(any) {
		if done != nil {
			done()
		}
	})
}

func permissionsData(perms []types.Permission) map[string]any {
	list := make([]types.Permission, len(perms))
	copy(list, perms)
	return map[string]any{"permissions": list}
}

// StreamItems requests the items of the given content types. callback
// runs at most once, with the host's first reply; a further reply to the
// same call is reported as a lost correlation.
func (b *Bridge) StreamItems(contentTypes []string, callback func([]*types.Item)) error {
	return b.Call(codec.ActionStreamItems, map[string]any{"content_types": contentTypes}, func(data any) {
		items, err := types.DecodeItems(codec.Object(data)["items"])
		if err != nil {
			b.logger.Warn("Undecodable streamed items", zap.Error(err))
			return
		}
		if callback != nil {
			callback(items)
		}
	})
}

// StreamContextItem requests the item the component is editing. Like
// StreamItems, callback runs at most once.
func (b *Bridge) StreamContextItem(callback func(*types.Item)) error {
	return b.Call(codec.ActionStreamContextItem, nil, func(data any) {
		item, err := types.DecodeItem(codec.Object(data)["item"])
		if err != nil {
			b.logger.Warn("Undecodable context item", zap.Error(err))
			return
		}
		if callback != nil {
			callback(item)
		}
	})
}

// SelectItem asks the host to select item
func (b *Bridge) SelectItem(item *types.Item) error {
	return b.Call(codec.ActionSelectItem, itemData(item), nil)
}

// CreateItem asks the host to create item. The created item is associated
// with the component before callback runs.
func (b *Bridge) CreateItem(item *types.Item, callback func(*types.Item)) error {
	return b.Call(codec.ActionCreateItem, itemData(item), func(data any) {
		created, err := createdItem(codec.Object(data))
		if err != nil {
			b.logger.Warn("Undecodable created item", zap.Error(err))
			return
		}
		if created != nil {
			if err := b.AssociateItem(created); err != nil {
				b.logger.Warn("Associate created item failed", zap.Error(err))
			}
		}
		if callback != nil {
			callback(created)
		}
	})
}

// createdItem reads data.item, falling back to data.items[0] as sent by
// older hosts.
func createdItem(data map[string]any) (*types.Item, error) {
	if data["item"] != nil {
		return types.DecodeItem(data["item"])
	}
	items, err := types.DecodeItems(data["items"])
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

// CreateItems asks the host to create several items
func (b *Bridge) CreateItems(items []*types.Item, callback func([]*types.Item)) error {
	return b.Call(codec.ActionCreateItems, itemsData(items), func(data any) {
		created, err := types.DecodeItems(codec.Object(data)["items"])
		if err != nil {
			b.logger.Warn("Undecodable created items", zap.Error(err))
			return
		}
		if callback != nil {
			callback(created)
		}
	})
}

// AssociateItem links item to the component
func (b *Bridge) AssociateItem(item *types.Item) error {
	return b.Call(codec.ActionAssociateItem, itemData(item), nil)
}

// DeassociateItem unlinks item from the component
func (b *Bridge) DeassociateItem(item *types.Item) error {
	return b.Call(codec.ActionDeassociateItem, itemData(item), nil)
}

// ClearSelection clears the host's tag selection
func (b *Bridge) ClearSelection() error {
	return b.Call(codec.ActionClearSelection, map[string]any{"content_type": ClearSelectionContentType}, nil)
}

// DeleteItem deletes a single item. See DeleteItems.
func (b *Bridge) DeleteItem(item *types.Item, callback ReplyFunc) error {
	return b.DeleteItems([]*types.Item{item}, callback)
}

// DeleteItems asks the host to delete items. callback receives the raw
// reply.
func (b *Bridge) DeleteItems(items []*types.Item, callback ReplyFunc) error {
	return b.Call(codec.ActionDeleteItems, itemsData(items), func(data any) {
		if callback != nil {
			callback(data)
		}
	})
}

// SendCustomEvent forwards an arbitrary action verbatim
func (b *Bridge) SendCustomEvent(action string, data any, callback ReplyFunc) error {
	return b.Call(action, data, callback)
}

// GetItemAppDataValue reads key from item's app data
func (b *Bridge) GetItemAppDataValue(item *types.Item, key string) any {
	return item.AppDataValue(key)
}

func itemData(item *types.Item) map[string]any {
	return map[string]any{"item": codec.Sanitize(item)}
}

func itemsData(items []*types.Item) map[string]any {
	return map[string]any{"items": codec.SanitizeAll(items)}
}
