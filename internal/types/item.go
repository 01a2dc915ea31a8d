package types

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// AppDomain namespaces the per-item app data written by the host application
const AppDomain = "org.standardnotes.sn"

// Item is an opaque domain record exchanged with the host.
//
// Parent and Children form an in-memory graph that never crosses the
// bridge; see codec.Sanitize.
type Item struct {
	UUID        string         `json:"uuid" mapstructure:"uuid"`
	ContentType string         `json:"content_type" mapstructure:"content_type"`
	Content     map[string]any `json:"content" mapstructure:"content"`
	CreatedAt   time.Time      `json:"created_at" mapstructure:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" mapstructure:"updated_at"`

	Parent   *Item   `json:"-" mapstructure:"-"`
	Children []*Item `json:"-" mapstructure:"-"`

	// Extra holds fields the bridge does not model. They are carried
	// through unchanged.
	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// Record is the plain, acyclic wire form of an Item.
type Record map[string]any

// AppDataValue returns content.appData[AppDomain][key], or nil.
func (it *Item) AppDataValue(key string) any {
	if it == nil || it.Content == nil {
		return nil
	}
	appData, ok := asMap(it.Content["appData"])
	if !ok {
		return nil
	}
	domain, ok := asMap(appData[AppDomain])
	if !ok {
		return nil
	}
	return domain[key]
}

// DecodeItem converts a reply payload value into an Item. A nil value
// yields a nil Item.
func DecodeItem(v any) (*Item, error) {
	if v == nil {
		return nil, nil
	}
	var item Item
	if err := decode(v, &item); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	delete(item.Extra, "parent")
	delete(item.Extra, "children")
	return &item, nil
}

// DecodeItems converts a reply payload list into Items.
func DecodeItems(v any) ([]*Item, error) {
	if v == nil {
		return nil, nil
	}
	raw := reflect.ValueOf(v)
	if raw.Kind() != reflect.Slice {
		return nil, fmt.Errorf("decode items: expected list, got %T", v)
	}
	items := make([]*Item, 0, raw.Len())
	for i := 0; i < raw.Len(); i++ {
		item, err := DecodeItem(raw.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: timeHook,
		Result:     out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

var timeType = reflect.TypeOf(time.Time{})

// timeHook accepts RFC 3339 strings and epoch milliseconds for time fields.
func timeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		return time.Parse(time.RFC3339Nano, v)
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	}
	return data, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	}
	return nil, false
}
