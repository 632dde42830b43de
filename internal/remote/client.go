// Package remote — клиент внешнего документного хранилища (хабы, устройства,
// комнаты). Документы бесформенные, поля со слабой типизацией.
package remote

import (
	"context"
	"errors"
)

// Имена коллекций у поставщика.
const (
	CollectionHubs    = "userHubs"
	CollectionDevices = "devices"
	CollectionRooms   = "rooms"
)

var ErrNotFound = errors.New("remote: document not found")

// Document — сырой документ хранилища.
type Document map[string]any

// Client — контракт удалённого хранилища.
type Client interface {
	FetchAll(ctx context.Context, collection string) ([]Document, error)
	FetchWhere(ctx context.Context, collection, field, op string, value any) ([]Document, error)
	FetchByID(ctx context.Context, collection, id string) (Document, error)
}

// Str достаёт строковое поле; не-строки и отсутствие поля дают "".
func (d Document) Str(key string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

// Bool достаёт булево поле, отсутствие — false.
func (d Document) Bool(key string) bool {
	if v, ok := d[key].(bool); ok {
		return v
	}
	return false
}

// Strings достаёт поле-список строк (например units у admin-хаба).
func (d Document) Strings(key string) []string {
	raw, ok := d[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DeviceIDs нормализует поле devices комнаты: upstream шлёт либо голые id,
// либо объекты с deviceId и инлайн-деталями. Дальше границы обе формы не
// живут — только плоский список id.
func (d Document) DeviceIDs() []string {
	raw, ok := d["devices"].([]any)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			if v != "" {
				ids = append(ids, v)
			}
		case map[string]any:
			if id, ok := v["deviceId"].(string); ok && id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
