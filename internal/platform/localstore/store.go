// Package localstore is the session's persistent key/value store. It only
// gets and sets opaque values; components own the shape of what they store.
package localstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("local store key not found")

// Keys used by the storefront session.
const (
	KeyCart          = "cart"
	KeyCustomerPhone = "customerPhone"
)

// Store persists values between sessions.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CurrentVersion is written by Encode. Version 0 denotes values written
// before the envelope existed (bare JSON or a bare string).
const CurrentVersion = 1

// Envelope wraps stored values with a schema version.
type Envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Encode marshals v inside a current-version envelope.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode local value: %w", err)
	}
	return json.Marshal(Envelope{Version: CurrentVersion, Data: data})
}

// Decode unwraps a stored value. Anything that is not a versioned envelope is
// returned as version 0 with the raw bytes as Data.
func Decode(raw []byte) Envelope {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			rawVersion, hasVersion := fields["version"]
			data, hasData := fields["data"]
			var version int
			if hasVersion && hasData && json.Unmarshal(rawVersion, &version) == nil && version > 0 {
				return Envelope{Version: version, Data: data}
			}
		}
	}
	return Envelope{Version: 0, Data: raw}
}
