package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
)

// Config blocks are stored as one flat JSON object. Known keys decode into typed
// fields; anything else is kept in an Extra map and written back untouched.
// Keys present in the input are never dropped, whatever their value.

var knownKeysCache sync.Map // reflect.Type -> map[string]struct{}

func knownKeys(t reflect.Type) map[string]struct{} {
	if v, ok := knownKeysCache.Load(t); ok {
		return v.(map[string]struct{})
	}
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		keys[name] = struct{}{}
	}
	knownKeysCache.Store(t, keys)
	return keys
}

// marshalWithExtra encodes known (the typed view) and folds extra into the
// same object. Typed fields win over extra keys of the same name.
func marshalWithExtra(known any, extra map[string]any) ([]byte, error) {
	b, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return b, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, taken := obj[k]; taken {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		obj[k] = raw
	}
	return json.Marshal(obj)
}

// unmarshalWithExtra decodes data into known and returns the unknown keys.
// typ is the struct type whose json tags define the known keys.
func unmarshalWithExtra(data []byte, known any, typ reflect.Type) (map[string]any, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	// Known keys whose typed value is omitted on encode (zero, empty or null)
	// stay in extra so an explicit "current_term": 0 survives a round trip.
	typed, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	var emitted map[string]json.RawMessage
	if err := json.Unmarshal(typed, &emitted); err != nil {
		return nil, err
	}
	keys := knownKeys(typ)
	var extra map[string]any
	for k, v := range all {
		if _, ok := keys[k]; ok {
			if _, kept := emitted[k]; kept {
				continue
			}
		}
		if extra == nil {
			extra = map[string]any{}
		}
		extra[k] = v
	}
	return extra, nil
}

// shallowMerge overlays updates onto the JSON form of current and decodes the
// result into out. Keys absent from updates are preserved.
func shallowMerge(current any, updates map[string]any, out any) error {
	b, err := json.Marshal(current)
	if err != nil {
		return err
	}
	base := map[string]any{}
	if err := json.Unmarshal(b, &base); err != nil {
		return err
	}
	for k, v := range updates {
		base[k] = v
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, out)
}

// ConfigTypeError reports an update value whose JSON type does not fit the key.
type ConfigTypeError struct {
	Block string
	Key   string
	Err   error
}

func (e *ConfigTypeError) Error() string {
	if e.Key != "" {
		return e.Block + "." + e.Key + ": invalid value"
	}
	return e.Block + ": invalid value"
}

func (e *ConfigTypeError) Unwrap() error { return e.Err }

func configTypeError(block string, err error) error {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		return &ConfigTypeError{Block: block, Key: ute.Field, Err: err}
	}
	return &ConfigTypeError{Block: block, Err: err}
}
