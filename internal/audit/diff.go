package audit

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FieldChange is one changed key between two snapshots.
type FieldChange struct {
	Key string `json:"key"`
	Old any    `json:"old,omitempty"`
	New any    `json:"new,omitempty"`
}

// Diff computes the changed keys between two snapshots: the union of keys on
// either side whose serialized values differ. Unchanged keys are omitted.
// Output is sorted by key for stable rendering.
func Diff(before, after Snapshot) []FieldChange {
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	var out []FieldChange
	for k := range keys {
		oldV, oldOK := before[k]
		newV, newOK := after[k]
		if oldOK && newOK && serialize(oldV) == serialize(newV) {
			continue
		}
		out = append(out, FieldChange{Key: k, Old: oldV, New: newV})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// serialize produces a comparable representation of a snapshot value.
// JSON is preferred; unmarshalable values fall back to fmt.
func serialize(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
