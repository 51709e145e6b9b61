package capmanifest

import (
	"encoding/json"
	"strings"
)

// extensionPrefix marks manifest keys reserved for tool-specific extensions.
const extensionPrefix = "x-"

// collectLossless gathers every raw key outside the known set into a
// LosslessFields value: keys with the extension prefix land in Extensions,
// the rest in Unknown. Buckets that receive no keys stay nil so an untouched
// document round-trips to an untouched struct.
func collectLossless(raw map[string]json.RawMessage, known map[string]struct{}) LosslessFields {
	var f LosslessFields
	for k, v := range raw {
		if _, ok := known[k]; ok {
			continue
		}
		if strings.HasPrefix(k, extensionPrefix) {
			if f.Extensions == nil {
				f.Extensions = map[string]json.RawMessage{}
			}
			f.Extensions[k] = v
			continue
		}
		if f.Unknown == nil {
			f.Unknown = map[string]json.RawMessage{}
		}
		f.Unknown[k] = v
	}
	return f
}

// knownSet builds a membership set for lossless unmarshaling.
func knownSet(keys ...string) map[string]struct{} {
	if len(keys) == 0 {
		return map[string]struct{}{}
	}
	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out
}

// encodeWith renders the preserved fields together with the typed wire view.
// Preserved keys are written first and the typed view last, so a typed field
// always wins over a colliding unknown or extension entry.
func (f LosslessFields) encodeWith(typed any) ([]byte, error) {
	out := map[string]json.RawMessage{}
	for k, v := range f.Unknown {
		out[k] = v
	}
	for k, v := range f.Extensions {
		out[k] = v
	}

	typedBytes, err := json.Marshal(typed)
	if err != nil {
		return nil, err
	}
	var typedKeys map[string]json.RawMessage
	if err := json.Unmarshal(typedBytes, &typedKeys); err != nil {
		return nil, err
	}
	for k, v := range typedKeys {
		out[k] = v
	}

	return json.Marshal(out)
}
