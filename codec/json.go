package codec

import "encoding/json"

// JSON is the standard-library JSON codec.
//
// Edge, vertex and graph values are typically plain structs, numbers or
// strings, which JSON covers. Values containing funcs, channels or complex
// numbers need a custom Codec implementation.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used for newly written snapshots. Existing files are
// self-describing and are opened by selecting the codec recorded in their
// header.
var Default Codec = GoJSON{}
