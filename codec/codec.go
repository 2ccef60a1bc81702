// Package codec centralizes value encoding for persisted graphs.
//
// Snapshot files are self-describing: they record the codec name in their
// header, and the appropriate codec is selected by name on load. Changing
// the codec of new snapshots never breaks reading old ones.
package codec

// Codec encodes/decodes graph value sections.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}
