package types

// Event represents a typed notification emitted by a native module when a
// state transition commits. Attributes are flat string pairs so downstream
// indexers can consume them without knowing module internals.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Attribute returns the named attribute or the empty string when absent.
func (e *Event) Attribute(key string) string {
	if e == nil || e.Attributes == nil {
		return ""
	}
	return e.Attributes[key]
}
