package types

// Tag is the storage category a declared field type is classified into.
type Tag int

const (
	// None is only used as the element tag of non-array columns.
	None Tag = iota
	Integer
	Text
	Float
	Boolean
	Timestamp
	Binary
	// Array columns carry their element category separately.
	Array
	// Structured is the catch-all: nested records, maps, unions of
	// non-primitive types. Stored as an opaque serialized blob.
	Structured
)

var tagNames = map[Tag]string{
	None:       "none",
	Integer:    "integer",
	Text:       "text",
	Float:      "float",
	Boolean:    "boolean",
	Timestamp:  "timestamp",
	Binary:     "binary",
	Array:      "array",
	Structured: "structured",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsScalar reports whether values of this category are stored natively
// rather than serialized.
func (t Tag) IsScalar() bool {
	switch t {
	case Integer, Text, Float, Boolean, Timestamp, Binary:
		return true
	default:
		return false
	}
}

// Format renders a column category, e.g. "array<text>".
func Format(tag, elem Tag) string {
	if tag == Array {
		return "array<" + elem.String() + ">"
	}
	return tag.String()
}
