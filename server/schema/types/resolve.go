package types

// primitives is the fixed lookup from declared names to storage categories.
// Names missing here resolve to Structured.
var primitives = map[string]Tag{
	"int":     Integer,
	"int8":    Integer,
	"int16":   Integer,
	"int32":   Integer,
	"int64":   Integer,
	"uint":    Integer,
	"uint8":   Integer,
	"uint16":  Integer,
	"uint32":  Integer,
	"uint64":  Integer,
	"integer": Integer,

	"string": Text,
	"str":    Text,
	"text":   Text,

	"float":   Float,
	"float32": Float,
	"float64": Float,
	"double":  Float,

	"bool":    Boolean,
	"boolean": Boolean,

	"timestamp": Timestamp,
	"datetime":  Timestamp,
	"time.Time": Timestamp,

	"bytes":  Binary,
	"[]byte": Binary,
	"binary": Binary,

	"list":  Array,
	"slice": Array,
	"array": Array,

	"map":  Structured,
	"dict": Structured,
}

// Resolve classifies a declared type. The second result is the element
// category and is only meaningful when the first is Array.
//
// Unions resolve to their first non-none alternative. Resolve never fails:
// anything it does not recognise is Structured.
func Resolve(e Expr) (Tag, Tag) {
	e = unwrapUnion(e)

	var (
		name string
		elem Expr
	)
	switch t := e.(type) {
	case Named:
		name = t.Name
	case Generic:
		name = t.Origin
		if len(t.Args) > 0 {
			elem = t.Args[0]
		}
	default:
		return Structured, None
	}

	tag, ok := primitives[name]
	if !ok {
		return Structured, None
	}
	if tag != Array {
		return tag, None
	}
	return Array, elementTag(elem)
}

// elementTag looks the element up by name only; unions and structs inside a
// list are not unwrapped.
func elementTag(elem Expr) Tag {
	var name string
	switch t := elem.(type) {
	case Named:
		name = t.Name
	case Generic:
		name = t.Origin
	default:
		return Structured
	}

	if tag, ok := primitives[name]; ok {
		return tag
	}
	return Structured
}

func unwrapUnion(e Expr) Expr {
	for {
		u, ok := e.(Union)
		if !ok {
			return e
		}

		var first Expr
		for _, alt := range u.Alternatives {
			if alt != nil && !IsNone(alt) {
				first = alt
				break
			}
		}
		if first == nil {
			return nil
		}
		e = first
	}
}
