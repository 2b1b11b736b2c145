package types

import (
	"strings"

	"github.com/gear6io/mtgapi/pkg/errors"
)

// Parse reads the textual form of a declared type:
//
//	int
//	list<string>
//	map<string,string>
//	optional<bool>
//	int|string|none
//	struct<name:string,language:string>
func Parse(s string) (Expr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New(TypesInvalidExpression, "empty type expression", nil)
	}

	alternatives, err := splitTopLevel(s, '|')
	if err != nil {
		return nil, err
	}
	if len(alternatives) > 1 {
		union := Union{}
		for _, alt := range alternatives {
			parsed, err := Parse(alt)
			if err != nil {
				return nil, err
			}
			// a|(b|c) is flattened so the first-wins order stays visible
			if nested, ok := parsed.(Union); ok {
				union.Alternatives = append(union.Alternatives, nested.Alternatives...)
				continue
			}
			union.Alternatives = append(union.Alternatives, parsed)
		}
		return union, nil
	}

	if s == "none" || s == "null" {
		return NoneType, nil
	}

	open := strings.IndexByte(s, '<')
	if open < 0 {
		if strings.ContainsAny(s, "<>,:| ") {
			return nil, errors.Newf(TypesInvalidExpression, "invalid type name: %s", s)
		}
		return Named{Name: s}, nil
	}

	if !strings.HasSuffix(s, ">") {
		return nil, errors.Newf(TypesUnbalanced, "type parameters must close with '>': %s", s)
	}

	origin := strings.TrimSpace(s[:open])
	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	if origin == "" {
		return nil, errors.Newf(TypesInvalidExpression, "missing type name before '<': %s", s)
	}
	if inner == "" {
		return nil, errors.Newf(TypesInvalidExpression, "%s requires at least one type parameter", origin)
	}

	switch origin {
	case "optional":
		elem, err := Parse(inner)
		if err != nil {
			return nil, err
		}
		return Optional(elem), nil
	case "struct":
		return parseStruct(inner)
	}

	parts, err := splitTopLevel(inner, ',')
	if err != nil {
		return nil, err
	}

	generic := Generic{Origin: origin, Args: make([]Expr, 0, len(parts))}
	for _, part := range parts {
		arg, err := Parse(part)
		if err != nil {
			return nil, err
		}
		generic.Args = append(generic.Args, arg)
	}
	return generic, nil
}

// MustParse is Parse for package-level record definitions.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

func parseStruct(inner string) (Expr, error) {
	parts, err := splitTopLevel(inner, ',')
	if err != nil {
		return nil, err
	}

	st := Struct{Fields: make([]StructField, 0, len(parts))}
	for _, part := range parts {
		colon := strings.IndexByte(part, ':')
		if colon <= 0 {
			return nil, errors.Newf(TypesInvalidExpression, "struct field must be name:type, got %q", part)
		}

		fieldType, err := Parse(part[colon+1:])
		if err != nil {
			return nil, err
		}
		st.Fields = append(st.Fields, StructField{
			Name: strings.TrimSpace(part[:colon]),
			Type: fieldType,
		})
	}
	return st, nil
}

// splitTopLevel splits s on sep, ignoring separators nested inside <...>.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var parts []string
	depth := 0
	start := 0

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, errors.Newf(TypesUnbalanced, "unexpected '>' at position %d in %q", i, s)
			}
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}

	if depth != 0 {
		return nil, errors.Newf(TypesUnbalanced, "unclosed '<' in %q", s)
	}

	parts = append(parts, strings.TrimSpace(s[start:]))
	for _, part := range parts {
		if part == "" {
			return nil, errors.Newf(TypesInvalidExpression, "empty type between '%c' separators in %q", sep, s)
		}
	}
	return parts, nil
}
