package types

import (
	"fmt"
	"strings"
)

// Expr is a declared field type as written by a record definition.
type Expr interface {
	String() string
	expr()
}

// Named is a bare, unparameterized type such as "int" or "ManaValue".
type Named struct {
	Name string
}

// Generic is a parameterized container, e.g. list<string>.
type Generic struct {
	Origin string
	Args   []Expr
}

// StructField is one member of an inline nested record type.
type StructField struct {
	Name string
	Type Expr
}

// Struct is an inline nested record type.
type Struct struct {
	Fields []StructField
}

// Union is a set of alternatives; optional<T> is Union{T, none}.
type Union struct {
	Alternatives []Expr
}

type noneType struct{}

// NoneType is the absent alternative of an optional.
var NoneType Expr = noneType{}

func (n Named) String() string { return n.Name }

func (g Generic) String() string {
	args := make([]string, len(g.Args))
	for i, arg := range g.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s<%s>", g.Origin, strings.Join(args, ","))
}

func (s Struct) String() string {
	fields := make([]string, len(s.Fields))
	for i, field := range s.Fields {
		fields[i] = fmt.Sprintf("%s:%s", field.Name, field.Type.String())
	}
	return fmt.Sprintf("struct<%s>", strings.Join(fields, ","))
}

func (u Union) String() string {
	alts := make([]string, len(u.Alternatives))
	for i, alt := range u.Alternatives {
		alts[i] = alt.String()
	}
	return strings.Join(alts, "|")
}

func (noneType) String() string { return "none" }

func (Named) expr()    {}
func (Generic) expr()  {}
func (Struct) expr()   {}
func (Union) expr()    {}
func (noneType) expr() {}

// Common declared types.
var (
	Int      Expr = Named{Name: "int"}
	String   Expr = Named{Name: "string"}
	Float64  Expr = Named{Name: "float"}
	Bool     Expr = Named{Name: "bool"}
	Time     Expr = Named{Name: "timestamp"}
	Bytes    Expr = Named{Name: "bytes"}
	AnyValue Expr = Named{Name: "any"}
)

func ListOf(elem Expr) Expr {
	return Generic{Origin: "list", Args: []Expr{elem}}
}

func MapOf(key, value Expr) Expr {
	return Generic{Origin: "map", Args: []Expr{key, value}}
}

func Optional(inner Expr) Expr {
	return Union{Alternatives: []Expr{inner, NoneType}}
}

func OneOf(alternatives ...Expr) Expr {
	return Union{Alternatives: alternatives}
}

func StructOf(fields ...StructField) Expr {
	return Struct{Fields: fields}
}

func Ref(name string) Expr {
	return Named{Name: name}
}

func IsNone(e Expr) bool {
	_, ok := e.(noneType)
	return ok
}
