// Package card holds the card models the API serves and the conversions from
// the upstream representation.
package card

import (
	"fmt"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/gear6io/mtgapi/server/schema/record"
	"github.com/rs/zerolog"
)

// Definition declares how cards are stored in the cache.
var Definition = record.Define("card",
	record.Typed("id", "string"),
	record.Typed("multiverse_id", "optional<int64>"),
	record.Typed("name", "string"),
	record.Typed("aliases", "list<struct<name:string,language:string>>"),
	record.Typed("rulings", "list<struct<date:string,text:string>>"),
	record.Typed("mana_value", "ManaValue"),
	record.Typed("types", "list<string>"),
	record.Typed("subtypes", "list<string>"),
	record.Typed("keywords", "list<string>"),
	record.Typed("text", "optional<string>"),
	record.Typed("flavor", "string"),
	record.Typed("power", "optional<string>"),
	record.Typed("toughness", "optional<string>"),
	record.Typed("rarity", "optional<string>"),
	record.Typed("set_name", "optional<string>"),
	record.Typed("image_url", "optional<string>"),
)

// Card is the card shape returned by the API and kept in the cache.
type Card struct {
	ID           string    `json:"id"`
	MultiverseID *int64    `json:"multiverse_id"`
	Name         string    `json:"name"`
	Aliases      []Alias   `json:"aliases"`
	Rulings      []Ruling  `json:"rulings"`
	ManaValue    ManaValue `json:"mana_value"`
	Types        []string  `json:"types"`
	Subtypes     []string  `json:"subtypes"`
	Keywords     []Keyword `json:"keywords"`
	Text         *string   `json:"text"`
	Flavor       string    `json:"flavor"`
	Power        *string   `json:"power"`
	Toughness    *string   `json:"toughness"`
	Rarity       *string   `json:"rarity"`
	SetName      *string   `json:"set_name"`
	ImageURL     *string   `json:"image_url"`
}

var _ record.Record = (*Card)(nil)

func (c *Card) DefinitionName() string          { return Definition.DefinitionName() }
func (c *Card) DefinitionFields() []record.Field { return Definition.DefinitionFields() }

// FieldValues returns the column values for the cache.
func (c *Card) FieldValues() map[string]any {
	return map[string]any{
		"id":            c.ID,
		"multiverse_id": derefInt(c.MultiverseID),
		"name":          c.Name,
		"aliases":       c.Aliases,
		"rulings":       c.Rulings,
		"mana_value":    c.ManaValue,
		"types":         c.Types,
		"subtypes":      c.Subtypes,
		"keywords":      c.Keywords,
		"text":          derefString(c.Text),
		"flavor":        c.Flavor,
		"power":         derefString(c.Power),
		"toughness":     derefString(c.Toughness),
		"rarity":        derefString(c.Rarity),
		"set_name":      derefString(c.SetName),
		"image_url":     derefString(c.ImageURL),
	}
}

// SetCode is the set the card was printed in, empty when unknown.
func (c *Card) SetCode() string {
	if c.SetName == nil {
		return ""
	}
	return *c.SetName
}

func (c *Card) String() string {
	set := "Unknown Set"
	if c.SetName != nil && *c.SetName != "" {
		set = *c.SetName
	}
	return fmt.Sprintf("%s (%s) - %s", c.Name, c.ID, set)
}

// FromRow decodes a cached row.
func FromRow(row *record.Row) (*Card, error) {
	var c Card
	if err := row.Decode(&c); err != nil {
		return nil, errors.New(CardDecodeFailed, "failed to decode cached card", err)
	}
	return &c, nil
}

// FromMTGIOCard converts an upstream card. The set is the printing the
// upstream record belongs to, falling back to the first known printing.
func FromMTGIOCard(src *MTGIOCard, logger zerolog.Logger) (*Card, error) {
	logger.Info().Str("card", src.Name()).Str("id", src.ID).Msg("Converting upstream card")

	mana, err := ParseManaCost(src.ManaCost)
	if err != nil {
		return nil, err
	}

	var setName *string
	switch {
	case src.Set != "":
		setName = stringPtr(src.Set)
	case len(src.Printings) > 0:
		setName = stringPtr(src.Printings[0])
	}

	var imageURL *string
	if src.ImageURL != "" {
		imageURL = stringPtr(src.ImageURL)
	}

	rarity := string(src.Rarity)

	return &Card{
		ID:           src.ID,
		MultiverseID: src.MultiverseID,
		Name:         src.Name(),
		Aliases:      nonNil(src.ForeignNames),
		Rulings:      nonNil(src.Rulings),
		ManaValue:    mana,
		Types:        nonNil(src.Types),
		Subtypes:     nonNil(src.Subtypes),
		Keywords:     src.Keywords(),
		Text:         src.Text,
		Flavor:       src.Flavor,
		Power:        src.Power,
		Toughness:    src.Toughness,
		Rarity:       &rarity,
		SetName:      setName,
		ImageURL:     imageURL,
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func stringPtr(s string) *string { return &s }

func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}
