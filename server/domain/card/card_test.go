package card

import (
	"testing"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/gear6io/mtgapi/server/schema/record"
	"github.com/gear6io/mtgapi/server/schema/table"
	"github.com/gear6io/mtgapi/server/schema/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const boltPayload = `{
	"name": "Lightning Bolt",
	"manaCost": "{R}",
	"colors": ["Red"],
	"colorIdentity": ["R"],
	"type": "Instant",
	"types": ["Instant"],
	"rarity": "Common",
	"set": "2ed",
	"text": "Lightning Bolt deals 3 damage to any target.",
	"layout": "normal",
	"multiverseid": 600,
	"imageUrl": "http://gatherer.example/600.png",
	"rulings": [{"date": "2004-10-04", "text": "It can target a player."}],
	"foreignNames": [{"name": "Blitzschlag", "language": "German", "multiverseid": 1}],
	"printings": ["lea", "2ED", "LEA"],
	"id": "d5b7c3e0-aaaa"
}`

func TestParseManaCost(t *testing.T) {
	tests := []struct {
		cost  string
		want  ManaValue
		total int
	}{
		{"", ManaValue{}, 0},
		{"{3}{W}{U}", ManaValue{Generic: GenericCost{Amount: 3}, White: 1, Blue: 1}, 5},
		{"{X}{R}{R}", ManaValue{Generic: GenericCost{Variable: true}, Red: 2}, 2},
		{"{C}{C}{g}", ManaValue{Colorless: 2, Green: 1}, 3},
		{"{B}", ManaValue{Black: 1}, 1},
		{"{12}", ManaValue{Generic: GenericCost{Amount: 12}}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.cost, func(t *testing.T) {
			got, err := ParseManaCost(tt.cost)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.total, got.Total())
		})
	}
}

func TestParseManaCostInvalid(t *testing.T) {
	_, err := ParseManaCost("{W/U}")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, CardInvalidManaCost))
}

func TestGenericCostJSON(t *testing.T) {
	b, err := GenericCost{Amount: 4}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "4", string(b))

	b, err = GenericCost{Variable: true}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"X"`, string(b))

	var g GenericCost
	require.NoError(t, g.UnmarshalJSON([]byte(`"X"`)))
	assert.True(t, g.Variable)
	require.NoError(t, g.UnmarshalJSON([]byte(`7`)))
	assert.Equal(t, GenericCost{Amount: 7}, g)
	assert.Error(t, g.UnmarshalJSON([]byte(`"Y"`)))
}

func TestValidManaCost(t *testing.T) {
	assert.True(t, ValidManaCost(""))
	assert.True(t, ValidManaCost("{2}{W}{W}"))
	assert.True(t, ValidManaCost("{X}{C}"))
	assert.False(t, ValidManaCost("{W}{2}"))
	assert.False(t, ValidManaCost("{W/U}"))
	assert.False(t, ValidManaCost("2W"))
}

func TestExtractKeywords(t *testing.T) {
	kws := ExtractKeywords("Flying, first strike\nWhen this enters, scry 1.")
	assert.Contains(t, kws, KeywordFlying)
	assert.Contains(t, kws, KeywordFirstStrike)
	assert.NotContains(t, kws, KeywordHaste)

	assert.Empty(t, ExtractKeywords(""))
	assert.NotNil(t, ExtractKeywords(""))

	kw, ok := ParseKeyword("double strike")
	assert.True(t, ok)
	assert.Equal(t, KeywordDoubleStrike, kw)
	_, ok = ParseKeyword("teleport")
	assert.False(t, ok)
}

func TestParseRarity(t *testing.T) {
	assert.Equal(t, RarityMythic, ParseRarity("Mythic Rare"))
	assert.Equal(t, RarityMythic, ParseRarity("mythic"))
	assert.Equal(t, RarityUncommon, ParseRarity("Uncommon"))
	assert.Equal(t, RarityCommon, ParseRarity("Special"))
	assert.Equal(t, RarityCommon, ParseRarity(""))
}

func TestFromPayload(t *testing.T) {
	c, err := FromPayload(gjson.Parse(boltPayload))
	require.NoError(t, err)

	assert.Equal(t, []string{"Lightning Bolt"}, c.Names)
	assert.Equal(t, "{R}", c.ManaCost)
	assert.Equal(t, RarityCommon, c.Rarity)
	assert.Equal(t, []string{"2ED", "LEA"}, c.Printings)
	assert.Equal(t, "2ED", c.Set)
	require.NotNil(t, c.MultiverseID)
	assert.Equal(t, int64(600), *c.MultiverseID)
	assert.Equal(t, []Alias{{Name: "Blitzschlag", Language: "German"}}, c.ForeignNames)
	assert.Equal(t, []Ruling{{Date: "2004-10-04", Text: "It can target a player."}}, c.Rulings)
	assert.Nil(t, c.Power)
	assert.Equal(t, "normal", c.Layout)
}

func TestFromPayloadValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		code    errors.Code
	}{
		{"not an object", `[1,2]`, CardInvalidPayload},
		{"missing id", `{"name":"A","types":["Instant"],"printings":["LEA"]}`, CardInvalidPayload},
		{"empty name", `{"id":"1","name":"","types":["Instant"],"printings":["LEA"]}`, CardInvalidPayload},
		{"no printings", `{"id":"1","name":"A","types":["Instant"]}`, CardInvalidPayload},
		{"no types", `{"id":"1","name":"A","printings":["LEA"]}`, CardInvalidPayload},
		{"bad mana", `{"id":"1","name":"A","manaCost":"{W/U}","types":["Instant"],"printings":["LEA"]}`, CardInvalidManaCost},
		{"bad layout", `{"id":"1","name":"A","layout":"extremely-long-layout","types":["Instant"],"printings":["LEA"]}`, CardInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromPayload(gjson.Parse(tt.payload))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestSameCard(t *testing.T) {
	a, err := FromPayload(gjson.Parse(boltPayload))
	require.NoError(t, err)
	b, err := FromPayload(gjson.Parse(boltPayload))
	require.NoError(t, err)

	b.ID = "different"
	assert.True(t, a.SameCard(b))
	b.ManaCost = "{1}{R}"
	assert.False(t, a.SameCard(b))
	assert.False(t, a.SameCard(nil))
}

func TestFromMTGIOCard(t *testing.T) {
	src, err := FromPayload(gjson.Parse(boltPayload))
	require.NoError(t, err)

	c, err := FromMTGIOCard(src, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "d5b7c3e0-aaaa", c.ID)
	assert.Equal(t, "Lightning Bolt", c.Name)
	assert.Equal(t, "2ED", c.SetCode())
	assert.Equal(t, ManaValue{Red: 1}, c.ManaValue)
	assert.Equal(t, []Keyword{}, c.Keywords)
	require.NotNil(t, c.Rarity)
	assert.Equal(t, "common", *c.Rarity)
	assert.Equal(t, "Lightning Bolt (d5b7c3e0-aaaa) - 2ED", c.String())

	src.Set = ""
	c, err = FromMTGIOCard(src, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "2ED", c.SetCode())

	src.Printings = nil
	c, err = FromMTGIOCard(src, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "Lightning Bolt (d5b7c3e0-aaaa) - Unknown Set", c.String())
}

func TestCardTableShape(t *testing.T) {
	tbl, err := table.Synthesize(Definition, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "card", tbl.Name)
	pk := tbl.PrimaryKey()
	assert.Equal(t, "id", pk.Name)
	assert.Equal(t, types.Text, pk.Type)

	mid, _ := tbl.Column("multiverse_id")
	assert.Equal(t, types.Integer, mid.Type)
	aliases, _ := tbl.Column("aliases")
	assert.Equal(t, types.Array, aliases.Type)
	assert.Equal(t, types.Structured, aliases.ElementType)
	mana, _ := tbl.Column("mana_value")
	assert.Equal(t, types.Structured, mana.Type)
	kws, _ := tbl.Column("keywords")
	assert.Equal(t, types.Text, kws.ElementType)
}

func TestFromRow(t *testing.T) {
	row := record.NewRow()
	row.Set("id", "abc")
	row.Set("multiverse_id", int64(600))
	row.Set("name", "Lightning Bolt")
	row.Set("aliases", []any{map[string]any{"name": "Blitzschlag", "language": "German"}})
	row.Set("rulings", []any{})
	row.Set("mana_value", map[string]any{"generic": "X", "red": int64(1)})
	row.Set("types", []any{"Instant"})
	row.Set("keywords", []any{"Flying"})
	row.Set("text", nil)
	row.Set("set_name", "2ED")

	c, err := FromRow(row)
	require.NoError(t, err)

	assert.Equal(t, "abc", c.ID)
	require.NotNil(t, c.MultiverseID)
	assert.Equal(t, int64(600), *c.MultiverseID)
	assert.Equal(t, []Alias{{Name: "Blitzschlag", Language: "German"}}, c.Aliases)
	assert.Equal(t, ManaValue{Generic: GenericCost{Variable: true}, Red: 1}, c.ManaValue)
	assert.Equal(t, []Keyword{KeywordFlying}, c.Keywords)
	assert.Nil(t, c.Text)
	assert.Equal(t, "2ED", c.SetCode())

	row.Set("mana_value", map[string]any{"generic": int64(3)})
	c, err = FromRow(row)
	require.NoError(t, err)
	assert.Equal(t, GenericCost{Amount: 3}, c.ManaValue.Generic)

	row.Set("mana_value", "broken")
	_, err = FromRow(row)
	assert.True(t, errors.HasCode(err, CardDecodeFailed))
}

func TestFieldValuesCoverDefinition(t *testing.T) {
	c := &Card{ID: "1", Name: "A"}
	values := c.FieldValues()
	for _, f := range Definition.DefinitionFields() {
		_, ok := values[f.Name]
		assert.True(t, ok, f.Name)
	}
	assert.Nil(t, values["text"])
	assert.Nil(t, values["multiverse_id"])
}
