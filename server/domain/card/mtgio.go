package card

import (
	"sort"
	"strings"

	"github.com/gear6io/mtgapi/pkg/errors"
	"github.com/tidwall/gjson"
)

const maxLayoutLength = len("double-faced")

// Layouts lists the card layouts the upstream API reports.
var Layouts = []string{
	"normal", "split", "flip", "double-faced", "token", "plane",
	"scheme", "phenomenon", "leveler", "vanguard", "aftermath",
}

// Alias is a foreign-language name of a card.
type Alias struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

// Ruling is a dated rules clarification.
type Ruling struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// MTGIOCard is a card as served by the magicthegathering.io API.
type MTGIOCard struct {
	Names         []string `json:"names"`
	ManaCost      string   `json:"mana_cost"`
	Colors        []string `json:"colors"`
	ColorIdentity []string `json:"color_identity"`
	Rarity        Rarity   `json:"rarity"`
	Types         []string `json:"types"`
	Subtypes      []string `json:"subtypes"`
	Supertypes    []string `json:"supertypes"`
	Text          *string  `json:"text"`
	Flavor        string   `json:"flavor"`
	Power         *string  `json:"power"`
	Toughness     *string  `json:"toughness"`
	Layout        string   `json:"layout"`
	Rulings       []Ruling `json:"rulings"`
	ForeignNames  []Alias  `json:"foreign_names"`
	Printings     []string `json:"printings"`
	Set           string   `json:"set"`
	ID            string   `json:"id"`
	MultiverseID  *int64   `json:"multiverse_id"`
	ImageURL      string   `json:"image_url"`
}

// FromPayload builds and validates a card from one upstream card object.
func FromPayload(payload gjson.Result) (*MTGIOCard, error) {
	if !payload.IsObject() {
		return nil, errors.New(CardInvalidPayload, "card payload must be a JSON object", nil)
	}

	id := payload.Get("id")
	if !id.Exists() || id.String() == "" {
		return nil, errors.New(CardInvalidPayload, "card payload has no id", nil)
	}

	c := &MTGIOCard{
		Names:         []string{payload.Get("name").String()},
		ManaCost:      payload.Get("manaCost").String(),
		Colors:        stringList(payload.Get("colors")),
		ColorIdentity: stringList(payload.Get("colorIdentity")),
		Rarity:        ParseRarity(stringOr(payload.Get("rarity"), string(RarityCommon))),
		Types:         stringList(payload.Get("types")),
		Subtypes:      stringList(payload.Get("subtypes")),
		Supertypes:    stringList(payload.Get("supertypes")),
		Text:          optionalString(payload.Get("text")),
		Flavor:        payload.Get("flavor").String(),
		Power:         optionalString(payload.Get("power")),
		Toughness:     optionalString(payload.Get("toughness")),
		Layout:        stringOr(payload.Get("layout"), "normal"),
		Printings:     stringList(payload.Get("printings")),
		Set:           strings.ToUpper(payload.Get("set").String()),
		ID:            id.String(),
		ImageURL:      payload.Get("imageUrl").String(),
		Rulings:       []Ruling{},
		ForeignNames:  []Alias{},
	}

	if mid := payload.Get("multiverseid"); mid.Exists() && mid.Type != gjson.Null {
		n := mid.Int()
		c.MultiverseID = &n
	}

	payload.Get("rulings").ForEach(func(_, r gjson.Result) bool {
		c.Rulings = append(c.Rulings, Ruling{Date: r.Get("date").String(), Text: r.Get("text").String()})
		return true
	})
	payload.Get("foreignNames").ForEach(func(_, a gjson.Result) bool {
		c.ForeignNames = append(c.ForeignNames, Alias{Name: a.Get("name").String(), Language: a.Get("language").String()})
		return true
	})

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the card and normalizes names and printings: both are
// de-duplicated and sorted, printings upper-cased.
func (c *MTGIOCard) Validate() error {
	names, err := normalizeList(c.Names, strings.TrimSpace)
	if err != nil {
		return errors.Wrapf(CardInvalidPayload, err, "invalid names for card %s", c.ID)
	}
	c.Names = names

	printings, err := normalizeList(c.Printings, strings.ToUpper)
	if err != nil {
		return errors.Wrapf(CardInvalidPayload, err, "invalid printings for card %s", c.ID)
	}
	c.Printings = printings

	if !ValidManaCost(c.ManaCost) {
		return errors.Newf(CardInvalidManaCost,
			"invalid mana cost format %q: expected generic pips like {3} followed by color pips (W, U, B, R, G, C)", c.ManaCost).
			AddContext("card", c.ID)
	}

	if len(c.Types) == 0 {
		return errors.Newf(CardInvalidPayload, "card %s has no types", c.ID)
	}

	if c.Layout == "" || len(c.Layout) > maxLayoutLength {
		return errors.Newf(CardInvalidPayload, "invalid layout %q for card %s", c.Layout, c.ID)
	}

	return nil
}

// Keywords returns the keywords found in the card's rules text.
func (c *MTGIOCard) Keywords() []Keyword {
	if c.Text == nil {
		return []Keyword{}
	}
	return ExtractKeywords(*c.Text)
}

// Name is the primary name of the card.
func (c *MTGIOCard) Name() string {
	if len(c.Names) == 0 {
		return ""
	}
	return c.Names[0]
}

// SameCard compares the identity-relevant fields of two cards.
func (c *MTGIOCard) SameCard(other *MTGIOCard) bool {
	if other == nil {
		return false
	}
	return equalStrings(c.Names, other.Names) &&
		c.ManaCost == other.ManaCost &&
		equalStrings(c.Colors, other.Colors)
}

func normalizeList(values []string, normalize func(string) string) ([]string, error) {
	if len(values) == 0 {
		return nil, errors.New(errors.CommonValidation, "list cannot be empty", nil)
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			return nil, errors.New(errors.CommonValidation, "list cannot contain empty strings", nil)
		}
		v = normalize(v)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func stringList(r gjson.Result) []string {
	out := []string{}
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, v.String())
		return true
	})
	return out
}

func stringOr(r gjson.Result, fallback string) string {
	if !r.Exists() || r.Type == gjson.Null {
		return fallback
	}
	return r.String()
}

func optionalString(r gjson.Result) *string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	s := r.String()
	return &s
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
