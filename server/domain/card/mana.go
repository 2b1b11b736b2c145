package card

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gear6io/mtgapi/pkg/errors"
)

// manaCostPattern accepts generic pips followed by single-color pips, e.g.
// "{3}{W}{U}" or "{X}{R}".
var manaCostPattern = regexp.MustCompile(`^(\{[0-9X]+\})*(\{[WUBRGC]\})*$`)

// GenericCost is the generic part of a mana cost: a number or the
// variable X.
type GenericCost struct {
	Amount   int
	Variable bool
}

func (g GenericCost) String() string {
	if g.Variable {
		return "X"
	}
	return strconv.Itoa(g.Amount)
}

func (g GenericCost) MarshalJSON() ([]byte, error) {
	if g.Variable {
		return []byte(`"X"`), nil
	}
	return []byte(strconv.Itoa(g.Amount)), nil
}

func (g *GenericCost) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return g.UnmarshalText([]byte(s))
	}
	return g.UnmarshalText(data)
}

func (g *GenericCost) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if strings.EqualFold(s, "X") {
		*g = GenericCost{Variable: true}
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("generic mana must be a number or X, got %q", s)
	}
	*g = GenericCost{Amount: n}
	return nil
}

// ManaValue is a mana cost broken down per color.
type ManaValue struct {
	Generic   GenericCost `json:"generic"`
	Colorless int         `json:"colorless"`
	White     int         `json:"white"`
	Blue      int         `json:"blue"`
	Black     int         `json:"black"`
	Red       int         `json:"red"`
	Green     int         `json:"green"`
}

// Total is the converted mana value; X counts as zero.
func (m ManaValue) Total() int {
	return m.Generic.Amount + m.Colorless + m.White + m.Blue + m.Black + m.Red + m.Green
}

// ParseManaCost reads a cost string such as "{2}{W}{W}". An empty string is a
// zero cost.
func ParseManaCost(cost string) (ManaValue, error) {
	var mv ManaValue

	sections := strings.Split(strings.ReplaceAll(strings.ReplaceAll(cost, "{", ""), "}", ","), ",")
	for _, section := range sections {
		if section == "" {
			continue
		}

		pip := strings.ToUpper(section)
		switch pip {
		case "X":
			mv.Generic = GenericCost{Variable: true}
			continue
		case "W":
			mv.White++
			continue
		case "U":
			mv.Blue++
			continue
		case "B":
			mv.Black++
			continue
		case "R":
			mv.Red++
			continue
		case "G":
			mv.Green++
			continue
		case "C":
			mv.Colorless++
			continue
		}

		n, err := strconv.Atoi(section)
		if err != nil || n < 0 {
			return ManaValue{}, errors.Newf(CardInvalidManaCost, "invalid mana symbol %q in cost %q", section, cost).
				AddContext("cost", cost)
		}
		mv.Generic = GenericCost{Amount: n}
	}

	return mv, nil
}

// ValidManaCost reports whether cost is in the upstream "{N}{C}..." format.
func ValidManaCost(cost string) bool {
	return manaCostPattern.MatchString(cost)
}
