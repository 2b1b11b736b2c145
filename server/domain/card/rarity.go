package card

import "strings"

type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityMythic   Rarity = "mythic"
)

var rarities = map[string]Rarity{
	"COMMON":      RarityCommon,
	"UNCOMMON":    RarityUncommon,
	"RARE":        RarityRare,
	"MYTHIC":      RarityMythic,
	"MYTHIC_RARE": RarityMythic,
}

// ParseRarity normalizes upstream rarity labels ("Mythic Rare", "rare").
// Anything unknown is common.
func ParseRarity(s string) Rarity {
	key := strings.ToUpper(strings.Join(strings.Fields(s), "_"))
	if r, ok := rarities[key]; ok {
		return r
	}
	return RarityCommon
}
