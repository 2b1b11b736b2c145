package card

import (
	"sort"
	"strings"
)

// Keyword is an evergreen or set-specific ability keyword as printed on cards.
type Keyword string

const (
	KeywordDeathtouch          Keyword = "Deathtouch"
	KeywordDefender            Keyword = "Defender"
	KeywordDoubleStrike        Keyword = "Double Strike"
	KeywordEnchant             Keyword = "Enchant"
	KeywordEquip               Keyword = "Equip"
	KeywordFirstStrike         Keyword = "First Strike"
	KeywordFlash               Keyword = "Flash"
	KeywordFlying              Keyword = "Flying"
	KeywordHaste               Keyword = "Haste"
	KeywordHexproof            Keyword = "Hexproof"
	KeywordIndestructible      Keyword = "Indestructible"
	KeywordIntimidate          Keyword = "Intimidate"
	KeywordForestwalk          Keyword = "Forestwalk"
	KeywordIslandwalk          Keyword = "Islandwalk"
	KeywordMountainwalk        Keyword = "Mountainwalk"
	KeywordPlainswalk          Keyword = "Plainswalk"
	KeywordSwampwalk           Keyword = "Swampwalk"
	KeywordLifelink            Keyword = "Lifelink"
	KeywordProtection          Keyword = "Protection"
	KeywordReach               Keyword = "Reach"
	KeywordShroud              Keyword = "Shroud"
	KeywordTrample             Keyword = "Trample"
	KeywordVigilance           Keyword = "Vigilance"
	KeywordWard                Keyword = "Ward"
	KeywordBanding             Keyword = "Banding"
	KeywordRampage             Keyword = "Rampage"
	KeywordCumulativeUpkeep    Keyword = "Cumulative Upkeep"
	KeywordFlanking            Keyword = "Flanking"
	KeywordPhasing             Keyword = "Phasing"
	KeywordBuyback             Keyword = "Buyback"
	KeywordShadow              Keyword = "Shadow"
	KeywordCycling             Keyword = "Cycling"
	KeywordEcho                Keyword = "Echo"
	KeywordHorsemanship        Keyword = "Horsemanship"
	KeywordFading              Keyword = "Fading"
	KeywordKicker              Keyword = "Kicker"
	KeywordFlashback           Keyword = "Flashback"
	KeywordMadness             Keyword = "Madness"
	KeywordFear                Keyword = "Fear"
	KeywordMorph               Keyword = "Morph"
	KeywordAmplify             Keyword = "Amplify"
	KeywordProvoke             Keyword = "Provoke"
	KeywordStorm               Keyword = "Storm"
	KeywordAffinity            Keyword = "Affinity"
	KeywordEntwine             Keyword = "Entwine"
	KeywordModular             Keyword = "Modular"
	KeywordSunburst            Keyword = "Sunburst"
	KeywordBushido             Keyword = "Bushido"
	KeywordSoulshift           Keyword = "Soulshift"
	KeywordSplice              Keyword = "Splice"
	KeywordOffering            Keyword = "Offering"
	KeywordNinjutsu            Keyword = "Ninjutsu"
	KeywordEpic                Keyword = "Epic"
	KeywordConvoke             Keyword = "Convoke"
	KeywordDredge              Keyword = "Dredge"
	KeywordTransmute           Keyword = "Transmute"
	KeywordBloodthirst         Keyword = "Bloodthirst"
	KeywordHaunt               Keyword = "Haunt"
	KeywordReplicate           Keyword = "Replicate"
	KeywordForecast            Keyword = "Forecast"
	KeywordGraft               Keyword = "Graft"
	KeywordRecover             Keyword = "Recover"
	KeywordRipple              Keyword = "Ripple"
	KeywordSplitSecond         Keyword = "Split Second"
	KeywordSuspend             Keyword = "Suspend"
	KeywordVanishing           Keyword = "Vanishing"
	KeywordAbsorb              Keyword = "Absorb"
	KeywordAuraSwap            Keyword = "Aura Swap"
	KeywordDelve               Keyword = "Delve"
	KeywordFortify             Keyword = "Fortify"
	KeywordFrenzy              Keyword = "Frenzy"
	KeywordGravestorm          Keyword = "Gravestorm"
	KeywordPoisonous           Keyword = "Poisonous"
	KeywordTransfigure         Keyword = "Transfigure"
	KeywordChampion            Keyword = "Champion"
	KeywordChangeling          Keyword = "Changeling"
	KeywordEvoke               Keyword = "Evoke"
	KeywordHideaway            Keyword = "Hideaway"
	KeywordProwl               Keyword = "Prowl"
	KeywordReinforce           Keyword = "Reinforce"
	KeywordConspire            Keyword = "Conspire"
	KeywordPersist             Keyword = "Persist"
	KeywordWither              Keyword = "Wither"
	KeywordRetrace             Keyword = "Retrace"
	KeywordDevour              Keyword = "Devour"
	KeywordExalted             Keyword = "Exalted"
	KeywordUnearth             Keyword = "Unearth"
	KeywordCascade             Keyword = "Cascade"
	KeywordAnnihilator         Keyword = "Annihilator"
	KeywordLevelUp             Keyword = "Level Up"
	KeywordRebound             Keyword = "Rebound"
	KeywordUmbraArmor          Keyword = "Umbra Armor"
	KeywordInfect              Keyword = "Infect"
	KeywordBattleCry           Keyword = "Battle Cry"
	KeywordLivingWeapon        Keyword = "Living Weapon"
	KeywordUndying             Keyword = "Undying"
	KeywordMiracle             Keyword = "Miracle"
	KeywordSoulbond            Keyword = "Soulbond"
	KeywordOverload            Keyword = "Overload"
	KeywordScavenge            Keyword = "Scavenge"
	KeywordUnleash             Keyword = "Unleash"
	KeywordCipher              Keyword = "Cipher"
	KeywordEvolve              Keyword = "Evolve"
	KeywordExtort              Keyword = "Extort"
	KeywordFuse                Keyword = "Fuse"
	KeywordBestow              Keyword = "Bestow"
	KeywordTribute             Keyword = "Tribute"
	KeywordDethrone            Keyword = "Dethrone"
	KeywordHiddenAgenda        Keyword = "Hidden Agenda"
	KeywordOutlast             Keyword = "Outlast"
	KeywordProwess             Keyword = "Prowess"
	KeywordDash                Keyword = "Dash"
	KeywordExploit             Keyword = "Exploit"
	KeywordMenace              Keyword = "Menace"
	KeywordRenown              Keyword = "Renown"
	KeywordAwaken              Keyword = "Awaken"
	KeywordDevoid              Keyword = "Devoid"
	KeywordIngest              Keyword = "Ingest"
	KeywordMyriad              Keyword = "Myriad"
	KeywordSurge               Keyword = "Surge"
	KeywordSkulk               Keyword = "Skulk"
	KeywordEmerge              Keyword = "Emerge"
	KeywordEscalate            Keyword = "Escalate"
	KeywordMelee               Keyword = "Melee"
	KeywordCrew                Keyword = "Crew"
	KeywordFabricate           Keyword = "Fabricate"
	KeywordPartner             Keyword = "Partner"
	KeywordUndaunted           Keyword = "Undaunted"
	KeywordImprovise           Keyword = "Improvise"
	KeywordAftermath           Keyword = "Aftermath"
	KeywordEmbalm              Keyword = "Embalm"
	KeywordEternalize          Keyword = "Eternalize"
	KeywordAfflict             Keyword = "Afflict"
	KeywordAscend              Keyword = "Ascend"
	KeywordAssist              Keyword = "Assist"
	KeywordJumpStart           Keyword = "Jump-Start"
	KeywordMentor              Keyword = "Mentor"
	KeywordAfterlife           Keyword = "Afterlife"
	KeywordRiot                Keyword = "Riot"
	KeywordSpectacle           Keyword = "Spectacle"
	KeywordEscape              Keyword = "Escape"
	KeywordCompanion           Keyword = "Companion"
	KeywordMutate              Keyword = "Mutate"
	KeywordEncore              Keyword = "Encore"
	KeywordBoast               Keyword = "Boast"
	KeywordForetell            Keyword = "Foretell"
	KeywordDemonstrate         Keyword = "Demonstrate"
	KeywordDayboundNightbound  Keyword = "Daybound and Nightbound"
	KeywordDisturb             Keyword = "Disturb"
	KeywordDecayed             Keyword = "Decayed"
	KeywordCleave              Keyword = "Cleave"
	KeywordTraining            Keyword = "Training"
	KeywordCompleated          Keyword = "Compleated"
	KeywordReconfigure         Keyword = "Reconfigure"
	KeywordBlitz               Keyword = "Blitz"
	KeywordCasualty            Keyword = "Casualty"
	KeywordEnlist              Keyword = "Enlist"
	KeywordReadAhead           Keyword = "Read Ahead"
	KeywordRavenous            Keyword = "Ravenous"
	KeywordSquad               Keyword = "Squad"
	KeywordSpaceSculptor       Keyword = "Space Sculptor"
	KeywordVisit               Keyword = "Visit"
	KeywordPrototype           Keyword = "Prototype"
	KeywordLivingMetal         Keyword = "Living Metal"
	KeywordMoreThanMeetsTheEye Keyword = "More Than Meets the Eye"
	KeywordForMirrodin         Keyword = "For Mirrodin!"
	KeywordToxic               Keyword = "Toxic"
	KeywordBackup              Keyword = "Backup"
	KeywordBargain             Keyword = "Bargain"
	KeywordCraft               Keyword = "Craft"
	KeywordDisguise            Keyword = "Disguise"
	KeywordSolved              Keyword = "Solved"
	KeywordPlot                Keyword = "Plot"
	KeywordSaddle              Keyword = "Saddle"
	KeywordSpree               Keyword = "Spree"
	KeywordFreerunning         Keyword = "Freerunning"
	KeywordGift                Keyword = "Gift"
	KeywordOffspring           Keyword = "Offspring"
	KeywordImpending           Keyword = "Impending"
	KeywordExhaust             Keyword = "Exhaust"
	KeywordMaxSpeed            Keyword = "Max Speed"
	KeywordStartYourEngines    Keyword = "Start Your Engines!"
	KeywordHarmonize           Keyword = "Harmonize"
	KeywordMobilize            Keyword = "Mobilize"
)

// AllKeywords lists every known keyword in canonical order.
var AllKeywords = []Keyword{
	KeywordDeathtouch,
	KeywordDefender,
	KeywordDoubleStrike,
	KeywordEnchant,
	KeywordEquip,
	KeywordFirstStrike,
	KeywordFlash,
	KeywordFlying,
	KeywordHaste,
	KeywordHexproof,
	KeywordIndestructible,
	KeywordIntimidate,
	KeywordForestwalk,
	KeywordIslandwalk,
	KeywordMountainwalk,
	KeywordPlainswalk,
	KeywordSwampwalk,
	KeywordLifelink,
	KeywordProtection,
	KeywordReach,
	KeywordShroud,
	KeywordTrample,
	KeywordVigilance,
	KeywordWard,
	KeywordBanding,
	KeywordRampage,
	KeywordCumulativeUpkeep,
	KeywordFlanking,
	KeywordPhasing,
	KeywordBuyback,
	KeywordShadow,
	KeywordCycling,
	KeywordEcho,
	KeywordHorsemanship,
	KeywordFading,
	KeywordKicker,
	KeywordFlashback,
	KeywordMadness,
	KeywordFear,
	KeywordMorph,
	KeywordAmplify,
	KeywordProvoke,
	KeywordStorm,
	KeywordAffinity,
	KeywordEntwine,
	KeywordModular,
	KeywordSunburst,
	KeywordBushido,
	KeywordSoulshift,
	KeywordSplice,
	KeywordOffering,
	KeywordNinjutsu,
	KeywordEpic,
	KeywordConvoke,
	KeywordDredge,
	KeywordTransmute,
	KeywordBloodthirst,
	KeywordHaunt,
	KeywordReplicate,
	KeywordForecast,
	KeywordGraft,
	KeywordRecover,
	KeywordRipple,
	KeywordSplitSecond,
	KeywordSuspend,
	KeywordVanishing,
	KeywordAbsorb,
	KeywordAuraSwap,
	KeywordDelve,
	KeywordFortify,
	KeywordFrenzy,
	KeywordGravestorm,
	KeywordPoisonous,
	KeywordTransfigure,
	KeywordChampion,
	KeywordChangeling,
	KeywordEvoke,
	KeywordHideaway,
	KeywordProwl,
	KeywordReinforce,
	KeywordConspire,
	KeywordPersist,
	KeywordWither,
	KeywordRetrace,
	KeywordDevour,
	KeywordExalted,
	KeywordUnearth,
	KeywordCascade,
	KeywordAnnihilator,
	KeywordLevelUp,
	KeywordRebound,
	KeywordUmbraArmor,
	KeywordInfect,
	KeywordBattleCry,
	KeywordLivingWeapon,
	KeywordUndying,
	KeywordMiracle,
	KeywordSoulbond,
	KeywordOverload,
	KeywordScavenge,
	KeywordUnleash,
	KeywordCipher,
	KeywordEvolve,
	KeywordExtort,
	KeywordFuse,
	KeywordBestow,
	KeywordTribute,
	KeywordDethrone,
	KeywordHiddenAgenda,
	KeywordOutlast,
	KeywordProwess,
	KeywordDash,
	KeywordExploit,
	KeywordMenace,
	KeywordRenown,
	KeywordAwaken,
	KeywordDevoid,
	KeywordIngest,
	KeywordMyriad,
	KeywordSurge,
	KeywordSkulk,
	KeywordEmerge,
	KeywordEscalate,
	KeywordMelee,
	KeywordCrew,
	KeywordFabricate,
	KeywordPartner,
	KeywordUndaunted,
	KeywordImprovise,
	KeywordAftermath,
	KeywordEmbalm,
	KeywordEternalize,
	KeywordAfflict,
	KeywordAscend,
	KeywordAssist,
	KeywordJumpStart,
	KeywordMentor,
	KeywordAfterlife,
	KeywordRiot,
	KeywordSpectacle,
	KeywordEscape,
	KeywordCompanion,
	KeywordMutate,
	KeywordEncore,
	KeywordBoast,
	KeywordForetell,
	KeywordDemonstrate,
	KeywordDayboundNightbound,
	KeywordDisturb,
	KeywordDecayed,
	KeywordCleave,
	KeywordTraining,
	KeywordCompleated,
	KeywordReconfigure,
	KeywordBlitz,
	KeywordCasualty,
	KeywordEnlist,
	KeywordReadAhead,
	KeywordRavenous,
	KeywordSquad,
	KeywordSpaceSculptor,
	KeywordVisit,
	KeywordPrototype,
	KeywordLivingMetal,
	KeywordMoreThanMeetsTheEye,
	KeywordForMirrodin,
	KeywordToxic,
	KeywordBackup,
	KeywordBargain,
	KeywordCraft,
	KeywordDisguise,
	KeywordSolved,
	KeywordPlot,
	KeywordSaddle,
	KeywordSpree,
	KeywordFreerunning,
	KeywordGift,
	KeywordOffspring,
	KeywordImpending,
	KeywordExhaust,
	KeywordMaxSpeed,
	KeywordStartYourEngines,
	KeywordHarmonize,
	KeywordMobilize,
}

// ExtractKeywords returns the keywords mentioned anywhere in text, matched
// case-insensitively, in canonical order.
func ExtractKeywords(text string) []Keyword {
	if text == "" {
		return []Keyword{}
	}

	lower := strings.ToLower(text)
	found := []Keyword{}
	for _, kw := range AllKeywords {
		if strings.Contains(lower, strings.ToLower(string(kw))) {
			found = append(found, kw)
		}
	}
	return found
}

// ParseKeyword matches s against the known keywords ignoring case.
func ParseKeyword(s string) (Keyword, bool) {
	i := sort.Search(len(keywordIndex), func(i int) bool { return keywordIndex[i].key >= strings.ToLower(s) })
	if i < len(keywordIndex) && keywordIndex[i].key == strings.ToLower(s) {
		return keywordIndex[i].kw, true
	}
	return "", false
}

type keywordEntry struct {
	key string
	kw  Keyword
}

var keywordIndex = func() []keywordEntry {
	entries := make([]keywordEntry, len(AllKeywords))
	for i, kw := range AllKeywords {
		entries[i] = keywordEntry{key: strings.ToLower(string(kw)), kw: kw}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	return entries
}()
