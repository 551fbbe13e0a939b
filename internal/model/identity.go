package model

import (
	"fmt"
	"strings"
)

// AccountRef is the opaque, stable account identifier (PUUID) returned by the
// identity provider. It is never displayed to players and never chosen by
// this system.
type AccountRef string

// IconID identifies a profile icon.
type IconID int

// PlayerRegion is a platform routing value selecting which regional
// deployment of the identity provider holds the account's game data.
type PlayerRegion string

const (
	RegionBR1  PlayerRegion = "BR1"  // Brazil
	RegionEUN1 PlayerRegion = "EUN1" // Europe Nordic & East
	RegionEUW1 PlayerRegion = "EUW1" // Europe West
	RegionJP1  PlayerRegion = "JP1"  // Japan
	RegionKR   PlayerRegion = "KR"   // Korea
	RegionLA1  PlayerRegion = "LA1"  // Latin America North
	RegionLA2  PlayerRegion = "LA2"  // Latin America South
	RegionME1  PlayerRegion = "ME1"  // Middle East
	RegionNA1  PlayerRegion = "NA1"  // North America
	RegionOC1  PlayerRegion = "OC1"  // Oceania
	RegionPH2  PlayerRegion = "PH2"  // Philippines
	RegionRU   PlayerRegion = "RU"   // Russia
	RegionSG2  PlayerRegion = "SG2"  // Singapore
	RegionTH2  PlayerRegion = "TH2"  // Thailand
	RegionTR1  PlayerRegion = "TR1"  // Turkey
	RegionTW2  PlayerRegion = "TW2"  // Taiwan
	RegionVN2  PlayerRegion = "VN2"  // Vietnam
)

var playerRegions = map[PlayerRegion]struct{}{
	RegionBR1: {}, RegionEUN1: {}, RegionEUW1: {}, RegionJP1: {},
	RegionKR: {}, RegionLA1: {}, RegionLA2: {}, RegionME1: {},
	RegionNA1: {}, RegionOC1: {}, RegionPH2: {}, RegionRU: {},
	RegionSG2: {}, RegionTH2: {}, RegionTR1: {}, RegionTW2: {},
	RegionVN2: {},
}

// ParsePlayerRegion validates a client-supplied region string. Matching is
// case-insensitive; anything outside the closed platform set is an error.
func ParsePlayerRegion(s string) (PlayerRegion, error) {
	region := PlayerRegion(strings.ToUpper(s))
	if _, ok := playerRegions[region]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRegion, s)
	}
	return region, nil
}

// Continent is the coarser routing grouping used for account resolution.
type Continent string

const (
	ContinentAmericas Continent = "americas"
	ContinentAsia     Continent = "asia"
	ContinentEurope   Continent = "europe"
	ContinentEsports  Continent = "esports"
)

// ParseContinent validates a configured continent value, case-insensitively.
func ParseContinent(s string) (Continent, error) {
	continent := Continent(strings.ToLower(s))
	switch continent {
	case ContinentAmericas, ContinentAsia, ContinentEurope, ContinentEsports:
		return continent, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContinent, s)
}

// AccountIdentity is the Riot ID and home region a player introduces
// themselves with. Immutable once captured.
type AccountIdentity struct {
	DisplayName string       `json:"displayName"`
	Tag         string       `json:"tag"`
	Region      PlayerRegion `json:"region"`
}

// String renders the identity the way players write it.
func (a AccountIdentity) String() string {
	return a.DisplayName + "#" + a.Tag
}

// ResolvedAccount is an AccountIdentity the provider has vouched for.
type ResolvedAccount struct {
	AccountIdentity
	Ref AccountRef
}
