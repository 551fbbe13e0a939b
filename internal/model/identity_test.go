package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlayerRegion(t *testing.T) {
	all := []string{
		"BR1", "EUN1", "EUW1", "JP1", "KR", "LA1", "LA2", "ME1", "NA1",
		"OC1", "PH2", "RU", "SG2", "TH2", "TR1", "TW2", "VN2",
	}
	for _, raw := range all {
		region, err := ParsePlayerRegion(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, PlayerRegion(raw), region)
	}
}

func TestParsePlayerRegionIsCaseInsensitive(t *testing.T) {
	region, err := ParsePlayerRegion("euw1")
	require.NoError(t, err)
	assert.Equal(t, RegionEUW1, region)
}

func TestParsePlayerRegionRejectsUnknownValues(t *testing.T) {
	for _, raw := range []string{"", "EUW", "NA", "MOON1", "EUW2"} {
		_, err := ParsePlayerRegion(raw)
		assert.ErrorIs(t, err, ErrUnknownRegion, raw)
	}
}

func TestParseContinent(t *testing.T) {
	continent, err := ParseContinent("EUROPE")
	require.NoError(t, err)
	assert.Equal(t, ContinentEurope, continent)

	_, err = ParseContinent("atlantis")
	assert.ErrorIs(t, err, ErrUnknownContinent)
}

func TestAccountIdentityString(t *testing.T) {
	identity := AccountIdentity{DisplayName: "alice", Tag: "NA1", Region: RegionNA1}
	assert.Equal(t, "alice#NA1", identity.String())
}
