package parse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdf.dev/hrdf/model"
	"hrdf.dev/hrdf/parse"
)

func TestParseExchangeTimesAdministration(t *testing.T) {
	content := strings.Join([]string{
		platformRow(24,
			platformField{1, "0000100"}, platformField{9, "ADMIN1"}, platformField{16, "ADMIN2"}, platformField{23, "3"},
		),
		platformRow(24,
			platformField{9, "ADMIN1"}, platformField{16, "ADMIN2"}, platformField{23, "7"},
		),
	}, "\n") + "\n"

	out, err := parse.ParseExchangeTimesAdministration("UMSTEIGV", strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, out, 2)

	scoped := out[1]
	require.NotNil(t, scoped.StopID)
	assert.Equal(t, int32(100), *scoped.StopID)
	assert.Equal(t, "ADMIN1", scoped.Administration1)
	assert.Equal(t, "ADMIN2", scoped.Administration2)
	assert.Equal(t, int32(3), scoped.Duration)

	fleetWide := out[2]
	assert.Nil(t, fleetWide.StopID)
	assert.Equal(t, int32(7), fleetWide.Duration)
}

func TestParseExchangeTimesJourneyKnown(t *testing.T) {
	content := platformRow(47,
		platformField{1, "0000100"}, platformField{9, "001001"}, platformField{16, "ADMIN1"},
		platformField{23, "001002"}, platformField{30, "ADMIN1"}, platformField{37, "5"},
		platformField{40, "!"}, platformField{42, "000009"},
	) + "\n"

	converter := map[model.JourneyID]int32{
		{LegacyID: 1001, Administration: "ADMIN1"}: 1,
		{LegacyID: 1002, Administration: "ADMIN1"}: 2,
	}

	out, warnings, err := parse.ParseExchangeTimesJourney("UMSTEIGZ", strings.NewReader(content), converter, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, out, 1)

	e := out[1]
	assert.Equal(t, int32(100), e.StopID)
	assert.Equal(t, int32(1001), e.Journey1.LegacyID)
	assert.Equal(t, int32(1002), e.Journey2.LegacyID)
	assert.Equal(t, int32(5), e.Duration)
	assert.True(t, e.IsGuaranteed)
	require.NotNil(t, e.BitFieldID)
	assert.Equal(t, int32(9), *e.BitFieldID)
}

func TestParseExchangeTimesJourneyUnknownWarns(t *testing.T) {
	content := platformRow(47,
		platformField{1, "0000100"}, platformField{9, "009999"}, platformField{16, "ADMIN1"},
		platformField{23, "009998"}, platformField{30, "ADMIN1"}, platformField{37, "5"},
	) + "\n"

	out, warnings, err := parse.ParseExchangeTimesJourney("UMSTEIGZ", strings.NewReader(content), map[model.JourneyID]int32{}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, warnings, 2)
}

func TestParseExchangeTimesLine(t *testing.T) {
	content := platformRow(56,
		platformField{1, "0000100"},
		platformField{9, "ADMIN1"}, platformField{16, "IC"}, platformField{20, "*"}, platformField{29, "*"},
		platformField{31, "ADMIN2"}, platformField{38, "IR"}, platformField{42, "#1"}, platformField{51, "H"},
		platformField{53, "6"}, platformField{56, "!"},
	) + "\n"

	transportTypeConverter := map[string]int32{"IC": 1, "IR": 2}

	out, err := parse.ParseExchangeTimesLine("UMSTEIGL", strings.NewReader(content), transportTypeConverter)
	require.NoError(t, err)
	require.Len(t, out, 1)

	e := out[1]
	require.NotNil(t, e.StopID)
	assert.Equal(t, int32(100), *e.StopID)
	assert.Equal(t, "ADMIN1", e.Line1.Administration)
	assert.Equal(t, int32(1), e.Line1.TransportTypeID)
	assert.Nil(t, e.Line1.LineID)
	assert.Nil(t, e.Line1.Direction)

	assert.Equal(t, "ADMIN2", e.Line2.Administration)
	assert.Equal(t, int32(2), e.Line2.TransportTypeID)
	require.NotNil(t, e.Line2.LineID)
	assert.Equal(t, int32(1), *e.Line2.LineID)
	require.NotNil(t, e.Line2.Direction)
	assert.Equal(t, "H", *e.Line2.Direction)

	assert.Equal(t, int32(6), e.Duration)
	assert.True(t, e.IsGuaranteed)
}
