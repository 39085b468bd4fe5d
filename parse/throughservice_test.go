package parse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdf.dev/hrdf/model"
	"hrdf.dev/hrdf/parse"
)

func TestParseThroughServicesKnownJourneys(t *testing.T) {
	content := platformRow(50,
		platformField{1, "001001"}, platformField{8, "ADMIN1"},
		platformField{15, "0000100"}, platformField{23, "001002"},
		platformField{30, "ADMIN1"}, platformField{37, "0"},
		platformField{44, "0000100"},
	) + "\n"

	converter := map[model.JourneyID]int32{
		{LegacyID: 1001, Administration: "ADMIN1"}: 1,
		{LegacyID: 1002, Administration: "ADMIN1"}: 2,
	}

	out, warnings, err := parse.ParseThroughServices("DURCHBI", strings.NewReader(content), converter, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, out, 1)

	svc := out[1]
	assert.Equal(t, int32(1001), svc.Journey1ID.LegacyID)
	assert.Equal(t, int32(1002), svc.Journey2ID.LegacyID)
	assert.Equal(t, int32(100), svc.Journey1StopID)
	assert.Equal(t, int32(100), svc.Journey2StopID)
}

func TestParseThroughServicesUnknownJourneyWarns(t *testing.T) {
	content := platformRow(50,
		platformField{1, "009999"}, platformField{8, "ADMIN1"},
		platformField{15, "0000100"}, platformField{23, "009999"},
		platformField{30, "ADMIN1"}, platformField{37, "0"},
		platformField{44, "0000100"},
	) + "\n"

	out, warnings, err := parse.ParseThroughServices("DURCHBI", strings.NewReader(content), map[model.JourneyID]int32{}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0].Error(), "journey_1")
	assert.Contains(t, warnings[1].Error(), "journey_2")
}

func TestParseThroughServicesStopMismatchWarns(t *testing.T) {
	content := platformRow(50,
		platformField{1, "001001"}, platformField{8, "ADMIN1"},
		platformField{15, "0000100"}, platformField{23, "001002"},
		platformField{30, "ADMIN1"}, platformField{37, "0"},
		platformField{44, "0000200"},
	) + "\n"

	converter := map[model.JourneyID]int32{
		{LegacyID: 1001, Administration: "ADMIN1"}: 1,
		{LegacyID: 1002, Administration: "ADMIN1"}: 2,
	}

	out, warnings, err := parse.ParseThroughServices("DURCHBI", strings.NewReader(content), converter, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), "stop mismatch")

	svc := out[1]
	assert.Equal(t, int32(100), svc.Journey1StopID)
	assert.Equal(t, int32(200), svc.Journey2StopID)
}
