package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeP(hhmm int) *Time {
	t, err := ParseHRDFTime(hhmm)
	if err != nil {
		panic(err)
	}
	return &t
}

// Scenario 1: midnight crossing.
func TestJourneyMidnightCrossing(t *testing.T) {
	j := &Journey{
		LegacyID:       1,
		Administration: "000011",
		Route: []JourneyRouteEntry{
			{StopID: 1, DepartureTime: timeP(2350)},
			{StopID: 2, ArrivalTime: timeP(10), DepartureTime: timeP(15)},
			{StopID: 3, ArrivalTime: timeP(30)},
		},
	}

	date, tm, err := j.DepartureAtOf(2, Date("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, Date("2024-01-02"), date)
	assert.Equal(t, *timeP(15), tm)

	date, tm, err = j.ArrivalAtOfWithOrigin(2, Date("2024-01-01"), true, 1)
	require.NoError(t, err)
	assert.Equal(t, Date("2024-01-02"), date)
	assert.Equal(t, *timeP(10), tm)
}

// Scenario 2: loop journey.
func TestJourneyLoop(t *testing.T) {
	j := &Journey{
		Route: []JourneyRouteEntry{
			{StopID: 1, DepartureTime: timeP(800)},
			{StopID: 2, ArrivalTime: timeP(810), DepartureTime: timeP(815)},
			{StopID: 1, ArrivalTime: timeP(830)},
		},
	}

	assert.True(t, j.IsLastStop(1, false))
	assert.False(t, j.IsLastStop(1, true))
	assert.False(t, j.IsLastStop(2, false))
}

// Scenario 3: route section / count stops.
func TestJourneyRouteSection(t *testing.T) {
	j := &Journey{
		Route: []JourneyRouteEntry{
			{StopID: 1},
			{StopID: 2},
			{StopID: 3},
			{StopID: 4},
		},
	}

	n, err := j.CountStops(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	section, err := j.RouteSection(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 3}, section)
}

func TestJourneyHashRouteStable(t *testing.T) {
	j := &Journey{
		Route: []JourneyRouteEntry{
			{StopID: 1},
			{StopID: 3},
			{StopID: 2},
			{StopID: 3},
		},
	}

	h1, err := j.HashRoute(1)
	require.NoError(t, err)
	h2, err := j.HashRoute(1)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	other := &Journey{
		Route: []JourneyRouteEntry{
			{StopID: 1},
			{StopID: 2},
			{StopID: 3},
		},
	}
	h3, err := other.HashRoute(1)
	require.NoError(t, err)
	assert.Equal(t, h1, h3, "dedupes to the same unique stop set")
}

func TestJourneyBitFieldIDOrDefault(t *testing.T) {
	j := &Journey{Metadata: map[JourneyMetadataType][]JourneyMetadataEntry{}}
	assert.Equal(t, int32(0), j.BitFieldIDOrDefault())

	id := int32(42)
	j.Metadata[MetaBitField] = []JourneyMetadataEntry{{BitFieldID: &id}}
	assert.Equal(t, int32(42), j.BitFieldIDOrDefault())
}
