package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdf.dev/hrdf/model"
	"hrdf.dev/hrdf/storage"
)

func intPtr(v int32) *int32 { return &v }

func journey(id, legacyID int32, admin string, bitFieldID *int32, stopIDs ...int32) *model.Journey {
	route := make([]model.JourneyRouteEntry, len(stopIDs))
	for i, s := range stopIDs {
		route[i] = model.JourneyRouteEntry{StopID: s}
	}
	meta := map[model.JourneyMetadataType][]model.JourneyMetadataEntry{}
	if bitFieldID != nil {
		meta[model.MetaBitField] = []model.JourneyMetadataEntry{{BitFieldID: bitFieldID}}
	}
	return &model.Journey{ID: id, LegacyID: legacyID, Administration: admin, Metadata: meta, Route: route}
}

func bitField(id int32, activeDays ...int) *model.BitField {
	bits := make([]bool, 384)
	for _, d := range activeDays {
		bits[d+2] = true
	}
	return &model.BitField{ID: id, Bits: bits}
}

func baseTables() storage.Tables {
	return storage.Tables{
		BitFields:         map[int32]*model.BitField{1: bitField(1, 0, 1, 2)},
		TimetableMetadata: map[int32]*model.TimetableMetadataEntry{
			1: {ID: 1, Key: model.KeyStartDate, Value: "01.01.2026"},
			2: {ID: 2, Key: model.KeyEndDate, Value: "03.01.2026"},
		},
		Stops: map[int32]*model.Stop{100: {ID: 100, Name: "Bern"}, 200: {ID: 200, Name: "Zurich"}},
		Journeys: map[int32]*model.Journey{
			1: journey(1, 1001, "ADMIN1", intPtr(1), 100, 200),
			2: journey(2, 1002, "ADMIN1", nil, 200),
		},
		StopConnections: map[int32]*model.StopConnection{
			1: {ID: 1, StopID1: 100, StopID2: 200, Duration: 5},
		},
		ExchangeTimeAdmins: map[int32]*model.ExchangeTimeAdministration{
			1: {ID: 1, StopID: intPtr(100), Administration1: "ADMIN1", Administration2: "ADMIN2", Duration: 3},
			2: {ID: 2, StopID: nil, Administration1: "ADMIN1", Administration2: "ADMIN2", Duration: 7},
		},
		ExchangeTimeJourneys: map[int32]*model.ExchangeTimeJourney{
			1: {
				ID:     1,
				StopID: 200,
				Journey1: model.JourneyID{LegacyID: 1001, Administration: "ADMIN1"},
				Journey2: model.JourneyID{LegacyID: 1002, Administration: "ADMIN1"},
				Duration: 4,
			},
		},
		DefaultExchangeTimeIC:    2,
		DefaultExchangeTimeOther: 4,
	}
}

func TestBitFieldsByDay(t *testing.T) {
	ds := storage.New(baseTables())

	days := ds.BitFieldsByDay(model.Date("2026-01-01"))
	assert.ElementsMatch(t, []int32{0, 1}, days)

	days = ds.BitFieldsByDay(model.Date("2026-01-03"))
	assert.ElementsMatch(t, []int32{0, 1}, days)

	// Out of validity window: no entry at all.
	assert.Nil(t, ds.BitFieldsByDay(model.Date("2026-02-01")))
}

func TestBitFieldsByStop(t *testing.T) {
	ds := storage.New(baseTables())

	assert.ElementsMatch(t, []int32{1}, ds.BitFieldsByStop(100))
	// Stop 200 is visited by journey 1 (bitfield 1) and journey 2 (no
	// bitfield metadata at all, so the synthetic default id 0).
	assert.ElementsMatch(t, []int32{0, 1}, ds.BitFieldsByStop(200))
	assert.Empty(t, ds.BitFieldsByStop(999))
}

func TestJourneysByStopAndBitField(t *testing.T) {
	ds := storage.New(baseTables())

	assert.ElementsMatch(t, []int32{1}, ds.JourneysByStopAndBitField(100, 1))
	assert.ElementsMatch(t, []int32{1}, ds.JourneysByStopAndBitField(200, 1))
	assert.ElementsMatch(t, []int32{2}, ds.JourneysByStopAndBitField(200, 0))
	assert.Empty(t, ds.JourneysByStopAndBitField(100, 0))
}

func TestStopConnectionsByStop(t *testing.T) {
	ds := storage.New(baseTables())

	assert.Equal(t, []int32{1}, ds.StopConnectionsByStop(100))
	assert.Empty(t, ds.StopConnectionsByStop(200))
}

func TestExchangeTimeAdministrationLookup(t *testing.T) {
	ds := storage.New(baseTables())

	id, ok := ds.ExchangeTimeAdministrationLookup(intPtr(100), "ADMIN1", "ADMIN2")
	require.True(t, ok)
	assert.Equal(t, int32(1), id)

	// No stop-scoped entry at 300: falls back to the fleet-wide default.
	id, ok = ds.ExchangeTimeAdministrationLookup(intPtr(300), "ADMIN1", "ADMIN2")
	require.True(t, ok)
	assert.Equal(t, int32(2), id)

	_, ok = ds.ExchangeTimeAdministrationLookup(nil, "NOPE", "ADMIN2")
	assert.False(t, ok)
}

func TestExchangeTimeJourneyLookup(t *testing.T) {
	ds := storage.New(baseTables())

	ids := ds.ExchangeTimeJourneyLookup(200, 1, 2)
	assert.Equal(t, []int32{1}, ids)
	assert.Empty(t, ds.ExchangeTimeJourneyLookup(100, 1, 2))
}

func TestDefaultExchangeTime(t *testing.T) {
	ds := storage.New(baseTables())

	ic, other := ds.DefaultExchangeTime()
	assert.Equal(t, int32(2), ic)
	assert.Equal(t, int32(4), other)
}

func TestTableAccessors(t *testing.T) {
	ds := storage.New(baseTables())

	stop, ok := ds.Stops.Find(100)
	require.True(t, ok)
	assert.Equal(t, "Bern", stop.Name)

	_, ok = ds.Stops.Find(999)
	assert.False(t, ok)

	assert.Len(t, ds.Stops.Entries(), 2)

	resolved := ds.Journeys.ResolveIDs([]int32{1, 999, 2})
	assert.Len(t, resolved, 2)
}
