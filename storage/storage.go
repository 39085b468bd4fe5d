package storage

import (
	"time"

	"hrdf.dev/hrdf/model"
)

// DataStorage is the immutable, queryable in-memory form of one loaded
// timetable: every table parse/ produced, plus the derived indexes
// that make point lookups cheap instead of requiring a table scan.
// Once built, it never exposes the legacy-id converter maps used to
// get here; callers only ever see primary keys.
type DataStorage struct {
	BitFields            Table[model.BitField]
	Holidays             Table[model.Holiday]
	TimetableMetadata    Table[model.TimetableMetadataEntry]
	Attributes           Table[model.Attribute]
	Directions           Table[model.Direction]
	InformationTexts     Table[model.InformationText]
	Lines                Table[model.Line]
	TransportCompanies   Table[model.TransportCompany]
	TransportTypes       Table[model.TransportType]
	Stops                Table[model.Stop]
	StopConnections      Table[model.StopConnection]
	Journeys             Table[model.Journey]
	Platforms            Table[model.Platform]
	ThroughServices      Table[model.ThroughService]
	ExchangeTimeAdmins   Table[model.ExchangeTimeAdministration]
	ExchangeTimeJourneys Table[model.ExchangeTimeJourney]
	ExchangeTimeLines    Table[model.ExchangeTimeLine]
	JourneyPlatforms     []*model.JourneyPlatform

	defaultExchangeTimeIC    int32
	defaultExchangeTimeOther int32

	bitFieldsByDay            map[model.Date][]int32
	bitFieldsByStop           map[int32][]int32
	journeysByStopAndBitField map[stopBitFieldKey][]int32
	stopConnectionsByStop     map[int32][]int32
	exchangeTimeAdminByKey    map[exchangeAdminKey]int32
	exchangeTimeJourneyByKey  map[exchangeJourneyKey][]int32
}

// Tables is the set of parsed entity tables New assembles into a
// DataStorage. Every field mirrors one HRDF source file's output
// table; JourneyPlatforms has no natural primary key of its own (a
// journey/platform pair may repeat with different bitfield gating)
// so it is kept as a plain slice rather than a Table.
type Tables struct {
	BitFields            map[int32]*model.BitField
	Holidays             map[int32]*model.Holiday
	TimetableMetadata    map[int32]*model.TimetableMetadataEntry
	Attributes           map[int32]*model.Attribute
	Directions           map[int32]*model.Direction
	InformationTexts     map[int32]*model.InformationText
	Lines                map[int32]*model.Line
	TransportCompanies   map[int32]*model.TransportCompany
	TransportTypes       map[int32]*model.TransportType
	Stops                map[int32]*model.Stop
	StopConnections      map[int32]*model.StopConnection
	Journeys             map[int32]*model.Journey
	Platforms            map[int32]*model.Platform
	JourneyPlatforms     []*model.JourneyPlatform
	ThroughServices      map[int32]*model.ThroughService
	ExchangeTimeAdmins   map[int32]*model.ExchangeTimeAdministration
	ExchangeTimeJourneys map[int32]*model.ExchangeTimeJourney
	ExchangeTimeLines    map[int32]*model.ExchangeTimeLine

	// DefaultExchangeTimeIC and DefaultExchangeTimeOther are the
	// fleet-wide fallback transfer durations from the UMSTEIGB default
	// exchange time file, used by DefaultExchangeTime.
	DefaultExchangeTimeIC    int32
	DefaultExchangeTimeOther int32
}

type stopBitFieldKey struct {
	StopID     int32
	BitFieldID int32
}

type exchangeAdminKey struct {
	hasStop                           bool
	stopID                            int32
	administration1, administration2 string
}

type exchangeJourneyKey struct {
	StopID            int32
	Journey1, Journey2 int32
}

// New assembles a DataStorage from a complete set of parsed tables,
// building every derived index eagerly. Index construction is a pure
// function of the tables given: it never needs the parse-time
// legacy-id converters, only the already-resolved entities.
func New(t Tables) *DataStorage {
	ds := &DataStorage{
		BitFields:            NewTable(t.BitFields),
		Holidays:             NewTable(t.Holidays),
		TimetableMetadata:    NewTable(t.TimetableMetadata),
		Attributes:           NewTable(t.Attributes),
		Directions:           NewTable(t.Directions),
		InformationTexts:     NewTable(t.InformationTexts),
		Lines:                NewTable(t.Lines),
		TransportCompanies:   NewTable(t.TransportCompanies),
		TransportTypes:       NewTable(t.TransportTypes),
		Stops:                NewTable(t.Stops),
		StopConnections:      NewTable(t.StopConnections),
		Journeys:             NewTable(t.Journeys),
		Platforms:            NewTable(t.Platforms),
		ThroughServices:      NewTable(t.ThroughServices),
		ExchangeTimeAdmins:   NewTable(t.ExchangeTimeAdmins),
		ExchangeTimeJourneys: NewTable(t.ExchangeTimeJourneys),
		ExchangeTimeLines:    NewTable(t.ExchangeTimeLines),
		JourneyPlatforms:     t.JourneyPlatforms,

		defaultExchangeTimeIC:    t.DefaultExchangeTimeIC,
		defaultExchangeTimeOther: t.DefaultExchangeTimeOther,
	}

	ds.buildBitFieldIndexes(t)
	ds.buildStopConnectionIndex(t)
	ds.buildExchangeTimeAdminIndex(t)
	ds.buildExchangeTimeJourneyIndex(t)

	return ds
}

func (ds *DataStorage) buildBitFieldIndexes(t Tables) {
	ds.bitFieldsByStop = map[int32][]int32{}
	ds.journeysByStopAndBitField = map[stopBitFieldKey][]int32{}

	seenByStop := map[int32]map[int32]bool{}
	for _, j := range t.Journeys {
		bfID := j.BitFieldIDOrDefault()
		for _, entry := range j.Route {
			if seenByStop[entry.StopID] == nil {
				seenByStop[entry.StopID] = map[int32]bool{}
			}
			if !seenByStop[entry.StopID][bfID] {
				seenByStop[entry.StopID][bfID] = true
				ds.bitFieldsByStop[entry.StopID] = append(ds.bitFieldsByStop[entry.StopID], bfID)
			}
			key := stopBitFieldKey{StopID: entry.StopID, BitFieldID: bfID}
			ds.journeysByStopAndBitField[key] = append(ds.journeysByStopAndBitField[key], j.ID)
		}
	}

	ds.bitFieldsByDay = map[model.Date][]int32{}
	start, startOK := ds.metadataDate(t, model.KeyStartDate)
	end, endOK := ds.metadataDate(t, model.KeyEndDate)
	if !startOK || !endOK {
		return
	}
	for d := start; !d.After(end); d = d.AddDays(1) {
		dayIndex := daysBetween(start, d)
		days := []int32{0} // id 0 always operates: "every day"
		for _, bf := range t.BitFields {
			if bf.Operates(dayIndex) {
				days = append(days, bf.ID)
			}
		}
		ds.bitFieldsByDay[d] = days
	}
}

func (ds *DataStorage) metadataDate(t Tables, key model.TimetableMetadataKey) (model.Date, bool) {
	for _, e := range t.TimetableMetadata {
		if e.Key == key {
			d, err := model.ParseHRDFDate(e.Value)
			if err == nil {
				return d, true
			}
			return model.Date(e.Value), true
		}
	}
	return "", false
}

func daysBetween(a, b model.Date) int {
	at, errA := a.Time()
	bt, errB := b.Time()
	if errA != nil || errB != nil {
		return 0
	}
	return int(bt.Sub(at) / (24 * time.Hour))
}

func (ds *DataStorage) buildStopConnectionIndex(t Tables) {
	ds.stopConnectionsByStop = map[int32][]int32{}
	for _, c := range t.StopConnections {
		ds.stopConnectionsByStop[c.StopID1] = append(ds.stopConnectionsByStop[c.StopID1], c.ID)
	}
}

func (ds *DataStorage) buildExchangeTimeAdminIndex(t Tables) {
	ds.exchangeTimeAdminByKey = map[exchangeAdminKey]int32{}
	for _, e := range t.ExchangeTimeAdmins {
		key := exchangeAdminKey{administration1: e.Administration1, administration2: e.Administration2}
		if e.StopID != nil {
			key.hasStop = true
			key.stopID = *e.StopID
		}
		ds.exchangeTimeAdminByKey[key] = e.ID
	}
}

func (ds *DataStorage) buildExchangeTimeJourneyIndex(t Tables) {
	ds.exchangeTimeJourneyByKey = map[exchangeJourneyKey][]int32{}

	pkByLegacy := map[model.JourneyID]int32{}
	for _, j := range t.Journeys {
		pkByLegacy[model.JourneyID{LegacyID: j.LegacyID, Administration: j.Administration}] = j.ID
	}

	for _, e := range t.ExchangeTimeJourneys {
		j1, ok1 := pkByLegacy[e.Journey1]
		j2, ok2 := pkByLegacy[e.Journey2]
		if !ok1 || !ok2 {
			continue
		}
		key := exchangeJourneyKey{StopID: e.StopID, Journey1: j1, Journey2: j2}
		ds.exchangeTimeJourneyByKey[key] = append(ds.exchangeTimeJourneyByKey[key], e.ID)
	}
}

// BitFieldsByDay returns the ids of every bitfield that operates on
// the given calendar date, always including the synthetic id 0
// ("every day"). Returns nil if date falls outside the timetable's
// validity window.
func (ds *DataStorage) BitFieldsByDay(date model.Date) []int32 {
	return ds.bitFieldsByDay[date]
}

// BitFieldsByStop returns the ids of every bitfield (including the
// synthetic id 0) governing at least one journey that calls at
// stopID.
func (ds *DataStorage) BitFieldsByStop(stopID int32) []int32 {
	return ds.bitFieldsByStop[stopID]
}

// JourneysByStopAndBitField returns the primary keys of every journey
// that calls at stopID and is governed by bitFieldID (or, for journeys
// with no calendar metadata at all, by the synthetic default id 0).
func (ds *DataStorage) JourneysByStopAndBitField(stopID, bitFieldID int32) []int32 {
	return ds.journeysByStopAndBitField[stopBitFieldKey{StopID: stopID, BitFieldID: bitFieldID}]
}

// StopConnectionsByStop returns the ids of every connection departing
// from stopID (StopID1).
func (ds *DataStorage) StopConnectionsByStop(stopID int32) []int32 {
	return ds.stopConnectionsByStop[stopID]
}

// ExchangeTimeAdministrationLookup finds the administration-pair
// transfer duration entry, if any, most specific to stopID: a
// stop-scoped entry if stopID is non-nil and one exists, otherwise the
// fleet-wide default entry for the same administration pair.
func (ds *DataStorage) ExchangeTimeAdministrationLookup(stopID *int32, admin1, admin2 string) (int32, bool) {
	if stopID != nil {
		key := exchangeAdminKey{hasStop: true, stopID: *stopID, administration1: admin1, administration2: admin2}
		if id, ok := ds.exchangeTimeAdminByKey[key]; ok {
			return id, true
		}
	}
	key := exchangeAdminKey{administration1: admin1, administration2: admin2}
	id, ok := ds.exchangeTimeAdminByKey[key]
	return id, ok
}

// ExchangeTimeJourneyLookup returns the ids of every journey-pair
// transfer duration entry at stopID between the journeys identified by
// their resolved primary keys j1ID and j2ID.
func (ds *DataStorage) ExchangeTimeJourneyLookup(stopID, j1ID, j2ID int32) []int32 {
	return ds.exchangeTimeJourneyByKey[exchangeJourneyKey{StopID: stopID, Journey1: j1ID, Journey2: j2ID}]
}

// DefaultExchangeTime returns the fleet-wide fallback minimum transfer
// durations (IC-to-IC, and all other combinations) used when no more
// specific ExchangeTimeAdministration, ExchangeTimeJourney or
// ExchangeTimeLine entry applies, and no per-stop Stop.ExchangeTimeIC/
// ExchangeTimeOther override is set.
func (ds *DataStorage) DefaultExchangeTime() (ic, other int32) {
	return ds.defaultExchangeTimeIC, ds.defaultExchangeTimeOther
}
