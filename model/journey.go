package model

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// JourneyMetadataType enumerates the kinds of metadata line that can
// attach to a journey in FPLAN.
type JourneyMetadataType int

const (
	MetaAttribute JourneyMetadataType = iota
	MetaBitField
	MetaDirection
	MetaInformationText
	MetaLine
	MetaExchangeTimeBoarding
	MetaExchangeTimeDisembarking
	MetaTransportType
)

// JourneyMetadataEntry is one metadata line attached to a journey. The
// meaning of each field depends on the owning JourneyMetadataType; see
// how ParseJourneys in parse/journey.go fills it for each row kind.
type JourneyMetadataEntry struct {
	FromStopID    *int32
	UntilStopID   *int32
	ResourceID    *int32
	BitFieldID    *int32
	DepartureTime *Time
	ArrivalTime   *Time
	ExtraField1   string
	ExtraField2   int32
}

// JourneyRouteEntry is one stop visited by a journey, in order. The
// first entry never has an arrival time; the last never has a
// departure time.
type JourneyRouteEntry struct {
	StopID        int32
	ArrivalTime   *Time
	DepartureTime *Time
}

// Journey is a single scheduled trip: a route through stops, gated by
// calendar validity and decorated with catalog metadata.
type Journey struct {
	ID             int32
	LegacyID       int32
	Administration string
	Metadata       map[JourneyMetadataType][]JourneyMetadataEntry
	Route          []JourneyRouteEntry
}

// FirstStopID returns the stop id of the first route entry. Fails if
// the route is empty, which the loader never allows to happen.
func (j *Journey) FirstStopID() (int32, error) {
	if len(j.Route) == 0 {
		return 0, fmt.Errorf("journey %d/%s has an empty route", j.LegacyID, j.Administration)
	}
	return j.Route[0].StopID, nil
}

// LastStopID returns the stop id of the last route entry.
func (j *Journey) LastStopID() (int32, error) {
	if len(j.Route) == 0 {
		return 0, fmt.Errorf("journey %d/%s has an empty route", j.LegacyID, j.Administration)
	}
	return j.Route[len(j.Route)-1].StopID, nil
}

// IsLastStop reports whether stopID is the last stop visited by the
// journey. If ignoreLoop is set and the route is a closed loop (first
// stop == last stop), the answer is always false: a loop's nominal
// "last" stop is also its first, so treating it as terminal would
// hide the continuing service.
func (j *Journey) IsLastStop(stopID int32, ignoreLoop bool) bool {
	if len(j.Route) == 0 {
		return false
	}
	last := j.Route[len(j.Route)-1]
	if ignoreLoop && j.Route[0].StopID == last.StopID {
		return false
	}
	return last.StopID == stopID
}

func (j *Journey) indexOfStop(stopID int32) (int, error) {
	for i, e := range j.Route {
		if e.StopID == stopID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("stop %d is not on the route of journey %d/%s", stopID, j.LegacyID, j.Administration)
}

// CountStops returns the number of stops from departureStopID
// (inclusive) to the stop immediately preceding arrivalStopID, plus
// one.
func (j *Journey) CountStops(departureStopID, arrivalStopID int32) (int, error) {
	dep, err := j.indexOfStop(departureStopID)
	if err != nil {
		return 0, err
	}
	arr, err := j.indexOfStop(arrivalStopID)
	if err != nil {
		return 0, err
	}
	if arr <= dep {
		return 0, fmt.Errorf("arrival stop %d does not follow departure stop %d on journey %d/%s",
			arrivalStopID, departureStopID, j.LegacyID, j.Administration)
	}
	return arr - dep + 1, nil
}

// RouteSection returns the stop ids strictly after departureStopID up
// to and including arrivalStopID.
func (j *Journey) RouteSection(departureStopID, arrivalStopID int32) ([]int32, error) {
	dep, err := j.indexOfStop(departureStopID)
	if err != nil {
		return nil, err
	}
	arr, err := j.indexOfStop(arrivalStopID)
	if err != nil {
		return nil, err
	}
	if arr <= dep {
		return nil, fmt.Errorf("arrival stop %d does not follow departure stop %d on journey %d/%s",
			arrivalStopID, departureStopID, j.LegacyID, j.Administration)
	}
	out := make([]int32, 0, arr-dep)
	for _, e := range j.Route[dep+1 : arr+1] {
		out = append(out, e.StopID)
	}
	return out, nil
}

// HashRoute computes a stable hash of the sorted-unique set of stop
// ids from departureStopID onward, used to dedupe route suffixes.
func (j *Journey) HashRoute(departureStopID int32) (uint64, error) {
	dep, err := j.indexOfStop(departureStopID)
	if err != nil {
		return 0, err
	}

	seen := map[int32]bool{}
	ids := make([]int32, 0, len(j.Route)-dep)
	for _, e := range j.Route[dep:] {
		if !seen[e.StopID] {
			seen[e.StopID] = true
			ids = append(ids, e.StopID)
		}
	}
	sort.Slice(ids, func(i, k int) bool { return ids[i] < ids[k] })

	h := xxhash.New()
	buf := make([]byte, 4)
	for _, id := range ids {
		binary.LittleEndian.PutUint32(buf, uint32(id))
		h.Write(buf)
	}
	return h.Sum64(), nil
}

// TransportTypeID returns the resource id of the journey's first
// TransportType metadata entry. Fails if no such entry is present;
// every journey is expected to carry exactly one *G line.
func (j *Journey) TransportTypeID() (int32, error) {
	entries := j.Metadata[MetaTransportType]
	if len(entries) == 0 || entries[0].ResourceID == nil {
		return 0, fmt.Errorf("journey %d/%s has no transport type", j.LegacyID, j.Administration)
	}
	return *entries[0].ResourceID, nil
}

// BitFieldID returns the journey's calendar bitfield id, from the
// first BitField metadata entry. Fails if no such entry is present;
// callers building derived indexes must substitute the default id 0
// themselves (see storage package), since absence there means
// "every day", not an error.
func (j *Journey) BitFieldID() (int32, error) {
	entries := j.Metadata[MetaBitField]
	if len(entries) == 0 || entries[0].BitFieldID == nil {
		return 0, fmt.Errorf("journey %d/%s has no bit field", j.LegacyID, j.Administration)
	}
	return *entries[0].BitFieldID, nil
}

// BitFieldIDOrDefault is like BitFieldID but returns 0 ("every day")
// instead of an error when no bit field metadata is present.
func (j *Journey) BitFieldIDOrDefault() int32 {
	id, err := j.BitFieldID()
	if err != nil {
		return 0
	}
	return id
}

func (j *Journey) timesOf(stopID int32) (arrival, departure *Time, nextDay bool, err error) {
	i, err := j.indexOfStop(stopID)
	if err != nil {
		return nil, nil, false, err
	}
	firstDeparture := j.Route[0].DepartureTime
	entry := j.Route[i]

	ref := entry.DepartureTime
	if ref == nil {
		ref = entry.ArrivalTime
	}
	if ref == nil || firstDeparture == nil {
		return entry.ArrivalTime, entry.DepartureTime, false, nil
	}

	return entry.ArrivalTime, entry.DepartureTime, *ref < *firstDeparture, nil
}

// DepartureTimeOf returns (time, isNextDay) for the journey's
// departure from stopID, where isNextDay indicates the departure
// falls on the calendar day following the journey's first departure
// (a midnight crossing).
func (j *Journey) DepartureTimeOf(stopID int32) (Time, bool, error) {
	_, departure, nextDay, err := j.timesOf(stopID)
	if err != nil {
		return 0, false, err
	}
	if departure == nil {
		return 0, false, fmt.Errorf("journey %d/%s has no departure time at stop %d", j.LegacyID, j.Administration, stopID)
	}
	return *departure, nextDay, nil
}

// ArrivalTimeOf returns (time, isNextDay) for the journey's arrival at
// stopID. Callers must not call this for the route's first entry,
// which never carries an arrival time.
func (j *Journey) ArrivalTimeOf(stopID int32) (Time, bool, error) {
	arrival, _, nextDay, err := j.timesOf(stopID)
	if err != nil {
		return 0, false, err
	}
	if arrival == nil {
		return 0, false, fmt.Errorf("journey %d/%s has no arrival time at stop %d", j.LegacyID, j.Administration, stopID)
	}
	return *arrival, nextDay, nil
}

// DateAt resolves the calendar date and clock time of a journey event
// at targetStopID, relative to a reference date anchored at
// originStopID. targetIsDeparture selects whether the target-side
// event is a departure or an arrival; originIsDeparture does the same
// for the origin-side event used for the day-offset comparison (the
// origin is typically the journey's own first stop, which never has
// an arrival time, so originIsDeparture is usually true).
func (j *Journey) DateAt(targetStopID int32, referenceDate Date, targetIsDeparture bool, originStopID int32, originIsDeparture bool) (Date, Time, error) {
	var targetTime Time
	var nextTarget bool
	var err error
	if targetIsDeparture {
		targetTime, nextTarget, err = j.DepartureTimeOf(targetStopID)
	} else {
		targetTime, nextTarget, err = j.ArrivalTimeOf(targetStopID)
	}
	if err != nil {
		return "", 0, err
	}

	var nextOrigin bool
	if originIsDeparture {
		_, nextOrigin, err = j.DepartureTimeOf(originStopID)
	} else {
		_, nextOrigin, err = j.ArrivalTimeOf(originStopID)
	}
	if err != nil {
		return "", 0, err
	}

	switch {
	case nextTarget && !nextOrigin:
		return referenceDate.AddDays(1), targetTime, nil
	case !nextTarget && nextOrigin:
		return referenceDate.AddDays(-1), targetTime, nil
	default:
		return referenceDate, targetTime, nil
	}
}

// DepartureAtOf resolves the calendar date and clock time of the
// journey's departure from stopID, relative to referenceDate at the
// journey's own first stop (the usual case: "what date does this
// journey leave stop X, given it starts its day on referenceDate").
func (j *Journey) DepartureAtOf(stopID int32, referenceDate Date) (Date, Time, error) {
	first, err := j.FirstStopID()
	if err != nil {
		return "", 0, err
	}
	return j.DateAt(stopID, referenceDate, true, first, true)
}

// ArrivalAtOf resolves the calendar date and clock time of the
// journey's arrival at stopID, relative to referenceDate at the
// journey's own first stop.
func (j *Journey) ArrivalAtOf(stopID int32, referenceDate Date) (Date, Time, error) {
	first, err := j.FirstStopID()
	if err != nil {
		return "", 0, err
	}
	return j.DateAt(stopID, referenceDate, false, first, true)
}

// ArrivalAtOfWithOrigin is ArrivalAtOf generalized to an explicit
// origin stop and an explicit choice of departure/arrival reference
// at that origin.
func (j *Journey) ArrivalAtOfWithOrigin(stopID int32, referenceDate Date, originIsDeparture bool, originStopID int32) (Date, Time, error) {
	return j.DateAt(stopID, referenceDate, false, originStopID, originIsDeparture)
}
