package parse

import (
	"io"
	"regexp"

	"github.com/pkg/errors"

	"hrdf.dev/hrdf/model"
)

const (
	journeyRowZ = iota + 1
	journeyRowG
	journeyRowAVE
	journeyRowA
	journeyRowI
	journeyRowL
	journeyRowR
	journeyRowCI
	journeyRowCO
	journeyRowRoute
)

var journeyRowParser = &RowParser{
	Definitions: []RowDefinition{
		{
			ID:      journeyRowZ,
			Matcher: FastRowMatcher{Start: 1, Length: 3, Literal: "*Z ", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 4, Stop: 9, Type: TypeInt32},
				{Start: 11, Stop: 16, Type: TypeString},
			},
		},
		{
			ID:      journeyRowG,
			Matcher: FastRowMatcher{Start: 1, Length: 3, Literal: "*G ", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 4, Stop: 6, Type: TypeString},
				{Start: 8, Stop: 14, Type: TypeOptionalInt32},
				{Start: 16, Stop: 22, Type: TypeOptionalInt32},
			},
		},
		{
			ID:      journeyRowAVE,
			Matcher: FastRowMatcher{Start: 1, Length: 6, Literal: "*A VE ", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 7, Stop: 13, Type: TypeOptionalInt32},
				{Start: 15, Stop: 21, Type: TypeOptionalInt32},
				{Start: 23, Stop: 28, Type: TypeOptionalInt32},
			},
		},
		{
			ID:      journeyRowA,
			Matcher: FastRowMatcher{Start: 1, Length: 3, Literal: "*A ", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 4, Stop: 5, Type: TypeString},
				{Start: 7, Stop: 13, Type: TypeOptionalInt32},
				{Start: 15, Stop: 21, Type: TypeOptionalInt32},
				{Start: 23, Stop: 28, Type: TypeOptionalInt32},
			},
		},
		{
			ID:      journeyRowI,
			Matcher: FastRowMatcher{Start: 1, Length: 3, Literal: "*I ", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 4, Stop: 5, Type: TypeString},
				{Start: 7, Stop: 13, Type: TypeOptionalInt32},
				{Start: 15, Stop: 21, Type: TypeOptionalInt32},
				{Start: 23, Stop: 28, Type: TypeOptionalInt32},
				{Start: 30, Stop: 38, Type: TypeInt32},
				{Start: 40, Stop: 45, Type: TypeOptionalInt32},
				{Start: 47, Stop: 52, Type: TypeOptionalInt32},
			},
		},
		{
			ID:      journeyRowL,
			Matcher: FastRowMatcher{Start: 1, Length: 3, Literal: "*L ", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 4, Stop: 11, Type: TypeString},
				{Start: 13, Stop: 19, Type: TypeOptionalInt32},
				{Start: 21, Stop: 27, Type: TypeOptionalInt32},
				{Start: 29, Stop: 34, Type: TypeOptionalInt32},
				{Start: 36, Stop: 41, Type: TypeOptionalInt32},
			},
		},
		{
			ID:      journeyRowR,
			Matcher: FastRowMatcher{Start: 1, Length: 3, Literal: "*R ", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 4, Stop: 4, Type: TypeString},
				{Start: 6, Stop: 12, Type: TypeString},
				{Start: 14, Stop: 20, Type: TypeOptionalInt32},
				{Start: 22, Stop: 28, Type: TypeOptionalInt32},
				{Start: 30, Stop: 35, Type: TypeOptionalInt32},
				{Start: 37, Stop: 42, Type: TypeOptionalInt32},
			},
		},
		{
			ID:      journeyRowCI,
			Matcher: FastRowMatcher{Start: 1, Length: 3, Literal: "*CI", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 5, Stop: 8, Type: TypeInt32},
				{Start: 10, Stop: 16, Type: TypeOptionalInt32},
				{Start: 18, Stop: 24, Type: TypeOptionalInt32},
				{Start: 26, Stop: 31, Type: TypeOptionalInt32},
				{Start: 33, Stop: 38, Type: TypeOptionalInt32},
			},
		},
		{
			ID:      journeyRowCO,
			Matcher: FastRowMatcher{Start: 1, Length: 3, Literal: "*CO", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 5, Stop: 8, Type: TypeInt32},
				{Start: 10, Stop: 16, Type: TypeOptionalInt32},
				{Start: 18, Stop: 24, Type: TypeOptionalInt32},
				{Start: 26, Stop: 31, Type: TypeOptionalInt32},
				{Start: 33, Stop: 38, Type: TypeOptionalInt32},
			},
		},
		{
			ID:      journeyRowRoute,
			Matcher: AdvancedRowMatcher{Re: regexp.MustCompile(`^[^*]`)},
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 30, Stop: 35, Type: TypeOptionalInt32},
				{Start: 37, Stop: 42, Type: TypeOptionalInt32},
			},
		},
	},
}

// hrdfTimePtr converts an optional raw HHMM field into an optional
// folded Time, preserving nil-ness.
func hrdfTimePtr(raw *int32) (*model.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := model.ParseHRDFTime(int(*raw))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseJourneys reads FPLAN, the central timetable file. Each journey
// begins with a "*Z" line and accumulates metadata and route-entry
// lines until the next "*Z" or end of file. Returns the assembled
// journeys keyed by primary key, and the legacy (legacy_id,
// administration) → primary-key converter other catalogs (platforms,
// through-services, exchange times) resolve journeys through.
func ParseJourneys(
	file string,
	r io.Reader,
	transportTypeConverter map[string]int32,
	attributeConverter map[string]int32,
	directionConverter map[string]int32,
) (map[int32]*model.Journey, map[model.JourneyID]int32, error) {
	fp, err := NewFileParser(file, r, journeyRowParser)
	if err != nil {
		return nil, nil, err
	}

	out := map[int32]*model.Journey{}
	converter := map[model.JourneyID]int32{}
	var nextID int32 = 1
	var current *model.Journey

	addMetadata := func(kind model.JourneyMetadataType, entry model.JourneyMetadataEntry) error {
		if current == nil {
			return ErrMissingValuePart
		}
		current.Metadata[kind] = append(current.Metadata[kind], entry)
		return nil
	}

	err = fp.Each(func(lineNo int, row ParsedRow) error {
		switch row.ID {
		case journeyRowZ:
			if current != nil && len(current.Route) == 0 {
				return errors.Wrapf(ErrEmptyRoute, "journey %d/%s", current.LegacyID, current.Administration)
			}
			legacyID := row.Fields[0].Int32()
			admin := row.Fields[1].String()
			id := nextID
			nextID++
			current = &model.Journey{
				ID:             id,
				LegacyID:       legacyID,
				Administration: admin,
				Metadata:       map[model.JourneyMetadataType][]model.JourneyMetadataEntry{},
			}
			out[id] = current
			converter[model.JourneyID{LegacyID: legacyID, Administration: admin}] = id

		case journeyRowG:
			code := row.Fields[0].String()
			resourceID, ok := transportTypeConverter[code]
			if !ok {
				return &UnknownLegacyIDError{Kind: "transport type", ID: code}
			}
			return addMetadata(model.MetaTransportType, model.JourneyMetadataEntry{
				FromStopID:  row.Fields[1].OptInt32(),
				UntilStopID: row.Fields[2].OptInt32(),
				ResourceID:  &resourceID,
			})

		case journeyRowAVE:
			return addMetadata(model.MetaBitField, model.JourneyMetadataEntry{
				FromStopID:  row.Fields[0].OptInt32(),
				UntilStopID: row.Fields[1].OptInt32(),
				BitFieldID:  row.Fields[2].OptInt32(),
			})

		case journeyRowA:
			code := row.Fields[0].String()
			attributeID, ok := attributeConverter[code]
			if !ok {
				return &UnknownLegacyIDError{Kind: "attribute", ID: code}
			}
			return addMetadata(model.MetaAttribute, model.JourneyMetadataEntry{
				FromStopID:  row.Fields[1].OptInt32(),
				UntilStopID: row.Fields[2].OptInt32(),
				ResourceID:  &attributeID,
			})

		case journeyRowI:
			infoCode := row.Fields[0].String()
			infoRef := row.Fields[4].Int32()
			departure, err := hrdfTimePtr(row.Fields[5].OptInt32())
			if err != nil {
				return err
			}
			arrival, err := hrdfTimePtr(row.Fields[6].OptInt32())
			if err != nil {
				return err
			}
			return addMetadata(model.MetaInformationText, model.JourneyMetadataEntry{
				FromStopID:    row.Fields[1].OptInt32(),
				UntilStopID:   row.Fields[2].OptInt32(),
				ResourceID:    &infoRef,
				BitFieldID:    row.Fields[3].OptInt32(),
				DepartureTime: departure,
				ArrivalTime:   arrival,
				ExtraField1:   infoCode,
			})

		case journeyRowL:
			lineInfo := row.Fields[0].String()
			departure, err := hrdfTimePtr(row.Fields[3].OptInt32())
			if err != nil {
				return err
			}
			arrival, err := hrdfTimePtr(row.Fields[4].OptInt32())
			if err != nil {
				return err
			}
			resourceID, extra, err := parseLineInfo(lineInfo)
			if err != nil {
				return err
			}
			return addMetadata(model.MetaLine, model.JourneyMetadataEntry{
				FromStopID:    row.Fields[1].OptInt32(),
				UntilStopID:   row.Fields[2].OptInt32(),
				ResourceID:    resourceID,
				DepartureTime: departure,
				ArrivalTime:   arrival,
				ExtraField1:   extra,
			})

		case journeyRowR:
			direction := row.Fields[0].String()
			refCode := row.Fields[1].String()
			var directionID *int32
			if refCode != "" {
				id, ok := directionConverter[refCode]
				if !ok {
					return &UnknownLegacyIDError{Kind: "direction", ID: refCode}
				}
				directionID = &id
			}
			departure, err := hrdfTimePtr(row.Fields[4].OptInt32())
			if err != nil {
				return err
			}
			arrival, err := hrdfTimePtr(row.Fields[5].OptInt32())
			if err != nil {
				return err
			}
			return addMetadata(model.MetaDirection, model.JourneyMetadataEntry{
				FromStopID:    row.Fields[2].OptInt32(),
				UntilStopID:   row.Fields[3].OptInt32(),
				ResourceID:    directionID,
				DepartureTime: departure,
				ArrivalTime:   arrival,
				ExtraField1:   direction,
			})

		case journeyRowCI, journeyRowCO:
			kind := model.MetaExchangeTimeBoarding
			if row.ID == journeyRowCO {
				kind = model.MetaExchangeTimeDisembarking
			}
			departure, err := hrdfTimePtr(row.Fields[3].OptInt32())
			if err != nil {
				return err
			}
			arrival, err := hrdfTimePtr(row.Fields[4].OptInt32())
			if err != nil {
				return err
			}
			return addMetadata(kind, model.JourneyMetadataEntry{
				FromStopID:    row.Fields[1].OptInt32(),
				UntilStopID:   row.Fields[2].OptInt32(),
				DepartureTime: departure,
				ArrivalTime:   arrival,
				ExtraField2:   row.Fields[0].Int32(),
			})

		case journeyRowRoute:
			if current == nil {
				return ErrMissingValuePart
			}
			arrival, err := hrdfTimePtr(row.Fields[1].OptInt32())
			if err != nil {
				return err
			}
			departure, err := hrdfTimePtr(row.Fields[2].OptInt32())
			if err != nil {
				return err
			}
			current.Route = append(current.Route, model.JourneyRouteEntry{
				StopID:        row.Fields[0].Int32(),
				ArrivalTime:   arrival,
				DepartureTime: departure,
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if current != nil && len(current.Route) == 0 {
		return nil, nil, errors.Wrapf(ErrEmptyRoute, "%s: journey %d/%s", file, current.LegacyID, current.Administration)
	}
	return out, converter, nil
}

// parseLineInfo splits an *L line's line-info field: a leading '#'
// means the rest is a numeric reference into the LINIE table,
// otherwise the whole field is a free-form line label.
func parseLineInfo(lineInfo string) (*int32, string, error) {
	if len(lineInfo) == 0 {
		return nil, "", ErrMissingValuePart
	}
	if lineInfo[0] != '#' {
		return nil, lineInfo, nil
	}
	id, err := parseInt32(lineInfo[1:])
	if err != nil {
		return nil, "", err
	}
	return &id, "", nil
}
