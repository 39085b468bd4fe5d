package parse

import (
	"io"
	"log/slog"
	"strings"

	"hrdf.dev/hrdf/model"
)

var exchangeTimeAdministrationRowParser = &RowParser{
	Definitions: []RowDefinition{
		{ID: 1, Columns: []ColumnDefinition{
			{Start: 1, Stop: 7, Type: TypeString},
			{Start: 9, Stop: 14, Type: TypeString},
			{Start: 16, Stop: 21, Type: TypeString},
			{Start: 23, Stop: 24, Type: TypeInt16},
		}},
	},
}

// ParseExchangeTimesAdministration reads UMSTEIGV: the minimum
// transfer duration between two administrations, either fleet-wide
// ("@@@@@@@" stop column) or scoped to one stop. The trailing stop
// name column is descriptive only and not extracted.
func ParseExchangeTimesAdministration(file string, r io.Reader) (map[int32]*model.ExchangeTimeAdministration, error) {
	fp, err := NewFileParser(file, r, exchangeTimeAdministrationRowParser)
	if err != nil {
		return nil, err
	}

	out := map[int32]*model.ExchangeTimeAdministration{}
	var nextID int32 = 1
	err = fp.Each(func(lineNo int, row ParsedRow) error {
		var stopID *int32
		if raw := row.Fields[0].String(); raw != "" && raw != "@@@@@@@" {
			v, err := parseInt32(raw)
			if err != nil {
				return err
			}
			stopID = &v
		}
		id := nextID
		nextID++
		out[id] = &model.ExchangeTimeAdministration{
			ID:              id,
			StopID:          stopID,
			Administration1: row.Fields[1].String(),
			Administration2: row.Fields[2].String(),
			Duration:        int32(row.Fields[3].Int16()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var exchangeTimeJourneyRowParser = &RowParser{
	Definitions: []RowDefinition{
		{ID: 1, Columns: []ColumnDefinition{
			{Start: 1, Stop: 7, Type: TypeInt32},
			{Start: 9, Stop: 14, Type: TypeInt32},
			{Start: 16, Stop: 21, Type: TypeString},
			{Start: 23, Stop: 28, Type: TypeInt32},
			{Start: 30, Stop: 35, Type: TypeString},
			{Start: 37, Stop: 39, Type: TypeInt16},
			{Start: 40, Stop: 40, Type: TypeString},
			{Start: 42, Stop: 47, Type: TypeOptionalInt32},
		}},
	},
}

// ParseExchangeTimesJourney reads UMSTEIGZ: a per-stop minimum
// transfer duration between two specific journeys, with an optional
// "!" guaranteed-changeover flag and an optional governing bitfield.
// An unknown legacy JourneyId is logged and returned as a warning
// rather than aborting the file, matching DURCHBI's policy: this
// cross-reference is a data-quality signal, not a structural error.
func ParseExchangeTimesJourney(file string, r io.Reader, journeyConverter map[model.JourneyID]int32, logger *slog.Logger) (map[int32]*model.ExchangeTimeJourney, []error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fp, err := NewFileParser(file, r, exchangeTimeJourneyRowParser)
	if err != nil {
		return nil, nil, err
	}

	out := map[int32]*model.ExchangeTimeJourney{}
	var warnings []error
	var nextID int32 = 1

	err = fp.Each(func(lineNo int, row ParsedRow) error {
		stopID := row.Fields[0].Int32()
		journey1 := model.JourneyID{LegacyID: row.Fields[1].Int32(), Administration: row.Fields[2].String()}
		journey2 := model.JourneyID{LegacyID: row.Fields[3].Int32(), Administration: row.Fields[4].String()}
		duration := int32(row.Fields[5].Int16())
		isGuaranteed := row.Fields[6].String() == "!"
		bitFieldID := row.Fields[7].OptInt32()

		if _, ok := journeyConverter[journey1]; !ok {
			warn := &UnknownLegacyIDError{Kind: "journey_1", ID: journey1.LegacyID, Admin: journey1.Administration}
			logger.Warn("journey exchange time references unknown journey", "error", warn, "file", file, "line", lineNo)
			warnings = append(warnings, warn)
		}
		if _, ok := journeyConverter[journey2]; !ok {
			warn := &UnknownLegacyIDError{Kind: "journey_2", ID: journey2.LegacyID, Admin: journey2.Administration}
			logger.Warn("journey exchange time references unknown journey", "error", warn, "file", file, "line", lineNo)
			warnings = append(warnings, warn)
		}

		id := nextID
		nextID++
		out[id] = &model.ExchangeTimeJourney{
			ID:           id,
			StopID:       stopID,
			Journey1:     journey1,
			Journey2:     journey2,
			Duration:     duration,
			IsGuaranteed: isGuaranteed,
			BitFieldID:   bitFieldID,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, warnings, nil
}

var exchangeTimeLineRowParser = &RowParser{
	Definitions: []RowDefinition{
		{ID: 1, Columns: []ColumnDefinition{
			{Start: 1, Stop: 7, Type: TypeOptionalInt32},
			{Start: 9, Stop: 14, Type: TypeString},
			{Start: 16, Stop: 18, Type: TypeString},
			{Start: 20, Stop: 27, Type: TypeString},
			{Start: 29, Stop: 29, Type: TypeString},
			{Start: 31, Stop: 36, Type: TypeString},
			{Start: 38, Stop: 40, Type: TypeString},
			{Start: 42, Stop: 49, Type: TypeString},
			{Start: 51, Stop: 51, Type: TypeString},
			{Start: 53, Stop: 55, Type: TypeInt16},
			{Start: 56, Stop: 56, Type: TypeString},
		}},
	},
}

// parseExchangeLineWildcard turns a "*" column into its nil-pointer
// wildcard encoding, or a non-empty value into a pointer to it.
func parseExchangeLineWildcard(raw string) *string {
	if raw == "*" || raw == "" {
		return nil
	}
	v := raw
	return &v
}

// parseExchangeLineID turns a "*" (quasi-interchange) or plain/
// "#"-prefixed numeric line reference into the model's optional line
// id. Unlike journey.go's L row, an unprefixed value must be numeric
// here too.
func parseExchangeLineID(raw string) (*int32, error) {
	if raw == "*" || raw == "" {
		return nil, nil
	}
	id, err := parseInt32(strings.TrimPrefix(raw, "#"))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseExchangeLineInfo(administration, transportTypeCode, lineID, direction string, transportTypeConverter map[string]int32) (model.LineInfo, error) {
	transportTypeID, ok := transportTypeConverter[transportTypeCode]
	if !ok {
		return model.LineInfo{}, &UnknownLegacyIDError{Kind: "transport type", ID: transportTypeCode}
	}
	id, err := parseExchangeLineID(lineID)
	if err != nil {
		return model.LineInfo{}, err
	}
	return model.LineInfo{
		Administration:  administration,
		TransportTypeID: transportTypeID,
		LineID:          id,
		Direction:       parseExchangeLineWildcard(direction),
	}, nil
}

// ParseExchangeTimesLine reads UMSTEIGL: the minimum transfer duration
// between two (administration, offer category, line, direction)
// tuples, each of whose line/direction fields may be the "*" wildcard.
// The trailing stop name column is descriptive only.
func ParseExchangeTimesLine(file string, r io.Reader, transportTypeConverter map[string]int32) (map[int32]*model.ExchangeTimeLine, error) {
	fp, err := NewFileParser(file, r, exchangeTimeLineRowParser)
	if err != nil {
		return nil, err
	}

	out := map[int32]*model.ExchangeTimeLine{}
	var nextID int32 = 1
	err = fp.Each(func(lineNo int, row ParsedRow) error {
		line1, err := parseExchangeLineInfo(row.Fields[1].String(), row.Fields[2].String(), row.Fields[3].String(), row.Fields[4].String(), transportTypeConverter)
		if err != nil {
			return err
		}
		line2, err := parseExchangeLineInfo(row.Fields[5].String(), row.Fields[6].String(), row.Fields[7].String(), row.Fields[8].String(), transportTypeConverter)
		if err != nil {
			return err
		}

		id := nextID
		nextID++
		out[id] = &model.ExchangeTimeLine{
			ID:           id,
			StopID:       row.Fields[0].OptInt32(),
			Line1:        line1,
			Line2:        line2,
			Duration:     int32(row.Fields[9].Int16()),
			IsGuaranteed: row.Fields[10].String() == "!",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
