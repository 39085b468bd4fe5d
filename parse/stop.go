package parse

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"hrdf.dev/hrdf/model"
)

var stopMasterRowParser = &RowParser{
	Definitions: []RowDefinition{
		{
			ID: 1,
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 13, Stop: -1, Type: TypeString},
			},
		},
	},
}

// ParseStops reads the BAHNHOF master file: id plus a "$"-joined run
// of name$<tag> fragments (tag 1 mandatory name, 2 long name, 3
// abbreviation, 4 repeatable synonym).
func ParseStops(file string, r io.Reader) (map[int32]*model.Stop, error) {
	fp, err := NewFileParser(file, r, stopMasterRowParser)
	if err != nil {
		return nil, err
	}

	out := map[int32]*model.Stop{}
	err = fp.Each(func(lineNo int, row ParsedRow) error {
		id := row.Fields[0].Int32()
		stop, err := parseStopDesignations(id, row.Fields[1].String())
		if err != nil {
			return err
		}
		stop.ExchangePriority = model.DefaultExchangePriority
		out[id] = stop
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// parseStopDesignations splits "name1$<1>$name2$<2>..." into its
// tagged fragments and assembles a Stop from them.
func parseStopDesignations(id int32, designations string) (*model.Stop, error) {
	byTag := map[int][]string{}
	for _, segment := range strings.Split(designations, ">") {
		if segment == "" {
			continue
		}
		parts := strings.SplitN(segment, "<", 2)
		if len(parts) != 2 {
			return nil, ErrMissingValuePart
		}
		value := strings.ReplaceAll(parts[0], "$", "")
		tag, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing designation tag in %q", designations)
		}
		byTag[tag] = append(byTag[tag], value)
	}

	names, ok := byTag[1]
	if !ok || len(names) == 0 {
		return nil, ErrMissingStopName
	}

	stop := &model.Stop{ID: id, Name: names[0]}
	if v, ok := byTag[2]; ok && len(v) > 0 {
		stop.LongName = &v[0]
	}
	if v, ok := byTag[3]; ok && len(v) > 0 {
		stop.Abbreviation = &v[0]
	}
	if v, ok := byTag[4]; ok {
		stop.Synonyms = v
	}
	for tag := range byTag {
		if tag < 1 || tag > 4 {
			return nil, errors.Errorf("designation tag %d out of range 1..4", tag)
		}
	}
	return stop, nil
}

var coordinateRowParser = &RowParser{
	Definitions: []RowDefinition{
		{
			ID: 1,
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 9, Stop: 19, Type: TypeFloat},
				{Start: 21, Stop: 31, Type: TypeFloat},
				{Start: 33, Stop: 39, Type: TypeInt16},
			},
		},
	},
}

// ParseCoordinatesLV95 reads BFKOORD_LV95: id, easting, northing,
// altitude (discarded).
func ParseCoordinatesLV95(file string, r io.Reader, stops map[int32]*model.Stop) error {
	return parseCoordinates(file, r, stops, model.LV95)
}

// ParseCoordinatesWGS84 reads BFKOORD_WGS: id, x, y, altitude
// (discarded). The file's (x,y) columns are swapped on write to
// (latitude=y-column, longitude=x-column), matching the upstream
// format's convention.
func ParseCoordinatesWGS84(file string, r io.Reader, stops map[int32]*model.Stop) error {
	return parseCoordinates(file, r, stops, model.WGS84)
}

func parseCoordinates(file string, r io.Reader, stops map[int32]*model.Stop, system model.CoordinateSystem) error {
	fp, err := NewFileParser(file, r, coordinateRowParser)
	if err != nil {
		return err
	}

	return fp.Each(func(lineNo int, row ParsedRow) error {
		id := row.Fields[0].Int32()
		stop, ok := stops[id]
		if !ok {
			return &UnknownLegacyIDError{Kind: "stop", ID: id}
		}
		x := row.Fields[1].Float()
		y := row.Fields[2].Float()

		if system == model.WGS84 {
			coords := model.NewWGS84Coordinates(y, x)
			stop.WGS84 = &coords
		} else {
			coords := model.NewLV95Coordinates(x, y)
			stop.LV95 = &coords
		}
		return nil
	})
}

var exchangePriorityRowParser = &RowParser{
	Definitions: []RowDefinition{
		{ID: 1, Columns: []ColumnDefinition{
			{Start: 1, Stop: 7, Type: TypeInt32},
			{Start: 9, Stop: 10, Type: TypeInt32},
		}},
	},
}

// ParseExchangePriorities reads BFPRIOS: id, priority.
func ParseExchangePriorities(file string, r io.Reader, stops map[int32]*model.Stop) error {
	fp, err := NewFileParser(file, r, exchangePriorityRowParser)
	if err != nil {
		return err
	}
	return fp.Each(func(lineNo int, row ParsedRow) error {
		id := row.Fields[0].Int32()
		stop, ok := stops[id]
		if !ok {
			return &UnknownLegacyIDError{Kind: "stop", ID: id}
		}
		stop.ExchangePriority = row.Fields[1].Int32()
		return nil
	})
}

var exchangeFlagRowParser = &RowParser{
	Definitions: []RowDefinition{
		{ID: 1, Columns: []ColumnDefinition{
			{Start: 1, Stop: 7, Type: TypeInt32},
			{Start: 9, Stop: 13, Type: TypeInt32},
		}},
	},
}

// ParseExchangeFlags reads KMINFO: id, flag.
func ParseExchangeFlags(file string, r io.Reader, stops map[int32]*model.Stop) error {
	fp, err := NewFileParser(file, r, exchangeFlagRowParser)
	if err != nil {
		return err
	}
	return fp.Each(func(lineNo int, row ParsedRow) error {
		id := row.Fields[0].Int32()
		stop, ok := stops[id]
		if !ok {
			return &UnknownLegacyIDError{Kind: "stop", ID: id}
		}
		stop.ExchangeFlag = row.Fields[1].Int32()
		return nil
	})
}

var exchangeTimeStopRowParser = &RowParser{
	Definitions: []RowDefinition{
		{ID: 1, Columns: []ColumnDefinition{
			{Start: 1, Stop: 7, Type: TypeInt32},
			{Start: 9, Stop: 10, Type: TypeInt32},
			{Start: 12, Stop: 13, Type: TypeInt32},
		}},
	},
}

// DefaultStopExchangeTime is the default (IC, other) exchange-time
// pair, read from UMSTEIGB's sentinel id 9999999 row.
type DefaultStopExchangeTime struct {
	InterCity int32
	Other     int32
}

// ParseDefaultExchangeTimes reads UMSTEIGB: per-stop (IC, other)
// exchange-time pairs, plus the mandatory sentinel row (id 9999999)
// carrying the fleet-wide default.
func ParseDefaultExchangeTimes(file string, r io.Reader, stops map[int32]*model.Stop) (DefaultStopExchangeTime, error) {
	fp, err := NewFileParser(file, r, exchangeTimeStopRowParser)
	if err != nil {
		return DefaultStopExchangeTime{}, err
	}

	var def DefaultStopExchangeTime
	var sawDefault bool
	err = fp.Each(func(lineNo int, row ParsedRow) error {
		id := row.Fields[0].Int32()
		ic := row.Fields[1].Int32()
		other := row.Fields[2].Int32()

		if id == 9999999 {
			def = DefaultStopExchangeTime{InterCity: ic, Other: other}
			sawDefault = true
			return nil
		}

		stop, ok := stops[id]
		if !ok {
			return &UnknownLegacyIDError{Kind: "stop", ID: id}
		}
		stop.ExchangeTimeIC = &ic
		stop.ExchangeTimeOther = &other
		return nil
	})
	if err != nil {
		return DefaultStopExchangeTime{}, err
	}
	if !sawDefault {
		return DefaultStopExchangeTime{}, ErrMissingDefaultExchangeTime
	}
	return def, nil
}

const (
	stopDescriptionRowComment = iota + 1
	stopDescriptionRowRestrictions
	stopDescriptionRowSloid
	stopDescriptionRowBoardingArea
	stopDescriptionRowCountry
	stopDescriptionRowSubdivision
)

var stopDescriptionRowParser = &RowParser{
	Definitions: []RowDefinition{
		{
			ID:      stopDescriptionRowComment,
			Matcher: FastRowMatcher{Start: 1, Length: 1, Literal: "%", Equal: true},
			Columns: nil,
		},
		{
			ID:      stopDescriptionRowRestrictions,
			Matcher: FastRowMatcher{Start: 9, Length: 1, Literal: "B", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 11, Stop: 12, Type: TypeInt32},
			},
		},
		{
			ID:      stopDescriptionRowSloid,
			Matcher: FastRowMatcher{Start: 11, Length: 1, Literal: "A", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 13, Stop: -1, Type: TypeString},
			},
		},
		{
			ID:      stopDescriptionRowBoardingArea,
			Matcher: FastRowMatcher{Start: 11, Length: 1, Literal: "a", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 13, Stop: -1, Type: TypeString},
			},
		},
		{
			ID:      stopDescriptionRowCountry,
			Matcher: FastRowMatcher{Start: 9, Length: 1, Literal: "L", Equal: true},
			Columns: []ColumnDefinition{{Start: 1, Stop: 7, Type: TypeInt32}},
		},
		{
			ID:      stopDescriptionRowSubdivision,
			Matcher: FastRowMatcher{Start: 9, Length: 1, Literal: "I", Equal: true},
			Columns: []ColumnDefinition{{Start: 1, Stop: 7, Type: TypeInt32}},
		},
	},
}

// ParseStopDescriptions reads the BHFART/BHFART_60 file (name per
// Version's ColumnLayout): restrictions, SLOID, and boarding areas.
// Country code and administrative subdivision rows are classified but
// reserved, matching the upstream parser. Unknown stop ids are
// skipped rather than failing the file: this file layers cosmetic
// detail onto stops already built from BAHNHOF, and a stray
// description for an unlisted auxiliary stop is not load-bearing.
func ParseStopDescriptions(file string, r io.Reader, stops map[int32]*model.Stop) error {
	fp, err := NewFileParser(file, r, stopDescriptionRowParser)
	if err != nil {
		return err
	}

	return fp.Each(func(lineNo int, row ParsedRow) error {
		switch row.ID {
		case stopDescriptionRowComment, stopDescriptionRowCountry, stopDescriptionRowSubdivision:
			return nil
		case stopDescriptionRowRestrictions:
			id := row.Fields[0].Int32()
			stop, ok := stops[id]
			if !ok {
				return nil
			}
			restrictions := strconv.Itoa(int(row.Fields[1].Int32()))
			stop.Restrictions = &restrictions
		case stopDescriptionRowSloid:
			id := row.Fields[0].Int32()
			stop, ok := stops[id]
			if !ok {
				return nil
			}
			sloid := row.Fields[1].String()
			stop.Sloid = &sloid
		case stopDescriptionRowBoardingArea:
			id := row.Fields[0].Int32()
			stop, ok := stops[id]
			if !ok {
				return nil
			}
			stop.BoardingAreas = append(stop.BoardingAreas, row.Fields[1].String())
		}
		return nil
	})
}
