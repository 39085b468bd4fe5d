package parse

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"hrdf.dev/hrdf/model"
)

const (
	platformRowJourneyPlatform = iota + 1
	platformRowPlatform
	platformRowSection
	platformRowSloid
	platformRowCoord
	platformRowIgnored
)

// platformLinkRowParser reads the link section shared by every GLEIS
// variant: journey-to-platform bindings and the platform's own
// code/sectors descriptor. These two row kinds never moved between
// the old (GLEIS) and new (GLEISE_LV95) layouts.
//
// Under the newer layout the link pass reads the same combined file
// as the coordinate passes (ParsePlatforms' linkFile == lv95File), so
// Section/SLOID/Coordinate rows appear here too; the trailing
// AnyRowMatcher absorbs them rather than failing the file on the
// first row kind this pass doesn't itself need.
func platformLinkRowParser() *RowParser {
	return &RowParser{
		Definitions: []RowDefinition{
			{
				ID:      platformRowJourneyPlatform,
				Matcher: FastRowMatcher{Start: 23, Length: 1, Literal: "#", Equal: true},
				Columns: []ColumnDefinition{
					{Start: 1, Stop: 7, Type: TypeInt32},
					{Start: 9, Stop: 14, Type: TypeInt32},
					{Start: 16, Stop: 21, Type: TypeString},
					{Start: 24, Stop: 30, Type: TypeInt32}, // col 23 is the '#', skipped
					{Start: 32, Stop: 35, Type: TypeOptionalInt32},
					{Start: 37, Stop: 42, Type: TypeOptionalInt32},
				},
			},
			{
				ID:      platformRowPlatform,
				Matcher: FastRowMatcher{Start: 18, Length: 1, Literal: "G", Equal: true},
				Columns: []ColumnDefinition{
					{Start: 1, Stop: 7, Type: TypeInt32},
					{Start: 10, Stop: 16, Type: TypeInt32}, // col 9 is the '#', skipped
					{Start: 18, Stop: -1, Type: TypeString},
				},
			},
			{
				ID:      platformRowIgnored,
				Matcher: AnyRowMatcher{},
			},
		},
	}
}

// platformCoordinateRowParser reads the descriptor/coordinate section.
// newer selects the combined GLEISE_LV95/GLEISE_WGS grammar, which
// adds a Section row and tags SLOID/coordinate rows "g A"/"k" instead
// of "I A"/"K"; the value columns are the same in both grammars.
func platformCoordinateRowParser(newer bool) *RowParser {
	defs := []RowDefinition{
		{
			ID:      platformRowJourneyPlatform,
			Matcher: FastRowMatcher{Start: 23, Length: 1, Literal: "#", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 9, Stop: 14, Type: TypeInt32},
				{Start: 16, Stop: 21, Type: TypeString},
				{Start: 24, Stop: 30, Type: TypeInt32},
				{Start: 32, Stop: 35, Type: TypeOptionalInt32},
				{Start: 37, Stop: 42, Type: TypeOptionalInt32},
			},
		},
		{
			ID:      platformRowPlatform,
			Matcher: FastRowMatcher{Start: 18, Length: 1, Literal: "G", Equal: true},
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 10, Stop: 16, Type: TypeInt32},
				{Start: 18, Stop: -1, Type: TypeString},
			},
		},
	}
	if newer {
		defs = append(defs,
			RowDefinition{
				ID:      platformRowSection,
				Matcher: FastRowMatcher{Start: 18, Length: 1, Literal: "A", Equal: true},
				Columns: []ColumnDefinition{
					{Start: 1, Stop: 7, Type: TypeInt32},
					{Start: 10, Stop: 16, Type: TypeInt32},
				},
			},
			RowDefinition{
				ID:      platformRowSloid,
				Matcher: FastRowMatcher{Start: 18, Length: 3, Literal: "g A", Equal: true},
				Columns: []ColumnDefinition{
					{Start: 1, Stop: 7, Type: TypeInt32},
					{Start: 10, Stop: 16, Type: TypeInt32},
					{Start: 22, Stop: -1, Type: TypeString},
				},
			},
			RowDefinition{
				ID:      platformRowCoord,
				Matcher: FastRowMatcher{Start: 18, Length: 1, Literal: "k", Equal: true},
				Columns: []ColumnDefinition{
					{Start: 1, Stop: 7, Type: TypeInt32},
					{Start: 10, Stop: 16, Type: TypeInt32},
					{Start: 20, Stop: -1, Type: TypeString},
				},
			},
		)
	} else {
		defs = append(defs,
			RowDefinition{
				ID:      platformRowSloid,
				Matcher: FastRowMatcher{Start: 18, Length: 3, Literal: "I A", Equal: true},
				Columns: []ColumnDefinition{
					{Start: 1, Stop: 7, Type: TypeInt32},
					{Start: 10, Stop: 16, Type: TypeInt32},
					{Start: 22, Stop: -1, Type: TypeString},
				},
			},
			RowDefinition{
				ID:      platformRowCoord,
				Matcher: FastRowMatcher{Start: 18, Length: 1, Literal: "K", Equal: true},
				Columns: []ColumnDefinition{
					{Start: 1, Stop: 7, Type: TypeInt32},
					{Start: 10, Stop: 16, Type: TypeInt32},
					{Start: 20, Stop: -1, Type: TypeString},
				},
			},
		)
	}
	return &RowParser{Definitions: defs}
}

type platformKey struct {
	StopID int32
	Index  int32
}

// rawJourneyPlatform is a link row before its platform index and
// journey legacy id are known to resolve; resolution happens once
// every GLEIS file has been read.
type rawJourneyPlatform struct {
	stopID         int32
	journeyID      int32
	administration string
	index          int32
	time           *int32
	bitFieldID     *int32
}

// ParsePlatforms reads the GLEIS family: a link pass binding stops and
// journeys to platform slots and creating each platform's code/sectors
// descriptor, followed by two coordinate passes (LV95 then WGS84) that
// attach SLOID and coordinates.
//
// newer selects the GLEISE_LV95/GLEISE_WGS grammar (ColumnLayout's
// PlatformLinkFile empty): there, the link pass and the LV95
// coordinate pass read the same file, so the caller must still supply
// two independent readers over it, one per pass. SLOID is written
// only while processing the LV95 reader, matching the source format's
// single system of record for it.
func ParsePlatforms(
	linkFile string, linkR io.Reader,
	lv95File string, lv95R io.Reader,
	wgsFile string, wgsR io.Reader,
	newer bool,
	journeyConverter map[model.JourneyID]int32,
) (map[int32]*model.Platform, []*model.JourneyPlatform, error) {
	platforms := map[int32]*model.Platform{}
	converter := map[platformKey]int32{}
	var nextID int32 = 1
	var rawLinks []rawJourneyPlatform

	linkParser := platformLinkRowParser()
	fp, err := NewFileParser(linkFile, linkR, linkParser)
	if err != nil {
		return nil, nil, err
	}
	err = fp.Each(func(lineNo int, row ParsedRow) error {
		switch row.ID {
		case platformRowJourneyPlatform:
			rawLinks = append(rawLinks, rawJourneyPlatform{
				stopID:         row.Fields[0].Int32(),
				journeyID:      row.Fields[1].Int32(),
				administration: row.Fields[2].String(),
				index:          row.Fields[3].Int32(),
				time:           row.Fields[4].OptInt32(),
				bitFieldID:     row.Fields[5].OptInt32(),
			})
		case platformRowPlatform:
			stopID := row.Fields[0].Int32()
			index := row.Fields[1].Int32()
			code, sectors, err := parsePlatformData(row.Fields[2].String())
			if err != nil {
				return err
			}
			id := nextID
			nextID++
			converter[platformKey{StopID: stopID, Index: index}] = id
			platforms[id] = &model.Platform{ID: id, Code: code, Sectors: sectors, StopID: stopID}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if err := loadPlatformCoordinates(lv95File, lv95R, newer, model.LV95, converter, platforms); err != nil {
		return nil, nil, err
	}
	if err := loadPlatformCoordinates(wgsFile, wgsR, newer, model.WGS84, converter, platforms); err != nil {
		return nil, nil, err
	}

	journeyPlatforms := make([]*model.JourneyPlatform, 0, len(rawLinks))
	for _, raw := range rawLinks {
		key := model.JourneyID{LegacyID: raw.journeyID, Administration: raw.administration}
		if _, ok := journeyConverter[key]; !ok {
			return nil, nil, &UnknownLegacyIDError{Kind: "journey", ID: raw.journeyID, Admin: raw.administration}
		}
		platformID, ok := converter[platformKey{StopID: raw.stopID, Index: raw.index}]
		if !ok {
			return nil, nil, &UnknownLegacyIDError{Kind: "platform", ID: raw.stopID, Index: raw.index}
		}
		t, err := hrdfTimePtr(raw.time)
		if err != nil {
			return nil, nil, err
		}
		journeyPlatforms = append(journeyPlatforms, &model.JourneyPlatform{
			JourneyLegacyID: raw.journeyID,
			Administration:  raw.administration,
			PlatformID:      platformID,
			Time:            t,
			BitFieldID:      raw.bitFieldID,
		})
	}

	return platforms, journeyPlatforms, nil
}

// loadPlatformCoordinates attaches SLOID (LV95 pass only) and
// coordinates to already-created platforms. Journey-platform and
// platform rows reappear in the newer combined layout's coordinate
// files and are ignored here; they were already handled by the link
// pass.
func loadPlatformCoordinates(
	file string, r io.Reader,
	newer bool, system model.CoordinateSystem,
	converter map[platformKey]int32,
	platforms map[int32]*model.Platform,
) error {
	fp, err := NewFileParser(file, r, platformCoordinateRowParser(newer))
	if err != nil {
		return err
	}

	return fp.Each(func(lineNo int, row ParsedRow) error {
		switch row.ID {
		case platformRowJourneyPlatform, platformRowPlatform, platformRowSection:
			return nil
		case platformRowSloid:
			if system != model.LV95 {
				return nil
			}
			stopID := row.Fields[0].Int32()
			index := row.Fields[1].Int32()
			id, ok := converter[platformKey{StopID: stopID, Index: index}]
			if !ok {
				return &UnknownLegacyIDError{Kind: "platform", ID: stopID, Index: index}
			}
			sloid := row.Fields[2].String()
			platforms[id].Sloid = &sloid
		case platformRowCoord:
			stopID := row.Fields[0].Int32()
			index := row.Fields[1].Int32()
			id, ok := converter[platformKey{StopID: stopID, Index: index}]
			if !ok {
				return &UnknownLegacyIDError{Kind: "platform", ID: stopID, Index: index}
			}
			x, y, err := parsePlatformCoordinatePair(row.Fields[2].String())
			if err != nil {
				return err
			}
			var coords model.Coordinates
			if system == model.WGS84 {
				// Stored in reverse (lat, lon) order in the source file.
				coords = model.NewWGS84Coordinates(y, x)
				platforms[id].WGS84 = &coords
			} else {
				coords = model.NewLV95Coordinates(x, y)
				platforms[id].LV95 = &coords
			}
		}
		return nil
	})
}

func parsePlatformCoordinatePair(raw string) (float64, float64, error) {
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return 0, 0, ErrMissingValuePart
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "parsing platform coordinate %q", raw)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "parsing platform coordinate %q", raw)
	}
	return x, y, nil
}

// parsePlatformData splits a "G '<code>'" / "A '<sectors>'" descriptor
// tail into its code and optional sector label. The sector label is
// set only when the A tag shares the G row; separate Section rows are
// not read.
func parsePlatformData(raw string) (string, *string, error) {
	tagged := map[string]string{}
	for _, item := range strings.Split(raw+" ", "' ") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, " '", 2)
		if len(parts) != 2 {
			continue
		}
		tagged[parts[0]] = parts[1]
	}

	code, ok := tagged["G"]
	if !ok {
		return "", nil, errors.New("platform descriptor missing \"G\" entry")
	}
	var sectors *string
	if s, ok := tagged["A"]; ok {
		sectors = &s
	}
	return code, sectors, nil
}
