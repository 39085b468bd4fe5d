package parse

import (
	"fmt"
	"io"
	"strings"

	"hrdf.dev/hrdf/model"
)

const (
	lineRowKey = iota + 1
	lineRowInternalDesignation
	lineRowShortName
	lineRowLongName
	lineRowTextColor
	lineRowBackgroundColor
	lineRowReserved
)

func lineTagMatcher(tag string) RowMatcher {
	return FastRowMatcher{Start: 9, Length: 1, Literal: tag, Equal: true}
}

var lineRowParser = &RowParser{
	Definitions: []RowDefinition{
		{
			ID:      lineRowKey,
			Matcher: lineTagMatcher("K"),
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 11, Stop: -1, Type: TypeString},
			},
		},
		{
			ID:      lineRowInternalDesignation,
			Matcher: lineTagMatcher("W"),
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 11, Stop: -1, Type: TypeString},
			},
		},
		{
			ID:      lineRowShortName,
			Matcher: lineTagMatcher("N"),
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 13, Stop: -1, Type: TypeString},
			},
		},
		{
			ID:      lineRowLongName,
			Matcher: lineTagMatcher("L"),
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 13, Stop: -1, Type: TypeString},
			},
		},
		{
			ID:      lineRowTextColor,
			Matcher: lineTagMatcher("F"),
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 11, Stop: 13, Type: TypeInt16},
				{Start: 15, Stop: 17, Type: TypeInt16},
				{Start: 19, Stop: 21, Type: TypeInt16},
			},
		},
		{
			ID:      lineRowBackgroundColor,
			Matcher: lineTagMatcher("B"),
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 11, Stop: 13, Type: TypeInt16},
				{Start: 15, Stop: 17, Type: TypeInt16},
				{Start: 19, Stop: 21, Type: TypeInt16},
			},
		},
		{
			// R T, D T, H, I: reserved sub-kinds, not consulted by
			// any query. This catch-all accepts every row not matched
			// above and only extracts its id, so an unrecognised row
			// kind is ignored rather than reported.
			ID:      lineRowReserved,
			Matcher: AnyRowMatcher{},
			Columns: []ColumnDefinition{{Start: 1, Stop: 7, Type: TypeInt32}},
		},
	},
}

func rgbString(r, g, b int16) string {
	return fmt.Sprintf("%d,%d,%d", r, g, b)
}

// ParseLines reads the LINIE file. The legacy 7-digit id is used
// directly as the primary key (lines are not renumbered). W, N, L, F
// and B rows attach to the most recently seen K row; a mismatching id
// fails. Rows taken by the reserved catch-all are ignored.
func ParseLines(file string, r io.Reader) (map[int32]*model.Line, error) {
	fp, err := NewFileParser(file, r, lineRowParser)
	if err != nil {
		return nil, err
	}

	out := map[int32]*model.Line{}
	var current *model.Line

	attach := func(id int32) error {
		if current == nil || current.ID != id {
			return fmt.Errorf("line row references id %d without a preceding K row for it", id)
		}
		return nil
	}

	err = fp.Each(func(lineNo int, row ParsedRow) error {
		id := row.Fields[0].Int32()
		switch row.ID {
		case lineRowKey:
			current = &model.Line{ID: id, Name: strings.TrimSpace(row.Fields[1].String())}
			out[id] = current
		case lineRowInternalDesignation:
			if err := attach(id); err != nil {
				return err
			}
			current.InternalDesignation = strings.TrimSpace(row.Fields[1].String())
		case lineRowShortName:
			if err := attach(id); err != nil {
				return err
			}
			current.ShortDesignation = strings.TrimSpace(row.Fields[1].String())
		case lineRowLongName:
			if err := attach(id); err != nil {
				return err
			}
			current.LongDesignation = strings.TrimSpace(row.Fields[1].String())
		case lineRowTextColor:
			if err := attach(id); err != nil {
				return err
			}
			current.TextColor = rgbString(row.Fields[1].Int16(), row.Fields[2].Int16(), row.Fields[3].Int16())
		case lineRowBackgroundColor:
			if err := attach(id); err != nil {
				return err
			}
			current.BackgroundColor = rgbString(row.Fields[1].Int16(), row.Fields[2].Int16(), row.Fields[3].Int16())
		case lineRowReserved:
			// ignored
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
