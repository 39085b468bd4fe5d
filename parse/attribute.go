package parse

import (
	"io"
	"regexp"
	"strings"

	"hrdf.dev/hrdf/model"
)

const (
	attributeRowOffer = iota + 1
	attributeRowLanguage
	attributeRowDescription
	attributeRowLanguageDescription
)

var attributeRowParser = &RowParser{
	Definitions: []RowDefinition{
		{
			ID:      attributeRowOffer,
			Matcher: AdvancedRowMatcher{Re: regexp.MustCompile(`^.{2} \d .{3} .{2}$`)},
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 2, Type: TypeString},
				{Start: 4, Stop: 4, Type: TypeInt32},
				{Start: 6, Stop: 8, Type: TypeInt32},
				{Start: 10, Stop: 11, Type: TypeInt32},
			},
		},
		{
			ID:      attributeRowLanguage,
			Matcher: FastRowMatcher{Start: 1, Length: 1, Literal: "<", Equal: true},
			Columns: []ColumnDefinition{{Start: 2, Stop: -1, Type: TypeString}},
		},
		{
			ID:      attributeRowDescription,
			Matcher: FastRowMatcher{Start: 1, Length: 1, Literal: "#", Equal: true},
			Columns: []ColumnDefinition{{Start: 2, Stop: -1, Type: TypeString}},
		},
		{
			ID:      attributeRowLanguageDescription,
			Matcher: AnyRowMatcher{},
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 2, Type: TypeString},
				{Start: 3, Stop: -1, Type: TypeString},
			},
		},
	},
}

// ParseAttributes reads the ATTRIBUT file, returning the table keyed
// by assigned pk and the legacy 2-char-code → pk converter.
func ParseAttributes(file string, r io.Reader) (map[int32]*model.Attribute, map[string]int32, error) {
	fp, err := NewFileParser(file, r, attributeRowParser)
	if err != nil {
		return nil, nil, err
	}

	out := map[int32]*model.Attribute{}
	converter := map[string]int32{}
	var nextID int32 = 1
	currentLanguage := model.German

	err = fp.Each(func(lineNo int, row ParsedRow) error {
		switch row.ID {
		case attributeRowOffer:
			designation := row.Fields[0].String()
			id := nextID
			nextID++
			converter[designation] = id
			out[id] = &model.Attribute{
				ID:                id,
				Designation:       designation,
				StopScope:         row.Fields[1].Int32(),
				Priority:          row.Fields[2].Int32(),
				SecondaryPriority: row.Fields[3].Int32(),
				Description:       map[model.Language]string{},
			}
		case attributeRowLanguage:
			tag := strings.TrimSuffix(row.Fields[0].String(), ">")
			if tag == "text" {
				return nil
			}
			lang, ok := model.LanguageFromCode(tag)
			if !ok {
				return nil
			}
			currentLanguage = lang
		case attributeRowDescription:
			// Display-formatting metadata; not consulted by any query.
		case attributeRowLanguageDescription:
			legacyID := row.Fields[0].String()
			pk, ok := converter[legacyID]
			if !ok {
				return &UnknownLegacyIDError{Kind: "attribute", ID: legacyID}
			}
			out[pk].Description[currentLanguage] = row.Fields[1].String()
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, converter, nil
}
