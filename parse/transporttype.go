package parse

import (
	"io"
	"regexp"
	"strings"

	"hrdf.dev/hrdf/model"
)

const (
	transportTypeRowOffer = iota + 1
	transportTypeRowLanguage
	transportTypeRowClass
	transportTypeRowOption
	transportTypeRowCategory
	transportTypeRowInfo
)

func transportTypeOfferColumns(schema TransportTypeSchema) []ColumnDefinition {
	if schema == TransportTypeSchemaV541 {
		return []ColumnDefinition{
			{Start: 1, Stop: 3, Type: TypeString},
			{Start: 5, Stop: 6, Type: TypeInt16},
			{Start: 8, Stop: 8, Type: TypeString},
			{Start: 11, Stop: 11, Type: TypeInt16},
			{Start: 13, Stop: 20, Type: TypeString},
			{Start: 22, Stop: 22, Type: TypeInt16},
			{Start: 24, Stop: 24, Type: TypeString},
		}
	}
	return []ColumnDefinition{
		{Start: 1, Stop: 3, Type: TypeString},
		{Start: 5, Stop: 6, Type: TypeInt16},
		{Start: 8, Stop: 8, Type: TypeString},
		{Start: 10, Stop: 10, Type: TypeInt16},
		{Start: 12, Stop: 19, Type: TypeString},
		{Start: 21, Stop: 21, Type: TypeInt16},
		{Start: 23, Stop: 23, Type: TypeString},
	}
}

func transportTypeRowParser(schema TransportTypeSchema) *RowParser {
	return &RowParser{
		Definitions: []RowDefinition{
			{
				ID:      transportTypeRowOffer,
				Matcher: AdvancedRowMatcher{Re: regexp.MustCompile(`^.{3} [ 0-9]{2}`)},
				Columns: transportTypeOfferColumns(schema),
			},
			{
				ID:      transportTypeRowLanguage,
				Matcher: FastRowMatcher{Start: 1, Length: 1, Literal: "<", Equal: true},
				Columns: []ColumnDefinition{{Start: 1, Stop: -1, Type: TypeString}},
			},
			{
				ID:      transportTypeRowClass,
				Matcher: AdvancedRowMatcher{Re: regexp.MustCompile(`^class.+$`)},
				Columns: []ColumnDefinition{
					{Start: 6, Stop: 7, Type: TypeInt16},
					{Start: 9, Stop: -1, Type: TypeString},
				},
			},
			{
				ID:      transportTypeRowOption,
				Matcher: AdvancedRowMatcher{Re: regexp.MustCompile(`^option.+$`)},
				Columns: nil,
			},
			{
				ID:      transportTypeRowCategory,
				Matcher: AdvancedRowMatcher{Re: regexp.MustCompile(`^category.+$`)},
				Columns: []ColumnDefinition{
					{Start: 10, Stop: 12, Type: TypeInt32},
					{Start: 14, Stop: -1, Type: TypeString},
				},
			},
			{
				ID:      transportTypeRowInfo,
				Matcher: FastRowMatcher{Start: 1, Length: 2, Literal: "*I", Equal: true},
				Columns: []ColumnDefinition{
					{Start: 4, Stop: 5, Type: TypeString},
					{Start: 7, Stop: 15, Type: TypeOptionalInt32},
				},
			},
		},
	}
}

// languageTagFromBrackets extracts the tag out of "<Deutsch>" etc.
func languageTagFromBrackets(raw string) string {
	raw = strings.TrimPrefix(raw, "<")
	return strings.TrimSuffix(raw, ">")
}

func germanicLanguageFromTag(tag string) (model.Language, bool) {
	switch tag {
	case "Deutsch":
		return model.German, true
	case "Franzoesisch":
		return model.French, true
	case "Italienisch":
		return model.Italian, true
	case "Englisch":
		return model.English, true
	default:
		return 0, false
	}
}

// ParseTransportTypes reads the ZUGART file, returning the table keyed
// by assigned pk and the legacy 3-char-designation → pk converter.
func ParseTransportTypes(file string, r io.Reader, schema TransportTypeSchema) (map[int32]*model.TransportType, map[string]int32, error) {
	fp, err := NewFileParser(file, r, transportTypeRowParser(schema))
	if err != nil {
		return nil, nil, err
	}

	out := map[int32]*model.TransportType{}
	converter := map[string]int32{}
	var order []int32
	var nextID int32 = 1
	currentLanguage := model.German
	var current *model.TransportType

	err = fp.Each(func(lineNo int, row ParsedRow) error {
		switch row.ID {
		case transportTypeRowOffer:
			id := nextID
			nextID++
			designation := strings.TrimSpace(row.Fields[0].String())
			converter[designation] = id
			current = &model.TransportType{
				ID:               id,
				Designation:      designation,
				ProductClassID:   int32(row.Fields[1].Int16()),
				TariffGroup:      strings.TrimSpace(row.Fields[2].String()),
				OutputControl:    int32(row.Fields[3].Int16()),
				ShortName:        strings.TrimSpace(row.Fields[4].String()),
				Surcharge:        int32(row.Fields[5].Int16()),
				Flag:             strings.TrimSpace(row.Fields[6].String()),
				ProductClassName: map[model.Language]string{},
				CategoryName:     map[model.Language]string{},
			}
			out[id] = current
			order = append(order, id)
		case transportTypeRowLanguage:
			tag := languageTagFromBrackets(row.Fields[0].String())
			if tag == "text" {
				return nil
			}
			if lang, ok := germanicLanguageFromTag(tag); ok {
				currentLanguage = lang
			}
		case transportTypeRowClass:
			classID := int32(row.Fields[0].Int16())
			name := row.Fields[1].String()
			for _, id := range order {
				if out[id].ProductClassID == classID {
					out[id].ProductClassName[currentLanguage] = name
				}
			}
		case transportTypeRowOption:
			// Reserved search-criteria metadata, not consulted by any query.
		case transportTypeRowCategory:
			if current == nil {
				return ErrMissingDesignation
			}
			current.CategoryName[currentLanguage] = row.Fields[1].String()
		case transportTypeRowInfo:
			// Reserved, not currently consulted by any query.
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, converter, nil
}
