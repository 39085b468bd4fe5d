package parse

import (
	"io"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"hrdf.dev/hrdf/model"
)

var holidayRowParser = &RowParser{
	Definitions: []RowDefinition{
		{
			ID: 1,
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 10, Type: TypeString},
				{Start: 12, Stop: -1, Type: TypeString},
			},
		},
	},
}

var holidaySegmentPattern = regexp.MustCompile(`^(.*)<(deu|fra|ita|eng)>$`)

// ParseHolidays reads the FEIERTAG file, assigning primary keys in
// source order (the file carries no id column of its own).
func ParseHolidays(file string, r io.Reader) (map[int32]*model.Holiday, error) {
	fp, err := NewFileParser(file, r, holidayRowParser)
	if err != nil {
		return nil, err
	}

	out := map[int32]*model.Holiday{}
	var nextID int32 = 1
	err = fp.Each(func(lineNo int, row ParsedRow) error {
		date, err := model.ParseHRDFDate(strings.TrimSpace(row.Fields[0].String()))
		if err != nil {
			return errors.Wrapf(err, "parsing holiday date")
		}

		names := map[model.Language]string{}
		for _, seg := range strings.Split(row.Fields[1].String(), "$") {
			seg = strings.TrimSpace(seg)
			if seg == "" {
				continue
			}
			m := holidaySegmentPattern.FindStringSubmatch(seg)
			if m == nil {
				return ErrMissingValuePart
			}
			lang, ok := model.LanguageFromCode(m[2])
			if !ok {
				return ErrMissingValuePart
			}
			names[lang] = m[1]
		}

		id := nextID
		nextID++
		out[id] = &model.Holiday{ID: id, Date: date, Name: names}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
