package parse

import (
	"io"

	"hrdf.dev/hrdf/model"
)

var informationTextRowParser = &RowParser{
	Definitions: []RowDefinition{
		{
			ID: 1,
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 9, Type: TypeInt32},
				{Start: 11, Stop: -1, Type: TypeString},
			},
		},
	},
}

// ParseInformationTexts reads one INFOTEXT_{DE,EN,FR,IT} file into lang,
// merging into an existing table (pass nil for the first file read).
// The first file read defines the set of entries; later files may only
// add language content to ids the first file already created.
func ParseInformationTexts(file string, r io.Reader, lang model.Language, out map[int32]*model.InformationText) (map[int32]*model.InformationText, error) {
	first := out == nil
	if first {
		out = map[int32]*model.InformationText{}
	}

	fp, err := NewFileParser(file, r, informationTextRowParser)
	if err != nil {
		return nil, err
	}

	err = fp.Each(func(lineNo int, row ParsedRow) error {
		id := row.Fields[0].Int32()
		entry, ok := out[id]
		if !ok {
			if !first {
				return &UnknownLegacyIDError{Kind: "information text", ID: id}
			}
			entry = &model.InformationText{ID: id, Content: map[model.Language]string{}}
			out[id] = entry
		}
		entry.Content[lang] = row.Fields[1].String()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
