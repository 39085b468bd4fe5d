package parse

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"hrdf.dev/hrdf/model"
)

var directionRowParser = &RowParser{
	Definitions: []RowDefinition{
		{
			ID: 1,
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeString},
				{Start: 9, Stop: -1, Type: TypeString},
			},
		},
	},
}

// ParseDirections reads the RICHTUNG file. The pk is the numeric part
// of the leading "R<nnnnnn>" code; the converter key is the original
// code with its leading zeros intact, matching how it is referenced
// elsewhere in FPLAN.
func ParseDirections(file string, r io.Reader) (map[int32]*model.Direction, map[string]int32, error) {
	fp, err := NewFileParser(file, r, directionRowParser)
	if err != nil {
		return nil, nil, err
	}

	out := map[int32]*model.Direction{}
	converter := map[string]int32{}
	err = fp.Each(func(lineNo int, row ParsedRow) error {
		code := strings.TrimSpace(row.Fields[0].String())
		numeric := strings.TrimPrefix(code, "R")
		id64, err := strconv.ParseInt(numeric, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "parsing direction code %q", code)
		}

		id := int32(id64)
		converter[code] = id
		out[id] = &model.Direction{ID: id, Name: strings.TrimSpace(row.Fields[1].String())}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, converter, nil
}
