package parse

import (
	"io"
	"strings"

	"hrdf.dev/hrdf/model"
)

var metadataLineParser = &RowParser{
	Definitions: []RowDefinition{
		{ID: 1, Columns: []ColumnDefinition{{Start: 1, Stop: -1, Type: TypeString}}},
	},
}

// orderedMetadataKeys is the in-order assignment of the non-date
// lines of ECKDATEN, after the $-separated fields of every remaining
// line are flattened into one sequence.
var orderedMetadataKeys = []model.TimetableMetadataKey{
	model.KeyName,
	model.KeyCreatedAt,
	model.KeyVersion,
	model.KeyProvider,
}

// ParseTimetableMetadata reads the ECKDATEN file: two leading date
// lines (start_date, end_date), then further lines whose $-separated
// values are assigned in order to name, created_at, version, provider.
func ParseTimetableMetadata(file string, r io.Reader) (map[int32]*model.TimetableMetadataEntry, error) {
	fp, err := NewFileParser(file, r, metadataLineParser)
	if err != nil {
		return nil, err
	}

	var lines []string
	err = fp.Each(func(lineNo int, row ParsedRow) error {
		lines = append(lines, strings.TrimSpace(row.Fields[0].String()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(lines) < 2 {
		return nil, ErrMissingValuePart
	}

	out := map[int32]*model.TimetableMetadataEntry{}
	var nextID int32 = 1

	add := func(key model.TimetableMetadataKey, value string) {
		id := nextID
		nextID++
		out[id] = &model.TimetableMetadataEntry{ID: id, Key: key, Value: value}
	}

	startDate, err := model.ParseHRDFDate(lines[0])
	if err != nil {
		return nil, err
	}
	endDate, err := model.ParseHRDFDate(lines[1])
	if err != nil {
		return nil, err
	}
	add(model.KeyStartDate, string(startDate))
	add(model.KeyEndDate, string(endDate))

	var values []string
	for _, line := range lines[2:] {
		for _, v := range strings.Split(line, "$") {
			values = append(values, strings.TrimSpace(v))
		}
	}
	for i, key := range orderedMetadataKeys {
		if i >= len(values) {
			break
		}
		add(key, values[i])
	}

	return out, nil
}
