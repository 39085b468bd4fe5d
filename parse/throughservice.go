package parse

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"hrdf.dev/hrdf/model"
)

var throughServiceRowParser = &RowParser{
	Definitions: []RowDefinition{
		{ID: 1, Columns: []ColumnDefinition{
			{Start: 1, Stop: 6, Type: TypeInt32},
			{Start: 8, Stop: 13, Type: TypeString},
			{Start: 15, Stop: 21, Type: TypeInt32},
			{Start: 23, Stop: 28, Type: TypeInt32},
			{Start: 30, Stop: 35, Type: TypeString},
			{Start: 37, Stop: 42, Type: TypeInt32},
			{Start: 44, Stop: 50, Type: TypeInt32},
		}},
	},
}

// ParseThroughServices reads DURCHBI: pairs of journeys joined into a
// single seated run. As in UMSTEIGZ, and unlike the other
// cross-references in this package, an unknown legacy JourneyId here
// does not abort the file —
// it is logged and returned as a warning, and the record is stored
// regardless so a caller can repair it later. The same treatment
// applies to a last-stop/first-stop mismatch between the two
// journeys, which is a data-quality signal rather than a structural
// error.
func ParseThroughServices(file string, r io.Reader, journeyConverter map[model.JourneyID]int32, logger *slog.Logger) (map[int32]*model.ThroughService, []error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fp, err := NewFileParser(file, r, throughServiceRowParser)
	if err != nil {
		return nil, nil, err
	}

	out := map[int32]*model.ThroughService{}
	var warnings []error
	var nextID int32 = 1

	err = fp.Each(func(lineNo int, row ParsedRow) error {
		journey1 := model.JourneyID{LegacyID: row.Fields[0].Int32(), Administration: row.Fields[1].String()}
		stop1 := row.Fields[2].Int32()
		journey2 := model.JourneyID{LegacyID: row.Fields[3].Int32(), Administration: row.Fields[4].String()}
		bitFieldID := row.Fields[5].Int32()
		stop2 := row.Fields[6].Int32()

		if _, ok := journeyConverter[journey1]; !ok {
			warn := &UnknownLegacyIDError{Kind: "journey_1", ID: journey1.LegacyID, Admin: journey1.Administration}
			logger.Warn("through service references unknown journey", "error", warn, "file", file, "line", lineNo)
			warnings = append(warnings, warn)
		}
		if _, ok := journeyConverter[journey2]; !ok {
			warn := &UnknownLegacyIDError{Kind: "journey_2", ID: journey2.LegacyID, Admin: journey2.Administration}
			logger.Warn("through service references unknown journey", "error", warn, "file", file, "line", lineNo)
			warnings = append(warnings, warn)
		}
		if stop1 != stop2 {
			warn := errors.Errorf("through service stop mismatch: journey 1 ends at stop %d, journey 2 starts at stop %d", stop1, stop2)
			logger.Info("through service stop mismatch", "journey_1_stop", stop1, "journey_2_stop", stop2, "file", file, "line", lineNo)
			warnings = append(warnings, warn)
		}

		out[nextID] = &model.ThroughService{
			ID:             nextID,
			Journey1ID:     journey1,
			Journey1StopID: stop1,
			Journey2ID:     journey2,
			Journey2StopID: stop2,
			BitFieldID:     bitFieldID,
		}
		nextID++
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, warnings, nil
}
