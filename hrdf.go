// Package hrdf ingests a Swiss HRDF (Hafas Raw Data Format) timetable
// export into an in-memory, queryable storage.DataStorage.
package hrdf

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"hrdf.dev/hrdf/model"
	"hrdf.dev/hrdf/parse"
	"hrdf.dev/hrdf/storage"
)

// config collects the options Load/LoadFromArchive accept.
type config struct {
	logger *slog.Logger
}

// Option configures a Load/LoadFromArchive call.
type Option func(*config)

// WithLogger overrides the logger used for cross-reference warnings
// emitted while parsing through-services and exchange times. Defaults
// to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Archive is the seam a ZIP-extraction (or any other bundling)
// collaborator implements to let Load read a timetable without it
// first being unpacked onto disk. Files must return exactly the
// requested names as keys, opened and ready to read; a name absent
// from the archive is simply omitted from the returned map.
type Archive interface {
	Files(names []string) (map[string]io.ReadCloser, error)
}

// dirArchive adapts a plain directory into an Archive, one os.Open per
// requested name.
type dirArchive struct {
	dir string
}

func (d dirArchive) Files(names []string) (map[string]io.ReadCloser, error) {
	out := make(map[string]io.ReadCloser, len(names))
	for _, name := range names {
		f, err := os.Open(filepath.Join(d.dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			for _, rc := range out {
				rc.Close()
			}
			return nil, err
		}
		out[name] = f
	}
	return out, nil
}

// Load ingests the HRDF files found directly under dir, using the
// column layout model.Version selects (see parse.LayoutFor).
func Load(ctx context.Context, dir string, version model.Version, opts ...Option) (*storage.DataStorage, []error, error) {
	return LoadFromArchive(ctx, dirArchive{dir: dir}, version, opts...)
}

// LoadFromArchive is Load generalized to any Archive collaborator,
// e.g. one reading straight out of a downloaded ZIP without writing
// it to disk first.
func LoadFromArchive(ctx context.Context, archive Archive, version model.Version, opts ...Option) (*storage.DataStorage, []error, error) {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	layout, err := parse.LayoutFor(version)
	if err != nil {
		return nil, nil, errors.Wrap(err, "resolving column layout")
	}
	newerPlatformLayout := layout.PlatformLinkFile == ""

	names := []string{
		"ECKDATEN", "BITFELD", "FEIERTAG",
		"ATTRIBUT", "RICHTUNG", "LINIE", "ZUGART",
		"INFOTEXT_DE", "INFOTEXT_EN", "INFOTEXT_FR", "INFOTEXT_IT",
		"BETRIEB_DE", "BETRIEB_EN", "BETRIEB_FR", "BETRIEB_IT",
		"BAHNHOF", "BFKOORD_LV95", "BFKOORD_WGS", "BFPRIOS", "KMINFO", "UMSTEIGB",
		layout.StopNamesFile, "METABHF", "FPLAN",
		"DURCHBI", "UMSTEIGV", "UMSTEIGZ", "UMSTEIGL",
	}
	if newerPlatformLayout {
		names = append(names, layout.PlatformCoordinateFiles.LV95, layout.PlatformCoordinateFiles.WGS)
	} else {
		names = append(names, layout.PlatformLinkFile, layout.PlatformCoordinateFiles.LV95, layout.PlatformCoordinateFiles.WGS)
	}

	l := &loader{ctx: ctx, logger: cfg.logger, layout: layout, newer: newerPlatformLayout}
	if err := l.readAll(archive, names); err != nil {
		return nil, nil, err
	}

	return l.run()
}

// loader holds one Load call's in-flight state: every file's raw
// content (read once, replayed into bytes.Reader as many times as a
// component needs it) and the accumulated cross-reference warnings.
// None of this escapes into storage.DataStorage; it is discarded the
// moment run returns.
type loader struct {
	ctx    context.Context
	logger *slog.Logger
	layout parse.ColumnLayout
	newer  bool

	content  map[string][]byte
	warnings []error
}

func (l *loader) readAll(archive Archive, names []string) error {
	readers, err := archive.Files(names)
	if err != nil {
		return errors.Wrap(err, "opening HRDF files")
	}
	defer func() {
		for _, rc := range readers {
			rc.Close()
		}
	}()

	l.content = make(map[string][]byte, len(readers))
	for name, rc := range readers {
		data, err := io.ReadAll(rc)
		if err != nil {
			return errors.Wrapf(err, "reading %s", name)
		}
		l.content[name] = data
	}
	return nil
}

// hasFile reports whether file was present in the archive.
func (l *loader) hasFile(file string) bool {
	_, ok := l.content[file]
	return ok
}

// reader returns a fresh io.Reader over a required file's content, or
// a wrapped error if it was not present in the archive.
func (l *loader) reader(file string) (io.Reader, error) {
	data, ok := l.content[file]
	if !ok {
		return nil, errors.Errorf("missing required file %s", file)
	}
	return bytes.NewReader(data), nil
}

func (l *loader) checkContext() error {
	if err := l.ctx.Err(); err != nil {
		return errors.Wrap(err, "context canceled during load")
	}
	return nil
}

func (l *loader) warn(errs []error) {
	l.warnings = append(l.warnings, errs...)
}

func (l *loader) run() (*storage.DataStorage, []error, error) {
	eckdaten, err := l.reader("ECKDATEN")
	if err != nil {
		return nil, nil, err
	}
	metadata, err := parse.ParseTimetableMetadata("ECKDATEN", eckdaten)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing ECKDATEN")
	}
	if err := l.checkContext(); err != nil {
		return nil, l.warnings, err
	}

	bitfeld, err := l.reader("BITFELD")
	if err != nil {
		return nil, nil, err
	}
	bitFields, err := parse.ParseBitFields("BITFELD", bitfeld)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing BITFELD")
	}
	feiertag, err := l.reader("FEIERTAG")
	if err != nil {
		return nil, nil, err
	}
	holidays, err := parse.ParseHolidays("FEIERTAG", feiertag)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing FEIERTAG")
	}
	if err := l.checkContext(); err != nil {
		return nil, l.warnings, err
	}

	attribut, err := l.reader("ATTRIBUT")
	if err != nil {
		return nil, nil, err
	}
	attributes, attributeConverter, err := parse.ParseAttributes("ATTRIBUT", attribut)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing ATTRIBUT")
	}
	richtung, err := l.reader("RICHTUNG")
	if err != nil {
		return nil, nil, err
	}
	directions, directionConverter, err := parse.ParseDirections("RICHTUNG", richtung)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing RICHTUNG")
	}
	linie, err := l.reader("LINIE")
	if err != nil {
		return nil, nil, err
	}
	lines, err := parse.ParseLines("LINIE", linie)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing LINIE")
	}
	zugart, err := l.reader("ZUGART")
	if err != nil {
		return nil, nil, err
	}
	transportTypes, transportTypeConverter, err := parse.ParseTransportTypes("ZUGART", zugart, l.layout.TransportTypeColumns)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing ZUGART")
	}
	if err := l.checkContext(); err != nil {
		return nil, l.warnings, err
	}

	var informationTexts map[int32]*model.InformationText
	for _, it := range []struct {
		file string
		lang model.Language
	}{
		{"INFOTEXT_DE", model.German}, {"INFOTEXT_FR", model.French},
		{"INFOTEXT_IT", model.Italian}, {"INFOTEXT_EN", model.English},
	} {
		if !l.hasFile(it.file) {
			continue
		}
		r, err := l.reader(it.file)
		if err != nil {
			return nil, nil, err
		}
		informationTexts, err = parse.ParseInformationTexts(it.file, r, it.lang, informationTexts)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "parsing %s", it.file)
		}
	}

	var transportCompanies map[int32]*model.TransportCompany
	for _, bc := range []struct {
		file string
		lang model.Language
	}{
		{"BETRIEB_DE", model.German}, {"BETRIEB_FR", model.French},
		{"BETRIEB_IT", model.Italian}, {"BETRIEB_EN", model.English},
	} {
		if !l.hasFile(bc.file) {
			continue
		}
		r, err := l.reader(bc.file)
		if err != nil {
			return nil, nil, err
		}
		transportCompanies, err = parse.ParseTransportCompanies(bc.file, r, bc.lang, transportCompanies)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "parsing %s", bc.file)
		}
	}
	if err := l.checkContext(); err != nil {
		return nil, l.warnings, err
	}

	bahnhof, err := l.reader("BAHNHOF")
	if err != nil {
		return nil, nil, err
	}
	stops, err := parse.ParseStops("BAHNHOF", bahnhof)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing BAHNHOF")
	}
	bfkoordLV95, err := l.reader("BFKOORD_LV95")
	if err != nil {
		return nil, nil, err
	}
	if err := parse.ParseCoordinatesLV95("BFKOORD_LV95", bfkoordLV95, stops); err != nil {
		return nil, nil, errors.Wrap(err, "parsing BFKOORD_LV95")
	}
	bfkoordWGS, err := l.reader("BFKOORD_WGS")
	if err != nil {
		return nil, nil, err
	}
	if err := parse.ParseCoordinatesWGS84("BFKOORD_WGS", bfkoordWGS, stops); err != nil {
		return nil, nil, errors.Wrap(err, "parsing BFKOORD_WGS")
	}
	bfprios, err := l.reader("BFPRIOS")
	if err != nil {
		return nil, nil, err
	}
	if err := parse.ParseExchangePriorities("BFPRIOS", bfprios, stops); err != nil {
		return nil, nil, errors.Wrap(err, "parsing BFPRIOS")
	}
	kminfo, err := l.reader("KMINFO")
	if err != nil {
		return nil, nil, err
	}
	if err := parse.ParseExchangeFlags("KMINFO", kminfo, stops); err != nil {
		return nil, nil, errors.Wrap(err, "parsing KMINFO")
	}
	umsteigb, err := l.reader("UMSTEIGB")
	if err != nil {
		return nil, nil, err
	}
	defaultExchangeTime, err := parse.ParseDefaultExchangeTimes("UMSTEIGB", umsteigb, stops)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing UMSTEIGB")
	}
	stopNames, err := l.reader(l.layout.StopNamesFile)
	if err != nil {
		return nil, nil, err
	}
	if err := parse.ParseStopDescriptions(l.layout.StopNamesFile, stopNames, stops); err != nil {
		return nil, nil, errors.Wrapf(err, "parsing %s", l.layout.StopNamesFile)
	}
	if err := l.checkContext(); err != nil {
		return nil, l.warnings, err
	}

	metabhf, err := l.reader("METABHF")
	if err != nil {
		return nil, nil, err
	}
	stopConnections, err := parse.ParseStopConnections("METABHF", metabhf, attributeConverter)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing METABHF")
	}
	if err := l.checkContext(); err != nil {
		return nil, l.warnings, err
	}

	fplan, err := l.reader("FPLAN")
	if err != nil {
		return nil, nil, err
	}
	journeys, journeyConverter, err := parse.ParseJourneys("FPLAN", fplan, transportTypeConverter, attributeConverter, directionConverter)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing FPLAN")
	}
	if err := l.checkContext(); err != nil {
		return nil, l.warnings, err
	}

	platforms, journeyPlatforms, err := l.parsePlatforms(journeyConverter)
	if err != nil {
		return nil, nil, err
	}
	if err := l.checkContext(); err != nil {
		return nil, l.warnings, err
	}

	durchbi, err := l.reader("DURCHBI")
	if err != nil {
		return nil, nil, err
	}
	throughServices, warnings, err := parse.ParseThroughServices("DURCHBI", durchbi, journeyConverter, l.logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing DURCHBI")
	}
	l.warn(warnings)

	umsteigv, err := l.reader("UMSTEIGV")
	if err != nil {
		return nil, nil, err
	}
	exchangeTimeAdmins, err := parse.ParseExchangeTimesAdministration("UMSTEIGV", umsteigv)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing UMSTEIGV")
	}
	umsteigz, err := l.reader("UMSTEIGZ")
	if err != nil {
		return nil, nil, err
	}
	exchangeTimeJourneys, warnings, err := parse.ParseExchangeTimesJourney("UMSTEIGZ", umsteigz, journeyConverter, l.logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing UMSTEIGZ")
	}
	l.warn(warnings)
	umsteigl, err := l.reader("UMSTEIGL")
	if err != nil {
		return nil, nil, err
	}
	exchangeTimeLines, err := parse.ParseExchangeTimesLine("UMSTEIGL", umsteigl, transportTypeConverter)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing UMSTEIGL")
	}
	if err := l.checkContext(); err != nil {
		return nil, l.warnings, err
	}

	ds := storage.New(storage.Tables{
		BitFields:                bitFields,
		Holidays:                 holidays,
		TimetableMetadata:        metadata,
		Attributes:               attributes,
		Directions:               directions,
		InformationTexts:         informationTexts,
		Lines:                    lines,
		TransportCompanies:       transportCompanies,
		TransportTypes:           transportTypes,
		Stops:                    stops,
		StopConnections:          stopConnections,
		Journeys:                 journeys,
		Platforms:                platforms,
		JourneyPlatforms:         journeyPlatforms,
		ThroughServices:          throughServices,
		ExchangeTimeAdmins:       exchangeTimeAdmins,
		ExchangeTimeJourneys:     exchangeTimeJourneys,
		ExchangeTimeLines:        exchangeTimeLines,
		DefaultExchangeTimeIC:    defaultExchangeTime.InterCity,
		DefaultExchangeTimeOther: defaultExchangeTime.Other,
	})

	return ds, l.warnings, nil
}

// parsePlatforms threads the Version-dependent GLEIS-family file
// names through ParsePlatforms. In the newer layout, the link pass and
// the LV95 coordinate pass read the same file; readAll's content map
// lets each pass get its own fresh bytes.Reader over that content
// without the caller needing to rewind anything.
func (l *loader) parsePlatforms(journeyConverter map[model.JourneyID]int32) (map[int32]*model.Platform, []*model.JourneyPlatform, error) {
	lv95File := l.layout.PlatformCoordinateFiles.LV95
	wgsFile := l.layout.PlatformCoordinateFiles.WGS

	linkFile := l.layout.PlatformLinkFile
	if l.newer {
		linkFile = lv95File
	}

	linkReader, err := l.reader(linkFile)
	if err != nil {
		return nil, nil, err
	}
	lv95Reader, err := l.reader(lv95File)
	if err != nil {
		return nil, nil, err
	}
	wgsReader, err := l.reader(wgsFile)
	if err != nil {
		return nil, nil, err
	}

	platforms, journeyPlatforms, err := parse.ParsePlatforms(
		linkFile, linkReader,
		lv95File, lv95Reader,
		wgsFile, wgsReader,
		l.newer,
		journeyConverter,
	)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing platforms (%s)", linkFile)
	}
	return platforms, journeyPlatforms, nil
}
