// Package testutil builds fixture HRDF directories for tests, the way
// the upstream test suite builds fixture GTFS zips: a map of file name
// to content, with sensible defaults filled in for whatever the
// caller doesn't override.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// field places value starting at a 1-based column, for building the
// fixed-width rows HRDF files use.
type field struct {
	start int
	value string
}

// Row renders one fixed-width HRDF line: width spaces, with each
// field's value overwritten starting at its column. Column ranges
// don't need to be hit exactly, since every parser column extraction
// trims surrounding whitespace; this only needs to place each value
// so it falls inside its column's [start,stop] range.
func Row(width int, fields ...field) string {
	buf := make([]rune, width)
	for i := range buf {
		buf[i] = ' '
	}
	for _, f := range fields {
		pos := f.start - 1
		for len(buf) < pos {
			buf = append(buf, ' ')
		}
		for i, r := range []rune(f.value) {
			idx := pos + i
			if idx < len(buf) {
				buf[idx] = r
			} else {
				buf = append(buf, r)
			}
		}
	}
	return string(buf)
}

// F is a convenience constructor for a Row field.
func F(start int, value string) field {
	return field{start: start, value: value}
}

// defaultFiles is a minimal, internally-consistent HRDF fixture: two
// stops, one journey between them, and the mandatory UMSTEIGB default
// exchange time row. Every other file is present but empty, which
// each of those files' parsers accepts (for them zero rows is not an
// error, only a missing file or a malformed row is).
func defaultFiles() map[string][]string {
	return map[string][]string{
		"ECKDATEN": {
			"01.01.2026",
			"03.01.2026",
			"Fixture timetable$06.12.2025$5.40.41.2.0.7$BAV",
		},
		"BITFELD":      {},
		"FEIERTAG":     {},
		"ATTRIBUT":     {},
		"RICHTUNG":     {},
		"LINIE":        {},
		"ZUGART":       {},
		"INFOTEXT_DE":  {},
		"INFOTEXT_EN":  {},
		"INFOTEXT_FR":  {},
		"INFOTEXT_IT":  {},
		"BETRIEB_DE":   {},
		"BETRIEB_EN":   {},
		"BETRIEB_FR":   {},
		"BETRIEB_IT":   {},
		"BAHNHOF": {
			Row(12, F(1, "0000100"), F(13, "Bern<1>")),
			Row(12, F(1, "0000200"), F(13, "Zurich<1>")),
		},
		"BFKOORD_LV95": {},
		"BFKOORD_WGS":  {},
		"BFPRIOS":      {},
		"KMINFO":       {},
		"UMSTEIGB": {
			Row(13, F(1, "9999999"), F(9, "02"), F(12, "04")),
		},
		"BHFART": {},
		"METABHF": {},
		"FPLAN": {
			"*Z 001234 ADMIN1",
			Row(42, F(1, "0000100"), F(37, "0702")),
			Row(42, F(1, "0000200"), F(30, "0720")),
		},
		"GLEIS":      {},
		"GLEIS_LV95": {},
		"GLEIS_WGS":  {},
		"DURCHBI":    {},
		"UMSTEIGV":   {},
		"UMSTEIGZ":   {},
		"UMSTEIGL":   {},
	}
}

// BuildDir writes a fixture HRDF directory under t's temp directory.
// Any file name present in overrides replaces the matching default
// entirely; every other file keeps its default content. A name listed
// in omit is not written at all, simulating an archive missing that
// file.
func BuildDir(t testing.TB, overrides map[string][]string, omit ...string) string {
	files := defaultFiles()
	for name, lines := range overrides {
		files[name] = lines
	}
	for _, name := range omit {
		delete(files, name)
	}

	dir := t.TempDir()
	for name, lines := range files {
		content := ""
		if len(lines) > 0 {
			content = strings.Join(lines, "\n") + "\n"
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}
