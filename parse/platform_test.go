package parse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdf.dev/hrdf/model"
	"hrdf.dev/hrdf/parse"
)

type platformField struct {
	start int
	value string
}

// platformRow renders a fixed-width line, placing each value at its
// 1-based column. Extraction always trims surrounding whitespace, so
// exact padding only needs to land a value inside its column range.
func platformRow(width int, fields ...platformField) string {
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

func TestParsePlatformsOlderLayout(t *testing.T) {
	// GLEIS: journey-platform link (col 23 '#'), platform descriptor (col 18 'G').
	link := strings.Join([]string{
		platformRow(42,
			platformField{1, "0000100"}, platformField{9, "001001"}, platformField{16, "ADMIN1"},
			platformField{23, "#"}, platformField{24, "000001"}, platformField{32, "0800"}, platformField{37, "999999"},
		),
		platformRow(30,
			platformField{1, "0000100"}, platformField{10, "000001"},
			platformField{18, "G 'A'"},
		),
	}, "\n") + "\n"

	lv95 := platformRow(40,
		platformField{1, "0000100"}, platformField{10, "000001"},
		platformField{18, "K"}, platformField{20, "2600000 1200000"},
	) + "\n"

	wgs := platformRow(40,
		platformField{1, "0000100"}, platformField{10, "000001"},
		platformField{18, "K"}, platformField{20, "7.5 47.0"},
	) + "\n"

	journeyConverter := map[model.JourneyID]int32{
		{LegacyID: 1001, Administration: "ADMIN1"}: 1,
	}

	platforms, journeyPlatforms, err := parse.ParsePlatforms(
		"GLEIS", strings.NewReader(link),
		"GLEIS_LV95", strings.NewReader(lv95),
		"GLEIS_WGS", strings.NewReader(wgs),
		false,
		journeyConverter,
	)
	require.NoError(t, err)
	require.Len(t, platforms, 1)

	var platform *model.Platform
	for _, p := range platforms {
		platform = p
	}
	assert.Equal(t, "A", platform.Code)
	assert.Equal(t, int32(100), platform.StopID)
	require.NotNil(t, platform.LV95)
	assert.Equal(t, 2600000.0, platform.LV95.Easting)
	require.NotNil(t, platform.WGS84)
	assert.Equal(t, 47.0, platform.WGS84.Latitude)

	require.Len(t, journeyPlatforms, 1)
	jp := journeyPlatforms[0]
	assert.Equal(t, int32(1001), jp.JourneyLegacyID)
	assert.Equal(t, "ADMIN1", jp.Administration)
	assert.Equal(t, platform.ID, jp.PlatformID)
	require.NotNil(t, jp.Time)
}

func TestParsePlatformsNewerCombinedLayout(t *testing.T) {
	// GLEISE_LV95: link rows share the file with Section/SLOID/Coordinate
	// rows under the newer layout, so the link pass must tolerate row
	// kinds it doesn't itself consume.
	combined := strings.Join([]string{
		platformRow(42,
			platformField{1, "0000100"}, platformField{9, "001001"}, platformField{16, "ADMIN1"},
			platformField{23, "#"}, platformField{24, "000001"},
		),
		platformRow(30,
			platformField{1, "0000100"}, platformField{10, "000001"},
			platformField{18, "G 'A'"},
		),
		platformRow(16,
			platformField{1, "0000100"}, platformField{10, "000001"},
			platformField{18, "A"},
		),
		platformRow(40,
			platformField{1, "0000100"}, platformField{10, "000001"},
			platformField{18, "g A ch:1:sloid:100:1"},
		),
		platformRow(40,
			platformField{1, "0000100"}, platformField{10, "000001"},
			platformField{18, "k"}, platformField{20, "2600000 1200000"},
		),
	}, "\n") + "\n"

	wgs := platformRow(40,
		platformField{1, "0000100"}, platformField{10, "000001"},
		platformField{18, "k"}, platformField{20, "7.5 47.0"},
	) + "\n"

	journeyConverter := map[model.JourneyID]int32{
		{LegacyID: 1001, Administration: "ADMIN1"}: 1,
	}

	platforms, _, err := parse.ParsePlatforms(
		"GLEISE_LV95", strings.NewReader(combined),
		"GLEISE_LV95", strings.NewReader(combined),
		"GLEISE_WGS", strings.NewReader(wgs),
		true,
		journeyConverter,
	)
	require.NoError(t, err)
	require.Len(t, platforms, 1)

	var platform *model.Platform
	for _, p := range platforms {
		platform = p
	}
	require.NotNil(t, platform.Sloid)
	// The SLOID is the text after the "g A" tag.
	assert.Equal(t, "ch:1:sloid:100:1", *platform.Sloid)
	require.NotNil(t, platform.LV95)
	assert.Equal(t, 2600000.0, platform.LV95.Easting)
}

func TestParsePlatformsUnknownJourney(t *testing.T) {
	link := strings.Join([]string{
		platformRow(42,
			platformField{1, "0000100"}, platformField{9, "001001"}, platformField{16, "ADMIN1"},
			platformField{23, "#"}, platformField{24, "000001"},
		),
		platformRow(30,
			platformField{1, "0000100"}, platformField{10, "000001"},
			platformField{18, "G 'A'"},
		),
	}, "\n") + "\n"

	_, _, err := parse.ParsePlatforms(
		"GLEIS", strings.NewReader(link),
		"GLEIS_LV95", strings.NewReader(""),
		"GLEIS_WGS", strings.NewReader(""),
		false,
		map[model.JourneyID]int32{},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journey")
}
