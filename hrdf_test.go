package hrdf_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdf.dev/hrdf"
	"hrdf.dev/hrdf/model"
	"hrdf.dev/hrdf/testutil"
)

func TestLoadEndToEnd(t *testing.T) {
	dir := testutil.BuildDir(t, nil)

	ds, warnings, err := hrdf.Load(context.Background(), dir, model.V540)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Equal(t, 2, ds.Stops.Len())
	bern, ok := ds.Stops.Find(100)
	require.True(t, ok)
	assert.Equal(t, "Bern", bern.Name)

	require.Equal(t, 1, ds.Journeys.Len())
	journeys := ds.Journeys.Entries()
	journey := journeys[0]
	assert.Equal(t, int32(1234), journey.LegacyID)
	assert.Equal(t, "ADMIN1", journey.Administration)
	require.Len(t, journey.Route, 2)
	assert.Equal(t, int32(100), journey.Route[0].StopID)
	assert.Equal(t, int32(200), journey.Route[1].StopID)

	ic, other := ds.DefaultExchangeTime()
	assert.Equal(t, int32(2), ic)
	assert.Equal(t, int32(4), other)

	days := ds.BitFieldsByDay(model.Date("2026-01-01"))
	assert.ElementsMatch(t, []int32{0}, days)

	stopJourneys := ds.JourneysByStopAndBitField(100, 0)
	assert.Equal(t, []int32{journey.ID}, stopJourneys)
}

func TestLoadMissingRequiredFile(t *testing.T) {
	dir := testutil.BuildDir(t, nil, "ECKDATEN")

	_, _, err := hrdf.Load(context.Background(), dir, model.V540)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ECKDATEN")
}

func TestLoadContextCanceled(t *testing.T) {
	dir := testutil.BuildDir(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := hrdf.Load(ctx, dir, model.V540)
	require.Error(t, err)
}

func TestLoadUnrecognizedVersion(t *testing.T) {
	dir := testutil.BuildDir(t, nil)

	_, _, err := hrdf.Load(context.Background(), dir, model.Version("bogus"))
	require.Error(t, err)
}

func TestLoadThroughServiceWarning(t *testing.T) {
	dir := testutil.BuildDir(t, map[string][]string{
		"DURCHBI": {
			testutil.Row(50,
				testutil.F(1, "009999"), testutil.F(8, "ADMIN1"),
				testutil.F(15, "0000100"), testutil.F(23, "009999"),
				testutil.F(30, "ADMIN1"), testutil.F(37, "0"),
				testutil.F(44, "0000100"),
			),
		},
	})

	ds, warnings, err := hrdf.Load(context.Background(), dir, model.V540)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	assert.Equal(t, 1, ds.ThroughServices.Len())
}
