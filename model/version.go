package model

// Version is a closed set of HRDF format tags. Each value selects a
// column-layout variant for the catalog, coordinate and platform
// parsers (see parse.ColumnLayout).
type Version string

const (
	// VersionUnknown is the zero value; never produced by the
	// version gateway, only used as a caller-supplied default.
	VersionUnknown Version = ""

	// V540 is the legacy column layout (BHFART, GLEIS/GLEIS_LV95/GLEIS_WGS).
	// The BFKOORD coordinate files are read with the same columns for
	// every version.
	V540 Version = "5.40.41.2.0.7"

	// V541 is the current column layout (BHFART_60, GLEISE_LV95/GLEISE_WGS).
	V541 Version = "5.41.41.2.0.7"
)
