package parse

import (
	"fmt"
)

// Sentinel schema/semantic errors. Wrap these with github.com/pkg/errors.Wrapf
// at call sites to attach file/row context.
var (
	ErrUnknownRowType             = fmt.Errorf("unknown row type")
	ErrStartColumnOutOfRange      = fmt.Errorf("the start column is out of range")
	ErrMissingStopName            = fmt.Errorf("missing stop name (standard name is mandatory)")
	ErrMissingDesignation         = fmt.Errorf("missing designation")
	ErrMissingDefaultExchangeTime = fmt.Errorf("missing default exchange time entry (id 9999999)")
	ErrMissingValuePart           = fmt.Errorf("missing value part")
	ErrEmptyRoute                 = fmt.Errorf("journey has an empty route")
	ErrOutOfRangeDate             = fmt.Errorf("date is out of the supported version range")
)

// ParseError carries file/line context for a single malformed row.
type ParseError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v\n  %s", e.File, e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnknownLegacyIDError reports a foreign-key reference to a legacy id
// that was never defined by its owning catalog.
type UnknownLegacyIDError struct {
	Kind  string
	ID    interface{}
	Index interface{} // optional, e.g. platform index
	Admin string      // optional, e.g. administration for JourneyID lookups
}

func (e *UnknownLegacyIDError) Error() string {
	switch {
	case e.Admin != "":
		return fmt.Sprintf("unknown legacy %s id %v (administration %q)", e.Kind, e.ID, e.Admin)
	case e.Index != nil:
		return fmt.Sprintf("unknown legacy %s id %v #%v", e.Kind, e.ID, e.Index)
	default:
		return fmt.Sprintf("unknown legacy %s id %v", e.Kind, e.ID)
	}
}
