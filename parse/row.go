// Package parse implements the HRDF line-oriented parsing engine and
// the per-file parsers built on top of it.
package parse

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spkg/bom"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ExpectedType names the typed value a ColumnDefinition extracts.
type ExpectedType int

const (
	TypeFloat ExpectedType = iota
	TypeInt16
	TypeInt32
	TypeString
	TypeOptionalInt32
)

// Value is a small dynamic union of the values a RowParser can
// extract, mirroring the original implementation's ParsedValue. Call
// the typed accessor matching the ColumnDefinition's ExpectedType;
// callers within this package always know the type statically since
// they wrote the RowDefinition.
type Value struct {
	typ    ExpectedType
	f      float64
	i16    int16
	i32    int32
	s      string
	i32Opt *int32
}

func (v Value) Float() float64   { return v.f }
func (v Value) Int16() int16     { return v.i16 }
func (v Value) Int32() int32     { return v.i32 }
func (v Value) String() string   { return v.s }
func (v Value) OptInt32() *int32 { return v.i32Opt }

// RowMatcher decides whether a physical line belongs to a given
// RowDefinition.
type RowMatcher interface {
	Match(row string) bool
}

// FastRowMatcher matches (or rejects) a row by comparing a fixed byte
// range against a literal. Start is 1-based. This assumes the
// inspected byte range is ASCII, which holds for HRDF's fixed-column
// prefixes (free text, where non-ASCII can appear, is always at the
// end of a row, past every FastRowMatcher's reach).
type FastRowMatcher struct {
	Start   int
	Length  int
	Literal string
	Equal   bool
}

func (m FastRowMatcher) Match(row string) bool {
	start := m.Start - 1
	if start < 0 || start+m.Length > len(row) {
		return false
	}
	got := row[start : start+m.Length]
	return m.Equal == (got == m.Literal)
}

// AdvancedRowMatcher matches a row via a compiled regular expression,
// for row kinds FastRowMatcher can't distinguish (e.g. journey
// metadata lines sharing a prefix but varying field counts).
type AdvancedRowMatcher struct {
	Re *regexp.Regexp
}

func (m AdvancedRowMatcher) Match(row string) bool {
	return m.Re.MatchString(row)
}

// AnyRowMatcher always matches; use it as the last RowDefinition in a
// set to give dispatch a catch-all fallback.
type AnyRowMatcher struct{}

func (AnyRowMatcher) Match(string) bool { return true }

// ColumnDefinition specifies a 1-based inclusive column range (Stop
// == -1 means "to end of line") and its expected type.
type ColumnDefinition struct {
	Start int
	Stop  int // -1 => end of line
	Type  ExpectedType
}

// RowDefinition pairs an optional matcher with the column layout for
// one row kind. A RowDefinition with a nil Matcher is only valid when
// it is the sole definition in a RowParser.
type RowDefinition struct {
	ID      int32
	Matcher RowMatcher
	Columns []ColumnDefinition
}

// RowParser classifies and extracts fields from physical lines
// according to a set of RowDefinitions.
type RowParser struct {
	Definitions []RowDefinition
}

// ParsedRow is the (row kind, extracted fields) result of parsing one
// physical line.
type ParsedRow struct {
	ID     int32
	Fields []Value
}

func (p *RowParser) definitionFor(row string) (*RowDefinition, error) {
	if len(p.Definitions) == 1 {
		return &p.Definitions[0], nil
	}
	for i := range p.Definitions {
		if p.Definitions[i].Matcher != nil && p.Definitions[i].Matcher.Match(row) {
			return &p.Definitions[i], nil
		}
	}
	return nil, ErrUnknownRowType
}

// Parse classifies row and extracts its fields per the matched
// RowDefinition.
func (p *RowParser) Parse(row string) (ParsedRow, error) {
	def, err := p.definitionFor(row)
	if err != nil {
		return ParsedRow{}, err
	}

	runes := []rune(row)

	fields := make([]Value, 0, len(def.Columns))
	for _, col := range def.Columns {
		start := col.Start - 1
		if start < 0 || start > len(runes) {
			return ParsedRow{}, ErrStartColumnOutOfRange
		}
		stop := len(runes)
		if col.Stop != -1 && col.Stop <= len(runes) {
			stop = col.Stop
		}
		if stop < start {
			stop = start
		}
		raw := strings.TrimSpace(string(runes[start:stop]))

		val, err := extract(raw, col.Type)
		if err != nil {
			return ParsedRow{}, err
		}
		fields = append(fields, val)
	}

	return ParsedRow{ID: def.ID, Fields: fields}, nil
}

func extract(raw string, typ ExpectedType) (Value, error) {
	switch typ {
	case TypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, errors.Wrapf(err, "parsing float %q", raw)
		}
		return Value{typ: typ, f: f}, nil
	case TypeInt16:
		i, err := strconv.ParseInt(raw, 10, 16)
		if err != nil {
			return Value{}, errors.Wrapf(err, "parsing int16 %q", raw)
		}
		return Value{typ: typ, i16: int16(i)}, nil
	case TypeInt32:
		i, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return Value{}, errors.Wrapf(err, "parsing int32 %q", raw)
		}
		return Value{typ: typ, i32: int32(i)}, nil
	case TypeString:
		return Value{typ: typ, s: raw}, nil
	case TypeOptionalInt32:
		if raw == "" {
			return Value{typ: typ}, nil
		}
		i, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return Value{}, errors.Wrapf(err, "parsing optional int32 %q", raw)
		}
		v := int32(i)
		return Value{typ: typ, i32Opt: &v}, nil
	default:
		return Value{}, errors.Errorf("unknown expected type %d", typ)
	}
}

// FileParser reads an HRDF text file (ISO-8859-1, stray BOM
// tolerated) and yields its non-empty lines classified through a
// RowParser.
type FileParser struct {
	File   string
	Parser *RowParser
	lines  []string
}

// NewFileParser reads all of r into memory, stripping a stray UTF-8
// BOM and decoding the rest from ISO-8859-1 ("extended ASCII" per the
// HRDF input contract), then splits it into lines. path only labels
// errors.
func NewFileParser(path string, r io.Reader, parser *RowParser) (*FileParser, error) {
	decoded := transform.NewReader(bom.NewReader(r), charmap.ISO8859_1.NewDecoder())
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	return &FileParser{File: path, Parser: parser, lines: lines}, nil
}

// Each calls fn once per non-empty, successfully parsed line, passing
// the 1-based source line number and the parsed row. It stops and
// returns a wrapped *ParseError on the first row that fails to parse
// or that fn returns an error for.
func (f *FileParser) Each(fn func(lineNo int, row ParsedRow) error) error {
	for i, line := range f.lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo := i + 1

		row, err := f.Parser.Parse(line)
		if err != nil {
			return &ParseError{File: f.File, Line: lineNo, Text: line, Err: err}
		}

		if err := fn(lineNo, row); err != nil {
			return &ParseError{File: f.File, Line: lineNo, Text: line, Err: err}
		}
	}
	return nil
}

// Lines returns every physical line, including blanks, as decoded
// text without RowParser dispatch.
func (f *FileParser) Lines() []string {
	return f.lines
}
