package parse

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFastRowMatcher(t *testing.T) {
	m := FastRowMatcher{Start: 1, Length: 3, Literal: "999", Equal: true}
	assert.True(t, m.Match("999 some text"))
	assert.False(t, m.Match("123 some text"))

	neq := FastRowMatcher{Start: 1, Length: 3, Literal: "999", Equal: false}
	assert.True(t, neq.Match("123 some text"))
	assert.False(t, neq.Match("999 some text"))
}

func TestRowParserSingleDefinition(t *testing.T) {
	p := &RowParser{
		Definitions: []RowDefinition{
			{
				ID: 1,
				Columns: []ColumnDefinition{
					{Start: 1, Stop: 7, Type: TypeInt32},
					{Start: 9, Stop: -1, Type: TypeString},
				},
			},
		},
	}

	row, err := p.Parse("0000001 Zurich HB")
	require.NoError(t, err)
	assert.Equal(t, int32(1), row.ID)
	assert.Equal(t, int32(1), row.Fields[0].Int32())
	assert.Equal(t, "Zurich HB", row.Fields[1].String())
}

func TestRowParserDispatchByMatcher(t *testing.T) {
	p := &RowParser{
		Definitions: []RowDefinition{
			{
				ID:      1,
				Matcher: FastRowMatcher{Start: 9, Length: 2, Literal: "G ", Equal: true},
				Columns: []ColumnDefinition{{Start: 1, Stop: 7, Type: TypeInt32}},
			},
			{
				ID:      2,
				Matcher: AdvancedRowMatcher{Re: regexp.MustCompile(`^\d{7} A `)},
				Columns: []ColumnDefinition{{Start: 1, Stop: 7, Type: TypeInt32}},
			},
		},
	}

	row, err := p.Parse("0000001 G  some line name")
	require.NoError(t, err)
	assert.Equal(t, int32(1), row.ID)

	row, err = p.Parse("0000002 A  attribute text")
	require.NoError(t, err)
	assert.Equal(t, int32(2), row.ID)

	_, err = p.Parse("0000003 X  unknown")
	assert.ErrorIs(t, err, ErrUnknownRowType)
}

func TestRowParserOptionalInt32(t *testing.T) {
	p := &RowParser{
		Definitions: []RowDefinition{
			{ID: 1, Columns: []ColumnDefinition{{Start: 1, Stop: 7, Type: TypeOptionalInt32}}},
		},
	}

	row, err := p.Parse("       ")
	require.NoError(t, err)
	assert.Nil(t, row.Fields[0].OptInt32())

	row, err = p.Parse("000042 ")
	require.NoError(t, err)
	require.NotNil(t, row.Fields[0].OptInt32())
	assert.Equal(t, int32(42), *row.Fields[0].OptInt32())

	_, err = p.Parse("abcdefg")
	require.Error(t, err)
}

func TestFileParserSkipsBlankLines(t *testing.T) {
	content := "0000001 Zurich HB\n\n0000002 Bern\n   \n0000003 Basel SBB\n"
	parser := &RowParser{
		Definitions: []RowDefinition{
			{ID: 1, Columns: []ColumnDefinition{
				{Start: 1, Stop: 7, Type: TypeInt32},
				{Start: 9, Stop: -1, Type: TypeString},
			}},
		},
	}

	fp, err := NewFileParser("STATIONS", strings.NewReader(content), parser)
	require.NoError(t, err)

	var names []string
	err = fp.Each(func(lineNo int, row ParsedRow) error {
		names = append(names, row.Fields[1].String())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Zurich HB", "Bern", "Basel SBB"}, names)
}

func TestFileParserWrapsRowErrorWithContext(t *testing.T) {
	parser := &RowParser{
		Definitions: []RowDefinition{
			{ID: 1, Columns: []ColumnDefinition{{Start: 1, Stop: 7, Type: TypeInt32}}},
		},
	}

	fp, err := NewFileParser("STATIONS", strings.NewReader("not-a-number\n"), parser)
	require.NoError(t, err)

	err = fp.Each(func(lineNo int, row ParsedRow) error { return nil })
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "STATIONS", parseErr.File)
	assert.Equal(t, 1, parseErr.Line)
}
