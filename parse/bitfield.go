package parse

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"hrdf.dev/hrdf/model"
)

var bitFieldRowParser = &RowParser{
	Definitions: []RowDefinition{
		{
			ID: 1,
			Columns: []ColumnDefinition{
				{Start: 1, Stop: 6, Type: TypeInt32},
				{Start: 8, Stop: -1, Type: TypeString},
			},
		},
	},
}

// hexNibbleBits decodes one hex digit to its 4 bits, MSB first.
func hexNibbleBits(c byte) ([4]bool, error) {
	var v int
	switch {
	case c >= '0' && c <= '9':
		v = int(c - '0')
	case c >= 'A' && c <= 'F':
		v = int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		v = int(c-'a') + 10
	default:
		return [4]bool{}, errors.Errorf("malformed hex digit %q", c)
	}
	return [4]bool{v&8 != 0, v&4 != 0, v&2 != 0, v&1 != 0}, nil
}

// decodeBitField decodes 96 hex digits into the 384-entry bit vector.
// The first 2 decoded bits are themselves padding (day k is at index
// k+2, per BitField.Operates): there is no separate prepend on top of
// the decoded bits.
func decodeBitField(hex string) ([]bool, error) {
	bits := make([]bool, 0, 384)
	for i := 0; i < len(hex); i++ {
		nibble, err := hexNibbleBits(hex[i])
		if err != nil {
			return nil, err
		}
		bits = append(bits, nibble[:]...)
	}
	return bits, nil
}

// ParseBitFields reads the BITFELD file into a table keyed by its
// 6-digit legacy id (which, unlike most catalogs, is used directly as
// the primary key — BitField ids are referenced from many other files
// and there is no benefit to renumbering them).
func ParseBitFields(file string, r io.Reader) (map[int32]*model.BitField, error) {
	fp, err := NewFileParser(file, r, bitFieldRowParser)
	if err != nil {
		return nil, err
	}

	out := map[int32]*model.BitField{}
	err = fp.Each(func(lineNo int, row ParsedRow) error {
		id := row.Fields[0].Int32()
		hex := strings.TrimSpace(row.Fields[1].String())
		bits, err := decodeBitField(hex)
		if err != nil {
			return err
		}
		out[id] = &model.BitField{ID: id, Bits: bits}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
