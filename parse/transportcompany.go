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
	"hrdf.dev/hrdf/model"
)

var (
	transportCompanyKLine = regexp.MustCompile(`^(\d+) K "([^"]*)" L "([^"]*)" V "([^"]*)"$`)
	transportCompanyNLine = regexp.MustCompile(`^(\d+) N "([^"]*)"$`)
	transportCompanyColon = regexp.MustCompile(`^(\d+)\s*:\s*(.+)$`)
)

func companyOf(out map[int32]*model.TransportCompany, id int32) *model.TransportCompany {
	tc, ok := out[id]
	if !ok {
		tc = &model.TransportCompany{
			ID:        id,
			ShortName: map[model.Language]string{},
			LongName:  map[model.Language]string{},
			FullName:  map[model.Language]string{},
		}
		out[id] = tc
	}
	return tc
}

// ParseTransportCompanies reads one BETRIEB_{DE,EN,FR,IT} file,
// merging into an existing table (pass nil for the first file read).
// These files use free-token lines (quoted names, variable token
// counts), not fixed columns, so this parser scans lines directly
// rather than through the column-oriented RowParser/RowDefinition
// engine — the "small-grammar" alternative the line engine allows.
func ParseTransportCompanies(file string, r io.Reader, lang model.Language, out map[int32]*model.TransportCompany) (map[int32]*model.TransportCompany, error) {
	if out == nil {
		out = map[int32]*model.TransportCompany{}
	}

	decoded := transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	scanner := bufio.NewScanner(bom.NewReader(decoded))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case transportCompanyKLine.MatchString(line):
			m := transportCompanyKLine.FindStringSubmatch(line)
			id, err := parseInt32(m[1])
			if err != nil {
				return nil, &ParseError{File: file, Line: lineNo, Text: line, Err: err}
			}
			tc := companyOf(out, id)
			tc.ShortName[lang] = m[2]
			tc.LongName[lang] = m[3]
			tc.FullName[lang] = m[4]

		case transportCompanyNLine.MatchString(line):
			// SBOID: reserved, not consulted by any query.

		case transportCompanyColon.MatchString(line):
			m := transportCompanyColon.FindStringSubmatch(line)
			id, err := parseInt32(m[1])
			if err != nil {
				return nil, &ParseError{File: file, Line: lineNo, Text: line, Err: err}
			}
			tc := companyOf(out, id)
			tc.Administrations = strings.Fields(m[2])

		default:
			return nil, &ParseError{File: file, Line: lineNo, Text: line, Err: ErrUnknownRowType}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", file)
	}

	return out, nil
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}
