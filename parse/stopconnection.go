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
	stopConnectionAttributeLine = regexp.MustCompile(`^\*A\s*(\S+)\s*$`)
	stopConnectionPairLine      = regexp.MustCompile(`^(\d+)\s+(\d+)\s+(\d+)\s*$`)
	stopConnectionGroupLine     = regexp.MustCompile(`^(\d+)\s*:`)
)

// ParseStopConnections reads METABHF: walking-connection pairs, each
// optionally followed by an "*A <code>" line that attaches an
// attribute to the pair just created. Stop-group definitions
// ("group_id: stop_id ...") are recognized and ignored, matching the
// upstream parser. This file mixes two line grammars, so it is
// scanned directly rather than through the column-oriented RowParser.
func ParseStopConnections(file string, r io.Reader, attributeConverter map[string]int32) (map[int32]*model.StopConnection, error) {
	decoded := transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	scanner := bufio.NewScanner(bom.NewReader(decoded))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	out := map[int32]*model.StopConnection{}
	var nextID int32 = 1
	var current *model.StopConnection

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case stopConnectionAttributeLine.MatchString(line):
			code := stopConnectionAttributeLine.FindStringSubmatch(line)[1]
			if current == nil {
				return nil, &ParseError{File: file, Line: lineNo, Text: line,
					Err: errors.New("*A attribute line with no preceding stop connection pair")}
			}
			attrID, ok := attributeConverter[code]
			if !ok {
				return nil, &ParseError{File: file, Line: lineNo, Text: line,
					Err: &UnknownLegacyIDError{Kind: "attribute", ID: code}}
			}
			current.Attribute = &attrID

		case stopConnectionGroupLine.MatchString(line):
			// Stop-group definitions are not consulted by any query.

		case stopConnectionPairLine.MatchString(line):
			m := stopConnectionPairLine.FindStringSubmatch(line)
			stopID1, err := parseInt32(m[1])
			if err != nil {
				return nil, &ParseError{File: file, Line: lineNo, Text: line, Err: err}
			}
			stopID2, err := parseInt32(m[2])
			if err != nil {
				return nil, &ParseError{File: file, Line: lineNo, Text: line, Err: err}
			}
			duration, err := strconv.ParseInt(m[3], 10, 32)
			if err != nil {
				return nil, &ParseError{File: file, Line: lineNo, Text: line, Err: err}
			}
			current = &model.StopConnection{
				ID:       nextID,
				StopID1:  stopID1,
				StopID2:  stopID2,
				Duration: int32(duration),
			}
			out[current.ID] = current
			nextID++

		default:
			return nil, &ParseError{File: file, Line: lineNo, Text: line, Err: ErrUnknownRowType}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", file)
	}

	return out, nil
}
