package parse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"github.com/clonejo/travel-ura/model"
)

// Positions of the columns within a stop record, as fixed by the
// interface for the stop-column ReturnList.
const (
	stopPointName  = 1
	stopID         = 2
	stopLatitude   = 3
	stopLongitude  = 4
	stopFieldCount = 5
)

// Stops reads one instant response body holding stop records. The
// metadata record is validated and discarded; a stop listing has no
// use for the capture timestamp.
func Stops(r io.Reader) ([]model.Stop, error) {
	sc := bufio.NewScanner(bom.NewReader(r))

	if _, err := metadata(sc); err != nil {
		return nil, err
	}

	var stops []model.Stop
	line := 1
	for sc.Scan() {
		line++
		s, err := stop(sc.Bytes(), line)
		if err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading feed")
	}

	return stops, nil
}

func stop(line []byte, lineno int) (model.Stop, error) {
	fields, err := record(line, lineno)
	if err != nil {
		return model.Stop{}, err
	}
	if len(fields) < stopFieldCount {
		return model.Stop{}, &FormatError{
			Line: lineno,
			Msg:  fmt.Sprintf("stop record has %d columns, need %d", len(fields), stopFieldCount),
		}
	}

	var s model.Stop
	if s.Name, err = text(fields[stopPointName], lineno, "stop point name"); err != nil {
		return model.Stop{}, err
	}
	if s.ID, err = text(fields[stopID], lineno, "stop id"); err != nil {
		return model.Stop{}, err
	}
	if s.Lat, err = number(fields[stopLatitude], lineno, "latitude"); err != nil {
		return model.Stop{}, err
	}
	if s.Lon, err = number(fields[stopLongitude], lineno, "longitude"); err != nil {
		return model.Stop{}, err
	}

	return s, nil
}

func number(raw json.RawMessage, lineno int, column string) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, &FormatError{Line: lineno, Msg: column + " is not a number", Err: err}
	}
	return f, nil
}
