// Package parse turns URA instant response bodies into typed records.
//
// The instant interface answers with newline-delimited JSON arrays: the
// first line is a metadata record carrying the capture timestamp of the
// pull, every following line is one prediction (or one stop point, for
// stop-column queries). Columns are positional, with the record type at
// index 0.
package parse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"github.com/clonejo/travel-ura/model"
)

// Positions of the columns within a prediction record, as fixed by the
// interface for the ReturnList sent by ura.Client.
const (
	predStopPointName = 1
	predLineName      = 2
	predDestination   = 3
	predTripID        = 4
	predEstimatedTime = 5
	predFieldCount    = 6
)

// Position of the capture timestamp within the metadata record.
const (
	metaTimestamp  = 2
	metaFieldCount = 3
)

// FormatError reports a body that doesn't follow the URA instant line
// format: a line that isn't a JSON array, a record with too few
// columns, or a column of the wrong type.
type FormatError struct {
	Line int // 1-based line number within the body
	Msg  string
	Err  error // underlying decode error, if any
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("feed line %d: %s", e.Line, e.Msg)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Predictions reads one instant response body and returns the snapshot
// it carries. The body must hold at least the metadata record.
//
// Predictions come back in feed order. Repeated trip IDs are kept as
// received; the sources are not supposed to emit them, and callers that
// key by trip ID will see the last record win.
func Predictions(r io.Reader) (model.PredictionSet, error) {
	var set model.PredictionSet

	sc := bufio.NewScanner(bom.NewReader(r))

	when, err := metadata(sc)
	if err != nil {
		return model.PredictionSet{}, err
	}
	set.Time = when

	line := 1
	for sc.Scan() {
		line++
		p, err := prediction(sc.Bytes(), line)
		if err != nil {
			return model.PredictionSet{}, err
		}
		set.Predictions = append(set.Predictions, p)
	}
	if err := sc.Err(); err != nil {
		return model.PredictionSet{}, errors.Wrap(err, "reading feed")
	}

	return set, nil
}

// metadata consumes the first line and extracts the capture timestamp.
func metadata(sc *bufio.Scanner) (time.Time, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return time.Time{}, errors.Wrap(err, "reading feed")
		}
		return time.Time{}, &FormatError{Line: 1, Msg: "empty feed, expected a metadata record"}
	}

	fields, err := record(sc.Bytes(), 1)
	if err != nil {
		return time.Time{}, err
	}
	if len(fields) < metaFieldCount {
		return time.Time{}, &FormatError{
			Line: 1,
			Msg:  fmt.Sprintf("metadata record has %d columns, need %d", len(fields), metaFieldCount),
		}
	}

	ms, err := integer(fields[metaTimestamp], 1, "capture timestamp")
	if err != nil {
		return time.Time{}, err
	}

	// UnixMilli floors, so pre-epoch timestamps land on the right
	// instant instead of being truncated toward zero.
	return time.UnixMilli(ms), nil
}

func prediction(line []byte, lineno int) (model.Prediction, error) {
	fields, err := record(line, lineno)
	if err != nil {
		return model.Prediction{}, err
	}
	if len(fields) < predFieldCount {
		return model.Prediction{}, &FormatError{
			Line: lineno,
			Msg:  fmt.Sprintf("prediction record has %d columns, need %d", len(fields), predFieldCount),
		}
	}

	var p model.Prediction
	if p.StopPointName, err = text(fields[predStopPointName], lineno, "stop point name"); err != nil {
		return model.Prediction{}, err
	}
	if p.LineName, err = text(fields[predLineName], lineno, "line name"); err != nil {
		return model.Prediction{}, err
	}
	if p.DestinationText, err = text(fields[predDestination], lineno, "destination text"); err != nil {
		return model.Prediction{}, err
	}

	trip, err := unsigned(fields[predTripID], lineno, "trip id")
	if err != nil {
		return model.Prediction{}, err
	}
	p.TripID = model.TripID(trip)

	ms, err := integer(fields[predEstimatedTime], lineno, "estimated time")
	if err != nil {
		return model.Prediction{}, err
	}
	p.EstimatedTime = time.UnixMilli(ms)

	return p, nil
}

func record(line []byte, lineno int) ([]json.RawMessage, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, &FormatError{Line: lineno, Msg: "not a JSON array", Err: err}
	}
	return fields, nil
}

func text(raw json.RawMessage, lineno int, column string) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &FormatError{Line: lineno, Msg: column + " is not a string", Err: err}
	}
	return s, nil
}

func unsigned(raw json.RawMessage, lineno int, column string) (uint64, error) {
	var n uint64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, &FormatError{Line: lineno, Msg: column + " is not an unsigned integer", Err: err}
	}
	return n, nil
}

func integer(raw json.RawMessage, lineno int, column string) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, &FormatError{Line: lineno, Msg: column + " is not an integer", Err: err}
	}
	return n, nil
}
