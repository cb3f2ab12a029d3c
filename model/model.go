package model

import (
	"time"
)

// Holds all external facing types shared across the module.

// TripID identifies one physical vehicle journey. It is stable across
// every stop the vehicle visits within a single feed snapshot.
type TripID uint64

// Prediction is one vehicle's predicted visit to one stop.
type Prediction struct {
	StopPointName   string
	LineName        string
	DestinationText string
	TripID          TripID
	EstimatedTime   time.Time
}

// PredictionSet is the snapshot one feed pull produced: the capture
// timestamp the source reported for the pull, plus the predictions in
// the order they were received. A set is built once by the parser and
// not mutated afterwards.
//
// TripID is unique within a set. URA sources don't enforce this, so
// when a feed repeats a trip the last record wins downstream.
type PredictionSet struct {
	Time        time.Time
	Predictions []Prediction
}

// Stop is one stop point as returned by a stop-column query.
type Stop struct {
	Name string  `csv:"stop_point_name"`
	ID   string  `csv:"stop_id"`
	Lat  float64 `csv:"latitude"`
	Lon  float64 `csv:"longitude"`
}
