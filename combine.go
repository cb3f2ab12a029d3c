package travelura

import (
	"sort"

	"github.com/clonejo/travel-ura/model"
)

// Intersect reduces per-stop snapshots, given in the order the stops
// were asked for, to the trips present in every one of them. With
// ordered set, a trip also has to visit the stops in that order: its
// predicted times must never decrease from one set to the next, where
// equal times count as in order.
//
// Each surviving trip is reported with its prediction from the first
// set, so the combined snapshot reads as departures from the first
// stop. Predictions come back sorted by estimated time, trip ID
// breaking ties to keep the order stable between runs. Time is the
// first set's capture timestamp.
//
// An empty input has no first set to anchor on and returns nil. Sets
// that share no trip produce a snapshot with zero predictions, which
// is a valid answer, not a failure.
func Intersect(sets []model.PredictionSet, ordered bool) *model.PredictionSet {
	if len(sets) == 0 {
		return nil
	}

	// Seed with the first stop's predictions. Trip IDs repeated
	// within one set are a source-side data error; here the last
	// record wins.
	working := make(map[model.TripID]model.Prediction, len(sets[0].Predictions))
	for _, p := range sets[0].Predictions {
		working[p.TripID] = p
	}

	for _, set := range sets[1:] {
		next := make(map[model.TripID]model.Prediction, len(working))
		for _, p := range set.Predictions {
			pred, ok := working[p.TripID]
			if !ok {
				// Trip missed an earlier stop. Dropped trips
				// never re-enter.
				continue
			}
			// Consume the entry: if the set repeats the trip
			// ID, only its first record gets a say.
			delete(working, p.TripID)

			if !ordered || !pred.EstimatedTime.After(p.EstimatedTime) {
				// Keep the carried-over prediction: survivors
				// read as departures from the first stop.
				next[p.TripID] = pred
			}
		}
		working = next
	}

	combined := &model.PredictionSet{
		Time:        sets[0].Time,
		Predictions: make([]model.Prediction, 0, len(working)),
	}
	for _, p := range working {
		combined.Predictions = append(combined.Predictions, p)
	}
	sort.Slice(combined.Predictions, func(i, j int) bool {
		a, b := combined.Predictions[i], combined.Predictions[j]
		if !a.EstimatedTime.Equal(b.EstimatedTime) {
			return a.EstimatedTime.Before(b.EstimatedTime)
		}
		return a.TripID < b.TripID
	})

	return combined
}
