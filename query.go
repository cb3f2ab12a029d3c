// Package travelura answers which vehicles will visit all of a given
// sequence of stops, and when. It fans one prediction query out per
// stop against an URA instant source, then intersects the per-stop
// snapshots by trip ID into a single combined schedule.
package travelura

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/clonejo/travel-ura/model"
)

// DefaultMaxConcurrent caps how many stop fetches run at once unless
// the caller tunes Querier.MaxConcurrent.
const DefaultMaxConcurrent = 4

// ErrNoStops is returned by Departures when no stop point names are
// given.
var ErrNoStops = errors.New("no stop point names given")

// Source produces one prediction snapshot per stop query. ura.Client
// implements it against a live endpoint.
type Source interface {
	Predictions(ctx context.Context, stopPointName string) (model.PredictionSet, error)
}

// Querier runs combined departure queries against a Source.
type Querier struct {
	// MaxConcurrent bounds the in-flight stop fetches of one query.
	// Zero or negative lifts the bound, one worker per stop.
	MaxConcurrent int

	// Logger receives per-fetch debug events. Quiet by default.
	Logger zerolog.Logger

	source Source
}

// NewQuerier creates a Querier on top of the given source.
func NewQuerier(source Source) *Querier {
	return &Querier{
		MaxConcurrent: DefaultMaxConcurrent,
		Logger:        zerolog.Nop(),
		source:        source,
	}
}

// Departures fetches a snapshot per stop, all stops concurrently, and
// intersects them into the trips that visit every one. With ordered
// set, trips must visit the stops in the order given.
//
// Snapshots are handed to Intersect in request order no matter when
// each fetch lands, so the ordered check always compares consecutive
// stops as the caller listed them.
//
// The first fetch to fail fails the whole query: its error is
// returned, the shared context cancels the remaining fetches, and no
// partial result is produced.
func (q *Querier) Departures(ctx context.Context, stopPointNames []string, ordered bool) (*model.PredictionSet, error) {
	if len(stopPointNames) == 0 {
		return nil, ErrNoStops
	}

	g, ctx := errgroup.WithContext(ctx)
	if q.MaxConcurrent > 0 {
		g.SetLimit(q.MaxConcurrent)
	}

	sets := make([]model.PredictionSet, len(stopPointNames))
	for i, stop := range stopPointNames {
		i, stop := i, stop
		g.Go(func() error {
			started := time.Now()
			set, err := q.source.Predictions(ctx, stop)
			if err != nil {
				return fmt.Errorf("stop %q: %w", stop, err)
			}
			q.Logger.Debug().
				Str("stop", stop).
				Int("predictions", len(set.Predictions)).
				Dur("took", time.Since(started)).
				Msg("fetched predictions")
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := Intersect(sets, ordered)
	q.Logger.Debug().
		Int("stops", len(sets)).
		Bool("ordered", ordered).
		Int("trips", len(combined.Predictions)).
		Msg("combined predictions")

	return combined, nil
}
