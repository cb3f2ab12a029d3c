package travelura_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	travelura "github.com/clonejo/travel-ura"
	"github.com/clonejo/travel-ura/model"
	"github.com/clonejo/travel-ura/testutil"
	"github.com/clonejo/travel-ura/ura"
)

// fakeSource serves canned snapshots, tracking how many fetches run at
// once and how many got cancelled underway.
type fakeSource struct {
	sets   map[string]model.PredictionSet
	errs   map[string]error
	delays map[string]time.Duration
	hold   time.Duration // sleep applied to stops without an entry in delays

	mu          sync.Mutex
	inflight    int
	maxInflight int
	cancelled   int
}

func (f *fakeSource) Predictions(ctx context.Context, stop string) (model.PredictionSet, error) {
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	delay, ok := f.delays[stop]
	if !ok {
		delay = f.hold
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			f.mu.Lock()
			f.cancelled++
			f.mu.Unlock()
			return model.PredictionSet{}, ctx.Err()
		}
	}

	if err := f.errs[stop]; err != nil {
		return model.PredictionSet{}, err
	}
	set, ok := f.sets[stop]
	if !ok {
		return model.PredictionSet{}, &ura.UnknownStopError{StopPointName: stop}
	}
	return set, nil
}

func (f *fakeSource) MaxInflight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInflight
}

func (f *fakeSource) Cancelled() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

func TestDeparturesNoStops(t *testing.T) {
	q := travelura.NewQuerier(&fakeSource{})

	_, err := q.Departures(context.Background(), nil, true)
	assert.ErrorIs(t, err, travelura.ErrNoStops)
}

func TestDeparturesSingleStop(t *testing.T) {
	src := &fakeSource{sets: map[string]model.PredictionSet{
		"A": snapshot(t0, at("A", 2, 20), at("A", 1, 10)),
	}}

	q := travelura.NewQuerier(src)
	combined, err := q.Departures(context.Background(), []string{"A"}, true)
	require.NoError(t, err)

	assert.True(t, combined.Time.Equal(t0))
	assert.Equal(t, []model.TripID{1, 2}, tripIDs(combined))
}

func TestDeparturesCollectsInRequestOrder(t *testing.T) {
	// The first stop answers last. Snapshots must still line up with
	// the stops as requested: the combined Time is the first stop's
	// capture time, and the ordered check runs along request order.
	src := &fakeSource{
		sets: map[string]model.PredictionSet{
			"A": snapshot(t0, at("A", 1, 10)),
			"B": snapshot(t0.Add(time.Minute), at("B", 1, 15)),
		},
		delays: map[string]time.Duration{"A": 30 * time.Millisecond},
	}

	q := travelura.NewQuerier(src)
	combined, err := q.Departures(context.Background(), []string{"A", "B"}, true)
	require.NoError(t, err)

	assert.True(t, combined.Time.Equal(t0), "anchored at the first requested stop, not the first to answer")
	require.Len(t, combined.Predictions, 1)
	assert.Equal(t, at("A", 1, 10), combined.Predictions[0])
}

func TestDeparturesFailureAbortsQuery(t *testing.T) {
	src := &fakeSource{
		sets: map[string]model.PredictionSet{"A": snapshot(t0, at("A", 1, 10))},
	}

	q := travelura.NewQuerier(src)
	combined, err := q.Departures(context.Background(), []string{"A", "Nirgendwo"}, true)
	require.Error(t, err)
	assert.Nil(t, combined, "no partial result on failure")

	var unknown *ura.UnknownStopError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Nirgendwo", unknown.StopPointName)
	assert.Contains(t, err.Error(), `stop "Nirgendwo"`)
}

func TestDeparturesFailureCancelsSiblings(t *testing.T) {
	// The failing fetch pulls the plug on its siblings; without the
	// shared context the slow stop would hold the query open.
	boom := errors.New("boom")
	src := &fakeSource{
		errs:   map[string]error{"bad": boom},
		sets:   map[string]model.PredictionSet{"slow": snapshot(t0)},
		delays: map[string]time.Duration{"slow": 10 * time.Second},
	}

	q := travelura.NewQuerier(src)
	_, err := q.Departures(context.Background(), []string{"slow", "bad"}, true)

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, src.Cancelled(), "slow fetch should have been cancelled")
}

func TestDeparturesBoundsConcurrency(t *testing.T) {
	stops := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}
	sets := map[string]model.PredictionSet{}
	for _, s := range stops {
		sets[s] = snapshot(t0, at(s, 1, 10))
	}
	src := &fakeSource{sets: sets, hold: 5 * time.Millisecond}

	q := travelura.NewQuerier(src)
	q.MaxConcurrent = 2

	_, err := q.Departures(context.Background(), stops, false)
	require.NoError(t, err)
	assert.LessOrEqual(t, src.MaxInflight(), 2)
}

func TestDeparturesEndToEnd(t *testing.T) {
	server := testutil.NewURAServer()
	defer server.Close()

	capture := time.Date(2015, 11, 30, 12, 0, 0, 0, time.UTC)
	server.Serve("Aachen Bushof", testutil.Feed(capture,
		testutil.Pred("Aachen Bushof", "25", "Vaals Heuvel", 1, capture.Add(10*time.Minute)),
		testutil.Pred("Aachen Bushof", "35", "Brand", 2, capture.Add(20*time.Minute)),
	))
	server.Serve("Elisenbrunnen", testutil.Feed(capture.Add(time.Second),
		testutil.Pred("Elisenbrunnen", "25", "Vaals Heuvel", 1, capture.Add(15*time.Minute)),
		testutil.Pred("Elisenbrunnen", "45", "Uniklinik", 3, capture.Add(5*time.Minute)),
	))

	q := travelura.NewQuerier(ura.NewClient(server.URL()))
	combined, err := q.Departures(context.Background(), []string{"Aachen Bushof", "Elisenbrunnen"}, true)
	require.NoError(t, err)

	assert.True(t, combined.Time.Equal(capture))
	require.Len(t, combined.Predictions, 1)

	p := combined.Predictions[0]
	assert.Equal(t, model.TripID(1), p.TripID)
	assert.Equal(t, "Aachen Bushof", p.StopPointName)
	assert.True(t, p.EstimatedTime.Equal(capture.Add(10*time.Minute)))
}

func TestDeparturesEndToEndUnknownStop(t *testing.T) {
	server := testutil.NewURAServer()
	defer server.Close()

	server.Serve("Aachen Bushof", testutil.Feed(time.Now()))

	q := travelura.NewQuerier(ura.NewClient(server.URL()))
	_, err := q.Departures(context.Background(), []string{"Aachen Bushof", "Nirgendwo"}, true)
	require.Error(t, err)

	var unknown *ura.UnknownStopError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Nirgendwo", unknown.StopPointName)
}
