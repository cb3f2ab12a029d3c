package testutil

// Helpers and a canned URA instant endpoint for tests.

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/clonejo/travel-ura/model"
)

// URAServer plays an URA instant endpoint. Responses are registered per
// stop point name; requests without a stop filter hit the entry
// registered under the empty name. Anything unregistered is answered
// with 416, the way the real interface answers a filter it can't
// satisfy.
type URAServer struct {
	mu       sync.Mutex
	bodies   map[string]string
	statuses map[string]int
	delays   map[string]time.Duration
	requests []*url.URL

	server *httptest.Server
}

func NewURAServer() *URAServer {
	s := &URAServer{
		bodies:   map[string]string{},
		statuses: map[string]int{},
		delays:   map[string]time.Duration{},
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL is the endpoint base, ready for ura.NewClient.
func (s *URAServer) URL() string {
	return s.server.URL + "/interfaces/ura/instant_V1"
}

func (s *URAServer) Close() {
	s.server.Close()
}

// Serve registers the body answered for the given stop point name. The
// empty name serves requests that carry no stop filter.
func (s *URAServer) Serve(stopPointName, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[stopPointName] = body
	delete(s.statuses, stopPointName)
}

// ServeStatus registers a bare status code instead of a body.
func (s *URAServer) ServeStatus(stopPointName string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[stopPointName] = status
	delete(s.bodies, stopPointName)
}

// Delay makes responses for the given stop point name sit on the wire
// for d first.
func (s *URAServer) Delay(stopPointName string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[stopPointName] = d
}

// Requests returns the request URLs served so far, in arrival order.
func (s *URAServer) Requests() []*url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*url.URL(nil), s.requests...)
}

func (s *URAServer) handle(w http.ResponseWriter, r *http.Request) {
	stop := r.URL.Query().Get("StopPointName")

	s.mu.Lock()
	s.requests = append(s.requests, r.URL)
	body, okBody := s.bodies[stop]
	status, okStatus := s.statuses[stop]
	delay := s.delays[stop]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	switch {
	case okStatus:
		w.WriteHeader(status)
	case okBody:
		fmt.Fprint(w, body)
	default:
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
	}
}

// Feed builds an instant response body: the metadata record for the
// given capture time, then one line per record.
func Feed(captured time.Time, records ...string) string {
	lines := append([]string{fmt.Sprintf(`[4,"1.0",%d]`, captured.UnixMilli())}, records...)
	return strings.Join(lines, "\n")
}

// Pred builds one prediction record line for Feed.
func Pred(stop, line, destination string, trip model.TripID, estimated time.Time) string {
	return fmt.Sprintf(`[1,%q,%q,%q,%d,%d]`, stop, line, destination, trip, estimated.UnixMilli())
}

// StopFeed builds a stop-column response body.
func StopFeed(captured time.Time, stops ...model.Stop) string {
	lines := []string{fmt.Sprintf(`[4,"1.0",%d]`, captured.UnixMilli())}
	for _, s := range stops {
		lines = append(lines, fmt.Sprintf(`[0,%q,%q,%g,%g]`, s.Name, s.ID, s.Lat, s.Lon))
	}
	return strings.Join(lines, "\n")
}
