package travelura_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	travelura "github.com/clonejo/travel-ura"
	"github.com/clonejo/travel-ura/ura"
)

// Exercises a live instant endpoint, e.g.
//
//	URA_INTEGRATION_URL=http://ivu.aseag.de/interfaces/ura/instant_V1 go test ./...
//
// Skipped unless the URL is set.
func TestDeparturesLiveEndpoint(t *testing.T) {
	endpoint := os.Getenv("URA_INTEGRATION_URL")
	if endpoint == "" {
		t.Skip("URA_INTEGRATION_URL not set")
	}
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := ura.NewClient(endpoint)

	stops, err := client.Stops(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, stops)

	q := travelura.NewQuerier(client)
	combined, err := q.Departures(context.Background(), []string{stops[0].Name}, true)
	require.NoError(t, err)
	require.NotNil(t, combined)
}
