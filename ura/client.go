// Package ura is the client side of the URA instant interface: request
// building, status mapping, and typed fetch failures.
package ura

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/clonejo/travel-ura/model"
	"github.com/clonejo/travel-ura/parse"
)

// Column lists sent as ReturnList. The interface answers with
// positional records, so parse counts on exactly these columns in
// exactly this order.
const (
	predictionColumns = "StopPointName,LineName,DestinationText,EstimatedTime,TripID"
	stopColumns       = "StopPointName,StopID,Latitude,Longitude"
)

// DefaultTimeout bounds one instant request end to end.
const DefaultTimeout = 30 * time.Second

// Client queries one URA instant endpoint.
type Client struct {
	// BaseURL is the endpoint without a query string, e.g.
	// http://ivu.aseag.de/interfaces/ura/instant_V1.
	BaseURL string

	// HTTPClient issues the requests. Replace it to tune timeouts or
	// transports; NewClient installs one with DefaultTimeout.
	HTTPClient *http.Client

	// Logger receives request-level debug events. Quiet by default.
	Logger zerolog.Logger
}

// NewClient creates a Client for the given instant endpoint.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Logger:     zerolog.Nop(),
	}
}

// Predictions fetches the prediction snapshot for one stop point. An
// empty name drops the filter, asking for every stop the source
// covers.
func (c *Client) Predictions(ctx context.Context, stopPointName string) (model.PredictionSet, error) {
	body, err := c.get(ctx, predictionColumns, stopPointName)
	if err != nil {
		return model.PredictionSet{}, err
	}
	defer body.Close()

	set, err := parse.Predictions(body)
	if err != nil {
		return model.PredictionSet{}, errors.Wrap(err, "parsing predictions")
	}
	return set, nil
}

// Stops fetches the stop points the source covers, optionally filtered
// to one exact stop point name.
func (c *Client) Stops(ctx context.Context, stopPointName string) ([]model.Stop, error) {
	body, err := c.get(ctx, stopColumns, stopPointName)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	stops, err := parse.Stops(body)
	if err != nil {
		return nil, errors.Wrap(err, "parsing stops")
	}
	return stops, nil
}

// get issues one instant request and maps the response status. The
// returned body is the caller's to close.
func (c *Client) get(ctx context.Context, columns, stopPointName string) (io.ReadCloser, error) {
	// ReturnList goes out verbatim: the interface wants its commas
	// unescaped. Only the stop filter needs escaping.
	query := "ReturnList=" + columns
	if stopPointName != "" {
		query += "&StopPointName=" + url.QueryEscape(stopPointName)
	}
	requestURL := c.BaseURL + "?" + query

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	c.Logger.Debug().Str("url", requestURL).Msg("querying instant interface")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}
	resp.Body.Close()

	// The interface answers 416 to a stop filter it can't satisfy.
	// With a filter on the request that pins the blame on the stop
	// name; without one the status is as unexpected as any other.
	if resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && stopPointName != "" {
		return nil, &UnknownStopError{StopPointName: stopPointName}
	}
	return nil, &UnexpectedStatusError{StatusCode: resp.StatusCode}
}
