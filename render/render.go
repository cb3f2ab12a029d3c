// Package render turns combined prediction snapshots into the text the
// user sees.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/clonejo/travel-ura/model"
)

// Text writes one line per prediction: minutes until the vehicle is
// due, the line name, and where it is headed. Minutes count from the
// snapshot's capture timestamp and truncate toward zero, so a vehicle
// due 90 seconds out shows as 1min and one gone 90 seconds ago as
// -1min.
//
// The default layout pads minutes and line name to fixed widths so
// columns line up; compact drops the padding.
func Text(w io.Writer, set model.PredictionSet, compact bool) error {
	for _, p := range set.Predictions {
		due := int64(p.EstimatedTime.Sub(set.Time) / time.Minute)

		var err error
		if compact {
			_, err = fmt.Fprintf(w, "%dmin %s %s\n", due, p.LineName, p.DestinationText)
		} else {
			_, err = fmt.Fprintf(w, "%3dmin %4s %s\n", due, p.LineName, p.DestinationText)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
